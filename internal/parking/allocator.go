package parking

import (
	"context"
	"errors"
	"log/slog"

	"parking-system/internal/logging"
)

// NoSpot is returned by FindNextAvailable when nothing can be allocated.
const NoSpot = -1

// SpotAllocator is the boundary where spot store failures become neutral
// results: they are logged and reported as NoSpot or false.
type SpotAllocator struct {
	spots SpotStore
}

func NewSpotAllocator(spots SpotStore) *SpotAllocator {
	return &SpotAllocator{spots: spots}
}

func (a *SpotAllocator) FindNextAvailable(ctx context.Context, vehicleType VehicleType) int {
	id, err := a.spots.NextAvailableSpot(ctx, vehicleType)
	if err != nil {
		if errors.Is(err, ErrNoSpotAvailable) {
			logging.Warn(ctx, "no parking spot available", slog.String("vehicle_type", vehicleType.String()))
		} else {
			logging.Error(ctx, "error fetching next available spot",
				slog.String("vehicle_type", vehicleType.String()),
				slog.Any("error", err))
		}
		return NoSpot
	}
	if id < 1 {
		return NoSpot
	}
	return id
}

func (a *SpotAllocator) UpdateSpot(ctx context.Context, spot *Spot) bool {
	if err := a.spots.UpdateSpot(ctx, spot); err != nil {
		logging.Error(ctx, "error updating parking spot",
			slog.Int("spot_id", spot.ID),
			slog.Bool("available", spot.Available),
			slog.Any("error", err))
		return false
	}
	return true
}
