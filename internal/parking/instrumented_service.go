package parking

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"parking-system/internal/telemetry"
)

// Lifecycle is what the shell and the HTTP API drive.
type Lifecycle interface {
	ProcessIncomingVehicle(ctx context.Context, in InputReader) (*CheckInResult, error)
	ProcessExitingVehicle(ctx context.Context, in InputReader) (*CheckOutResult, error)
	Spots(ctx context.Context) ([]Spot, error)
}

type InstrumentedService struct {
	*Service
	telemetry *telemetry.Provider

	// Metrics
	checkInOperations  metric.Int64Counter
	checkOutOperations metric.Int64Counter
	occupancyGauge     metric.Int64UpDownCounter
	fareAmount         metric.Float64Histogram
	operationDuration  metric.Float64Histogram
}

func NewInstrumentedService(service *Service, telemetry *telemetry.Provider) (*InstrumentedService, error) {
	meter := telemetry.Meter()

	checkInOperations, err := meter.Int64Counter("parking_check_in_total",
		metric.WithDescription("Total number of check-in attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	checkOutOperations, err := meter.Int64Counter("parking_check_out_total",
		metric.WithDescription("Total number of check-out attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking_lot_occupancy",
		metric.WithDescription("Vehicles checked in by this process and not yet checked out"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	fareAmount, err := meter.Float64Histogram("parking_fare_amount",
		metric.WithDescription("Fares charged at check-out"),
		metric.WithUnit("{currency}"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of parking lot operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &InstrumentedService{
		Service:            service,
		telemetry:          telemetry,
		checkInOperations:  checkInOperations,
		checkOutOperations: checkOutOperations,
		occupancyGauge:     occupancyGauge,
		fareAmount:         fareAmount,
		operationDuration:  operationDuration,
	}, nil
}

func (is *InstrumentedService) ProcessIncomingVehicle(ctx context.Context, in InputReader) (*CheckInResult, error) {
	ctx, span := is.telemetry.Tracer().Start(ctx, "parking.check_in")
	defer span.End()

	start := time.Now()

	result, err := is.Service.ProcessIncomingVehicle(ctx, in)

	labels := []attribute.KeyValue{
		attribute.String("operation", "check_in"),
		attribute.String("status", statusOf(err)),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		ticket := result.Ticket
		labels = append(labels, attribute.String("vehicle_type", ticket.Spot.Type.String()))
		span.SetAttributes(
			attribute.Int("ticket.id", ticket.ID),
			attribute.Int("spot.id", ticket.Spot.ID),
			attribute.String("vehicle.type", ticket.Spot.Type.String()),
			attribute.String("vehicle.registration_number", ticket.VehicleRegNumber),
			attribute.Bool("user.recurring", result.Recurring),
		)
		span.AddEvent("spot_allocated", trace.WithAttributes(
			attribute.Int("spot_id", ticket.Spot.ID),
		))
		is.occupancyGauge.Add(ctx, 1)
	}

	is.checkInOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	is.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return result, err
}

func (is *InstrumentedService) ProcessExitingVehicle(ctx context.Context, in InputReader) (*CheckOutResult, error) {
	ctx, span := is.telemetry.Tracer().Start(ctx, "parking.check_out")
	defer span.End()

	start := time.Now()

	result, err := is.Service.ProcessExitingVehicle(ctx, in)

	labels := []attribute.KeyValue{
		attribute.String("operation", "check_out"),
		attribute.String("status", statusOf(err)),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		ticket := result.Ticket
		fare := result.Price.InexactFloat64()
		labels = append(labels,
			attribute.String("vehicle_type", ticket.Spot.Type.String()),
			attribute.Bool("discounted", result.Discounted),
		)
		span.SetAttributes(
			attribute.Int("ticket.id", ticket.ID),
			attribute.Int("spot.id", ticket.Spot.ID),
			attribute.String("vehicle.registration_number", ticket.VehicleRegNumber),
			attribute.Float64("ticket.duration_hours", ticket.Duration().Hours()),
			attribute.String("ticket.price", result.Price.StringFixed(2)),
		)
		span.AddEvent("spot_released", trace.WithAttributes(
			attribute.Int("spot_id", ticket.Spot.ID),
		))
		is.occupancyGauge.Add(ctx, -1)
		is.fareAmount.Record(ctx, fare, metric.WithAttributes(labels...))
	}

	is.checkOutOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	is.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return result, err
}

func (is *InstrumentedService) Spots(ctx context.Context) ([]Spot, error) {
	ctx, span := is.telemetry.Tracer().Start(ctx, "parking.list_spots")
	defer span.End()

	spots, err := is.Service.Spots(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	available := 0
	for _, spot := range spots {
		if spot.Available {
			available++
		}
	}
	span.SetAttributes(
		attribute.Int("spots.total", len(spots)),
		attribute.Int("spots.available", available),
	)

	return spots, nil
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNoSpotAvailable):
		return "no_spot"
	case errors.Is(err, ErrTicketNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyParked):
		return "already_parked"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrPersistence):
		return "persistence_error"
	default:
		return "failed"
	}
}
