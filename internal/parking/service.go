package parking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"parking-system/internal/logging"
)

type CheckInResult struct {
	Ticket *Ticket
	// Recurring is set when the registration already has enough closed
	// tickets to earn the discount at check-out.
	Recurring bool
}

type CheckOutResult struct {
	Ticket     *Ticket
	Price      decimal.Decimal
	Discounted bool
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithRecurringMinVisits sets how many closed tickets a registration needs
// before it counts as recurring. Values below 1 are treated as 1.
func WithRecurringMinVisits(n int) Option {
	return func(s *Service) {
		s.minVisits = max(n, 1)
	}
}

// Service runs the ticket lifecycle: check-in opens a ticket on a freshly
// reserved spot, check-out closes it, prices it and frees the spot.
type Service struct {
	store     Store
	allocator *SpotAllocator
	fares     *FareCalculator
	minVisits int
	now       func() time.Time
}

func NewService(store Store, fares *FareCalculator, opts ...Option) *Service {
	s := &Service{
		store:     store,
		allocator: NewSpotAllocator(store),
		fares:     fares,
		minVisits: 1,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ProcessIncomingVehicle(ctx context.Context, in InputReader) (*CheckInResult, error) {
	spot, err := s.nextParkingSpot(ctx, in)
	if err != nil {
		return nil, err
	}

	regNumber, err := in.ReadRegistration()
	if err != nil {
		logging.Error(ctx, "invalid registration number", slog.Any("error", err))
		return nil, err
	}

	if _, err := s.store.OpenTicket(ctx, regNumber); err == nil {
		logging.Warn(ctx, "vehicle already parked", slog.String("registration", regNumber))
		return nil, fmt.Errorf("%w: %s", ErrAlreadyParked, regNumber)
	} else if !errors.Is(err, ErrTicketNotFound) {
		logging.Error(ctx, "error looking up open ticket", slog.String("registration", regNumber), slog.Any("error", err))
		return nil, err
	}

	spot.Occupy()
	if !s.allocator.UpdateSpot(ctx, spot) {
		return nil, fmt.Errorf("%w: reserving spot %d", ErrPersistence, spot.ID)
	}

	recurring := s.isRecurring(ctx, regNumber)

	ticket := NewTicket(spot, regNumber, s.now())
	if err := s.store.SaveTicket(ctx, ticket); err != nil {
		logging.Error(ctx, "error saving ticket, releasing spot",
			slog.String("registration", regNumber),
			slog.Int("spot_id", spot.ID),
			slog.Any("error", err))
		spot.Release()
		s.allocator.UpdateSpot(ctx, spot)
		return nil, err
	}

	logging.Info(ctx, "vehicle checked in",
		slog.Int("ticket_id", ticket.ID),
		slog.Int("spot_id", spot.ID),
		slog.String("vehicle_type", spot.Type.String()),
		slog.String("registration", regNumber),
		slog.Bool("recurring", recurring))

	return &CheckInResult{Ticket: ticket, Recurring: recurring}, nil
}

// nextParkingSpot reads the vehicle type and returns the spot the vehicle
// would get. The spot is not reserved yet.
func (s *Service) nextParkingSpot(ctx context.Context, in InputReader) (*Spot, error) {
	selection, err := in.ReadSelection()
	if err != nil {
		return nil, err
	}

	vehicleType, err := VehicleTypeFromSelection(selection)
	if err != nil {
		logging.Error(ctx, "incorrect vehicle type selection", slog.Int("selection", selection))
		return nil, err
	}

	id := s.allocator.FindNextAvailable(ctx, vehicleType)
	if id == NoSpot {
		return nil, fmt.Errorf("%w: %s", ErrNoSpotAvailable, vehicleType)
	}

	return NewSpot(id, vehicleType), nil
}

func (s *Service) ProcessExitingVehicle(ctx context.Context, in InputReader) (*CheckOutResult, error) {
	regNumber, err := in.ReadRegistration()
	if err != nil {
		logging.Error(ctx, "invalid registration number", slog.Any("error", err))
		return nil, err
	}

	ticket, err := s.store.OpenTicket(ctx, regNumber)
	if err != nil {
		logging.Error(ctx, "no open ticket for vehicle", slog.String("registration", regNumber), slog.Any("error", err))
		return nil, err
	}

	ticket.Close(s.now())
	discounted := s.isRecurring(ctx, regNumber)

	price, err := s.fares.CalculateFare(ticket, discounted)
	if err != nil {
		logging.Error(ctx, "unable to calculate fare",
			slog.Int("ticket_id", ticket.ID),
			slog.Any("error", err))
		return nil, err
	}

	if err := s.store.UpdateTicket(ctx, ticket); err != nil {
		logging.Error(ctx, "unable to update ticket information, spot not released",
			slog.Int("ticket_id", ticket.ID),
			slog.Any("error", err))
		return nil, err
	}

	ticket.Spot.Release()
	if !s.allocator.UpdateSpot(ctx, ticket.Spot) {
		logging.Error(ctx, "ticket closed but spot could not be released",
			slog.Int("ticket_id", ticket.ID),
			slog.Int("spot_id", ticket.Spot.ID))
	}

	logging.Info(ctx, "vehicle checked out",
		slog.Int("ticket_id", ticket.ID),
		slog.Int("spot_id", ticket.Spot.ID),
		slog.String("registration", regNumber),
		slog.String("price", price.StringFixed(2)),
		slog.Bool("discounted", discounted))

	return &CheckOutResult{Ticket: ticket, Price: price, Discounted: discounted}, nil
}

func (s *Service) Spots(ctx context.Context) ([]Spot, error) {
	return s.store.ListSpots(ctx)
}

// isRecurring treats a failed lookup as a first visit.
func (s *Service) isRecurring(ctx context.Context, regNumber string) bool {
	count, err := s.store.CountClosedTickets(ctx, regNumber)
	if err != nil {
		logging.Error(ctx, "error counting previous tickets", slog.String("registration", regNumber), slog.Any("error", err))
		return false
	}
	return count >= s.minVisits
}
