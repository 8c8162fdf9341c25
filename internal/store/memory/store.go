package memory

import (
	"context"
	"fmt"
	"sync"

	"parking-system/internal/parking"
)

var _ parking.Store = (*Store)(nil)

// Store keeps spots and tickets in process memory. Spot ids are assigned in
// provisioning order: all car spots first, then bike spots.
type Store struct {
	mu      sync.Mutex
	spots   []*parking.Spot
	tickets []*parking.Ticket
}

func New(carSpots, bikeSpots int) *Store {
	spots := make([]*parking.Spot, 0, carSpots+bikeSpots)
	for i := 0; i < carSpots; i++ {
		spots = append(spots, parking.NewSpot(len(spots)+1, parking.Car))
	}
	for i := 0; i < bikeSpots; i++ {
		spots = append(spots, parking.NewSpot(len(spots)+1, parking.Bike))
	}

	return &Store{spots: spots}
}

func (s *Store) NextAvailableSpot(_ context.Context, vehicleType parking.VehicleType) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, spot := range s.spots {
		if spot.Type == vehicleType && spot.Available {
			return spot.ID, nil
		}
	}
	return 0, parking.ErrNoSpotAvailable
}

func (s *Store) UpdateSpot(_ context.Context, spot *parking.Spot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.spot(spot.ID)
	if err != nil {
		return err
	}
	stored.Available = spot.Available
	return nil
}

func (s *Store) ListSpots(_ context.Context) ([]parking.Spot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spots := make([]parking.Spot, len(s.spots))
	for i, spot := range s.spots {
		spots[i] = *spot
	}
	return spots, nil
}

func (s *Store) SaveTicket(_ context.Context, ticket *parking.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket.Spot == nil {
		return fmt.Errorf("%w: ticket has no spot", parking.ErrPersistence)
	}
	if _, err := s.spot(ticket.Spot.ID); err != nil {
		return err
	}

	ticket.ID = len(s.tickets) + 1
	s.tickets = append(s.tickets, cloneTicket(ticket))
	return nil
}

func (s *Store) UpdateTicket(_ context.Context, ticket *parking.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket.ID < 1 || ticket.ID > len(s.tickets) {
		return fmt.Errorf("%w: ticket %d does not exist", parking.ErrPersistence, ticket.ID)
	}

	stored := s.tickets[ticket.ID-1]
	if ticket.OutTime != nil {
		out := *ticket.OutTime
		stored.OutTime = &out
	}
	stored.Price = ticket.Price
	return nil
}

// OpenTicket returns a copy; callers persist changes through UpdateTicket.
func (s *Store) OpenTicket(_ context.Context, regNumber string) (*parking.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.tickets) - 1; i >= 0; i-- {
		ticket := s.tickets[i]
		if ticket.VehicleRegNumber == regNumber && ticket.IsOpen() {
			return cloneTicket(ticket), nil
		}
	}
	return nil, parking.ErrTicketNotFound
}

func (s *Store) CountClosedTickets(_ context.Context, regNumber string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, ticket := range s.tickets {
		if ticket.VehicleRegNumber == regNumber && !ticket.IsOpen() {
			count++
		}
	}
	return count, nil
}

func (s *Store) spot(id int) (*parking.Spot, error) {
	if id < 1 || id > len(s.spots) {
		return nil, fmt.Errorf("%w: spot %d does not exist", parking.ErrPersistence, id)
	}
	return s.spots[id-1], nil
}

func cloneTicket(t *parking.Ticket) *parking.Ticket {
	c := *t
	if t.Spot != nil {
		spot := *t.Spot
		c.Spot = &spot
	}
	if t.OutTime != nil {
		out := *t.OutTime
		c.OutTime = &out
	}
	return &c
}
