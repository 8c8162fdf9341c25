package parking

import "context"

// SpotStore persists the fixed pool of spots. NextAvailableSpot returns
// ErrNoSpotAvailable when every spot of the type is taken.
type SpotStore interface {
	NextAvailableSpot(ctx context.Context, vehicleType VehicleType) (int, error)
	UpdateSpot(ctx context.Context, spot *Spot) error
	ListSpots(ctx context.Context) ([]Spot, error)
}

// TicketStore persists parking sessions. OpenTicket returns ErrTicketNotFound
// when the registration has no ticket without an exit time.
type TicketStore interface {
	SaveTicket(ctx context.Context, ticket *Ticket) error
	UpdateTicket(ctx context.Context, ticket *Ticket) error
	OpenTicket(ctx context.Context, regNumber string) (*Ticket, error)
	CountClosedTickets(ctx context.Context, regNumber string) (int, error)
}

type Store interface {
	SpotStore
	TicketStore
}
