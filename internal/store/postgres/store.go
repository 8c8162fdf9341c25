package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"parking-system/internal/parking"
)

var _ parking.Store = (*Store)(nil)

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type spotRow struct {
	ParkingNumber int    `db:"parking_number"`
	Available     bool   `db:"available"`
	Type          string `db:"type"`
}

type ticketRow struct {
	ID               int                 `db:"id"`
	ParkingNumber    int                 `db:"parking_number"`
	Type             string              `db:"type"`
	Available        bool                `db:"available"`
	VehicleRegNumber string              `db:"vehicle_reg_number"`
	Price            decimal.NullDecimal `db:"price"`
	InTime           time.Time           `db:"in_time"`
	OutTime          sql.NullTime        `db:"out_time"`
}

func (r ticketRow) toTicket() *parking.Ticket {
	ticket := &parking.Ticket{
		ID: r.ID,
		Spot: &parking.Spot{
			ID:        r.ParkingNumber,
			Type:      parking.VehicleType(r.Type),
			Available: r.Available,
		},
		VehicleRegNumber: r.VehicleRegNumber,
		InTime:           r.InTime,
		Price:            r.Price,
	}
	if r.OutTime.Valid {
		out := r.OutTime.Time
		ticket.OutTime = &out
	}
	return ticket
}

func (s *Store) NextAvailableSpot(ctx context.Context, vehicleType parking.VehicleType) (int, error) {
	query := `SELECT MIN(parking_number) FROM parking WHERE available = TRUE AND type = $1`

	var id sql.NullInt64
	if err := s.db.GetContext(ctx, &id, query, vehicleType.String()); err != nil {
		return 0, fmt.Errorf("%w: next available spot: %w", parking.ErrPersistence, err)
	}
	if !id.Valid {
		return 0, parking.ErrNoSpotAvailable
	}
	return int(id.Int64), nil
}

func (s *Store) UpdateSpot(ctx context.Context, spot *parking.Spot) error {
	query := `UPDATE parking SET available = $1 WHERE parking_number = $2`

	res, err := s.db.ExecContext(ctx, query, spot.Available, spot.ID)
	if err != nil {
		return fmt.Errorf("%w: update spot %d: %w", parking.ErrPersistence, spot.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return fmt.Errorf("%w: update spot %d: %d rows affected", parking.ErrPersistence, spot.ID, n)
	}
	return nil
}

func (s *Store) ListSpots(ctx context.Context) ([]parking.Spot, error) {
	query := `SELECT parking_number, available, type FROM parking ORDER BY parking_number`

	var rows []spotRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("%w: list spots: %w", parking.ErrPersistence, err)
	}

	spots := make([]parking.Spot, len(rows))
	for i, row := range rows {
		spots[i] = parking.Spot{
			ID:        row.ParkingNumber,
			Type:      parking.VehicleType(row.Type),
			Available: row.Available,
		}
	}
	return spots, nil
}

func (s *Store) SaveTicket(ctx context.Context, ticket *parking.Ticket) error {
	query := `
		INSERT INTO ticket (parking_number, vehicle_reg_number, price, in_time, out_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	if ticket.Spot == nil {
		return fmt.Errorf("%w: ticket has no spot", parking.ErrPersistence)
	}

	err := s.db.QueryRowContext(ctx, query,
		ticket.Spot.ID, ticket.VehicleRegNumber, ticket.Price, ticket.InTime, ticket.OutTime,
	).Scan(&ticket.ID)
	if err != nil {
		return fmt.Errorf("%w: save ticket: %w", parking.ErrPersistence, err)
	}
	return nil
}

func (s *Store) UpdateTicket(ctx context.Context, ticket *parking.Ticket) error {
	query := `UPDATE ticket SET price = $1, out_time = $2 WHERE id = $3`

	res, err := s.db.ExecContext(ctx, query, ticket.Price, ticket.OutTime, ticket.ID)
	if err != nil {
		return fmt.Errorf("%w: update ticket %d: %w", parking.ErrPersistence, ticket.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return fmt.Errorf("%w: update ticket %d: %d rows affected", parking.ErrPersistence, ticket.ID, n)
	}
	return nil
}

func (s *Store) OpenTicket(ctx context.Context, regNumber string) (*parking.Ticket, error) {
	query := `
		SELECT
			t.id, t.parking_number, p.type, p.available, t.vehicle_reg_number,
			t.price, t.in_time, t.out_time
		FROM ticket t
		JOIN parking p ON p.parking_number = t.parking_number
		WHERE t.vehicle_reg_number = $1 AND t.out_time IS NULL
		ORDER BY t.in_time DESC
		LIMIT 1`

	var row ticketRow
	if err := s.db.GetContext(ctx, &row, query, regNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, parking.ErrTicketNotFound
		}
		return nil, fmt.Errorf("%w: open ticket for %s: %w", parking.ErrPersistence, regNumber, err)
	}
	return row.toTicket(), nil
}

func (s *Store) CountClosedTickets(ctx context.Context, regNumber string) (int, error) {
	query := `SELECT COUNT(*) FROM ticket WHERE vehicle_reg_number = $1 AND out_time IS NOT NULL`

	var count int
	if err := s.db.GetContext(ctx, &count, query, regNumber); err != nil {
		return 0, fmt.Errorf("%w: count tickets for %s: %w", parking.ErrPersistence, regNumber, err)
	}
	return count, nil
}
