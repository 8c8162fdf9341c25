package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-system/internal/parking"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStore(sqlx.NewDb(db, "pgx")), mock
}

func TestNextAvailableSpot(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT MIN(parking_number) FROM parking WHERE available = TRUE AND type = $1`)).
		WithArgs("CAR").
		WillReturnRows(sqlmock.NewRows([]string{"min"}).AddRow(2))

	id, err := store.NextAvailableSpot(context.Background(), parking.Car)
	require.NoError(t, err)
	assert.Equal(t, 2, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextAvailableSpotNone(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT MIN\(parking_number\) FROM parking`).
		WithArgs("BIKE").
		WillReturnRows(sqlmock.NewRows([]string{"min"}).AddRow(nil))

	_, err := store.NextAvailableSpot(context.Background(), parking.Bike)
	assert.ErrorIs(t, err, parking.ErrNoSpotAvailable)
}

func TestNextAvailableSpotBackendError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT MIN\(parking_number\) FROM parking`).
		WillReturnError(errors.New("connection refused"))

	_, err := store.NextAvailableSpot(context.Background(), parking.Car)
	assert.ErrorIs(t, err, parking.ErrPersistence)
	assert.NotErrorIs(t, err, parking.ErrNoSpotAvailable)
}

func TestUpdateSpot(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE parking SET available = $1 WHERE parking_number = $2`)).
		WithArgs(false, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE parking SET available`).
		WithArgs(true, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE parking SET available`).
		WillReturnError(sql.ErrConnDone)

	ctx := context.Background()
	assert.NoError(t, store.UpdateSpot(ctx, &parking.Spot{ID: 1, Type: parking.Car, Available: false}))
	assert.ErrorIs(t, store.UpdateSpot(ctx, &parking.Spot{ID: 99, Type: parking.Car, Available: true}), parking.ErrPersistence)
	assert.ErrorIs(t, store.UpdateSpot(ctx, &parking.Spot{ID: 1, Type: parking.Car, Available: true}), parking.ErrPersistence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSpots(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT parking_number, available, type FROM parking ORDER BY parking_number`).
		WillReturnRows(sqlmock.NewRows([]string{"parking_number", "available", "type"}).
			AddRow(1, false, "CAR").
			AddRow(4, true, "BIKE"))

	spots, err := store.ListSpots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []parking.Spot{
		{ID: 1, Type: parking.Car, Available: false},
		{ID: 4, Type: parking.Bike, Available: true},
	}, spots)
}

func TestSaveTicket(t *testing.T) {
	store, mock := newMockStore(t)
	in := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO ticket`).
		WithArgs(3, "ABCDEF", nil, in, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	ticket := parking.NewTicket(&parking.Spot{ID: 3, Type: parking.Car}, "ABCDEF", in)
	require.NoError(t, store.SaveTicket(context.Background(), ticket))
	assert.Equal(t, 12, ticket.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveTicketError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO ticket`).WillReturnError(errors.New("unique violation"))

	ticket := parking.NewTicket(&parking.Spot{ID: 3, Type: parking.Car}, "ABCDEF", time.Now())
	assert.ErrorIs(t, store.SaveTicket(context.Background(), ticket), parking.ErrPersistence)
}

func TestUpdateTicket(t *testing.T) {
	store, mock := newMockStore(t)
	out := time.Date(2024, 2, 2, 11, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE ticket SET price = $1, out_time = $2 WHERE id = $3`)).
		WithArgs("1.5", out, 12).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ticket := &parking.Ticket{ID: 12, OutTime: &out, Price: decimal.NewNullDecimal(decimal.RequireFromString("1.5"))}
	require.NoError(t, store.UpdateTicket(context.Background(), ticket))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTicketMissingRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE ticket SET price`).WillReturnResult(sqlmock.NewResult(0, 0))

	out := time.Now()
	err := store.UpdateTicket(context.Background(), &parking.Ticket{ID: 404, OutTime: &out})
	assert.ErrorIs(t, err, parking.ErrPersistence)
}

func TestOpenTicket(t *testing.T) {
	store, mock := newMockStore(t)
	in := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM ticket t\s+JOIN parking p`).
		WithArgs("ABCDEF").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "parking_number", "type", "available", "vehicle_reg_number", "price", "in_time", "out_time",
		}).AddRow(12, 4, "BIKE", false, "ABCDEF", nil, in, nil))

	ticket, err := store.OpenTicket(context.Background(), "ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, 12, ticket.ID)
	assert.Equal(t, 4, ticket.Spot.ID)
	assert.Equal(t, parking.Bike, ticket.Spot.Type)
	assert.False(t, ticket.Spot.Available)
	assert.True(t, ticket.InTime.Equal(in))
	assert.True(t, ticket.IsOpen())
	assert.False(t, ticket.Price.Valid)
}

func TestOpenTicketNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`FROM ticket t`).
		WithArgs("NOPE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.OpenTicket(context.Background(), "NOPE")
	assert.ErrorIs(t, err, parking.ErrTicketNotFound)
}

func TestCountClosedTickets(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM ticket WHERE vehicle_reg_number = $1 AND out_time IS NOT NULL`)).
		WithArgs("ABCDEF").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := store.CountClosedTickets(context.Background(), "ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS parking`).WillReturnResult(sqlmock.NewResult(0, 0))
	for id, vt := range []string{"CAR", "CAR", "BIKE"} {
		mock.ExpectExec(`INSERT INTO parking`).
			WithArgs(id+1, vt).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, Migrate(context.Background(), sqlx.NewDb(db, "pgx"), 2, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}
