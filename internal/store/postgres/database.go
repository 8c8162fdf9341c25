package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/cenkalti/backoff/v5"
	"github.com/jmoiron/sqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	_ "github.com/jackc/pgx/v5/stdlib"

	"parking-system/internal/logging"
	"parking-system/internal/parking"
)

//go:embed schema.sql
var schema string

// Connect opens a traced connection pool, retrying while the database comes
// up. Giving up is fatal for the caller.
func Connect(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	return backoff.Retry(ctx, func() (*sqlx.DB, error) {
		db, err := connect(ctx, databaseURL)
		if err != nil {
			logging.Warn(ctx, "database not reachable, retrying", "error", err)
			return nil, err
		}
		return db, nil
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(5),
	)
}

func connect(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := otelsql.Open("pgx", databaseURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	if err := otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(
		semconv.DBSystemPostgreSQL,
	)); err != nil {
		db.Close()
		return nil, backoff.Permanent(err)
	}

	sqlxDB := sqlx.NewDb(db, "pgx")

	if err := sqlxDB.PingContext(ctx); err != nil {
		sqlxDB.Close()
		return nil, err
	}

	sqlxDB.SetMaxOpenConns(5)
	sqlxDB.SetMaxIdleConns(2)

	return sqlxDB, nil
}

// Migrate creates the schema and provisions the spot pool: car spots get
// ids 1..carSpots, bike spots follow. Existing spots are left untouched.
func Migrate(ctx context.Context, db *sqlx.DB, carSpots, bikeSpots int) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	query := `
		INSERT INTO parking (parking_number, available, type)
		VALUES ($1, TRUE, $2)
		ON CONFLICT (parking_number) DO NOTHING`

	id := 0
	provision := func(count int, vehicleType parking.VehicleType) error {
		for i := 0; i < count; i++ {
			id++
			if _, err := db.ExecContext(ctx, query, id, vehicleType.String()); err != nil {
				return fmt.Errorf("provision spot %d: %w", id, err)
			}
		}
		return nil
	}

	if err := provision(carSpots, parking.Car); err != nil {
		return err
	}
	return provision(bikeSpots, parking.Bike)
}
