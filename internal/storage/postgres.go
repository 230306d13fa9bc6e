package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// DSN renders the connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// PostgresDB wraps a PostgreSQL connection pool for flight storage.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresDB, error) {
	return OpenPostgresDSN(ctx, cfg.DSN())
}

// OpenPostgresDSN opens a connection pool from a connection string.
func OpenPostgresDSN(ctx context.Context, connStr string) (*PostgresDB, error) {
	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Test the connection.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the PostgreSQL connection pool.
func (d *PostgresDB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pool for direct queries.
func (d *PostgresDB) Pool() *pgxpool.Pool {
	return d.pool
}

// CreateSchema creates the PostgreSQL tables.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS flights (
		id              UUID PRIMARY KEY,
		manufacturer    TEXT,
		serial          TEXT,
		pilot           TEXT,
		glider_id       TEXT,
		date            DATE,
		"start"         TIMESTAMPTZ,
		"end"           TIMESTAMPTZ,
		fixes           INTEGER NOT NULL,
		distance_m      DOUBLE PRECISION NOT NULL,
		duration_s      INTEGER NOT NULL,
		max_speed       DOUBLE PRECISION NOT NULL,
		raw_json        JSONB NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_flights_date ON flights(date);
	CREATE INDEX IF NOT EXISTS idx_flights_pilot ON flights(pilot);

	CREATE TABLE IF NOT EXISTS fixes (
		flight_id       UUID NOT NULL REFERENCES flights(id) ON DELETE CASCADE,
		seq             INTEGER NOT NULL,
		ts              TIMESTAMPTZ NOT NULL,
		lat             DOUBLE PRECISION NOT NULL,
		lon             DOUBLE PRECISION NOT NULL,
		pressure_alt    INTEGER NOT NULL,
		gnss_alt        INTEGER NOT NULL,
		speed           DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (flight_id, seq)
	);

	CREATE TABLE IF NOT EXISTS events (
		flight_id       UUID NOT NULL REFERENCES flights(id) ON DELETE CASCADE,
		seq             INTEGER NOT NULL,
		ts              TIMESTAMPTZ,
		code            TEXT NOT NULL,
		category        TEXT NOT NULL,
		data            TEXT,
		PRIMARY KEY (flight_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
	`

	_, err := d.pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func nullDate(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// SaveFlight replaces the flight and bulk-loads its fixes and events with
// COPY.
func (d *PostgresDB) SaveFlight(ctx context.Context, rec FlightRecord) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM flights WHERE id = $1`, rec.ID); err != nil {
		return fmt.Errorf("delete flight: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO flights (id, manufacturer, serial, pilot, glider_id, date, "start", "end", fixes, distance_m, duration_s, max_speed, raw_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, rec.ID, rec.Manufacturer, rec.Serial, rec.Pilot, rec.GliderID, nullDate(rec.Date), rec.Start, rec.End,
		rec.FixCount, rec.DistanceM, rec.DurationS, rec.MaxSpeed, rec.RawJSON)
	if err != nil {
		return fmt.Errorf("insert flight: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"fixes"},
		[]string{"flight_id", "seq", "ts", "lat", "lon", "pressure_alt", "gnss_alt", "speed"},
		pgx.CopyFromSlice(len(rec.Fixes), func(i int) ([]any, error) {
			fx := rec.Fixes[i]
			return []any{rec.ID, fx.Seq, fx.Timestamp, fx.Latitude, fx.Longitude, fx.PressureAlt, fx.GNSSAlt, fx.Speed}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy fixes: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"events"},
		[]string{"flight_id", "seq", "ts", "code", "category", "data"},
		pgx.CopyFromSlice(len(rec.Events), func(i int) ([]any, error) {
			ev := rec.Events[i]
			return []any{rec.ID, ev.Seq, ev.Timestamp, ev.Code, ev.Category, ev.Data}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy events: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const pgFlightColumns = `id, COALESCE(manufacturer, ''), COALESCE(serial, ''), COALESCE(pilot, ''), COALESCE(glider_id, ''),
	COALESCE(to_char(date, 'YYYY-MM-DD'), ''), "start", "end", fixes, distance_m, duration_s, max_speed`

func scanPostgresFlight(row pgx.Row, extra ...any) (FlightRecord, error) {
	var rec FlightRecord
	dest := []any{&rec.ID, &rec.Manufacturer, &rec.Serial, &rec.Pilot, &rec.GliderID, &rec.Date,
		&rec.Start, &rec.End, &rec.FixCount, &rec.DistanceM, &rec.DurationS, &rec.MaxSpeed}
	err := row.Scan(append(dest, extra...)...)
	return rec, err
}

// ListFlights returns the most recent flights without child rows.
func (d *PostgresDB) ListFlights(ctx context.Context, limit int) ([]FlightRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.pool.Query(ctx, `
		SELECT `+pgFlightColumns+`
		FROM flights
		ORDER BY date DESC NULLS LAST, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query flights: %w", err)
	}
	defer rows.Close()

	var out []FlightRecord
	for rows.Next() {
		rec, err := scanPostgresFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetFlight returns a flight with its JSON document and fixes, or nil when
// the ID is unknown.
func (d *PostgresDB) GetFlight(ctx context.Context, id uuid.UUID) (*FlightRecord, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+pgFlightColumns+`, raw_json::text FROM flights WHERE id = $1`, id)
	var raw string
	rec, err := scanPostgresFlight(row, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get flight: %w", err)
	}
	rec.RawJSON = raw

	if rec.Fixes, err = d.Fixes(ctx, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Fixes returns the track of a flight in order.
func (d *PostgresDB) Fixes(ctx context.Context, id uuid.UUID) ([]FixRow, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT seq, ts, lat, lon, pressure_alt, gnss_alt, speed
		FROM fixes WHERE flight_id = $1 ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query fixes: %w", err)
	}
	defer rows.Close()

	var out []FixRow
	for rows.Next() {
		var fx FixRow
		if err := rows.Scan(&fx.Seq, &fx.Timestamp, &fx.Latitude, &fx.Longitude, &fx.PressureAlt, &fx.GNSSAlt, &fx.Speed); err != nil {
			return nil, fmt.Errorf("scan fix: %w", err)
		}
		out = append(out, fx)
	}
	return out, rows.Err()
}
