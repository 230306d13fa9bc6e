package storage

import (
	"context"
	"fmt"
)

// Backend names accepted by OpenStore.
const (
	BackendSQLite     = "sqlite"
	BackendPostgres   = "postgres"
	BackendClickHouse = "clickhouse"
)

// Config holds connection settings for every backend.
type Config struct {
	SQLitePath string           `yaml:"sqlite_path"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Postgres   PostgresConfig   `yaml:"postgres"`
}

// DefaultConfig returns a configuration with default local development settings.
func DefaultConfig() Config {
	return Config{
		SQLitePath: "flights.db",
		ClickHouse: ClickHouseConfig{
			Host:     "localhost",
			Port:     9000,
			Database: "igc",
			User:     "default",
			Password: "",
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "igc",
			User:     "igc",
			Password: "igc",
		},
	}
}

// FlightStore is implemented by every backend.
type FlightStore interface {
	SaveFlight(ctx context.Context, rec FlightRecord) error
	Close() error
}

// OpenStore opens the named backend and makes sure its schema exists.
func OpenStore(ctx context.Context, backend string, cfg Config) (FlightStore, error) {
	switch backend {
	case BackendSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case BackendPostgres:
		pg, err := OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := pg.CreateSchema(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		return pgStore{pg}, nil
	case BackendClickHouse:
		ch, err := OpenClickHouse(ctx, cfg.ClickHouse)
		if err != nil {
			return nil, fmt.Errorf("clickhouse: %w", err)
		}
		if err := ch.CreateSchema(ctx); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		return ch, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}

// pgStore adapts PostgresDB, whose Close returns nothing, to FlightStore.
type pgStore struct {
	*PostgresDB
}

func (s pgStore) Close() error {
	s.PostgresDB.Close()
	return nil
}
