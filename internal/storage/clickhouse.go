// Package storage persists parsed flights: SQLite for local use, PostgreSQL
// as the shared store and ClickHouse as the fix analytics sink.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// ClickHouseDB wraps a ClickHouse connection for flight analytics.
type ClickHouseDB struct {
	conn driver.Conn
}

// Conn returns the underlying ClickHouse connection for direct queries.
func (d *ClickHouseDB) Conn() driver.Conn {
	return d.conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	// Test the connection.
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the ClickHouse tables. Flights are replaced by ID;
// fixes and events are append-only and deduplicated on merge.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS flights (
			id              UUID,
			manufacturer    LowCardinality(String),
			serial          String,
			pilot           String,
			glider_id       LowCardinality(String),
			date            Nullable(Date),
			"start"         Nullable(DateTime64(3)),
			"end"           Nullable(DateTime64(3)),
			fixes           UInt32,
			distance_m      Float64,
			duration_s      UInt32,
			max_speed       Float64,
			raw_json        String,
			inserted_at     DateTime64(3) DEFAULT now64(3)
		)
		ENGINE = ReplacingMergeTree(inserted_at)
		ORDER BY id`,

		`CREATE TABLE IF NOT EXISTS fixes (
			flight_id       UUID,
			seq             UInt32,
			ts              DateTime64(3),
			lat             Float64,
			lon             Float64,
			pressure_alt    Int32,
			gnss_alt        Int32,
			speed           Float64
		)
		ENGINE = ReplacingMergeTree()
		PARTITION BY toYYYYMM(ts)
		ORDER BY (flight_id, seq)
		SETTINGS index_granularity = 8192`,

		`CREATE TABLE IF NOT EXISTS events (
			flight_id       UUID,
			seq             UInt32,
			ts              Nullable(DateTime64(3)),
			code            LowCardinality(String),
			category        LowCardinality(String),
			data            String
		)
		ENGINE = ReplacingMergeTree()
		ORDER BY (flight_id, seq)`,
	}

	for _, q := range queries {
		if err := d.conn.Exec(ctx, q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func chDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	return &t
}

// SaveFlight inserts the flight row and batch-inserts its fixes and events.
func (d *ClickHouseDB) SaveFlight(ctx context.Context, rec FlightRecord) error {
	err := d.conn.Exec(ctx, `
		INSERT INTO flights (id, manufacturer, serial, pilot, glider_id, date, "start", "end", fixes, distance_m, duration_s, max_speed, raw_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Manufacturer, rec.Serial, rec.Pilot, rec.GliderID, chDate(rec.Date), rec.Start, rec.End,
		uint32(rec.FixCount), rec.DistanceM, uint32(rec.DurationS), rec.MaxSpeed, rec.RawJSON)
	if err != nil {
		return fmt.Errorf("insert flight: %w", err)
	}

	if err := d.insertFixes(ctx, rec); err != nil {
		return err
	}
	return d.insertEvents(ctx, rec)
}

func (d *ClickHouseDB) insertFixes(ctx context.Context, rec FlightRecord) error {
	if len(rec.Fixes) == 0 {
		return nil
	}

	batch, err := d.conn.PrepareBatch(ctx, `INSERT INTO fixes (flight_id, seq, ts, lat, lon, pressure_alt, gnss_alt, speed)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	for _, fx := range rec.Fixes {
		err := batch.Append(rec.ID, uint32(fx.Seq), fx.Timestamp, fx.Latitude, fx.Longitude, int32(fx.PressureAlt), int32(fx.GNSSAlt), fx.Speed)
		if err != nil {
			return fmt.Errorf("append fix %d: %w", fx.Seq, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send fixes: %w", err)
	}
	return nil
}

func (d *ClickHouseDB) insertEvents(ctx context.Context, rec FlightRecord) error {
	if len(rec.Events) == 0 {
		return nil
	}

	batch, err := d.conn.PrepareBatch(ctx, `INSERT INTO events (flight_id, seq, ts, code, category, data)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	for _, ev := range rec.Events {
		if err := batch.Append(rec.ID, uint32(ev.Seq), ev.Timestamp, ev.Code, ev.Category, ev.Data); err != nil {
			return fmt.Errorf("append event %d: %w", ev.Seq, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send events: %w", err)
	}
	return nil
}

// CHStats summarises the fixes table.
type CHStats struct {
	Flights    uint64
	Fixes      uint64
	MaxSpeed   float64
	ByCategory map[string]uint64
}

// GetStats returns counts over the stored flights, fixes and events.
func (d *ClickHouseDB) GetStats(ctx context.Context) (*CHStats, error) {
	stats := &CHStats{ByCategory: make(map[string]uint64)}

	row := d.conn.QueryRow(ctx, "SELECT uniqExact(flight_id), count(), max(speed) FROM fixes")
	if err := row.Scan(&stats.Flights, &stats.Fixes, &stats.MaxSpeed); err != nil {
		return nil, fmt.Errorf("fix stats: %w", err)
	}

	rows, err := d.conn.Query(ctx, "SELECT category, count() FROM events GROUP BY category ORDER BY count() DESC")
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		var count uint64
		if err := rows.Scan(&cat, &count); err != nil {
			return nil, fmt.Errorf("scan event stats: %w", err)
		}
		stats.ByCategory[cat] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return stats, nil
}
