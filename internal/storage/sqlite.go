package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteDB is the local flight store.
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection and SQLite has a single writer.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (d *SQLiteDB) Close() error {
	return d.db.Close()
}

func createSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS flights (
		id TEXT PRIMARY KEY,
		manufacturer TEXT,
		serial TEXT,
		pilot TEXT,
		glider_id TEXT,
		date TEXT,
		"start" TEXT,
		"end" TEXT,
		fixes INTEGER NOT NULL,
		distance_m REAL NOT NULL,
		duration_s INTEGER NOT NULL,
		max_speed REAL NOT NULL,
		raw_json TEXT NOT NULL,
		created_at TEXT DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_flights_date ON flights(date);
	CREATE INDEX IF NOT EXISTS idx_flights_pilot ON flights(pilot);

	CREATE TABLE IF NOT EXISTS fixes (
		flight_id TEXT NOT NULL REFERENCES flights(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		ts TEXT NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		pressure_alt INTEGER NOT NULL,
		gnss_alt INTEGER NOT NULL,
		speed REAL NOT NULL,
		PRIMARY KEY (flight_id, seq)
	);

	CREATE TABLE IF NOT EXISTS events (
		flight_id TEXT NOT NULL REFERENCES flights(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		ts TEXT,
		code TEXT NOT NULL,
		category TEXT NOT NULL,
		data TEXT,
		PRIMARY KEY (flight_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
	`

	_, err := db.Exec(schema)
	return err
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// SaveFlight stores a flight with its fixes and events, replacing any
// earlier copy with the same ID.
func (d *SQLiteDB) SaveFlight(ctx context.Context, rec FlightRecord) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id := rec.ID.String()
	for _, table := range []string{"fixes", "events"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE flight_id = ?`, id); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM flights WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete flight: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO flights (id, manufacturer, serial, pilot, glider_id, date, "start", "end", fixes, distance_m, duration_s, max_speed, raw_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, rec.Manufacturer, rec.Serial, rec.Pilot, rec.GliderID, rec.Date, formatTime(rec.Start), formatTime(rec.End),
		rec.FixCount, rec.DistanceM, rec.DurationS, rec.MaxSpeed, rec.RawJSON)
	if err != nil {
		return fmt.Errorf("insert flight: %w", err)
	}

	fixStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fixes (flight_id, seq, ts, lat, lon, pressure_alt, gnss_alt, speed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare fixes: %w", err)
	}
	defer func() { _ = fixStmt.Close() }()
	for _, fx := range rec.Fixes {
		ts := fx.Timestamp
		if _, err := fixStmt.ExecContext(ctx, id, fx.Seq, formatTime(&ts), fx.Latitude, fx.Longitude, fx.PressureAlt, fx.GNSSAlt, fx.Speed); err != nil {
			return fmt.Errorf("insert fix %d: %w", fx.Seq, err)
		}
	}

	for _, ev := range rec.Events {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (flight_id, seq, ts, code, category, data)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, ev.Seq, formatTime(ev.Timestamp), ev.Code, ev.Category, ev.Data)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", ev.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// QueryParams contains filtering options for listing flights.
type QueryParams struct {
	Pilot     string // LIKE match.
	GliderID  string // Exact match.
	DateFrom  string // YYYY-MM-DD, inclusive.
	DateTo    string // YYYY-MM-DD, inclusive.
	Limit     int    // Max results (default 100).
	Offset    int
	OrderDesc bool // Newest first.
}

const flightColumns = `id, manufacturer, serial, pilot, glider_id, date, "start", "end", fixes, distance_m, duration_s, max_speed`

// ListFlights returns flights without their JSON document or child rows.
func (d *SQLiteDB) ListFlights(ctx context.Context, p QueryParams) ([]FlightRecord, error) {
	var conditions []string
	var args []any

	if p.Pilot != "" {
		conditions = append(conditions, "pilot LIKE ?")
		args = append(args, "%"+p.Pilot+"%")
	}
	if p.GliderID != "" {
		conditions = append(conditions, "glider_id = ?")
		args = append(args, p.GliderID)
	}
	if p.DateFrom != "" {
		conditions = append(conditions, "date >= ?")
		args = append(args, p.DateFrom)
	}
	if p.DateTo != "" {
		conditions = append(conditions, "date <= ?")
		args = append(args, p.DateTo)
	}

	query := `SELECT ` + flightColumns + ` FROM flights`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date"
	if p.OrderDesc {
		query += " DESC"
	}
	query += ", id"

	limit := p.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, p.Offset)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query flights: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []FlightRecord
	for rows.Next() {
		rec, err := scanSQLiteFlight(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanSQLiteFlight(scan func(dest ...any) error, extra ...any) (FlightRecord, error) {
	var (
		rec        FlightRecord
		id         string
		start, end sql.NullString
		nullable   [5]sql.NullString
	)
	dest := []any{&id, &nullable[0], &nullable[1], &nullable[2], &nullable[3], &nullable[4], &start, &end,
		&rec.FixCount, &rec.DistanceM, &rec.DurationS, &rec.MaxSpeed}
	if err := scan(append(dest, extra...)...); err != nil {
		return rec, fmt.Errorf("scan flight: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return rec, fmt.Errorf("flight id %q: %w", id, err)
	}
	rec.ID = parsed
	rec.Manufacturer = nullable[0].String
	rec.Serial = nullable[1].String
	rec.Pilot = nullable[2].String
	rec.GliderID = nullable[3].String
	rec.Date = nullable[4].String
	rec.Start, rec.End = parseTime(start), parseTime(end)
	return rec, nil
}

// GetFlight returns a flight with its JSON document, fixes and events. It
// returns nil when the ID is unknown.
func (d *SQLiteDB) GetFlight(ctx context.Context, id uuid.UUID) (*FlightRecord, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+flightColumns+`, raw_json FROM flights WHERE id = ?`, id.String())
	var raw string
	rec, err := scanSQLiteFlight(row.Scan, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec.RawJSON = raw

	if rec.Fixes, err = d.fixes(ctx, id); err != nil {
		return nil, err
	}
	if rec.Events, err = d.events(ctx, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (d *SQLiteDB) fixes(ctx context.Context, id uuid.UUID) ([]FixRow, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT seq, ts, lat, lon, pressure_alt, gnss_alt, speed
		FROM fixes WHERE flight_id = ? ORDER BY seq
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("query fixes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []FixRow
	for rows.Next() {
		var (
			fx FixRow
			ts sql.NullString
		)
		if err := rows.Scan(&fx.Seq, &ts, &fx.Latitude, &fx.Longitude, &fx.PressureAlt, &fx.GNSSAlt, &fx.Speed); err != nil {
			return nil, fmt.Errorf("scan fix: %w", err)
		}
		if t := parseTime(ts); t != nil {
			fx.Timestamp = *t
		}
		out = append(out, fx)
	}
	return out, rows.Err()
}

func (d *SQLiteDB) events(ctx context.Context, id uuid.UUID) ([]EventRow, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT seq, ts, code, category, data
		FROM events WHERE flight_id = ? ORDER BY seq
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []EventRow
	for rows.Next() {
		var (
			ev   EventRow
			ts   sql.NullString
			data sql.NullString
		)
		if err := rows.Scan(&ev.Seq, &ts, &ev.Code, &ev.Category, &data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Timestamp = parseTime(ts)
		ev.Data = data.String
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Stats contains summary statistics about stored flights.
type Stats struct {
	Flights       int
	Fixes         int
	TotalDistance float64 // metres
	TotalDuration int     // seconds
	ByCategory    map[string]int
}

// GetStats returns statistics about the stored flights.
func (d *SQLiteDB) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByCategory: make(map[string]int)}

	row := d.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(fixes), 0), COALESCE(SUM(distance_m), 0), COALESCE(SUM(duration_s), 0) FROM flights`)
	if err := row.Scan(&stats.Flights, &stats.Fixes, &stats.TotalDistance, &stats.TotalDuration); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, "SELECT category, COUNT(*) FROM events GROUP BY category ORDER BY COUNT(*) DESC")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var cat string
		var count int
		if err := rows.Scan(&cat, &count); err != nil {
			_ = rows.Close()
			return nil, err
		}
		stats.ByCategory[cat] = count
	}
	_ = rows.Close()

	return stats, nil
}
