package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func newMockSQLite(t *testing.T) (*SQLiteDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &SQLiteDB{db: db}, mock
}

func TestSQLiteGetStatsQueries(t *testing.T) {
	d, mock := newMockSQLite(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(fixes\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count", "fixes", "distance", "duration"}).
			AddRow(2, 10, 1500.5, 3600))
	mock.ExpectQuery(`FROM events GROUP BY category`).
		WillReturnRows(sqlmock.NewRows([]string{"category", "count"}).
			AddRow("pilot_event", 3).
			AddRow("other", 1))

	stats, err := d.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Flights != 2 || stats.Fixes != 10 || stats.TotalDistance != 1500.5 || stats.TotalDuration != 3600 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.ByCategory["pilot_event"] != 3 || stats.ByCategory["other"] != 1 {
		t.Errorf("categories = %v", stats.ByCategory)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSQLiteMockErrors(t *testing.T) {
	boom := errors.New("disk I/O error")

	tests := []struct {
		name         string
		setupMock    func(sqlmock.Sqlmock)
		run          func(*SQLiteDB) error
		errorPattern string
	}{
		{
			name: "stats totals fail",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT`).WillReturnError(boom)
			},
			run: func(d *SQLiteDB) error {
				_, err := d.GetStats(context.Background())
				return err
			},
			errorPattern: "disk I/O error",
		},
		{
			name: "list query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM flights`).WillReturnError(boom)
			},
			run: func(d *SQLiteDB) error {
				_, err := d.ListFlights(context.Background(), QueryParams{})
				return err
			},
			errorPattern: "query flights",
		},
		{
			name: "insert rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM fixes`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`DELETE FROM events`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`DELETE FROM flights`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`INSERT INTO flights`).WillReturnError(boom)
				mock.ExpectRollback()
			},
			run: func(d *SQLiteDB) error {
				return d.SaveFlight(context.Background(), FlightRecord{ID: uuid.New()})
			},
			errorPattern: "insert flight",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, mock := newMockSQLite(t)
			tt.setupMock(mock)

			err := tt.run(d)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errorPattern) {
				t.Errorf("Expected error containing %q, got %q", tt.errorPattern, err.Error())
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestSQLiteListFlightsQuery(t *testing.T) {
	d, mock := newMockSQLite(t)
	id := uuid.New()

	mock.ExpectQuery(`FROM flights WHERE pilot LIKE \? AND date >= \? ORDER BY date DESC, id LIMIT \? OFFSET \?`).
		WithArgs("%Jane%", "2001-01-01", 100, 0).
		WillReturnRows(sqlmock.NewRows(strings.Split(`id,manufacturer,serial,pilot,glider_id,date,start,end,fixes,distance_m,duration_s,max_speed`, ",")).
			AddRow(id.String(), "XXX", nil, "Jane Doe", nil, "2001-07-16", "2001-07-16T10:00:00Z", nil, 3, 1850.0, 120, 55.5))

	recs, err := d.ListFlights(context.Background(), QueryParams{Pilot: "Jane", DateFrom: "2001-01-01", OrderDesc: true})
	if err != nil {
		t.Fatalf("ListFlights: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec.ID != id || rec.Pilot != "Jane Doe" || rec.Serial != "" || rec.FixCount != 3 {
		t.Errorf("record = %+v", rec)
	}
	if rec.Start == nil || rec.Start.Hour() != 10 || rec.End != nil {
		t.Errorf("start/end = %v/%v", rec.Start, rec.End)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
