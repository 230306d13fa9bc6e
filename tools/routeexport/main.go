// Package main provides a tool to export declared task routes from the PostgreSQL database to CSV format.
// Each row is: flight_id,date,pilot,task_km,WP1,WP2,...
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"igc_parser/internal/igc"
	"igc_parser/internal/storage"
)

// RouteExport is the task route of one stored flight.
type RouteExport struct {
	FlightID  string
	Date      string
	Pilot     string
	Distance  *float64 // metres
	Waypoints []string // usable task waypoint names, in declared order
}

func main() {
	// PostgreSQL connection flags.
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "igc", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "", "PostgreSQL password")
	pgDB := flag.String("pg-db", "igc", "PostgreSQL database")

	output := flag.String("output", "", "Output CSV file (default: stdout)")
	limit := flag.Int("limit", 1000, "Maximum number of flights to inspect")
	header := flag.Bool("header", true, "Write a header row")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Parse()

	ctx := context.Background()

	pg, err := storage.OpenPostgres(ctx, storage.PostgresConfig{
		Host:     *pgHost,
		Port:     *pgPort,
		Database: *pgDB,
		User:     *pgUser,
		Password: *pgPassword,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	routes, err := getRoutes(ctx, pg, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying routes: %v\n", err)
		os.Exit(1)
	}

	if len(routes) == 0 {
		fmt.Fprintf(os.Stderr, "No flights with a declared task found\n")
		os.Exit(0)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Exporting %d routes to CSV\n", len(routes))
	}

	// Write output.
	var writer *csv.Writer
	if *output != "" {
		file, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating file: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = file.Close() }()
		writer = csv.NewWriter(file)
	} else {
		writer = csv.NewWriter(os.Stdout)
	}

	if *header {
		_ = writer.Write([]string{"flight_id", "date", "pilot", "task_km", "waypoints..."})
	}
	for _, route := range routes {
		if err := writer.Write(route.Row()); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing row: %v\n", err)
			os.Exit(1)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		fmt.Fprintf(os.Stderr, "Error flushing CSV: %v\n", err)
		os.Exit(1)
	}

	if *verbose && *output != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d routes to %s\n", len(routes), *output)
	}
}

// Row renders the CSV record.
func (r RouteExport) Row() []string {
	km := ""
	if r.Distance != nil {
		km = strconv.FormatFloat(*r.Distance/1000, 'f', 1, 64)
	}
	row := make([]string, 0, 4+len(r.Waypoints))
	row = append(row, r.FlightID, r.Date, r.Pilot, km)
	return append(row, r.Waypoints...)
}

// getRoutes decodes the stored flight documents and keeps those whose task
// has at least two usable waypoints.
func getRoutes(ctx context.Context, pg *storage.PostgresDB, limit int) ([]RouteExport, error) {
	recs, err := pg.ListFlights(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("querying flights: %w", err)
	}

	var routes []RouteExport
	for _, r := range recs {
		full, err := pg.GetFlight(ctx, r.ID)
		if err != nil || full == nil {
			continue
		}
		f, err := full.Flight()
		if err != nil {
			continue
		}
		route, ok := buildRoute(*full, f.Task)
		if ok {
			routes = append(routes, route)
		}
	}
	return routes, nil
}

func buildRoute(rec storage.FlightRecord, task *igc.Task) (RouteExport, bool) {
	if task == nil || len(task.Waypoints) < 2 {
		return RouteExport{}, false
	}
	names := make([]string, len(task.Waypoints))
	for i, wp := range task.Waypoints {
		names[i] = wp.Name
		if names[i] == "" {
			names[i] = wp.LatitudeRaw + wp.LongitudeRaw
		}
	}
	return RouteExport{
		FlightID:  rec.ID.String(),
		Date:      rec.Date,
		Pilot:     rec.Pilot,
		Distance:  task.Distance,
		Waypoints: names,
	}, true
}
