// Package main provides a tool to export stored flights from the PostgreSQL database to KML format.
// KML (Keyhole Markup Language) files can be viewed in Google Earth, Google Maps, and
// other mapping applications.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"igc_parser/internal/export"
	"igc_parser/internal/storage"
)

func main() {
	// PostgreSQL connection flags.
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "igc", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "", "PostgreSQL password")
	pgDB := flag.String("pg-db", "igc", "PostgreSQL database")

	output := flag.String("output", "", "Output KML file (default: stdout)")
	flightID := flag.String("id", "", "Export a single flight by ID")
	limit := flag.Int("limit", 100, "Maximum number of flights to export")
	showStats := flag.Bool("stats", false, "Show statistics only, don't export")
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

	// Show stats mode.
	if *showStats {
		showFlightStats(ctx, pg)
		return
	}

	var ids []uuid.UUID
	if *flightID != "" {
		id, err := uuid.Parse(*flightID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid flight ID: %v\n", err)
			os.Exit(1)
		}
		ids = append(ids, id)
	} else {
		recs, err := pg.ListFlights(ctx, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error querying flights: %v\n", err)
			os.Exit(1)
		}
		for _, r := range recs {
			ids = append(ids, r.ID)
		}
	}

	folders := loadFolders(ctx, pg, ids, *verbose)
	if len(folders) == 0 {
		fmt.Fprintf(os.Stderr, "No flights found matching criteria\n")
		os.Exit(0)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Exporting %d flights to KML\n", len(folders))
	}

	w := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating file: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := export.WriteKML(w, export.NewKML("IGC Flights", folders...)); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing KML: %v\n", err)
		os.Exit(1)
	}
	if *verbose && *output != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", *output)
	}
}

// loadFolders fetches each flight document and renders it. Flights that are
// missing or fail to decode are skipped.
func loadFolders(ctx context.Context, pg *storage.PostgresDB, ids []uuid.UUID, verbose bool) []export.Folder {
	folders := make([]export.Folder, 0, len(ids))
	for _, id := range ids {
		rec, err := pg.GetFlight(ctx, id)
		if err != nil || rec == nil {
			if verbose {
				fmt.Fprintf(os.Stderr, "Skipping %s: not found (%v)\n", id, err)
			}
			continue
		}
		f, err := rec.Flight()
		if err != nil {
			if verbose {
				fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", id, err)
			}
			continue
		}
		folders = append(folders, export.FlightFolder(folderName(*rec), f))
	}
	return folders
}

func folderName(rec storage.FlightRecord) string {
	name := rec.Date
	if rec.Pilot != "" {
		name += " " + rec.Pilot
	}
	if name == "" {
		name = rec.ID.String()
	}
	return name
}

// showFlightStats displays statistics about the flights in the database.
func showFlightStats(ctx context.Context, pg *storage.PostgresDB) {
	pool := pg.Pool()

	var total, fixes int
	var distance float64
	_ = pool.QueryRow(ctx, "SELECT COUNT(*), COALESCE(SUM(fixes), 0), COALESCE(SUM(distance_m), 0) FROM flights").Scan(&total, &fixes, &distance)

	var withTask int
	_ = pool.QueryRow(ctx, "SELECT COUNT(*) FROM flights WHERE raw_json ? 'task'").Scan(&withTask)

	fmt.Println("Flight Statistics")
	fmt.Println("─────────────────")
	fmt.Printf("Total flights:       %d\n", total)
	fmt.Printf("Total fixes:         %d\n", fixes)
	fmt.Printf("Total distance:      %.1f km\n", distance/1000)
	fmt.Printf("Flights with task:   %d\n", withTask)

	fmt.Println("\nTop 10 Pilots:")
	rows, err := pool.Query(ctx, `
		SELECT pilot, COUNT(*), COALESCE(SUM(distance_m), 0)
		FROM flights
		WHERE pilot <> ''
		GROUP BY pilot
		ORDER BY COUNT(*) DESC
		LIMIT 10
	`)
	if err == nil {
		defer rows.Close()
		fmt.Printf("%-30s %8s %12s\n", "Pilot", "Flights", "Distance km")
		for rows.Next() {
			var pilot string
			var cnt int
			var dist float64
			_ = rows.Scan(&pilot, &cnt, &dist)
			fmt.Printf("%-30s %8d %12.1f\n", pilot, cnt, dist/1000)
		}
	}
}
