package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"igc_parser/internal/flight"
	"igc_parser/internal/input"
	"igc_parser/internal/storage"
)

// batchResult is one row of the batch summary.
type batchResult struct {
	Path     string
	Size     int64
	Fixes    int
	Rejected int
	Distance float64 // metres
	Duration int     // seconds
	Err      error
}

func runBatch(args []string) {
	flags := flag.NewFlagSet("batch", flag.ExitOnError)
	common := addCommonFlags(flags)
	dir := flags.String("dir", "", "Directory of IGC logs (searched recursively)")
	workers := flags.Int("workers", 0, "Concurrent parses (default: configuration)")
	backend := flags.String("backend", "", "Also store every flight: sqlite, postgres or clickhouse")
	_ = flags.Parse(args)

	if *dir == "" {
		fatalf("-dir is required")
	}
	a := common.load()
	defer a.close()
	ctx, cancel := signalContext()
	defer cancel()

	if *workers <= 0 {
		*workers = a.cfg.Batch.Workers
	}

	paths, err := findLogs(*dir)
	if err != nil {
		fatalf("Failed to list %s: %v", *dir, err)
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "No IGC logs found in %s\n", *dir)
		return
	}

	var store storage.FlightStore
	if *backend != "" {
		store, err = storage.OpenStore(ctx, *backend, a.cfg.Storage)
		if err != nil {
			fatalf("Failed to open store: %v", err)
		}
		defer store.Close()
	}

	start := time.Now()
	a.log.Info("batch started", slog.Int("logs", len(paths)), slog.Int("workers", *workers))
	results, err := parseAll(ctx, paths, *workers, a.options(), store)
	if err != nil {
		fatalf("Batch aborted: %v", err)
	}
	failed := printSummary(results, start)
	a.log.Info("batch finished", slog.Int("logs", len(results)), slog.Int("failed", failed))
	if failed > 0 {
		os.Exit(1)
	}
}

func findLogs(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && input.IsLogFile(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	sort.Strings(paths)
	return paths, err
}

// parseAll parses every path with at most workers in flight. A bad log is
// recorded in its result; only cancellation stops the batch.
func parseAll(ctx context.Context, paths []string, workers int, opts flight.Options, store storage.FlightStore) ([]batchResult, error) {
	results := make([]batchResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = parseOne(ctx, path, opts, store)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func parseOne(ctx context.Context, path string, opts flight.Options, store storage.FlightStore) batchResult {
	res := batchResult{Path: path}
	if st, err := os.Stat(path); err == nil {
		res.Size = st.Size()
	}

	data, err := input.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	f, err := flight.Parse(ctx, data, opts)
	if err != nil {
		res.Err = fmt.Errorf("%s", describe(err))
		return res
	}
	res.Fixes = len(f.Fixes)
	if s := f.Statistics; s != nil {
		res.Rejected = s.RejectedFixes
		res.Distance = s.TotalDistance
		res.Duration = s.Duration
	}

	if store != nil {
		rec, err := storage.NewFlightRecord(f, data)
		if err == nil {
			err = store.SaveFlight(ctx, rec)
		}
		if err != nil {
			res.Err = fmt.Errorf("store: %w", err)
		}
	}
	return res
}

func printSummary(results []batchResult, start time.Time) int {
	var failed, fixes int
	var distance float64
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Printf("FAIL  %-40s %v\n", r.Path, r.Err)
			continue
		}
		fixes += r.Fixes
		distance += r.Distance
		fmt.Printf("ok    %-40s %8s %8s fixes %6d rejected %10s km %8s\n",
			r.Path,
			humanize.Bytes(uint64(r.Size)),
			humanize.Comma(int64(r.Fixes)),
			r.Rejected,
			humanize.CommafWithDigits(r.Distance/1000, 1),
			(time.Duration(r.Duration) * time.Second).String())
	}
	fmt.Printf("\n%d logs, %d failed, %s fixes, %s km, started %s\n",
		len(results), failed,
		humanize.Comma(int64(fixes)),
		humanize.CommafWithDigits(distance/1000, 1),
		humanize.Time(start))
	return failed
}
