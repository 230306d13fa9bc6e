package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"igc_parser/internal/export"
	"igc_parser/internal/extract"
	"igc_parser/internal/flight"
	"igc_parser/internal/input"
	"igc_parser/internal/publish"
	"igc_parser/internal/storage"
)

func runParse(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	common := addCommonFlags(fs)
	inPath := fs.String("input", "", "Input IGC file (default: stdin)")
	outPath := fs.String("output", "", "Output JSON file (default: stdout)")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	raw := fs.Bool("raw", false, "Keep the source text of every fix")
	_ = fs.Parse(args)

	a := common.load()
	defer a.close()
	ctx, cancel := signalContext()
	defer cancel()

	opts := a.options()
	opts.WithRaw = opts.WithRaw || *raw
	f, _ := a.parseFile(ctx, *inPath, opts)

	w, done := createOutput(*outPath)
	if err := export.WriteJSON(w, f, *pretty); err != nil {
		fatalf("JSON encode error: %v", err)
	}
	done()
}

func runMetadata(args []string) {
	fs := flag.NewFlagSet("metadata", flag.ExitOnError)
	common := addCommonFlags(fs)
	inPath := fs.String("input", "", "Input IGC file (default: stdin)")
	pretty := fs.Bool("pretty", true, "Pretty-print JSON output")
	_ = fs.Parse(args)

	a := common.load()
	defer a.close()
	ctx, cancel := signalContext()
	defer cancel()

	f, _ := a.parseFile(ctx, *inPath, a.options())
	if err := export.WriteJSON(os.Stdout, f.Metadata(), *pretty); err != nil {
		fatalf("JSON encode error: %v", err)
	}
}

func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	common := addCommonFlags(fs)
	inPath := fs.String("input", "", "Input IGC file (default: stdin)")
	radius := fs.Float64("radius", 0, "Turnpoint radius in metres (default: configuration)")
	_ = fs.Parse(args)

	a := common.load()
	defer a.close()
	ctx, cancel := signalContext()
	defer cancel()

	opts := a.options()
	f, _ := a.parseFile(ctx, *inPath, opts)
	if *radius <= 0 {
		*radius = opts.TurnpointRadius
	}
	v := flight.ValidateTurnpoints(f, *radius)
	if v == nil {
		fmt.Fprintln(os.Stderr, "Nothing to validate: the log has no task or no fixes")
		os.Exit(1)
	}
	if err := export.WriteJSON(os.Stdout, v, true); err != nil {
		fatalf("JSON encode error: %v", err)
	}
	fmt.Fprintf(os.Stderr, "validated %d of %d turnpoints within %s m\n",
		v.Validated, len(v.Checks), humanize.Ftoa(v.Radius))
	if !v.Complete {
		os.Exit(3)
	}
}

func runSplit(args []string) {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	common := addCommonFlags(fs)
	inPath := fs.String("input", "", "Input IGC file (default: stdin)")
	dir := fs.String("dir", "", "Output directory")
	prefix := fs.String("prefix", "", "File name prefix")
	_ = fs.Parse(args)

	if *dir == "" {
		fatalf("-dir is required")
	}
	a := common.load()
	defer a.close()

	data, err := input.ReadFile(*inPath)
	if err != nil {
		fatalf("Failed to read input: %v", err)
	}
	groups, err := extract.Split(bytes.NewReader(data), extract.DirSink{Dir: *dir, Prefix: *prefix})
	if err != nil {
		fatalf("Split failed: %v", err)
	}
	for _, g := range groups {
		fmt.Printf("%-28s %s lines\n", *prefix+g.Name()+".txt", humanize.Comma(int64(len(g.Lines))))
	}
	a.log.Info("split log", "groups", len(groups), "dir", *dir)
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	common := addCommonFlags(fs)
	inPath := fs.String("input", "", "Input IGC file (default: stdin)")
	outPath := fs.String("output", "", "Output file (default: stdout)")
	format := fs.String("format", "geojson", "Output format: json, geojson or kml")
	name := fs.String("name", "", "Document name (default: input file name)")
	_ = fs.Parse(args)

	fmtName, err := export.ParseFormat(*format)
	if err != nil {
		fatalf("%v", err)
	}
	a := common.load()
	defer a.close()
	ctx, cancel := signalContext()
	defer cancel()

	f, _ := a.parseFile(ctx, *inPath, a.options())
	if *name == "" {
		*name = strings.TrimSuffix(filepath.Base(*inPath), filepath.Ext(*inPath))
		if *inPath == "" || *inPath == "-" {
			*name = "IGC flight"
		}
	}

	w, done := createOutput(*outPath)
	if err := export.Write(w, fmtName, f, *name); err != nil {
		fatalf("Export failed: %v", err)
	}
	done()
}

func runStore(args []string) {
	fs := flag.NewFlagSet("store", flag.ExitOnError)
	common := addCommonFlags(fs)
	inPath := fs.String("input", "", "Input IGC file (default: stdin)")
	backend := fs.String("backend", storage.BackendSQLite, "Storage backend: sqlite, postgres or clickhouse")
	_ = fs.Parse(args)

	a := common.load()
	defer a.close()
	ctx, cancel := signalContext()
	defer cancel()

	f, data := a.parseFile(ctx, *inPath, a.options())
	rec, err := storage.NewFlightRecord(f, data)
	if err != nil {
		fatalf("Failed to build record: %v", err)
	}

	store, err := storage.OpenStore(ctx, *backend, a.cfg.Storage)
	if err != nil {
		fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	if err := store.SaveFlight(ctx, rec); err != nil {
		fatalf("Failed to save flight: %v", err)
	}
	a.log.Info("stored flight", "id", rec.ID, "backend", *backend)
	fmt.Printf("%s  %s fixes  %s\n", rec.ID, humanize.Comma(int64(rec.FixCount)), humanize.Bytes(uint64(len(data))))
}

func runPublish(args []string) {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	common := addCommonFlags(fs)
	inPath := fs.String("input", "", "Input IGC file (default: stdin)")
	url := fs.String("nats", "", "NATS URL (default: configuration)")
	_ = fs.Parse(args)

	a := common.load()
	defer a.close()
	ctx, cancel := signalContext()
	defer cancel()

	f, data := a.parseFile(ctx, *inPath, a.options())

	cfg := a.cfg.NATS
	if *url != "" {
		cfg.URL = *url
	}
	client, err := publish.New(cfg)
	if err != nil {
		fatalf("Failed to connect to NATS: %v", err)
	}
	defer client.Close()

	id := storage.FlightID(data)
	if err := client.Publish(publish.NewSummary(id, *inPath, f)); err != nil {
		fatalf("Publish failed: %v", err)
	}
	a.log.Info("published flight", "id", id, "subject", cfg.Subject)
	fmt.Println(id)
}

func runTrace(args []string) {
	fs := flag.NewFlagSet("trace", flag.ExitOnError)
	common := addCommonFlags(fs)
	inPath := fs.String("input", "", "Input IGC file (default: stdin)")
	line := fs.Int("line", 0, "Line number to trace (1-based)")
	_ = fs.Parse(args)

	if *line < 1 {
		fatalf("-line must be at least 1")
	}
	a := common.load()
	defer a.close()
	ctx, cancel := signalContext()
	defer cancel()

	data, err := input.ReadFile(*inPath)
	if err != nil {
		fatalf("Failed to read input: %v", err)
	}
	trace, err := flight.TraceLine(ctx, data, *line, a.options())
	if err != nil {
		fatalf("Trace failed: %v", err)
	}

	fmt.Printf("Line %d [%s]: %s\n", *line, trace.Kind, trace.Line)
	for _, ft := range trace.Fields {
		status := "no match"
		switch {
		case ft.Invalid:
			status = "INVALID"
		case ft.Matched:
			status = "ok"
		}
		fmt.Printf("  %-20s %-8s cursor=%-3d %q\n", ft.ID, status, ft.Cursor, ft.Value)
		if ft.Pattern != "" {
			fmt.Printf("  %-20s pattern %s\n", "", ft.Pattern)
		}
	}
	if trace.Error != "" {
		fmt.Printf("Error: %s\n", trace.Error)
		os.Exit(1)
	}
}
