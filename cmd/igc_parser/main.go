// Command-line entry point for the IGC parser.
//
// Every command reads one log (plain, gzip or zstd; "-" or no -input reads
// stdin) except batch, which walks a directory. Settings come from the
// optional -config YAML file, a .env file and IGC_* environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"igc_parser/internal/config"
	"igc_parser/internal/flight"
	"igc_parser/internal/igc"
	"igc_parser/internal/input"
	"igc_parser/internal/logging"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "igc_parser - commands:")
	fmt.Fprintln(w, "  parse     - parse a log and output the flight as JSON")
	fmt.Fprintln(w, "  metadata  - output identification, header, task and statistics only")
	fmt.Fprintln(w, "  validate  - check the task turnpoints against the track")
	fmt.Fprintln(w, "  split     - write the lines of each record kind to its own file")
	fmt.Fprintln(w, "  export    - write the track as json, geojson or kml")
	fmt.Fprintln(w, "  store     - save the flight to sqlite, postgres or clickhouse")
	fmt.Fprintln(w, "  publish   - publish a flight summary to NATS JetStream")
	fmt.Fprintln(w, "  batch     - parse every log in a directory")
	fmt.Fprintln(w, "  trace     - show how one line is extracted")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  igc_parser parse -input flight.igc [-output out.json] [-pretty] [-raw]")
	fmt.Fprintln(w, "  igc_parser metadata -input flight.igc [-pretty]")
	fmt.Fprintln(w, "  igc_parser validate -input flight.igc [-radius 500]")
	fmt.Fprintln(w, "  igc_parser split -input flight.igc -dir out/ [-prefix name_]")
	fmt.Fprintln(w, "  igc_parser export -input flight.igc -format geojson|kml|json [-output file]")
	fmt.Fprintln(w, "  igc_parser store -input flight.igc [-backend sqlite|postgres|clickhouse]")
	fmt.Fprintln(w, "  igc_parser publish -input flight.igc")
	fmt.Fprintln(w, "  igc_parser batch -dir logs/ [-workers 4] [-backend sqlite]")
	fmt.Fprintln(w, "  igc_parser trace -input flight.igc -line 12")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Common flags:")
	fmt.Fprintln(w, "  -config igc.yaml   configuration file")
	fmt.Fprintln(w, "  -log-level level   debug, info, warn or error")
	fmt.Fprintln(w, "")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := strings.ToLower(os.Args[1])
	args := os.Args[2:]
	switch cmd {
	case "parse":
		runParse(args)
	case "metadata":
		runMetadata(args)
	case "validate":
		runValidate(args)
	case "split":
		runSplit(args)
	case "export":
		runExport(args)
	case "store":
		runStore(args)
	case "publish":
		runPublish(args)
	case "batch":
		runBatch(args)
	case "trace":
		runTrace(args)
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

// app holds what every command needs after flag parsing.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	closer io.Closer
}

type commonFlags struct {
	config   *string
	logLevel *string
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config:   fs.String("config", "", "YAML configuration file"),
		logLevel: fs.String("log-level", "", "Log level (overrides configuration)"),
	}
}

func (c commonFlags) load() *app {
	cfg, err := config.Load(*c.config)
	if err != nil {
		fatalf("Failed to load configuration: %v", err)
	}
	if *c.logLevel != "" {
		cfg.Log.Level = *c.logLevel
	}
	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		fatalf("Failed to set up logging: %v", err)
	}
	return &app{cfg: cfg, log: log, closer: closer}
}

func (a *app) close() {
	_ = a.closer.Close()
}

func (a *app) options() flight.Options {
	opts, err := a.cfg.ParseOptions(a.log)
	if err != nil {
		fatalf("Invalid parse options: %v", err)
	}
	return opts
}

// parseFile reads and parses path, exiting on failure.
func (a *app) parseFile(ctx context.Context, path string, opts flight.Options) (*igc.Flight, []byte) {
	data, err := input.ReadFile(path)
	if err != nil {
		fatalf("Failed to read input: %v", err)
	}
	f, err := flight.Parse(ctx, data, opts)
	if err != nil {
		a.log.Error("parse failed", slog.String("input", path), slog.Any("error", err))
		fatalf("Parse error: %s", describe(err))
	}
	a.log.Info("parsed flight",
		slog.String("input", path),
		slog.Int("fixes", len(f.Fixes)),
		slog.Int("lines", f.Lines))
	return f, data
}

// describe adds the error class to the message.
func describe(err error) string {
	var se *igc.StructuralError
	var fe *igc.FieldValidationError
	switch {
	case errors.As(err, &se):
		return "structural: " + err.Error()
	case errors.As(err, &fe):
		return "validation: " + err.Error()
	case errors.Is(err, igc.ErrEmptyInput):
		return "empty: " + err.Error()
	}
	return err.Error()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func createOutput(path string) (io.Writer, func()) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		fatalf("Failed to create output: %v", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			fatalf("Failed to close output: %v", err)
		}
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
