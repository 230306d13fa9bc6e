// Package main provides a corpus analyzer for IGC logs.
// It analyzes record kind distribution, parse coverage, failure classes and
// recorder manufacturers, and can test a regex against the lines of a kind.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"igc_parser/internal/flight"
	"igc_parser/internal/igc"
	"igc_parser/internal/input"
	"igc_parser/internal/storage"
)

// AnalysisReport is the full output of a corpus run.
type AnalysisReport struct {
	Summary          SummaryStats       `json:"summary"`
	KindDistribution []KindCount        `json:"kind_distribution"`
	Failures         []FailureCount     `json:"failures,omitempty"`
	Manufacturers    []ManufacturerStat `json:"manufacturers,omitempty"`
	Store            *storage.Stats     `json:"store,omitempty"`
	Analytics        *storage.CHStats   `json:"analytics,omitempty"`
}

type SummaryStats struct {
	Files         int     `json:"files"`
	Parsed        int     `json:"parsed"`
	Failed        int     `json:"failed"`
	ParseRate     float64 `json:"parse_rate"`
	Lines         int     `json:"lines"`
	Fixes         int     `json:"fixes"`
	RejectedFixes int     `json:"rejected_fixes"`
}

type KindCount struct {
	Kind  string  `json:"kind"`
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Pct   float64 `json:"pct"`
}

type FailureCount struct {
	Class   string   `json:"class"`
	Count   int      `json:"count"`
	Samples []string `json:"samples"`
}

type ManufacturerStat struct {
	Code     string `json:"code"`
	Name     string `json:"name,omitempty"`
	Approved bool   `json:"approved"`
	Count    int    `json:"count"`
}

func main() {
	dir := flag.String("dir", ".", "Directory of IGC logs")
	outputFormat := flag.String("format", "text", "Output format: text, json")
	topN := flag.Int("top", 20, "Show top N items in each category")
	dbPath := flag.String("db", "", "Also summarise this SQLite flight store")
	chHost := flag.String("clickhouse", "", "Also summarise the ClickHouse store on this host")
	kind := flag.String("kind", "", "Record kind for -test, e.g. B")
	testPattern := flag.String("test", "", "Test a regex pattern against the lines of -kind")

	flag.Parse()

	paths, err := listLogs(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing logs: %v\n", err)
		os.Exit(1)
	}

	// Pattern testing mode.
	if *testPattern != "" {
		if len(*kind) != 1 {
			fmt.Fprintf(os.Stderr, "Error: -test requires a single-letter -kind\n")
			os.Exit(1)
		}
		res, err := TestPattern(paths, *testPattern, igc.Kind((*kind)[0]))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		res.Print(os.Stdout)
		return
	}

	ctx := context.Background()
	report := analyze(ctx, paths, *topN)

	if *dbPath != "" {
		db, err := storage.OpenSQLite(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
		report.Store, err = db.GetStats(ctx)
		_ = db.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading store stats: %v\n", err)
		}
	}
	if *chHost != "" {
		cfg := storage.DefaultConfig().ClickHouse
		cfg.Host = *chHost
		ch, err := storage.OpenClickHouse(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to ClickHouse: %v\n", err)
			os.Exit(1)
		}
		report.Analytics, err = ch.GetStats(ctx)
		_ = ch.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading ClickHouse stats: %v\n", err)
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	default:
		printTextReport(report)
	}
}

func listLogs(dir string) ([]string, error) {
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

func analyze(ctx context.Context, paths []string, topN int) *AnalysisReport {
	report := &AnalysisReport{}
	kinds := make(map[igc.Kind]int)
	failures := make(map[string]*FailureCount)
	makers := make(map[string]*ManufacturerStat)

	for _, path := range paths {
		report.Summary.Files++
		data, err := input.ReadFile(path)
		if err != nil {
			addFailure(failures, "read", path, err)
			continue
		}
		for _, l := range flight.Lines(data) {
			kinds[l.Kind]++
			report.Summary.Lines++
		}

		f, err := flight.Parse(ctx, data, flight.Options{})
		if err != nil {
			addFailure(failures, failureClass(err), path, err)
			continue
		}
		report.Summary.Parsed++
		report.Summary.Fixes += len(f.Fixes)
		if f.Statistics != nil {
			report.Summary.RejectedFixes += f.Statistics.RejectedFixes
		}
		if id := f.Identification; id != nil {
			m, ok := makers[id.ManufacturerID]
			if !ok {
				m = &ManufacturerStat{Code: id.ManufacturerID, Name: id.ManufacturerName, Approved: id.Approved}
				makers[id.ManufacturerID] = m
			}
			m.Count++
		}
	}

	report.Summary.Failed = report.Summary.Files - report.Summary.Parsed
	if report.Summary.Files > 0 {
		report.Summary.ParseRate = float64(report.Summary.Parsed) / float64(report.Summary.Files) * 100
	}

	for k, n := range kinds {
		kc := KindCount{Kind: k.String(), Name: k.Name(), Count: n}
		if report.Summary.Lines > 0 {
			kc.Pct = float64(n) / float64(report.Summary.Lines) * 100
		}
		report.KindDistribution = append(report.KindDistribution, kc)
	}
	sort.Slice(report.KindDistribution, func(i, j int) bool {
		a, b := report.KindDistribution[i], report.KindDistribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Kind < b.Kind
	})

	for _, fc := range failures {
		report.Failures = append(report.Failures, *fc)
	}
	sort.Slice(report.Failures, func(i, j int) bool { return report.Failures[i].Count > report.Failures[j].Count })

	for _, m := range makers {
		report.Manufacturers = append(report.Manufacturers, *m)
	}
	sort.Slice(report.Manufacturers, func(i, j int) bool {
		a, b := report.Manufacturers[i], report.Manufacturers[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Code < b.Code
	})
	if len(report.Manufacturers) > topN {
		report.Manufacturers = report.Manufacturers[:topN]
	}
	return report
}

func failureClass(err error) string {
	var se *igc.StructuralError
	var fe *igc.FieldValidationError
	switch {
	case errors.As(err, &se):
		return "structural"
	case errors.As(err, &fe):
		return "validation:" + fe.Kind.String() + ":" + fe.Field
	case errors.Is(err, igc.ErrEmptyInput):
		return "empty"
	}
	return "other"
}

func addFailure(m map[string]*FailureCount, class, path string, err error) {
	fc, ok := m[class]
	if !ok {
		fc = &FailureCount{Class: class}
		m[class] = fc
	}
	fc.Count++
	if len(fc.Samples) < 3 {
		fc.Samples = append(fc.Samples, truncate(filepath.Base(path)+": "+err.Error(), 100))
	}
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func printTextReport(report *AnalysisReport) {
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("                     IGC CORPUS ANALYSIS")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()

	// Summary.
	fmt.Println("SUMMARY")
	fmt.Println("───────")
	s := report.Summary
	fmt.Printf("Total Logs:         %d\n", s.Files)
	fmt.Printf("Parsed:             %d (%.1f%%)\n", s.Parsed, s.ParseRate)
	fmt.Printf("Failed:             %d\n", s.Failed)
	fmt.Printf("Lines:              %d\n", s.Lines)
	fmt.Printf("Fixes:              %d\n", s.Fixes)
	fmt.Printf("Rejected Fixes:     %d\n", s.RejectedFixes)
	fmt.Println()

	fmt.Println("RECORD KINDS (Lines by leading character)")
	fmt.Println("────────────")
	fmt.Printf("%-6s %-28s %10s %8s\n", "Kind", "Name", "Count", "Pct")
	for _, kc := range report.KindDistribution {
		fmt.Printf("%-6s %-28s %10d %7.1f%%\n", kc.Kind, kc.Name, kc.Count, kc.Pct)
	}
	fmt.Println()

	if len(report.Failures) > 0 {
		fmt.Println("FAILURES (Logs by error class)")
		fmt.Println("────────")
		for _, fc := range report.Failures {
			fmt.Printf("%-30s %6d\n", fc.Class, fc.Count)
			for _, sample := range fc.Samples {
				fmt.Printf("    %s\n", sample)
			}
		}
		fmt.Println()
	}

	if len(report.Manufacturers) > 0 {
		fmt.Println("MANUFACTURERS")
		fmt.Println("─────────────")
		fmt.Printf("%-6s %-30s %-9s %6s\n", "Code", "Name", "Approved", "Logs")
		for _, m := range report.Manufacturers {
			approved := ""
			if m.Approved {
				approved = "Yes"
			}
			fmt.Printf("%-6s %-30s %-9s %6d\n", m.Code, m.Name, approved, m.Count)
		}
		fmt.Println()
	}

	if st := report.Store; st != nil {
		fmt.Println("SQLITE STORE")
		fmt.Println("────────────")
		fmt.Printf("Flights:            %d\n", st.Flights)
		fmt.Printf("Fixes:              %d\n", st.Fixes)
		fmt.Printf("Distance:           %.1f km\n", st.TotalDistance/1000)
		printCategories(st.ByCategory)
	}
	if ch := report.Analytics; ch != nil {
		fmt.Println("CLICKHOUSE STORE")
		fmt.Println("────────────────")
		fmt.Printf("Flights:            %d\n", ch.Flights)
		fmt.Printf("Fixes:              %d\n", ch.Fixes)
		fmt.Printf("Max Speed:          %.1f km/h\n", ch.MaxSpeed)
		cats := make(map[string]int, len(ch.ByCategory))
		for k, v := range ch.ByCategory {
			cats[k] = int(v)
		}
		printCategories(cats)
	}
}

func printCategories(byCategory map[string]int) {
	cats := make([]string, 0, len(byCategory))
	for c := range byCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Printf("  %-20s %8d\n", c, byCategory[c])
	}
	fmt.Println()
}
