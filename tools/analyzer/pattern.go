package main

import (
	"fmt"
	"io"
	"regexp"

	"igc_parser/internal/flight"
	"igc_parser/internal/igc"
	"igc_parser/internal/input"
)

// PatternResult is the outcome of TestPattern.
type PatternResult struct {
	Pattern          string
	Kind             igc.Kind
	Matches          int
	Total            int
	SampleMatches    []string
	SampleNonMatches []string
}

// TestPattern runs pattern against every line of kind in the given logs.
// Unreadable logs are skipped.
func TestPattern(paths []string, pattern string, kind igc.Kind) (*PatternResult, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	res := &PatternResult{Pattern: pattern, Kind: kind}
	for _, path := range paths {
		data, err := input.ReadFile(path)
		if err != nil {
			continue
		}
		for _, l := range flight.Lines(data) {
			if l.Kind != kind {
				continue
			}
			res.Total++
			if re.MatchString(l.Text) {
				res.Matches++
				if len(res.SampleMatches) < 5 {
					res.SampleMatches = append(res.SampleMatches, l.Text)
				}
			} else if len(res.SampleNonMatches) < 5 {
				res.SampleNonMatches = append(res.SampleNonMatches, l.Text)
			}
		}
	}
	return res, nil
}

func (r *PatternResult) Print(w io.Writer) {
	fmt.Fprintf(w, "Pattern: %s\n", r.Pattern)
	fmt.Fprintf(w, "Kind: %s (%s)\n", r.Kind, r.Kind.Name())
	pct := 0.0
	if r.Total > 0 {
		pct = float64(r.Matches) / float64(r.Total) * 100
	}
	fmt.Fprintf(w, "Result: %d/%d match (%.1f%%)\n\n", r.Matches, r.Total, pct)

	if len(r.SampleMatches) > 0 {
		fmt.Fprintln(w, "Sample matches:")
		for _, s := range r.SampleMatches {
			fmt.Fprintf(w, "  %s\n", s)
		}
	}
	if len(r.SampleNonMatches) > 0 {
		fmt.Fprintln(w, "Sample non-matches:")
		for _, s := range r.SampleNonMatches {
			fmt.Fprintf(w, "  %s\n", s)
		}
	}
}
