// Package flight turns an IGC log into an igc.Flight: it dispatches each
// line to its record parser, folds the records into the aggregate and runs
// the finalizers.
package flight

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"igc_parser/internal/igc"

	// Register every record parser.
	_ "igc_parser/internal/records"
)

// Line is one non-blank input line.
type Line struct {
	Number int // 1-based, counting blank lines
	Text   string
	Kind   igc.Kind
	Known  bool
}

// ClassifyLine trims line and reports its record kind. Blank lines return
// ok=false.
func ClassifyLine(line string) (text string, kind igc.Kind, known, ok bool) {
	text = strings.TrimRight(line, " \t\r\n")
	text = strings.TrimLeft(text, " \t\ufeff")
	if text == "" {
		return "", 0, false, false
	}
	kind, known = igc.KindOf(text)
	return text, kind, known, true
}

// Lines splits data into classified non-blank lines.
func Lines(data []byte) []Line {
	var lines []Line
	for i, raw := range bytes.Split(data, []byte("\n")) {
		text, kind, known, ok := ClassifyLine(string(raw))
		if !ok {
			continue
		}
		lines = append(lines, Line{Number: i + 1, Text: text, Kind: kind, Known: known})
	}
	return lines
}

// Parse builds a flight from a complete log. Any structural or validation
// error discards the flight.
func Parse(ctx context.Context, data []byte, opts Options) (*igc.Flight, error) {
	opts = opts.withDefaults()

	d := newDispatcher(opts)
	if err := d.run(ctx, Lines(data)); err != nil {
		return nil, err
	}
	return d.b.finalize(), nil
}

// ParseReader reads r to the end and parses it.
func ParseReader(ctx context.Context, r io.Reader, opts Options) (*igc.Flight, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read igc log: %w", err)
	}
	return Parse(ctx, buf.Bytes(), opts)
}
