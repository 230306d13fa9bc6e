package flight

import (
	"context"
	"fmt"

	"igc_parser/internal/grammar"
	"igc_parser/internal/registry"
)

// TraceLine explains how line number n (1-based, counting blank lines) is
// extracted. The lines before it are replayed first so the previous kind
// and the extension declarations match a real parse; errors on those lines
// are skipped. A failure on line n itself is reported in Trace.Error, not
// as the returned error.
func TraceLine(ctx context.Context, data []byte, n int, opts Options) (*grammar.Trace, error) {
	opts = opts.withDefaults()
	d := newDispatcher(opts)
	d.state = stateReading

	for _, line := range Lines(data) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if line.Number < n {
			_ = d.step(line)
			continue
		}
		if line.Number > n {
			break
		}

		p, ok := d.reg.Lookup(line.Kind)
		if !ok {
			return nil, fmt.Errorf("line %d: record kind %q not supported", n, string(rune(line.Kind)))
		}
		tp, ok := p.(registry.Traceable)
		if !ok {
			return nil, fmt.Errorf("line %d: %s parser cannot trace", n, line.Kind.Name())
		}
		pctx := &registry.Context{
			Line:           line.Text,
			Number:         line.Number,
			Previous:       d.previous,
			FixExtensions:  d.b.fixExtensions,
			DataExtensions: d.b.dataExtensions,
		}
		if err := p.Check(pctx); err != nil {
			return &grammar.Trace{Kind: line.Kind.String(), Line: line.Text, Error: err.Error()}, nil
		}
		trace, err := tp.ParseWithTrace(pctx)
		if trace != nil {
			return trace, nil
		}
		return nil, err
	}
	return nil, fmt.Errorf("line %d is blank or past the end of the log", n)
}
