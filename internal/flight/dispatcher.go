package flight

import (
	"context"
	"errors"
	"fmt"

	"igc_parser/internal/igc"
	"igc_parser/internal/registry"
)

type state int

const (
	stateStart state = iota
	stateReading
	stateDone
)

// dispatcher walks the lines of one log. It is not safe for concurrent use;
// each parse owns its own.
type dispatcher struct {
	opts     Options
	reg      *registry.Registry
	b        *builder
	state    state
	previous igc.Kind
	seen     map[igc.Kind]int // line of the first occurrence of each unique kind
	lines    int              // non-blank lines seen
}

func newDispatcher(opts Options) *dispatcher {
	return &dispatcher{
		opts: opts,
		reg:  opts.Registry,
		b:    newBuilder(opts),
		seen: make(map[igc.Kind]int),
	}
}

func (d *dispatcher) run(ctx context.Context, lines []Line) error {
	if d.state != stateStart {
		return errors.New("dispatcher already used")
	}
	d.state = stateReading
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("parse aborted at line %d: %w", line.Number, err)
		}
		if err := d.step(line); err != nil {
			return err
		}
	}
	d.state = stateDone

	if d.b.flight.Lines == 0 {
		return &igc.EmptyInputError{Lines: d.lines}
	}
	return nil
}

func (d *dispatcher) step(line Line) error {
	d.lines++

	var p registry.Parser
	if line.Known {
		p, _ = d.reg.Lookup(line.Kind)
	}
	if p == nil {
		return &igc.StructuralError{
			Line:   line.Number,
			Kind:   line.Kind,
			Reason: fmt.Sprintf("record kind %q not supported", string(rune(line.Kind))),
		}
	}

	kind := line.Kind
	switch kind.Policy() {
	case igc.PolicyIgnored:
		d.previous = kind
		return nil
	case igc.PolicyUnique:
		if first, dup := d.seen[kind]; dup {
			return &igc.StructuralError{
				Line:         line.Number,
				Kind:         kind,
				Reason:       fmt.Sprintf("duplicate %s record", kind.Name()),
				PreviousLine: first,
			}
		}
		d.seen[kind] = line.Number
	}

	pctx := &registry.Context{
		Line:           line.Text,
		Number:         line.Number,
		Previous:       d.previous,
		FixExtensions:  d.b.fixExtensions,
		DataExtensions: d.b.dataExtensions,
	}
	if err := p.Check(pctx); err != nil {
		return err
	}
	rec, err := p.Parse(pctx)
	if err != nil {
		return err
	}

	d.b.add(rec)
	d.previous = kind
	return nil
}
