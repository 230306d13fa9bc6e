package raw

import (
	"fmt"
	"strings"
	"sync"

	"igc_parser/internal/geodesy"
	"igc_parser/internal/grammar"
	"igc_parser/internal/igc"
	"igc_parser/internal/registry"
)

// Parser handles K, F, G and L records.
type Parser struct {
	kind igc.Kind
}

var (
	grams    map[igc.Kind]*grammar.Grammar
	gramOnce sync.Once
	gramErr  error
)

func getGrammar(kind igc.Kind) (*grammar.Grammar, error) {
	gramOnce.Do(func() {
		grams = make(map[igc.Kind]*grammar.Grammar, 4)
		for k, fields := range map[igc.Kind][]grammar.Field{
			igc.KindDataExtension:          DataFields,
			igc.KindSatelliteConstellation: ConstellationFields,
			igc.KindSecurity:               OpaqueFields,
			igc.KindLogbook:                OpaqueFields,
		} {
			g := grammar.New(k, fields, nil)
			if err := g.Compile(); err != nil {
				gramErr = err
				return
			}
			grams[k] = g
		}
	})
	return grams[kind], gramErr
}

func init() {
	for _, k := range []igc.Kind{
		igc.KindDataExtension,
		igc.KindSatelliteConstellation,
		igc.KindSecurity,
		igc.KindLogbook,
	} {
		registry.Register(&Parser{kind: k})
	}
}

func (p *Parser) Kind() igc.Kind { return p.kind }

func (p *Parser) Check(ctx *registry.Context) error {
	if p.kind.Policy() == igc.PolicyIgnored {
		return nil
	}
	if len(ctx.Line) < 7 {
		return &igc.StructuralError{
			Line:   ctx.Number,
			Kind:   p.kind,
			Reason: fmt.Sprintf("%s record too short for a time of day", p.kind),
		}
	}
	return nil
}

// Parse returns a DataRecord. G and L lines are never folded into a flight
// but still parse, so that traces and splits can show them.
func (p *Parser) Parse(ctx *registry.Context) (registry.Record, error) {
	g, err := getGrammar(p.kind)
	if err != nil {
		return nil, err
	}
	v, err := g.Extract(ctx.Line, ctx.Number)
	if err != nil {
		return nil, err
	}

	rec := &igc.DataRecord{
		Line: ctx.Number,
		Kind: p.kind,
		Data: strings.TrimRight(v.Get("data", ""), " "),
	}
	if clock := v.Get("time", ""); clock != "" {
		secs, err := geodesy.ClockToSeconds(clock)
		if err != nil {
			return nil, &igc.FieldValidationError{Line: ctx.Number, Kind: p.kind, Field: "time", Value: clock}
		}
		rec.Time = geodesy.SecondsToClock(secs)
	}
	if p.kind == igc.KindDataExtension {
		rec.Extensions = sliceExtensions(ctx.Line, ctx.DataExtensions)
	}
	return rec, nil
}

// sliceExtensions reads each declared 1-based inclusive range from line.
// Ranges past the end of the line are skipped.
func sliceExtensions(line string, exts []igc.Extension) map[string]string {
	if len(exts) == 0 {
		return nil
	}
	out := make(map[string]string, len(exts))
	for _, e := range exts {
		if e.Start < 1 || e.End > len(line) || e.End < e.Start {
			continue
		}
		out[e.Code] = line[e.Start-1 : e.End]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (p *Parser) ParseWithTrace(ctx *registry.Context) (*grammar.Trace, error) {
	g, err := getGrammar(p.kind)
	if err != nil {
		return nil, err
	}
	return g.ExtractWithTrace(ctx.Line, ctx.Number)
}
