package fix

import (
	"fmt"
	"strings"
	"sync"

	"igc_parser/internal/geodesy"
	"igc_parser/internal/grammar"
	"igc_parser/internal/igc"
	"igc_parser/internal/registry"
)

// Parser parses B records. Derived values that need the previous fix are
// left to the flight builder.
type Parser struct {
	// Extension grammars keyed by their I record declaration.
	extGrammars sync.Map
}

// Grammar singletons.
var (
	gram     *grammar.Grammar
	extGram  *grammar.Grammar
	gramOnce sync.Once
	gramErr  error
)

func getGrammar() (*grammar.Grammar, *grammar.Grammar, error) {
	gramOnce.Do(func() {
		gram = grammar.New(igc.KindFix, Fields, nil)
		if gramErr = gram.Compile(); gramErr != nil {
			return
		}
		extGram = grammar.New(igc.KindFix, DefaultExtensionFields, nil)
		gramErr = extGram.Compile()
	})
	return gram, extGram, gramErr
}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Kind() igc.Kind { return igc.KindFix }

// Check rejects lines shorter than the fixed part of a B record.
func (p *Parser) Check(ctx *registry.Context) error {
	if len(ctx.Line) < fixedLength {
		return &igc.StructuralError{
			Line:   ctx.Number,
			Kind:   igc.KindFix,
			Reason: fmt.Sprintf("B record too short: %d bytes, want at least %d", len(ctx.Line), fixedLength),
		}
	}
	return nil
}

func (p *Parser) Parse(ctx *registry.Context) (registry.Record, error) {
	g, defaultExt, err := getGrammar()
	if err != nil {
		return nil, err
	}
	v, err := g.Extract(ctx.Line, ctx.Number)
	if err != nil {
		return nil, err
	}

	fix := &igc.Fix{
		Line:     ctx.Number,
		Validity: v.Get("validity", ""),
		Raw:      ctx.Line,
	}
	fix.Valid = fix.Validity == "A"

	clock := v.Get("time", "")
	if fix.SecondsOfDay, err = geodesy.ClockToSeconds(clock); err != nil {
		return nil, &igc.FieldValidationError{Line: ctx.Number, Kind: igc.KindFix, Field: "time", Value: clock}
	}
	fix.Time = geodesy.SecondsToClock(fix.SecondsOfDay)

	if fix.Latitude, err = geodesy.ParseLatitude(v.Get("latitude", ""), v.Get("latitude_hemisphere", "")); err != nil {
		return nil, &igc.FieldValidationError{Line: ctx.Number, Kind: igc.KindFix, Field: "latitude", Value: v.Get("latitude", "")}
	}
	if fix.Longitude, err = geodesy.ParseLongitude(v.Get("longitude", ""), v.Get("longitude_hemisphere", "")); err != nil {
		return nil, &igc.FieldValidationError{Line: ctx.Number, Kind: igc.KindFix, Field: "longitude", Value: v.Get("longitude", "")}
	}
	fix.PressureAltitude, _ = v.Int("pressure_altitude")
	fix.GNSSAltitude, _ = v.Int("gnss_altitude")

	if rest := v.Get("extensions", ""); rest != "" {
		eg := defaultExt
		if len(ctx.FixExtensions) > 0 {
			if eg, err = p.extensionGrammar(ctx.FixExtensions); err != nil {
				return nil, err
			}
		}
		ev, err := eg.Extract(rest, ctx.Number)
		if err != nil {
			return nil, err
		}
		applyExtensions(fix, ev)
	}

	return fix, nil
}

func applyExtensions(fix *igc.Fix, ev grammar.Values) {
	for id, val := range ev {
		switch id {
		case "fxa":
			fix.FixAccuracy = ev.IntPtr(id)
		case "siu":
			fix.Satellites = ev.IntPtr(id)
		case "enl":
			fix.EngineNoise = ev.IntPtr(id)
		default:
			if fix.Extensions == nil {
				fix.Extensions = make(map[string]string)
			}
			fix.Extensions[strings.ToUpper(id)] = val
		}
	}
}

func (p *Parser) extensionGrammar(exts []igc.Extension) (*grammar.Grammar, error) {
	key := extensionKey(exts)
	if g, ok := p.extGrammars.Load(key); ok {
		return g.(*grammar.Grammar), nil
	}
	g := grammar.New(igc.KindFix, ExtensionFields(exts), nil)
	if err := g.Compile(); err != nil {
		return nil, err
	}
	actual, _ := p.extGrammars.LoadOrStore(key, g)
	return actual.(*grammar.Grammar), nil
}

func extensionKey(exts []igc.Extension) string {
	var sb strings.Builder
	for _, e := range exts {
		fmt.Fprintf(&sb, "%02d%02d%s", e.Start, e.End, e.Code)
	}
	return sb.String()
}

func (p *Parser) ParseWithTrace(ctx *registry.Context) (*grammar.Trace, error) {
	g, _, err := getGrammar()
	if err != nil {
		return nil, err
	}
	return g.ExtractWithTrace(ctx.Line, ctx.Number)
}
