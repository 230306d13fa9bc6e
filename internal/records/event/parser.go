package event

import (
	"regexp"
	"strings"
	"sync"

	"igc_parser/internal/codes"
	"igc_parser/internal/geodesy"
	"igc_parser/internal/grammar"
	"igc_parser/internal/igc"
	"igc_parser/internal/registry"
)

var shapeRe = regexp.MustCompile(`^E\d{6}[A-Z]`)

// Parser parses E records.
type Parser struct{}

// Grammar singleton.
var (
	gram     *grammar.Grammar
	gramOnce sync.Once
	gramErr  error
)

func getGrammar() (*grammar.Grammar, error) {
	gramOnce.Do(func() {
		gram = grammar.New(igc.KindEvent, Fields, nil)
		gramErr = gram.Compile()
	})
	return gram, gramErr
}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Kind() igc.Kind { return igc.KindEvent }

func (p *Parser) Check(ctx *registry.Context) error {
	if len(ctx.Line) < 8 || !shapeRe.MatchString(ctx.Line) {
		return &igc.StructuralError{
			Line:   ctx.Number,
			Kind:   igc.KindEvent,
			Reason: "E record must start with a six digit time and an event code",
		}
	}
	return nil
}

func (p *Parser) Parse(ctx *registry.Context) (registry.Record, error) {
	g, err := getGrammar()
	if err != nil {
		return nil, err
	}
	v, err := g.Extract(ctx.Line, ctx.Number)
	if err != nil {
		return nil, err
	}

	ev := &igc.Event{
		Line: ctx.Number,
		Code: v.Get("code", ""),
		Data: strings.TrimSpace(v.Get("data", "")),
	}
	clock := v.Get("time", "")
	if ev.SecondsOfDay, err = geodesy.ClockToSeconds(clock); err != nil {
		return nil, &igc.FieldValidationError{Line: ctx.Number, Kind: igc.KindEvent, Field: "time", Value: clock}
	}
	ev.Time = geodesy.SecondsToClock(ev.SecondsOfDay)

	cat := codes.ClassifyEvent(ev.Code)
	ev.Category = string(cat)
	ev.Description = codes.DescribeCategory(cat)
	ev.Recognized = cat.Recognized()
	return ev, nil
}

func (p *Parser) ParseWithTrace(ctx *registry.Context) (*grammar.Trace, error) {
	g, err := getGrammar()
	if err != nil {
		return nil, err
	}
	return g.ExtractWithTrace(ctx.Line, ctx.Number)
}
