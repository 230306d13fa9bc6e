package ident

import (
	"sync"

	"igc_parser/internal/codes"
	"igc_parser/internal/grammar"
	"igc_parser/internal/igc"
	"igc_parser/internal/registry"
)

// Parser parses A records.
type Parser struct{}

// Grammar singleton.
var (
	gram     *grammar.Grammar
	gramOnce sync.Once
	gramErr  error
)

func getGrammar() (*grammar.Grammar, error) {
	gramOnce.Do(func() {
		gram = grammar.New(igc.KindIdentification, Fields, nil)
		gramErr = gram.Compile()
	})
	return gram, gramErr
}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Kind() igc.Kind { return igc.KindIdentification }

// Check requires the A record to open the log.
func (p *Parser) Check(ctx *registry.Context) error {
	if ctx.Previous != 0 {
		return &igc.StructuralError{
			Line:   ctx.Number,
			Kind:   igc.KindIdentification,
			Reason: "A record must be the first line of the log",
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

	id := &igc.Identification{
		Line:           ctx.Number,
		ManufacturerID: v.Get("manufacturer_id", ""),
		SerialNumber:   v.Get("serial_number", ""),
		AdditionalData: v.Get("additional_data", ""),
	}
	id.ManufacturerName, id.Approved = codes.LookupManufacturer(id.ManufacturerID)
	return id, nil
}

func (p *Parser) ParseWithTrace(ctx *registry.Context) (*grammar.Trace, error) {
	g, err := getGrammar()
	if err != nil {
		return nil, err
	}
	return g.ExtractWithTrace(ctx.Line, ctx.Number)
}
