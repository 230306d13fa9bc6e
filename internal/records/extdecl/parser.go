package extdecl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"igc_parser/internal/grammar"
	"igc_parser/internal/igc"
	"igc_parser/internal/registry"
)

// declRe matches one SSFFCCC declaration.
var declRe = regexp.MustCompile(`(\d{2})(\d{2})([A-Z0-9]{3})`)

// Parser parses I or J records depending on kind.
type Parser struct {
	kind igc.Kind
}

// Grammar singletons, one per kind.
var (
	grams    = map[igc.Kind]*grammar.Grammar{}
	gramOnce sync.Once
	gramErr  error
)

func getGrammar(kind igc.Kind) (*grammar.Grammar, error) {
	gramOnce.Do(func() {
		for _, k := range []igc.Kind{igc.KindFixExtension, igc.KindDataExtensionDecl} {
			g := grammar.New(k, Fields, nil)
			if gramErr = g.Compile(); gramErr != nil {
				return
			}
			grams[k] = g
		}
	})
	return grams[kind], gramErr
}

func init() {
	registry.Register(&Parser{kind: igc.KindFixExtension})
	registry.Register(&Parser{kind: igc.KindDataExtensionDecl})
}

func (p *Parser) Kind() igc.Kind { return p.kind }

func (p *Parser) Check(ctx *registry.Context) error {
	if len(ctx.Line) < 3 {
		return &igc.StructuralError{
			Line:   ctx.Number,
			Kind:   p.kind,
			Reason: fmt.Sprintf("%s record too short", p.kind),
		}
	}
	return nil
}

func (p *Parser) Parse(ctx *registry.Context) (registry.Record, error) {
	g, err := getGrammar(p.kind)
	if err != nil {
		return nil, err
	}
	v, err := g.Extract(ctx.Line, ctx.Number)
	if err != nil {
		return nil, err
	}

	count, _ := v.Int("count")
	body := strings.TrimRight(v.Get("declarations", ""), " ")
	if len(body) != count*7 {
		return nil, &igc.FieldValidationError{Line: ctx.Number, Kind: p.kind, Field: "declarations", Value: body}
	}

	decl := &igc.ExtensionDecl{Line: ctx.Number, Kind: p.kind}
	for i := 0; i < count; i++ {
		m := declRe.FindStringSubmatch(body[i*7 : i*7+7])
		if m == nil || len(m[0]) != 7 {
			return nil, &igc.FieldValidationError{Line: ctx.Number, Kind: p.kind, Field: "declarations", Value: body[i*7 : i*7+7]}
		}
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		if start < 1 || end < start {
			return nil, &igc.FieldValidationError{Line: ctx.Number, Kind: p.kind, Field: "declarations", Value: m[0]}
		}
		decl.Extensions = append(decl.Extensions, igc.Extension{Code: m[3], Start: start, End: end})
	}
	return decl, nil
}

func (p *Parser) ParseWithTrace(ctx *registry.Context) (*grammar.Trace, error) {
	g, err := getGrammar(p.kind)
	if err != nil {
		return nil, err
	}
	return g.ExtractWithTrace(ctx.Line, ctx.Number)
}
