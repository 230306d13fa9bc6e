package task

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"igc_parser/internal/geodesy"
	"igc_parser/internal/grammar"
	"igc_parser/internal/igc"
	"igc_parser/internal/registry"
)

var (
	waypointRe    = regexp.MustCompile(`^C\d{7}[NS]\d{8}[EW]`)
	declarationRe = regexp.MustCompile(`^C\d{6}`)
)

// Parser parses C records.
type Parser struct{}

// Grammar singletons.
var (
	declGram *grammar.Grammar
	wpGram   *grammar.Grammar
	gramOnce sync.Once
	gramErr  error
)

func getGrammars() (*grammar.Grammar, *grammar.Grammar, error) {
	gramOnce.Do(func() {
		declGram = grammar.New(igc.KindTask, DeclarationFields, nil)
		if gramErr = declGram.Compile(); gramErr != nil {
			return
		}
		wpGram = grammar.New(igc.KindTask, WaypointFields, nil)
		gramErr = wpGram.Compile()
	})
	return declGram, wpGram, gramErr
}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Kind() igc.Kind { return igc.KindTask }

// Check accepts a line shaped like a waypoint or like a declaration.
func (p *Parser) Check(ctx *registry.Context) error {
	if len(ctx.Line) < 2 || (!waypointRe.MatchString(ctx.Line) && !declarationRe.MatchString(ctx.Line)) {
		return &igc.StructuralError{
			Line:   ctx.Number,
			Kind:   igc.KindTask,
			Reason: "C record is neither a task declaration nor a waypoint",
		}
	}
	return nil
}

func (p *Parser) Parse(ctx *registry.Context) (registry.Record, error) {
	declG, wpG, err := getGrammars()
	if err != nil {
		return nil, err
	}
	if waypointRe.MatchString(ctx.Line) {
		return parseWaypoint(wpG, ctx)
	}
	return parseDeclaration(declG, ctx)
}

func parseWaypoint(g *grammar.Grammar, ctx *registry.Context) (*igc.Waypoint, error) {
	v, err := g.Extract(ctx.Line, ctx.Number)
	if err != nil {
		return nil, err
	}

	wp := &igc.Waypoint{
		Line:         ctx.Number,
		LatitudeRaw:  v.Get("latitude", "") + v.Get("latitude_hemisphere", ""),
		LongitudeRaw: v.Get("longitude", "") + v.Get("longitude_hemisphere", ""),
		Name:         strings.TrimSpace(v.Get("name", "")),
	}
	if wp.Latitude, err = geodesy.ParseLatitude(v.Get("latitude", ""), v.Get("latitude_hemisphere", "")); err != nil {
		return nil, &igc.FieldValidationError{Line: ctx.Number, Kind: igc.KindTask, Field: "latitude", Value: v.Get("latitude", "")}
	}
	if wp.Longitude, err = geodesy.ParseLongitude(v.Get("longitude", ""), v.Get("longitude_hemisphere", "")); err != nil {
		return nil, &igc.FieldValidationError{Line: ctx.Number, Kind: igc.KindTask, Field: "longitude", Value: v.Get("longitude", "")}
	}
	wp.IsStartFinish = wp.Latitude == 0 && wp.Longitude == 0
	return wp, nil
}

func parseDeclaration(g *grammar.Grammar, ctx *registry.Context) (*igc.Declaration, error) {
	v, err := g.Extract(ctx.Line, ctx.Number)
	if err != nil {
		return nil, err
	}

	decl := &igc.Declaration{
		Line: ctx.Number,
		Data: strings.TrimSpace(v.Get("data", "")),
	}
	// Recorders write 000000 when the declaration date is unknown.
	if d, err := time.Parse("020106", v.Get("date", "")); err == nil {
		decl.Date = d.Format(time.DateOnly)
	}
	secs, err := geodesy.ClockToSeconds(v.Get("time", ""))
	if err != nil {
		return nil, &igc.FieldValidationError{Line: ctx.Number, Kind: igc.KindTask, Field: "time", Value: v.Get("time", "")}
	}
	decl.Time = geodesy.SecondsToClock(secs)
	return decl, nil
}

func (p *Parser) ParseWithTrace(ctx *registry.Context) (*grammar.Trace, error) {
	declG, wpG, err := getGrammars()
	if err != nil {
		return nil, err
	}
	if waypointRe.MatchString(ctx.Line) {
		return wpG.ExtractWithTrace(ctx.Line, ctx.Number)
	}
	return declG.ExtractWithTrace(ctx.Line, ctx.Number)
}
