package header

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"igc_parser/internal/grammar"
	"igc_parser/internal/igc"
	"igc_parser/internal/registry"
)

var shapeRe = regexp.MustCompile(`^H[A-Z]{3}`)

// Parser parses H records. Each line yields a partial Header which the
// flight builder merges.
type Parser struct{}

// Grammar singleton.
var (
	gram     *grammar.Grammar
	gramOnce sync.Once
	gramErr  error
)

func getGrammar() (*grammar.Grammar, error) {
	gramOnce.Do(func() {
		gram = grammar.New(igc.KindHeader, Fields, Patterns)
		gramErr = gram.Compile()
	})
	return gram, gramErr
}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Kind() igc.Kind { return igc.KindHeader }

func (p *Parser) Check(ctx *registry.Context) error {
	line := ctx.Line
	var reason string
	switch {
	case len(line) < 4:
		reason = "H record too short"
	case !shapeRe.MatchString(line):
		reason = "H record must start with a three letter code"
	case strings.Contains(line, ":") && len(line) <= 5:
		reason = "H record has a separator but no value"
	default:
		return nil
	}
	return &igc.StructuralError{Line: ctx.Number, Kind: igc.KindHeader, Reason: reason}
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

	h := &igc.Header{
		FlightNumber:     trimmed(v, "flight_number"),
		Pilot:            trimmed(v, "pilot"),
		SecondPilot:      trimmed(v, "second_pilot"),
		GliderType:       trimmed(v, "glider_type"),
		GliderID:         trimmed(v, "glider_id"),
		FirmwareVersion:  trimmed(v, "firmware_version"),
		HardwareVersion:  trimmed(v, "hardware_version"),
		LoggerType:       trimmed(v, "logger_type"),
		GPSReceiver:      trimmed(v, "gps_receiver"),
		PressureSensor:   trimmed(v, "pressure_sensor"),
		CompetitionID:    trimmed(v, "competition_id"),
		CompetitionClass: trimmed(v, "competition_class"),
		TimeZone:         trimmed(v, "time_zone"),
		Site:             trimmed(v, "site"),
		Accuracy:         v.IntPtr("accuracy"),
	}
	// Recorders write 000000 when the date is unknown; such a date stays unset.
	if d, err := time.Parse("020106", v.Get("date", "")); err == nil {
		h.Date = d.Format(time.DateOnly)
	}
	return h, nil
}

func trimmed(v grammar.Values, id string) string {
	return strings.TrimSpace(v.Get(id, ""))
}

func (p *Parser) ParseWithTrace(ctx *registry.Context) (*grammar.Trace, error) {
	g, err := getGrammar()
	if err != nil {
		return nil, err
	}
	return g.ExtractWithTrace(ctx.Line, ctx.Number)
}
