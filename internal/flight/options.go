package flight

import (
	"io"
	"log/slog"
	"time"

	"igc_parser/internal/registry"
	"igc_parser/internal/units"
)

const (
	// DefaultMaxSpeed is the fix speed ceiling in km/h.
	DefaultMaxSpeed = 400.0

	// DefaultTurnpointRadius is the proximity radius in metres used by the
	// automatic turnpoint validation.
	DefaultTurnpointRadius = 500.0
)

// Options tune a parse. The zero value is usable; unset fields take their
// defaults.
type Options struct {
	MaxSpeed        float64 // km/h
	TurnpointRadius float64 // metres

	// FallbackDate dates the fixes of a log without a date header. Logs
	// with neither are dated 1970-01-01.
	FallbackDate time.Time

	// WithRaw keeps the source text of every fix.
	WithRaw bool

	// Locale for the formatted distance, speed and duration strings.
	Locale string

	Logger   *slog.Logger
	Registry *registry.Registry
}

// DefaultOptions returns Options with every default filled in.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.MaxSpeed <= 0 {
		o.MaxSpeed = DefaultMaxSpeed
	}
	if o.TurnpointRadius <= 0 {
		o.TurnpointRadius = DefaultTurnpointRadius
	}
	if o.Locale == "" {
		o.Locale = "en"
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Registry == nil {
		o.Registry = registry.Default()
	}
	return o
}

func (o Options) formatter() *units.Formatter {
	return units.NewFormatter(o.Locale)
}
