// Package units rounds and formats distances, speeds and durations for
// presentation.
package units

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"igc_parser/internal/geodesy"
)

// Round2 rounds v to two decimals, half away from zero. Non-finite values
// are returned unchanged.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Kilometres converts metres to kilometres rounded to two decimals.
func Kilometres(metres float64) float64 {
	if math.IsNaN(metres) || math.IsInf(metres, 0) {
		return metres
	}
	f, _ := decimal.NewFromFloat(metres).Div(decimal.NewFromInt(1000)).Round(2).Float64()
	return f
}

// Formatter renders values for one locale.
type Formatter struct {
	p *message.Printer
}

// NewFormatter returns a Formatter for the given BCP 47 tag. Unparseable
// tags fall back to English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{p: message.NewPrinter(tag)}
}

// Distance renders metres below one kilometre as whole metres and anything
// longer as kilometres with two decimals.
func (f *Formatter) Distance(metres float64) string {
	if metres < 1000 {
		return f.p.Sprintf("%d m", int64(math.Round(metres)))
	}
	return f.p.Sprintf("%.2f km", Kilometres(metres))
}

// Speed renders km/h with two decimals.
func (f *Formatter) Speed(kmh float64) string {
	return f.p.Sprintf("%.2f km/h", Round2(kmh))
}

// Duration renders seconds as HH:MM:SS.
func (f *Formatter) Duration(seconds int) string {
	return geodesy.SecondsToClock(seconds)
}
