package geodesy

import (
	"fmt"
	"math"
	"strconv"
)

// Sexagesimal is a coordinate in the IGC form: whole degrees, whole minutes
// and thousandths of a minute.
type Sexagesimal struct {
	Degrees     int
	Minutes     int
	Thousandths int
	Negative    bool
	Longitude   bool
}

// SexagesimalToDecimal converts degrees, minutes and thousandths of a minute
// to decimal degrees.
func SexagesimalToDecimal(degrees, minutes, thousandths int) float64 {
	return float64(degrees) + (float64(minutes)+float64(thousandths)/1000)/60
}

// DecimalToSexagesimal is the inverse of SexagesimalToDecimal. Rounding of
// the thousandths carries into minutes and degrees.
func DecimalToSexagesimal(dd float64, longitude bool) Sexagesimal {
	s := Sexagesimal{Negative: dd < 0, Longitude: longitude}
	abs := math.Abs(dd)

	s.Degrees = int(math.Floor(abs))
	minutes := (abs - float64(s.Degrees)) * 60
	s.Minutes = int(math.Floor(minutes))
	s.Thousandths = int(math.Round((minutes - float64(s.Minutes)) * 1000))

	if s.Thousandths >= 1000 {
		s.Thousandths -= 1000
		s.Minutes++
	}
	if s.Minutes >= 60 {
		s.Minutes -= 60
		s.Degrees++
	}
	return s
}

// Decimal converts s back to signed decimal degrees.
func (s Sexagesimal) Decimal() float64 {
	d := SexagesimalToDecimal(s.Degrees, s.Minutes, s.Thousandths)
	if s.Negative {
		return -d
	}
	return d
}

// IGC renders s the way B and C records write it, e.g. 4612345N or
// 00612345E.
func (s Sexagesimal) IGC() string {
	if s.Longitude {
		hemi := "E"
		if s.Negative {
			hemi = "W"
		}
		return fmt.Sprintf("%03d%02d%03d%s", s.Degrees, s.Minutes, s.Thousandths, hemi)
	}
	hemi := "N"
	if s.Negative {
		hemi = "S"
	}
	return fmt.Sprintf("%02d%02d%03d%s", s.Degrees, s.Minutes, s.Thousandths, hemi)
}

// ParseLatitude parses the 7-digit DDMMmmm latitude text with its N/S
// hemisphere letter.
func ParseLatitude(digits, hemisphere string) (float64, error) {
	return parseCoord(digits, hemisphere, 2, "N", "S")
}

// ParseLongitude parses the 8-digit DDDMMmmm longitude text with its E/W
// hemisphere letter.
func ParseLongitude(digits, hemisphere string) (float64, error) {
	return parseCoord(digits, hemisphere, 3, "E", "W")
}

func parseCoord(digits, hemisphere string, degDigits int, pos, neg string) (float64, error) {
	if len(digits) != degDigits+5 {
		return 0, fmt.Errorf("coordinate %q: want %d digits", digits, degDigits+5)
	}

	deg, err := strconv.Atoi(digits[:degDigits])
	if err != nil {
		return 0, fmt.Errorf("coordinate %q: degrees: %w", digits, err)
	}
	min, err := strconv.Atoi(digits[degDigits : degDigits+2])
	if err != nil {
		return 0, fmt.Errorf("coordinate %q: minutes: %w", digits, err)
	}
	th, err := strconv.Atoi(digits[degDigits+2:])
	if err != nil {
		return 0, fmt.Errorf("coordinate %q: thousandths: %w", digits, err)
	}
	if min >= 60 {
		return 0, fmt.Errorf("coordinate %q: minutes out of range", digits)
	}

	v := SexagesimalToDecimal(deg, min, th)
	switch hemisphere {
	case pos:
		return v, nil
	case neg:
		return -v, nil
	}
	return 0, fmt.Errorf("coordinate %q: bad hemisphere %q", digits, hemisphere)
}
