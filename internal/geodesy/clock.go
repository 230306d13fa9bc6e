package geodesy

import (
	"fmt"
	"strconv"
	"strings"
)

// SecondsToClock formats a number of seconds as HH:MM:SS. Hours are not
// wrapped at 24, so durations render as well as times of day. Negative input
// renders as 00:00:00.
func SecondsToClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

// ClockToSeconds parses HH:MM:SS or the fixed six-digit HHMMSS form.
func ClockToSeconds(s string) (int, error) {
	var h, m, sec string
	switch {
	case strings.Count(s, ":") == 2:
		parts := strings.Split(s, ":")
		h, m, sec = parts[0], parts[1], parts[2]
		if len(m) != 2 || len(sec) != 2 || h == "" {
			return 0, fmt.Errorf("clock %q: malformed", s)
		}
	case len(s) == 6:
		h, m, sec = s[0:2], s[2:4], s[4:6]
	default:
		return 0, fmt.Errorf("clock %q: want HH:MM:SS or HHMMSS", s)
	}

	hv, err := atoiDigits(h)
	if err != nil {
		return 0, fmt.Errorf("clock %q: hours: %w", s, err)
	}
	mv, err := atoiDigits(m)
	if err != nil {
		return 0, fmt.Errorf("clock %q: minutes: %w", s, err)
	}
	sv, err := atoiDigits(sec)
	if err != nil {
		return 0, fmt.Errorf("clock %q: seconds: %w", s, err)
	}
	if mv > 59 || sv > 59 {
		return 0, fmt.Errorf("clock %q: out of range", s)
	}
	if len(s) == 6 && hv > 23 {
		return 0, fmt.Errorf("clock %q: hour out of range", s)
	}
	return hv*3600 + mv*60 + sv, nil
}

// atoiDigits rejects signs and spaces that strconv.Atoi would accept.
func atoiDigits(s string) (int, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%q is not a number", s)
		}
	}
	return strconv.Atoi(s)
}
