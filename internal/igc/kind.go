// Package igc defines the record kinds, flight model and error types shared by
// the IGC parsing packages.
package igc

import "fmt"

// Kind identifies an IGC record by its leading character.
type Kind byte

const (
	KindIdentification         Kind = 'A'
	KindFix                    Kind = 'B'
	KindTask                   Kind = 'C'
	KindEvent                  Kind = 'E'
	KindSatelliteConstellation Kind = 'F'
	KindSecurity               Kind = 'G'
	KindHeader                 Kind = 'H'
	KindFixExtension           Kind = 'I'
	KindDataExtensionDecl      Kind = 'J'
	KindDataExtension          Kind = 'K'
	KindLogbook                Kind = 'L'
)

// Policy describes how records of a kind are folded into a Flight.
type Policy int

const (
	PolicyUnique Policy = iota + 1
	PolicyMerged
	PolicySequence
	PolicyIgnored
)

func (p Policy) String() string {
	switch p {
	case PolicyUnique:
		return "unique"
	case PolicyMerged:
		return "merged"
	case PolicySequence:
		return "sequence"
	case PolicyIgnored:
		return "ignored"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

type kindInfo struct {
	name   string
	policy Policy
}

var kinds = map[Kind]kindInfo{
	KindIdentification:         {"identification", PolicyUnique},
	KindFix:                    {"fix", PolicySequence},
	KindTask:                   {"task", PolicySequence},
	KindEvent:                  {"event", PolicySequence},
	KindSatelliteConstellation: {"satellite_constellation", PolicySequence},
	KindSecurity:               {"security", PolicyIgnored},
	KindHeader:                 {"header", PolicyMerged},
	KindFixExtension:           {"fix_extension", PolicySequence},
	KindDataExtensionDecl:      {"data_extension_declaration", PolicySequence},
	KindDataExtension:          {"data_extension", PolicySequence},
	KindLogbook:                {"logbook", PolicyIgnored},
}

// KindOf classifies a line by its leading character. The boolean is false
// for empty lines and for characters outside the supported set.
func KindOf(line string) (Kind, bool) {
	if line == "" {
		return 0, false
	}
	k := Kind(line[0])
	_, ok := kinds[k]
	return k, ok
}

// Known reports whether k is one of the supported record kinds.
func (k Kind) Known() bool {
	_, ok := kinds[k]
	return ok
}

// Policy returns the aggregation policy for k. Unknown kinds report 0.
func (k Kind) Policy() Policy {
	return kinds[k].policy
}

// Name returns a lower-case descriptive name, e.g. "fix".
func (k Kind) Name() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "unknown"
}

func (k Kind) String() string {
	if k == 0 {
		return "none"
	}
	return string(rune(k))
}

// Kinds returns every supported kind in leading-character order.
func Kinds() []Kind {
	return []Kind{
		KindIdentification, KindFix, KindTask, KindEvent,
		KindSatelliteConstellation, KindSecurity, KindHeader,
		KindFixExtension, KindDataExtensionDecl, KindDataExtension, KindLogbook,
	}
}
