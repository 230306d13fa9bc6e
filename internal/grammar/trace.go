package grammar

import "regexp"

// FieldTrace records one extraction attempt.
type FieldTrace struct {
	ID      string `json:"id"`
	Pattern string `json:"pattern,omitempty"`
	Matched bool   `json:"matched"`
	Value   string `json:"value,omitempty"`
	Cursor  int    `json:"cursor"` // cursor after the attempt
	Invalid bool   `json:"invalid,omitempty"`
}

// Trace is the step-by-step account of an extraction.
type Trace struct {
	Kind   string       `json:"kind"`
	Line   string       `json:"line"`
	Fields []FieldTrace `json:"fields"`
	Values Values       `json:"values,omitempty"`
	Error  string       `json:"error,omitempty"`
}

func (t *Trace) add(id string, re *regexp.Regexp, matched bool, value string, cursor int) {
	ft := FieldTrace{ID: id, Matched: matched, Value: value, Cursor: cursor}
	if re != nil {
		ft.Pattern = re.String()
	}
	t.Fields = append(t.Fields, ft)
}

func (t *Trace) invalidate(id string) {
	for i := len(t.Fields) - 1; i >= 0; i-- {
		if t.Fields[i].ID == id && t.Fields[i].Matched {
			t.Fields[i].Invalid = true
			return
		}
	}
}

// ExtractWithTrace is Extract that also reports every attempt. The trace is
// returned even when extraction fails.
func (g *Grammar) ExtractWithTrace(line string, lineNum int) (*Trace, error) {
	trace := &Trace{Kind: g.Kind.String(), Line: line}
	values, _, err := g.extract(line, lineNum, trace)
	if err != nil {
		trace.Error = err.Error()
		return trace, err
	}
	trace.Values = values
	return trace, nil
}
