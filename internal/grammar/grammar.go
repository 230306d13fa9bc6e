// Package grammar implements the cursor-based field extraction shared by
// all record parsers.
package grammar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"igc_parser/internal/igc"
)

// Field describes one value of a record.
//
// Search is applied at the cursor and must match there; the cursor then
// advances by the length of the whole match. The value is the first capture
// group, or the whole match when the pattern has no group. Validate is
// checked against the full value. A Remainder field takes everything left
// on the line. A field with Alternatives tries each of them against the
// whole line and keeps the first that matches, under the alternative's ID.
type Field struct {
	ID           string
	Search       string
	Validate     string
	Required     bool
	Remainder    bool
	Alternatives []Field
}

type compiledField struct {
	Field
	search   *regexp.Regexp
	validate *regexp.Regexp
	alts     []compiledField
}

// Grammar is an ordered field list for one record kind.
type Grammar struct {
	Kind         igc.Kind
	fields       []Field
	compiled     []compiledField
	basePatterns map[string]string
}

// New creates a grammar. Local patterns overlay BasePatterns.
func New(kind igc.Kind, fields []Field, localPatterns map[string]string) *Grammar {
	g := &Grammar{
		Kind:         kind,
		fields:       make([]Field, len(fields)),
		basePatterns: make(map[string]string, len(BasePatterns)+len(localPatterns)),
	}
	for k, v := range BasePatterns {
		g.basePatterns[k] = v
	}
	for k, v := range localPatterns {
		g.basePatterns[k] = v
	}
	copy(g.fields, fields)
	return g
}

// MustCompile is New followed by Compile, panicking on a bad pattern. It is
// meant for package-level grammars.
func MustCompile(kind igc.Kind, fields []Field, localPatterns map[string]string) *Grammar {
	g := New(kind, fields, localPatterns)
	if err := g.Compile(); err != nil {
		panic(err)
	}
	return g
}

// Compile expands placeholders and compiles every pattern.
func (g *Grammar) Compile() error {
	g.compiled = make([]compiledField, 0, len(g.fields))
	for _, f := range g.fields {
		cf, err := g.compileField(f, true)
		if err != nil {
			return err
		}
		g.compiled = append(g.compiled, cf)
	}
	return nil
}

func (g *Grammar) compileField(f Field, anchored bool) (compiledField, error) {
	cf := compiledField{Field: f}

	if f.Search != "" {
		expr := g.expand(f.Search)
		if anchored {
			expr = `^(?:` + expr + `)`
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return cf, fmt.Errorf("%s grammar: field %s search: %w", g.Kind, f.ID, err)
		}
		cf.search = re
	}
	if f.Validate != "" {
		re, err := regexp.Compile(`^(?:` + g.expand(f.Validate) + `)$`)
		if err != nil {
			return cf, fmt.Errorf("%s grammar: field %s validate: %w", g.Kind, f.ID, err)
		}
		cf.validate = re
	}
	for _, alt := range f.Alternatives {
		ca, err := g.compileField(alt, false)
		if err != nil {
			return cf, err
		}
		cf.alts = append(cf.alts, ca)
	}
	return cf, nil
}

// expand replaces {PLACEHOLDER} with the pattern it names. Patterns may
// reference other patterns, so expansion repeats until nothing changes.
func (g *Grammar) expand(pattern string) string {
	result := pattern
	for range maxExpandDepth {
		prev := result
		for name, regex := range g.basePatterns {
			result = strings.ReplaceAll(result, "{"+name+"}", regex)
		}
		if result == prev {
			break
		}
	}
	return result
}

const maxExpandDepth = 4

// Values maps field IDs to extracted text. Fields that did not match, or
// matched nothing, are absent.
type Values map[string]string

// Get returns the value of id or def when absent.
func (v Values) Get(id, def string) string {
	if s, ok := v[id]; ok && s != "" {
		return s
	}
	return def
}

// Has reports whether id was extracted.
func (v Values) Has(id string) bool {
	return v[id] != ""
}

// Int parses the value of id as a base-10 integer.
func (v Values) Int(id string) (int, bool) {
	s, ok := v[id]
	if !ok || s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IntPtr is Int returning nil when the value is absent or not a number.
func (v Values) IntPtr(id string) *int {
	n, ok := v.Int(id)
	if !ok {
		return nil
	}
	return &n
}

// Matched reports which alternative ID matched, if any, for a grammar whose
// fields are all alternatives.
func (v Values) Matched(ids ...string) string {
	for _, id := range ids {
		if _, ok := v[id]; ok {
			return id
		}
	}
	return ""
}

// Extract applies the grammar to line. lineNum is used for error context.
func (g *Grammar) Extract(line string, lineNum int) (Values, error) {
	values, _, err := g.extract(line, lineNum, nil)
	return values, err
}

func (g *Grammar) extract(line string, lineNum int, trace *Trace) (Values, int, error) {
	if g.compiled == nil {
		if err := g.Compile(); err != nil {
			return nil, 0, err
		}
	}

	values := make(Values, len(g.compiled))
	var pending []compiledField
	cursor := 0

	for _, f := range g.compiled {
		var (
			value   string
			matched bool
		)

		switch {
		case len(f.alts) > 0:
			for _, alt := range f.alts {
				v, ok := firstCapture(alt.search, line)
				if trace != nil {
					trace.add(alt.ID, alt.search, ok, v, cursor)
				}
				if !ok {
					continue
				}
				values[alt.ID] = v
				pending = append(pending, alt)
				break
			}
			continue

		case f.Remainder:
			value, matched = line[cursor:], cursor < len(line)
			cursor = len(line)
			if trace != nil {
				trace.add(f.ID, nil, matched, value, cursor)
			}

		default:
			rest := line[cursor:]
			loc := f.search.FindStringSubmatchIndex(rest)
			if loc != nil {
				matched = true
				value = captureAt(rest, loc)
				cursor += loc[1]
			}
			if trace != nil {
				trace.add(f.ID, f.search, matched, value, cursor)
			}
		}

		if !matched || value == "" {
			if f.Required {
				return nil, cursor, &igc.StructuralError{
					Line:   lineNum,
					Kind:   g.Kind,
					Reason: fmt.Sprintf("%s record: mandatory field %q missing", g.Kind, f.ID),
				}
			}
			continue
		}
		values[f.ID] = value
		pending = append(pending, f)
	}

	for _, f := range pending {
		if err := g.validate(f, values[f.ID], lineNum); err != nil {
			if trace != nil {
				trace.invalidate(f.ID)
			}
			return nil, cursor, err
		}
	}

	return values, cursor, nil
}

func (g *Grammar) validate(f compiledField, value string, lineNum int) error {
	if value == "" || f.validate == nil || f.validate.MatchString(value) {
		return nil
	}
	return &igc.FieldValidationError{Line: lineNum, Kind: g.Kind, Field: f.ID, Value: value}
}

func firstCapture(re *regexp.Regexp, s string) (string, bool) {
	if re == nil {
		return "", false
	}
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return "", false
	}
	return captureAt(s, loc), true
}

// captureAt returns group 1 when the pattern has one, else the whole match.
func captureAt(s string, loc []int) string {
	if len(loc) >= 4 && loc[2] >= 0 {
		return s[loc[2]:loc[3]]
	}
	if len(loc) >= 4 {
		return ""
	}
	return s[loc[0]:loc[1]]
}
