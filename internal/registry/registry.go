// Package registry maps IGC record kinds to the parsers that handle them.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"igc_parser/internal/igc"
)

// Record is the typed result of parsing one line.
type Record interface {
	RecordKind() igc.Kind
}

// Context is what a parser may know about a line besides its text.
type Context struct {
	Line     string
	Number   int      // 1-based line number
	Previous igc.Kind // kind of the previous accepted line, 0 on the first

	// Latest I and J declarations, used to slice B and K extensions.
	FixExtensions  []igc.Extension
	DataExtensions []igc.Extension
}

// Parser is implemented by each record kind package.
type Parser interface {
	// Kind returns the record kind handled by this parser.
	Kind() igc.Kind

	// Check enforces structural constraints the field grammar cannot
	// express, such as the position of the line in the log.
	Check(ctx *Context) error

	// Parse extracts and validates the fields and returns the typed record.
	// Ignored kinds may return a nil record.
	Parse(ctx *Context) (Record, error)
}

// Registry holds one parser per record kind.
type Registry struct {
	mu     sync.RWMutex
	byKind map[igc.Kind]Parser
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byKind: make(map[igc.Kind]Parser),
	}
}

// Global default registry.
var defaultRegistry = New()

// Default returns the global registry instance.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a parser to the default registry.
// Called during init() in each record package.
func Register(p Parser) {
	if err := defaultRegistry.Register(p); err != nil {
		panic(err)
	}
}

// Register adds a parser. Unknown kinds and a second parser for the same
// kind are errors.
func (r *Registry) Register(p Parser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := p.Kind()
	if !k.Known() {
		return fmt.Errorf("register parser: unsupported record kind %q", k)
	}
	if _, dup := r.byKind[k]; dup {
		return fmt.Errorf("register parser: kind %s already registered", k)
	}
	r.byKind[k] = p
	return nil
}

// Lookup returns the parser for k.
func (r *Registry) Lookup(k igc.Kind) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byKind[k]
	return p, ok
}

// Kinds returns the registered kinds in leading-character order.
func (r *Registry) Kinds() []igc.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]igc.Kind, 0, len(r.byKind))
	for k := range r.byKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// ParserCount returns the number of registered parsers.
func (r *Registry) ParserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byKind)
}

// Missing lists supported kinds that have no parser.
func (r *Registry) Missing() []igc.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []igc.Kind
	for _, k := range igc.Kinds() {
		if _, ok := r.byKind[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}
