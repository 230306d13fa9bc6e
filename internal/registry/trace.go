package registry

import "igc_parser/internal/grammar"

// Traceable is implemented by parsers that can explain their extraction
// step by step, for the trace command.
type Traceable interface {
	ParseWithTrace(ctx *Context) (*grammar.Trace, error)
}
