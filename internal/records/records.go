// Package records registers every record parser with the default registry.
// Import it for side effects.
package records

import (
	_ "igc_parser/internal/records/event"
	_ "igc_parser/internal/records/extdecl"
	_ "igc_parser/internal/records/fix"
	_ "igc_parser/internal/records/header"
	_ "igc_parser/internal/records/ident"
	_ "igc_parser/internal/records/raw"
	_ "igc_parser/internal/records/task"
)
