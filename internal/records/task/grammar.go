// Package task parses C records: the task declaration and its waypoints.
package task

import "igc_parser/internal/grammar"

// DeclarationFields defines the first C record of a task.
// Example: C150701213841160701000102 500K Tri
// Fields: declaration date, declaration time, free text (flight date, task id, turnpoint count, name)
var DeclarationFields = []grammar.Field{
	{ID: "date", Search: `C(.{6})`, Validate: `{DATE6}`, Required: true},
	{ID: "time", Search: `.{6}`, Validate: `{TIME6}`, Required: true},
	{ID: "data", Remainder: true},
}

// WaypointFields defines a C record carrying a position.
// Example: C5111359N00101899WLBZ-Leighton Buzzard NE
var WaypointFields = []grammar.Field{
	{ID: "latitude", Search: `C(.{7})`, Validate: `{LAT}`, Required: true},
	{ID: "latitude_hemisphere", Search: `.`, Validate: `{LAT_DIR}`, Required: true},
	{ID: "longitude", Search: `.{8}`, Validate: `{LON}`, Required: true},
	{ID: "longitude_hemisphere", Search: `.`, Validate: `{LON_DIR}`, Required: true},
	{ID: "name", Remainder: true},
}
