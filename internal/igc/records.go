package igc

// RecordKind reports the kind of line a parsed value came from.

func (*Identification) RecordKind() Kind  { return KindIdentification }
func (*Header) RecordKind() Kind          { return KindHeader }
func (*Fix) RecordKind() Kind             { return KindFix }
func (*Declaration) RecordKind() Kind     { return KindTask }
func (*Waypoint) RecordKind() Kind        { return KindTask }
func (*Event) RecordKind() Kind           { return KindEvent }
func (d *ExtensionDecl) RecordKind() Kind { return d.Kind }
func (d *DataRecord) RecordKind() Kind    { return d.Kind }
