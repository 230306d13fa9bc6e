package storage

import (
	"context"
	"testing"

	"igc_parser/internal/flight"
	"igc_parser/internal/igc"
)

const sampleLog = `AXXX123-ABC
HFDTE160701
HFPLTPILOTINCHARGE:Jane Doe
HFGIDGLIDERID:D-1234
C160701120000000000000002
C4600000N00600000EStart
C4603000N00600000EFinish
B1000004600000N00600000EA0100001010
B1001004600500N00600000EA0105001055
B1002004601000N00600000EA0110001100
E100030STA
E100150PEV
`

func sampleFlight(t *testing.T) (*igc.Flight, []byte) {
	t.Helper()
	raw := []byte(sampleLog)
	f, err := flight.Parse(context.Background(), raw, flight.Options{})
	if err != nil {
		t.Fatalf("parse sample: %v", err)
	}
	return f, raw
}
