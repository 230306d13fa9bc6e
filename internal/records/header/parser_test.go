package header

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igc_parser/internal/igc"
	"igc_parser/internal/registry"
)

func parse(t *testing.T, line string) *igc.Header {
	t.Helper()
	p := &Parser{}
	ctx := &registry.Context{Line: line, Number: 2, Previous: igc.KindIdentification}
	require.NoError(t, p.Check(ctx))
	rec, err := p.Parse(ctx)
	require.NoError(t, err)
	return rec.(*igc.Header)
}

func TestParseFields(t *testing.T) {
	tests := []struct {
		line string
		got  func(*igc.Header) string
		want string
	}{
		{"HFDTE160701", func(h *igc.Header) string { return h.Date }, "2001-07-16"},
		{"HFDTEDATE:050822,01", func(h *igc.Header) string { return h.Date }, "2022-08-05"},
		{"HFDTEDATE:050822,01", func(h *igc.Header) string { return h.FlightNumber }, "01"},
		{"HFPLTPILOTINCHARGE: Bloggs Bill D", func(h *igc.Header) string { return h.Pilot }, "Bloggs Bill D"},
		{"HFPLTPILOT:Mike Young", func(h *igc.Header) string { return h.Pilot }, "Mike Young"},
		{"HPPLTJane", func(h *igc.Header) string { return h.Pilot }, "Jane"},
		{"HFCM2CREW2:Smith-Barry John A", func(h *igc.Header) string { return h.SecondPilot }, "Smith-Barry John A"},
		{"HFGTYGLIDERTYPE:Schleicher ASH-25", func(h *igc.Header) string { return h.GliderType }, "Schleicher ASH-25"},
		{"HFGIDGLIDERID:ABC-1234", func(h *igc.Header) string { return h.GliderID }, "ABC-1234"},
		{"HFRFWFIRMWAREVERSION:6.4", func(h *igc.Header) string { return h.FirmwareVersion }, "6.4"},
		{"HFRHWHARDWAREVERSION:3.0", func(h *igc.Header) string { return h.HardwareVersion }, "3.0"},
		{"HFFTYFRTYPE:Manufacturer,Model", func(h *igc.Header) string { return h.LoggerType }, "Manufacturer,Model"},
		{"HFGPSRECEIVER:uBLOX LEA-4S-2,16,max9000m", func(h *igc.Header) string { return h.GPSReceiver }, "uBLOX LEA-4S-2,16,max9000m"},
		{"HFGPSMarconiCanada:Superstar,12ch, max10000m", func(h *igc.Header) string { return h.GPSReceiver }, "MarconiCanada:Superstar,12ch, max10000m"},
		{"HFPRSPRESSALTSENSOR:Sensyn, XYZ1111, max11000m", func(h *igc.Header) string { return h.PressureSensor }, "Sensyn, XYZ1111, max11000m"},
		{"HFCIDCOMPETITIONID:XYZ-78910", func(h *igc.Header) string { return h.CompetitionID }, "XYZ-78910"},
		{"HFCCLCOMPETITIONCLASS:15m Motor Glider", func(h *igc.Header) string { return h.CompetitionClass }, "15m Motor Glider"},
		{"HFTZNTIMEZONE:+2.00", func(h *igc.Header) string { return h.TimeZone }, "+2.00"},
		{"HOSITSITE:Lasham", func(h *igc.Header) string { return h.Site }, "Lasham"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got(parse(t, tt.line)))
		})
	}
}

func TestParseAccuracy(t *testing.T) {
	h := parse(t, "HFFXA035")
	require.NotNil(t, h.Accuracy)
	assert.Equal(t, 35, *h.Accuracy)
}

func TestParseUnknownKey(t *testing.T) {
	h := parse(t, "HFALGALTGPS:GEO")
	assert.Equal(t, igc.Header{}, *h)
}

func TestParseInvalidDate(t *testing.T) {
	_, err := (&Parser{}).Parse(&registry.Context{Line: "HFDTE12AB01", Number: 4})
	var fe *igc.FieldValidationError
	require.True(t, errors.As(err, &fe), "%v", err)
	assert.Equal(t, "date", fe.Field)
	assert.Equal(t, 4, fe.Line)
}

func TestParseUnknownDate(t *testing.T) {
	for _, line := range []string{"HFDTE000000", "HFDTE320101", "HFDTEDATE:000000,01"} {
		h := parse(t, line)
		assert.Empty(t, h.Date, line)
	}
	assert.Equal(t, "01", parse(t, "HFDTEDATE:000000,01").FlightNumber)
}

func TestCheck(t *testing.T) {
	for _, line := range []string{"HFD", "Hfdte010101", "H1DTE010101", "HFD:"} {
		err := (&Parser{}).Check(&registry.Context{Line: line, Number: 6})
		var se *igc.StructuralError
		assert.True(t, errors.As(err, &se), "%q: %v", line, err)
	}
	assert.NoError(t, (&Parser{}).Check(&registry.Context{Line: "HFDTE010101", Number: 1}))
}
