package fix

import (
	"errors"
	"math"
	"testing"

	"igc_parser/internal/igc"
	"igc_parser/internal/registry"
)

func parse(t *testing.T, ctx *registry.Context) *igc.Fix {
	t.Helper()
	p := &Parser{}
	if err := p.Check(ctx); err != nil {
		t.Fatalf("Check(%q): %v", ctx.Line, err)
	}
	rec, err := p.Parse(ctx)
	if err != nil {
		t.Fatalf("Parse(%q): %v", ctx.Line, err)
	}
	f, ok := rec.(*igc.Fix)
	if !ok {
		t.Fatalf("Parse returned %T", rec)
	}
	return f
}

func TestParseFix(t *testing.T) {
	f := parse(t, &registry.Context{Line: "B1101355206343N00006198WA0058700558", Number: 12})

	if f.Time != "11:01:35" || f.SecondsOfDay != 11*3600+95 {
		t.Errorf("time = %q (%d)", f.Time, f.SecondsOfDay)
	}
	if want := 52 + 6.343/60; math.Abs(f.Latitude-want) > 1e-9 {
		t.Errorf("Latitude = %v, want %v", f.Latitude, want)
	}
	if want := -(6.198 / 60); math.Abs(f.Longitude-want) > 1e-9 {
		t.Errorf("Longitude = %v, want %v", f.Longitude, want)
	}
	if !f.Valid || f.Validity != "A" {
		t.Errorf("validity = %q", f.Validity)
	}
	if f.PressureAltitude != 587 || f.GNSSAltitude != 558 {
		t.Errorf("altitudes = %d/%d", f.PressureAltitude, f.GNSSAltitude)
	}
	if f.FixAccuracy != nil || f.Satellites != nil || f.EngineNoise != nil {
		t.Error("no extensions expected")
	}
	if f.Line != 12 {
		t.Errorf("Line = %d", f.Line)
	}
}

func TestParseFixNegativeAltitude(t *testing.T) {
	f := parse(t, &registry.Context{Line: "B1101355206343S00006198EV-0012-0020", Number: 1})
	if f.PressureAltitude != -12 || f.GNSSAltitude != -20 {
		t.Errorf("altitudes = %d/%d", f.PressureAltitude, f.GNSSAltitude)
	}
	if f.Valid {
		t.Error("V fix reported valid")
	}
	if f.Latitude >= 0 || f.Longitude <= 0 {
		t.Errorf("hemispheres not applied: %v %v", f.Latitude, f.Longitude)
	}
}

func TestParseFixDefaultExtensions(t *testing.T) {
	f := parse(t, &registry.Context{Line: "B1101355206343N00006198WA005870055803509012", Number: 1})
	if f.FixAccuracy == nil || *f.FixAccuracy != 35 {
		t.Errorf("FixAccuracy = %v", f.FixAccuracy)
	}
	if f.Satellites == nil || *f.Satellites != 9 {
		t.Errorf("Satellites = %v", f.Satellites)
	}
	if f.EngineNoise == nil || *f.EngineNoise != 12 {
		t.Errorf("EngineNoise = %v", f.EngineNoise)
	}
}

func TestParseFixNonNumericTrailer(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantFXA *int
	}{
		{"letters", "B1101355206343N00006198WA0058700558ABC", nil},
		{"mixed", "B1101355206343N00006198WA00587005580AB", nil},
		{"accuracy then text", "B1101355206343N00006198WA0058700558035XY", intPtr(35)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parse(t, &registry.Context{Line: tt.line, Number: 3})
			switch {
			case tt.wantFXA == nil && f.FixAccuracy != nil:
				t.Errorf("FixAccuracy = %d, want nil", *f.FixAccuracy)
			case tt.wantFXA != nil && (f.FixAccuracy == nil || *f.FixAccuracy != *tt.wantFXA):
				t.Errorf("FixAccuracy = %v, want %d", f.FixAccuracy, *tt.wantFXA)
			}
			if f.Satellites != nil || f.EngineNoise != nil {
				t.Errorf("Satellites = %v, EngineNoise = %v, want nil", f.Satellites, f.EngineNoise)
			}
		})
	}
}

func intPtr(n int) *int { return &n }

func TestParseFixDeclaredExtensions(t *testing.T) {
	// I033638FXA3941ENL4246TAS
	ctx := &registry.Context{
		Line:   "B1101355206343N00006198WA005870055804201200099",
		Number: 20,
		FixExtensions: []igc.Extension{
			{Code: "FXA", Start: 36, End: 38},
			{Code: "ENL", Start: 39, End: 41},
			{Code: "TAS", Start: 42, End: 46},
		},
	}
	f := parse(t, ctx)
	if f.FixAccuracy == nil || *f.FixAccuracy != 42 {
		t.Errorf("FixAccuracy = %v", f.FixAccuracy)
	}
	if f.EngineNoise == nil || *f.EngineNoise != 12 {
		t.Errorf("EngineNoise = %v", f.EngineNoise)
	}
	if f.Satellites != nil {
		t.Errorf("Satellites = %v, want nil", *f.Satellites)
	}
	if f.Extensions["TAS"] != "00099" {
		t.Errorf("TAS = %q", f.Extensions["TAS"])
	}
}

func TestParseFixErrors(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantField string
	}{
		{"bad time", "B11013X5206343N00006198WA0058700558", "time"},
		{"hour out of range", "B2501355206343N00006198WA0058700558", "time"},
		{"bad hemisphere", "B1101355206343X00006198WA0058700558", "latitude_hemisphere"},
		{"bad validity", "B1101355206343N00006198WX0058700558", "validity"},
		{"minutes out of range", "B1101355276343N00006198WA0058700558", "latitude"},
	}
	p := &Parser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(&registry.Context{Line: tt.line, Number: 7})
			var fe *igc.FieldValidationError
			if !errors.As(err, &fe) {
				t.Fatalf("error = %v, want FieldValidationError", err)
			}
			if fe.Field != tt.wantField || fe.Line != 7 {
				t.Errorf("error = %+v, want field %q", fe, tt.wantField)
			}
		})
	}
}

func TestCheckTooShort(t *testing.T) {
	err := (&Parser{}).Check(&registry.Context{Line: "B110135", Number: 3})
	var se *igc.StructuralError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want StructuralError", err)
	}
}

func TestExtensionFieldsSkipsOverlap(t *testing.T) {
	fields := ExtensionFields([]igc.Extension{
		{Code: "ENL", Start: 39, End: 41},
		{Code: "FXA", Start: 36, End: 38},
		{Code: "XXX", Start: 40, End: 42},
	})
	if len(fields) != 2 || fields[0].ID != "fxa" || fields[1].ID != "enl" {
		t.Errorf("ExtensionFields() = %+v", fields)
	}
}
