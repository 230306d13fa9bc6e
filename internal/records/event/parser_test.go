package event

import (
	"errors"
	"testing"

	"igc_parser/internal/igc"
	"igc_parser/internal/registry"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantTime   string
		wantCode   string
		wantData   string
		wantCat    string
		recognized bool
	}{
		{"pilot event", "E120345PEV", "12:03:45", "PEV", "", "pilot_event", true},
		{"start", "E095511STA", "09:55:11", "STA", "", "start", true},
		{"altimeter with data", "E130212ATS102312", "13:02:12", "ATS", "102312", "altimeter_setting", true},
		{"unknown", "E000001XYZ", "00:00:01", "XYZ", "", "other", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Parser{}
			ctx := &registry.Context{Line: tt.line, Number: 3}
			if err := p.Check(ctx); err != nil {
				t.Fatalf("Check: %v", err)
			}
			rec, err := p.Parse(ctx)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			ev := rec.(*igc.Event)
			if ev.Time != tt.wantTime {
				t.Errorf("Time = %q, want %q", ev.Time, tt.wantTime)
			}
			if ev.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", ev.Code, tt.wantCode)
			}
			if ev.Data != tt.wantData {
				t.Errorf("Data = %q, want %q", ev.Data, tt.wantData)
			}
			if ev.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", ev.Category, tt.wantCat)
			}
			if ev.Recognized != tt.recognized {
				t.Errorf("Recognized = %v, want %v", ev.Recognized, tt.recognized)
			}
			if ev.Description == "" {
				t.Error("Description is empty")
			}
		})
	}
}

func TestCheckRejects(t *testing.T) {
	for _, line := range []string{"E12", "E12034", "E1203451", "Eabcdefg"} {
		err := (&Parser{}).Check(&registry.Context{Line: line, Number: 4})
		var se *igc.StructuralError
		if !errors.As(err, &se) {
			t.Errorf("Check(%q) = %v, want StructuralError", line, err)
		}
	}
}

func TestParseBadTime(t *testing.T) {
	_, err := (&Parser{}).Parse(&registry.Context{Line: "E996000PEV", Number: 8})
	var fe *igc.FieldValidationError
	if !errors.As(err, &fe) || fe.Field != "time" {
		t.Fatalf("error = %v, want time FieldValidationError", err)
	}
}
