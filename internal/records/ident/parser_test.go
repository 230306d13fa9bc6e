package ident

import (
	"errors"
	"testing"

	"igc_parser/internal/igc"
	"igc_parser/internal/registry"
)

func TestParser(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		wantID       string
		wantSerial   string
		wantExtra    string
		wantName     string
		wantApproved bool
	}{
		{
			name:       "experimental code with serial and extra data",
			line:       "AXXX123-ABC",
			wantID:     "XXX",
			wantSerial: "123",
			wantExtra:  "ABC",
		},
		{
			name:       "no separator",
			line:       "AFG123456",
			wantID:     "FG1",
			wantSerial: "23456",
			// Unknown, but it does not start with X.
			wantApproved: true,
		},
		{
			name:         "known approved manufacturer",
			line:         "ALXVK9C-FLIGHT:1",
			wantID:       "LXV",
			wantSerial:   "K9C",
			wantExtra:    "FLIGHT:1",
			wantName:     "LXNAV d.o.o.",
			wantApproved: true,
		},
		{
			name:       "software logger",
			line:       "AXCSAAA",
			wantID:     "XCS",
			wantSerial: "AAA",
			wantName:   "XCSoar",
		},
	}

	p := &Parser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &registry.Context{Line: tt.line, Number: 1}
			if err := p.Check(ctx); err != nil {
				t.Fatalf("Check() error: %v", err)
			}
			rec, err := p.Parse(ctx)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			id, ok := rec.(*igc.Identification)
			if !ok {
				t.Fatalf("Parse() returned %T", rec)
			}
			if id.ManufacturerID != tt.wantID {
				t.Errorf("ManufacturerID = %q, want %q", id.ManufacturerID, tt.wantID)
			}
			if id.SerialNumber != tt.wantSerial {
				t.Errorf("SerialNumber = %q, want %q", id.SerialNumber, tt.wantSerial)
			}
			if id.AdditionalData != tt.wantExtra {
				t.Errorf("AdditionalData = %q, want %q", id.AdditionalData, tt.wantExtra)
			}
			if id.ManufacturerName != tt.wantName {
				t.Errorf("ManufacturerName = %q, want %q", id.ManufacturerName, tt.wantName)
			}
			if id.Approved != tt.wantApproved {
				t.Errorf("Approved = %v, want %v", id.Approved, tt.wantApproved)
			}
		})
	}
}

func TestParserInvalidManufacturer(t *testing.T) {
	_, err := (&Parser{}).Parse(&registry.Context{Line: "A###XXX", Number: 1})
	var fe *igc.FieldValidationError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want FieldValidationError", err)
	}
	if fe.Field != "manufacturer_id" {
		t.Errorf("Field = %q", fe.Field)
	}
}

func TestCheckPosition(t *testing.T) {
	err := (&Parser{}).Check(&registry.Context{Line: "AXXX", Number: 4, Previous: igc.KindHeader})
	var se *igc.StructuralError
	if !errors.As(err, &se) || se.Line != 4 {
		t.Fatalf("error = %v, want StructuralError on line 4", err)
	}
}
