package extdecl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igc_parser/internal/igc"
	"igc_parser/internal/registry"
)

func TestParseFixExtensions(t *testing.T) {
	p := &Parser{kind: igc.KindFixExtension}
	rec, err := p.Parse(&registry.Context{Line: "I033638FXA3940SIU4143ENL", Number: 5})
	require.NoError(t, err)

	decl := rec.(*igc.ExtensionDecl)
	assert.Equal(t, igc.KindFixExtension, decl.RecordKind())
	assert.Equal(t, []igc.Extension{
		{Code: "FXA", Start: 36, End: 38},
		{Code: "SIU", Start: 39, End: 40},
		{Code: "ENL", Start: 41, End: 43},
	}, decl.Extensions)
}

func TestParseDataExtensions(t *testing.T) {
	p := &Parser{kind: igc.KindDataExtensionDecl}
	rec, err := p.Parse(&registry.Context{Line: "J010812HDT", Number: 6})
	require.NoError(t, err)

	decl := rec.(*igc.ExtensionDecl)
	assert.Equal(t, igc.KindDataExtensionDecl, decl.RecordKind())
	assert.Equal(t, []igc.Extension{{Code: "HDT", Start: 8, End: 12}}, decl.Extensions)
}

func TestParseZeroCount(t *testing.T) {
	rec, err := (&Parser{kind: igc.KindFixExtension}).Parse(&registry.Context{Line: "I00", Number: 2})
	require.NoError(t, err)
	assert.Empty(t, rec.(*igc.ExtensionDecl).Extensions)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"count mismatch", "I023638FXA"},
		{"bad count", "IX13638FXA"},
		{"bad declaration", "I0136AAFXA"},
		{"reversed range", "I014038FXA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&Parser{kind: igc.KindFixExtension}).Parse(&registry.Context{Line: tt.line, Number: 3})
			var fe *igc.FieldValidationError
			assert.True(t, errors.As(err, &fe), "error = %v", err)
		})
	}
}
