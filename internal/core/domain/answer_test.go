package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		input    string
		expected Encoding
		wantErr  bool
	}{
		{"structured", EncodingStructured, false},
		{"tabular", EncodingTabular, false},
		{"narrative", EncodingNarrative, false},
		{"", EncodingStructured, false},
		{"json", "", true},
		{"Structured", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			enc, err := ParseEncoding(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, enc)
		})
	}
}
