package utils

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "single value",
			input:    "no4a_monomer",
			expected: []string{"no4a_monomer"},
		},
		{
			name:     "two values",
			input:    "no4a_monomer, no4a_dimer",
			expected: []string{"no4a_monomer", "no4a_dimer"},
		},
		{
			name:     "varied spacing",
			input:    "original,  modebased ",
			expected: []string{"original", "modebased"},
		},
		{
			name:     "only separators",
			input:    " , ,",
			expected: nil,
		},
		{
			name:     "empty middle value",
			input:    "a,,b",
			expected: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCSV(tt.input))
		})
	}
}

func TestOperationTimer(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	stop := OperationTimer("estimate", log)
	d := stop()

	assert.GreaterOrEqual(t, int64(d), int64(0))
	assert.Contains(t, buf.String(), `"operation":"estimate"`)
	assert.Contains(t, buf.String(), "Operation completed")
}
