package delta

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepWire(t *testing.T) {
	tests := []struct {
		name     string
		step     Step
		expected Wire
	}{
		{
			name:     "row shift",
			step:     Step{Range: []Delta{RowShift{N: 1}}},
			expected: Wire{R: "+R1"},
		},
		{
			name:     "mixed range codes",
			step:     Step{Range: []Delta{Unchanged{}, ColShift{N: -3}, RowShift{N: -12}, Literal{Text: "B1:B5"}}},
			expected: Wire{R: "=|-C3|-R12|B1:B5"},
		},
		{
			name:     "number codes",
			step:     Step{Number: []Delta{Offset(1), Offset(-2997), NumericOffset{N: big.NewRat(1, 2)}, Unchanged{}, Literal{Text: "1.50"}}},
			expected: Wire{N: "+1|-2997|+0.5|=|1.50"},
		},
		{
			name:     "string codes",
			step:     Step{String: []Delta{Unchanged{}, Literal{Text: "a|b"}}},
			expected: Wire{S: []string{"=", "a|b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, tt.step.Encodable())
			w := tt.step.Wire()
			assert.Equal(t, tt.expected, w)

			decoded, err := FromWire(w)
			require.NoError(t, err)
			assert.True(t, tt.step.Equal(decoded), "got %#v", decoded)
		})
	}
}

func TestStepEncodable(t *testing.T) {
	tests := []struct {
		name string
		step Step
	}{
		{"range literal with separator", Step{Range: []Delta{Literal{Text: "A|B"}}}},
		{"range literal spelled as keep", Step{Range: []Delta{Literal{Text: "="}}}},
		{"range literal spelled as shift", Step{Range: []Delta{Literal{Text: "+R1"}}}},
		{"signed number literal", Step{Number: []Delta{Literal{Text: "-1"}}}},
		{"repeating decimal offset", Step{Number: []Delta{NumericOffset{N: big.NewRat(1, 3)}}}},
		{"string literal spelled as keep", Step{String: []Delta{Literal{Text: "="}}}},
	}

	for _, tt := range tests {
		assert.False(t, tt.step.Encodable(), tt.name)
	}
}

func TestFromWireInvalid(t *testing.T) {
	for _, w := range []Wire{
		{R: "+R1||="},
		{N: "+abc"},
		{N: "+1|"},
		{N: "--1"},
	} {
		_, err := FromWire(w)
		assert.ErrorIs(t, err, ErrInvalidCode, "%#v", w)
	}
}
