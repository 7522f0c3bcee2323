package delta

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/formula"
)

func mustShape(t *testing.T, text string) formula.Shape {
	t.Helper()
	shape, ok := formula.Classify(formula.NewEFPTokenizer(), text)
	require.True(t, ok, text)
	return shape
}

func TestComputeStep(t *testing.T) {
	tests := []struct {
		name     string
		prev     string
		next     string
		expected Step
	}{
		{
			name:     "row shift",
			prev:     "=SUM(B1)",
			next:     "=SUM(B2)",
			expected: Step{Range: []Delta{RowShift{N: 1}}},
		},
		{
			name:     "column shift keeps anchoring",
			prev:     "=$B1+C$1",
			next:     "=$B1+E$1",
			expected: Step{Range: []Delta{Unchanged{}, ColShift{N: 2}}},
		},
		{
			name:     "mixed axis falls back to literal",
			prev:     "=A1",
			next:     "=B2",
			expected: Step{Range: []Delta{Literal{Text: "B2"}}},
		},
		{
			name:     "anchoring change falls back to literal",
			prev:     "=A1",
			next:     "=$A2",
			expected: Step{Range: []Delta{Literal{Text: "$A2"}}},
		},
		{
			name:     "sheet change falls back to literal",
			prev:     "=Sheet1!A1",
			next:     "=Sheet2!A2",
			expected: Step{Range: []Delta{Literal{Text: "Sheet2!A2"}}},
		},
		{
			name:     "range resize falls back to literal",
			prev:     "=SUM(B1:B4)",
			next:     "=SUM(B1:B5)",
			expected: Step{Range: []Delta{Literal{Text: "B1:B5"}}},
		},
		{
			name:     "numeric offset",
			prev:     "=A1*3000",
			next:     "=A1*3",
			expected: Step{Range: []Delta{Unchanged{}}, Number: []Delta{Offset(-2997)}},
		},
		{
			name:     "decimal offset",
			prev:     "=A1+1.25",
			next:     "=A1+1.75",
			expected: Step{Range: []Delta{Unchanged{}}, Number: []Delta{NumericOffset{N: big.NewRat(1, 2)}}},
		},
		{
			name:     "number formatting is preserved as literal",
			prev:     "=A1+1",
			next:     "=A1+1.50",
			expected: Step{Range: []Delta{Unchanged{}}, Number: []Delta{Literal{Text: "1.50"}}},
		},
		{
			name:     "string literal",
			prev:     `=A1&"x"`,
			next:     `=A1&"say ""y"""`,
			expected: Step{Range: []Delta{Unchanged{}}, String: []Delta{Literal{Text: `say "y"`}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step, ok := ComputeStep(mustShape(t, tt.prev), mustShape(t, tt.next))
			require.True(t, ok)
			assert.True(t, tt.expected.Equal(step), "got %#v", step)

			applied, err := Apply(mustShape(t, tt.prev), step)
			require.NoError(t, err)
			assert.Equal(t, tt.next, applied.String())
		})
	}
}

func TestComputeStepIncomparable(t *testing.T) {
	tests := []struct{ prev, next string }{
		{"=SUM(1)", "=SUM(1,2)"},
		{"=SUM(B1)", "=MAX(B1)"},
		{"=A1+1", "=A1 + 1"},
	}

	for _, tt := range tests {
		_, ok := ComputeStep(mustShape(t, tt.prev), mustShape(t, tt.next))
		assert.False(t, ok, "%q -> %q", tt.prev, tt.next)
	}
}

func TestApplyErrors(t *testing.T) {
	shape := mustShape(t, "=SUM(B1:B4)+1")

	_, err := Apply(shape, Step{Range: []Delta{Unchanged{}}})
	assert.ErrorIs(t, err, ErrArity)

	_, err = Apply(shape, Step{Range: []Delta{RowShift{N: 1}}, Number: []Delta{Unchanged{}}})
	assert.ErrorIs(t, err, ErrNotShiftable)

	_, err = Apply(shape, Step{Range: []Delta{Unchanged{}}, Number: []Delta{RowShift{N: 1}}})
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = Apply(mustShape(t, "=B1"), Step{Range: []Delta{RowShift{N: -1}}})
	assert.ErrorIs(t, err, formula.ErrOutOfGrid)
}

func TestStepTrivial(t *testing.T) {
	assert.True(t, Step{Range: []Delta{Unchanged{}}, String: []Delta{Unchanged{}}}.Trivial())
	assert.True(t, Step{}.Trivial())
	assert.False(t, Step{Number: []Delta{Unchanged{}, Offset(1)}}.Trivial())
}

func TestStepRescale(t *testing.T) {
	step := Step{
		Range:  []Delta{RowShift{N: 1}, Unchanged{}, Literal{Text: "C1"}},
		Number: []Delta{Offset(3)},
	}

	doubled, ok := step.Rescale(1, 2)
	require.True(t, ok)
	assert.True(t, Step{
		Range:  []Delta{RowShift{N: 2}, Unchanged{}, Literal{Text: "C1"}},
		Number: []Delta{Offset(6)},
	}.Equal(doubled))

	back, ok := doubled.Rescale(2, 1)
	require.True(t, ok)
	assert.True(t, step.Equal(back))

	_, ok = Step{Range: []Delta{RowShift{N: 1}}}.Rescale(2, 1)
	assert.False(t, ok)
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		value    *big.Rat
		expected string
		ok       bool
	}{
		{big.NewRat(42, 1), "42", true},
		{big.NewRat(-3, 1), "-3", true},
		{big.NewRat(1, 2), "0.5", true},
		{big.NewRat(1, 8), "0.125", true},
		{big.NewRat(-7, 20), "-0.35", true},
		{big.NewRat(1, 3), "", false},
	}

	for _, tt := range tests {
		text, ok := FormatNumber(tt.value)
		assert.Equal(t, tt.ok, ok, tt.value.String())
		assert.Equal(t, tt.expected, text, tt.value.String())
	}
}
