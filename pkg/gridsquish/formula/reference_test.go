package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		text   string
		ok     bool
		sheet  string
		col    int
		row    int
		colAbs bool
		rowAbs bool
	}{
		{"B3", true, "", 2, 3, false, false},
		{"$B$3", true, "", 2, 3, true, true},
		{"B$3", true, "", 2, 3, false, true},
		{"Sheet2!AA10", true, "Sheet2!", 27, 10, false, false},
		{"'My Sheet'!$C1", true, "'My Sheet'!", 3, 1, true, false},
		{"B1:B10", false, "", 0, 0, false, false},
		{"A:A", false, "", 0, 0, false, false},
		{"total", false, "", 0, 0, false, false},
		{"B0", false, "", 0, 0, false, false},
		{"!A1", false, "", 0, 0, false, false},
	}

	for _, tt := range tests {
		ref, ok := ParseReference(tt.text)
		if !assert.Equal(t, tt.ok, ok, tt.text) || !ok {
			continue
		}
		assert.Equal(t, tt.sheet, ref.Sheet, tt.text)
		assert.Equal(t, tt.col, ref.Col, tt.text)
		assert.Equal(t, tt.row, ref.Row, tt.text)
		assert.Equal(t, tt.colAbs, ref.ColAbs, tt.text)
		assert.Equal(t, tt.rowAbs, ref.RowAbs, tt.text)
		assert.Equal(t, tt.text, ref.String(), tt.text)
	}
}

func TestReferenceShift(t *testing.T) {
	ref, ok := ParseReference("Sheet2!$B3")
	assert.True(t, ok)

	down, err := ref.ShiftRows(2)
	assert.NoError(t, err)
	assert.Equal(t, "Sheet2!$B5", down.String())

	right, err := ref.ShiftCols(25)
	assert.NoError(t, err)
	assert.Equal(t, "Sheet2!$AA3", right.String())

	_, err = ref.ShiftRows(-3)
	assert.ErrorIs(t, err, ErrOutOfGrid)

	_, err = ref.ShiftCols(-2)
	assert.ErrorIs(t, err, ErrOutOfGrid)
}

func TestSameAnchoring(t *testing.T) {
	a, _ := ParseReference("$A1")
	b, _ := ParseReference("$A7")
	c, _ := ParseReference("A7")
	d, _ := ParseReference("Sheet2!$A7")

	assert.True(t, a.SameAnchoring(b))
	assert.False(t, a.SameAnchoring(c))
	assert.False(t, a.SameAnchoring(d))
}
