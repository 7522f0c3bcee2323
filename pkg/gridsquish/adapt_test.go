package gridsquish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertRowsRescalesShift(t *testing.T) {
	compact := parseCompact(t, `{"A1":"=SUM(B1)","A2:A3":{"R":"+R1"}}`)

	adapted, err := InsertRows(compact, 2, 1, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, `{"A1":"=SUM(B1)","A2":{"R":"+R1"},"A4":{"R":"+R2"}}`, compactJSON(t, adapted))

	sheet, err := UnsquishSheet(adapted, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, cells(t, map[string]string{
		"A1": "=SUM(B1)",
		"A2": "=SUM(B2)",
		"A4": "=SUM(B4)",
	}), sheet)
}

func TestRowEdits(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		edit     Edit
		expected string
	}{
		{
			name:     "insert above everything moves keys",
			input:    `{"A1":"=SUM(B1)","A2:A3":{"R":"+R1"}}`,
			edit:     Edit{Kind: EditInsertRows, At: 0, Count: 2},
			expected: `{"A3":"=SUM(B1)","A4:A5":{"R":"+R1"}}`,
		},
		{
			name:     "insert below everything is a no-op",
			input:    `{"A1":"=SUM(B1)","A2:A3":{"R":"+R1"}}`,
			edit:     Edit{Kind: EditInsertRows, At: 10, Count: 2},
			expected: `{"A1":"=SUM(B1)","A2:A3":{"R":"+R1"}}`,
		},
		{
			name:     "insert splits a long run",
			input:    `{"A1":"=A1*2","A2:A5":{"R":"+R1","N":"+1"}}`,
			edit:     Edit{Kind: EditInsertRows, At: 3, Count: 2},
			expected: `{"A1":"=A1*2","A2:A3":{"R":"+R1","N":"+1"},"A6":{"R":"+R3","N":"+3"},"A7":{"R":"+R1","N":"+1"}}`,
		},
		{
			name:     "deleting the predecessor promotes a baseline",
			input:    `{"A1":"=SUM(B1)","A2:A4":{"R":"+R1"}}`,
			edit:     Edit{Kind: EditDeleteRows, At: 1, Count: 1},
			expected: `{"A1":"=SUM(B1)","A2":"=SUM(B3)","A3":{"R":"+R1"}}`,
		},
		{
			name:     "deleting an empty row rejoins the run",
			input:    `{"A1":"=SUM(B1)","A2":{"R":"+R1"},"A4":{"R":"+R2"}}`,
			edit:     Edit{Kind: EditDeleteRows, At: 2, Count: 1},
			expected: `{"A1":"=SUM(B1)","A2:A3":{"R":"+R1"}}`,
		},
		{
			name:     "deleting a whole run",
			input:    `{"A1":"=SUM(B1)","A2:A4":{"R":"+R1"},"B1:B9":"x"}`,
			edit:     Edit{Kind: EditDeleteRows, At: 0, Count: 4},
			expected: `{"B1:B5":"x"}`,
		},
		{
			name:     "shift that cannot be rescaled becomes literal",
			input:    `{"A1":"=SUM(B1)","A3":{"R":"+R1"}}`,
			edit:     Edit{Kind: EditInsertRows, At: 2, Count: 1},
			expected: `{"A1":"=SUM(B1)","A4":"=SUM(B2)"}`,
		},
		{
			name:     "literal runs only move",
			input:    `{"A1:A4":"=SUM(B1:B10)"}`,
			edit:     Edit{Kind: EditInsertRows, At: 2, Count: 1},
			expected: `{"A1:A2":"=SUM(B1:B10)","A4:A5":"=SUM(B1:B10)"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapted, err := ApplyEdit(parseCompact(t, tt.input), tt.edit, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, compactJSON(t, adapted))

			_, err = UnsquishSheet(adapted, DefaultOptions())
			assert.NoError(t, err)
		})
	}
}

func TestColumnEdits(t *testing.T) {
	input := `{"A1":"=SUM(B1)","A2":{"R":"+R1"},"B1:B2":"x","C4":"y"}`

	inserted, err := InsertColumns(parseCompact(t, input), 1, 2, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, `{"A1":"=SUM(B1)","A2":{"R":"+R1"},"D1:D2":"x","E4":"y"}`, compactJSON(t, inserted))

	deleted, err := DeleteColumns(parseCompact(t, input), 0, 2, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, `{"A4":"y"}`, compactJSON(t, deleted))
}

func TestInvalidEdits(t *testing.T) {
	compact := parseCompact(t, `{"A1":"x"}`)

	_, err := InsertRows(compact, -1, 1, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidEdit)

	_, err = DeleteColumns(compact, 0, -1, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidEdit)

	_, err = ApplyEdit(compact, Edit{Kind: "rotate"}, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidEdit)

	_, err = InsertRows(parseCompact(t, `{"A1":{"R":"+R1"}}`), 0, 1, DefaultOptions())
	assert.ErrorIs(t, err, ErrCorruptData)
}
