package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidKey indicates a position key that is not a cell or a
// column-contiguous range.
var ErrInvalidKey = errors.New("invalid position key")

// ErrMultiColumnKey indicates a position key spanning more than one column.
var ErrMultiColumnKey = errors.New("position key spans more than one column")

// Key is a single cell or a column-contiguous range of cells.
type Key struct {
	// Col is the column index (0-based).
	Col int
	// Row is the first row (0-based).
	Row int
	// EndRow is the last row (0-based, inclusive).
	EndRow int
}

// CellKey returns the key of one cell.
func CellKey(pos Position) Key {
	return Key{Col: pos.Col, Row: pos.Row, EndRow: pos.Row}
}

// Len returns the number of cells the key denotes.
func (k Key) Len() int {
	return k.EndRow - k.Row + 1
}

// Start returns the first cell of the key.
func (k Key) Start() Position {
	return Position{Col: k.Col, Row: k.Row}
}

// Overlaps reports whether two keys share a cell.
func (k Key) Overlaps(o Key) bool {
	return k.Col == o.Col && k.Row <= o.EndRow && o.Row <= k.EndRow
}

// String renders "A3" or "A1:A2".
func (k Key) String() string {
	start := Position{Col: k.Col, Row: k.Row}.String()
	if k.EndRow == k.Row {
		return start
	}
	return start + ":" + Position{Col: k.Col, Row: k.EndRow}.String()
}

// ParseKey parses "A3" or "A1:A2". Anchors ($) are rejected.
func ParseKey(text string) (Key, error) {
	if strings.Contains(text, "$") {
		return Key{}, fmt.Errorf("%q: %w", text, ErrInvalidKey)
	}

	parts := strings.Split(text, ":")
	if len(parts) > 2 {
		return Key{}, fmt.Errorf("%q: %w", text, ErrInvalidKey)
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return Key{}, fmt.Errorf("%q: %w", text, ErrInvalidKey)
	}
	key := Key{Col: startCol - 1, Row: startRow - 1, EndRow: startRow - 1}
	if len(parts) == 1 {
		return key, nil
	}

	endCol, endRow, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return Key{}, fmt.Errorf("%q: %w", text, ErrInvalidKey)
	}
	if endCol != startCol {
		return Key{}, fmt.Errorf("%q: %w", text, ErrMultiColumnKey)
	}
	if endRow < startRow {
		return Key{}, fmt.Errorf("%q: reversed range: %w", text, ErrInvalidKey)
	}
	key.EndRow = endRow - 1
	return key, nil
}
