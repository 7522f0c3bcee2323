// Package models defines the data structures exchanged by the codec.
package models

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

// Position addresses one cell of a sheet.
type Position struct {
	// Col is the column index (0-based).
	Col int
	// Row is the row index (0-based).
	Row int
}

// String returns the A1 cell name.
func (p Position) String() string {
	name, err := excelize.CoordinatesToCellName(p.Col+1, p.Row+1)
	if err != nil {
		return fmt.Sprintf("R%dC%d", p.Row+1, p.Col+1)
	}
	return name
}

// ParsePosition parses an A1 cell name without anchors.
func ParsePosition(name string) (Position, error) {
	col, row, err := excelize.CellNameToCoordinates(name)
	if err != nil {
		return Position{}, fmt.Errorf("%q: %w", name, ErrInvalidKey)
	}
	return Position{Col: col - 1, Row: row - 1}, nil
}

// MarshalText renders the position as a JSON object key.
func (p Position) MarshalText() ([]byte, error) {
	if p.Col < 0 || p.Row < 0 {
		return nil, fmt.Errorf("position (%d,%d): %w", p.Col, p.Row, ErrInvalidKey)
	}
	return []byte(p.String()), nil
}

// UnmarshalText parses a JSON object key.
func (p *Position) UnmarshalText(text []byte) error {
	pos, err := ParsePosition(string(text))
	if err != nil {
		return err
	}
	*p = pos
	return nil
}

// Less orders positions column-major, rows ascending.
func (p Position) Less(o Position) bool {
	if p.Col != o.Col {
		return p.Col < o.Col
	}
	return p.Row < o.Row
}

// Sheet maps populated positions to raw cell text. Empty text means no
// content and is never stored.
type Sheet map[Position]string

// Positions returns the populated positions in column-major order.
func (s Sheet) Positions() []Position {
	out := make([]Position, 0, len(s))
	for pos, text := range s {
		if text == "" {
			continue
		}
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Columns groups the populated positions by column, rows ascending.
func (s Sheet) Columns() map[int][]Position {
	out := make(map[int][]Position)
	for _, pos := range s.Positions() {
		out[pos.Col] = append(out[pos.Col], pos)
	}
	return out
}

// Workbook maps sheet name to sheet content.
type Workbook map[string]Sheet

// SheetNames returns the sheet names sorted.
func (wb Workbook) SheetNames() []string {
	names := make([]string, 0, len(wb))
	for name := range wb {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
