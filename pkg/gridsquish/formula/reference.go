package formula

import (
	"errors"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrOutOfGrid indicates a shifted reference left the sheet bounds.
var ErrOutOfGrid = errors.New("reference outside the sheet grid")

// Reference is a single-cell A1 reference such as B3, $B$3 or 'My Sheet'!B3.
type Reference struct {
	// Sheet is the qualifier including the trailing "!", empty when unqualified.
	Sheet string
	// Letters is the column as written.
	Letters string
	Col     int // 1-based
	Row     int // 1-based
	ColAbs  bool
	RowAbs  bool
}

// ParseReference parses text as a single-cell reference. Multi-cell ranges,
// whole rows/columns and names are rejected.
func ParseReference(text string) (Reference, bool) {
	var ref Reference
	cell := text
	if idx := strings.LastIndex(text, "!"); idx >= 0 {
		ref.Sheet = text[:idx+1]
		cell = text[idx+1:]
		if idx == 0 {
			return Reference{}, false
		}
	}

	i := 0
	if i < len(cell) && cell[i] == '$' {
		ref.ColAbs = true
		i++
	}
	lettersStart := i
	for i < len(cell) && isLetter(cell[i]) {
		i++
	}
	ref.Letters = cell[lettersStart:i]
	if ref.Letters == "" || len(ref.Letters) > 3 {
		return Reference{}, false
	}
	if i < len(cell) && cell[i] == '$' {
		ref.RowAbs = true
		i++
	}
	digits := cell[i:]
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return Reference{}, false
	}

	col, err := excelize.ColumnNameToNumber(ref.Letters)
	if err != nil {
		return Reference{}, false
	}
	row, err := strconv.Atoi(digits)
	if err != nil || row < 1 || row > excelize.TotalRows {
		return Reference{}, false
	}
	ref.Col = col
	ref.Row = row
	return ref, true
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// SameAnchoring reports whether both references share sheet qualification
// and fixed/relative flags on both axes.
func (r Reference) SameAnchoring(o Reference) bool {
	return r.Sheet == o.Sheet && r.ColAbs == o.ColAbs && r.RowAbs == o.RowAbs
}

// ShiftRows moves the reference n rows, keeping flags and sheet.
func (r Reference) ShiftRows(n int) (Reference, error) {
	row := r.Row + n
	if row < 1 || row > excelize.TotalRows {
		return Reference{}, ErrOutOfGrid
	}
	r.Row = row
	return r, nil
}

// ShiftCols moves the reference n columns, keeping flags and sheet.
func (r Reference) ShiftCols(n int) (Reference, error) {
	col := r.Col + n
	if col < 1 || col > excelize.MaxColumns {
		return Reference{}, ErrOutOfGrid
	}
	letters, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return Reference{}, ErrOutOfGrid
	}
	r.Col = col
	r.Letters = letters
	return r, nil
}

func (r Reference) String() string {
	var b strings.Builder
	b.WriteString(r.Sheet)
	if r.ColAbs {
		b.WriteByte('$')
	}
	b.WriteString(r.Letters)
	if r.RowAbs {
		b.WriteByte('$')
	}
	b.WriteString(strconv.Itoa(r.Row))
	return b.String()
}
