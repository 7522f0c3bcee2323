package gridsquish

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/formula"
	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/models"
)

// EditKind names a structural edit.
type EditKind string

const (
	// EditInsertRows inserts empty rows and moves the rows below down.
	EditInsertRows EditKind = "insert_rows"
	// EditDeleteRows removes rows and moves the rows below up.
	EditDeleteRows EditKind = "delete_rows"
	// EditInsertColumns inserts empty columns and moves later columns right.
	EditInsertColumns EditKind = "insert_columns"
	// EditDeleteColumns removes columns and moves later columns left.
	EditDeleteColumns EditKind = "delete_columns"
)

// Edit is a row or column insertion or deletion. At is the 0-based index of
// the first inserted or deleted row/column.
type Edit struct {
	Kind  EditKind `json:"kind"`
	At    int      `json:"at"`
	Count int      `json:"count"`
}

// ApplyEdit dispatches e to the matching adapter.
func ApplyEdit(c models.Compact, e Edit, opts Options) (models.Compact, error) {
	switch e.Kind {
	case EditInsertRows:
		return InsertRows(c, e.At, e.Count, opts)
	case EditDeleteRows:
		return DeleteRows(c, e.At, e.Count, opts)
	case EditInsertColumns:
		return InsertColumns(c, e.At, e.Count, opts)
	case EditDeleteColumns:
		return DeleteColumns(c, e.At, e.Count, opts)
	}
	return nil, fmt.Errorf("edit kind %q: %w", e.Kind, ErrInvalidEdit)
}

// InsertRows inserts count empty rows before row at. Cells moved away from
// their predecessor keep their delta with magnitudes rescaled to the new
// distance, so shifted references follow the rows they point at.
func InsertRows(c models.Compact, at, count int, opts Options) (models.Compact, error) {
	if err := checkEdit(at, count); err != nil {
		return nil, err
	}
	return remapRows(c, opts, func(row int) (int, bool) {
		if row >= at {
			return row + count, true
		}
		return row, true
	})
}

// DeleteRows removes rows [at, at+count). A delta cell whose predecessor is
// removed becomes a literal holding its content from before the edit.
func DeleteRows(c models.Compact, at, count int, opts Options) (models.Compact, error) {
	if err := checkEdit(at, count); err != nil {
		return nil, err
	}
	return remapRows(c, opts, func(row int) (int, bool) {
		switch {
		case row < at:
			return row, true
		case row < at+count:
			return 0, false
		}
		return row - count, true
	})
}

// InsertColumns inserts count empty columns before column at. Runs are
// column-local, so entries only move.
func InsertColumns(c models.Compact, at, count int, opts Options) (models.Compact, error) {
	if err := checkEdit(at, count); err != nil {
		return nil, err
	}
	return remapColumns(c, opts, func(col int) (int, bool) {
		if col >= at {
			return col + count, true
		}
		return col, true
	})
}

// DeleteColumns removes columns [at, at+count) and their entries.
func DeleteColumns(c models.Compact, at, count int, opts Options) (models.Compact, error) {
	if err := checkEdit(at, count); err != nil {
		return nil, err
	}
	return remapColumns(c, opts, func(col int) (int, bool) {
		switch {
		case col < at:
			return col, true
		case col < at+count:
			return 0, false
		}
		return col - count, true
	})
}

func checkEdit(at, count int) error {
	if at < 0 || count < 0 {
		return fmt.Errorf("at=%d count=%d: %w", at, count, ErrInvalidEdit)
	}
	return nil
}

func remapColumns(c models.Compact, opts Options, mapCol func(int) (int, bool)) (models.Compact, error) {
	out := make(models.Compact, 0, len(c))
	for _, e := range c {
		col, keep := mapCol(e.Key.Col)
		if !keep {
			continue
		}
		if col >= excelize.MaxColumns {
			return nil, fmt.Errorf("entry %s moves past the last column: %w", e.Key, ErrInvalidEdit)
		}
		e.Key.Col = col
		out = append(out, e)
	}
	out.Sort()
	opts.logger().Debug("moved columns", slog.Int("entries", len(out)))
	return out, nil
}

func remapRows(c models.Compact, opts Options, mapRow func(int) (int, bool)) (models.Compact, error) {
	tk := opts.tokenizer()
	log := opts.logger()

	columns, err := replay(c, tk)
	if err != nil {
		log.Warn("corrupt compact data", slog.Any("error", err))
		return nil, err
	}

	cols := make([]int, 0, len(columns))
	for col := range columns {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	var out models.Compact
	for _, col := range cols {
		recs, err := remapColumn(columns[col], mapRow, tk)
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			pos := models.Position{Col: col, Row: r.row}
			out = appendEntry(out, pos, r.payload)
		}
	}
	log.Debug("moved rows", slog.Int("entries", len(out)))
	return out, nil
}

// remapColumn moves the records of one column and re-expresses each delta
// against its new predecessor. Deltas that cannot be re-expressed fall back
// to literals holding the cell content from before the edit.
func remapColumn(recs []record, mapRow func(int) (int, bool), tk formula.Tokenizer) ([]record, error) {
	var (
		out                    []record
		prevKept               bool
		prevOldRow, prevNewRow int
		prevText               string
	)
	for _, r := range recs {
		row, keep := mapRow(r.row)
		if !keep {
			prevKept = false
			continue
		}
		if row >= excelize.TotalRows {
			return nil, fmt.Errorf("row %d moves past the last row: %w", r.row+1, ErrInvalidEdit)
		}

		next := record{row: row, text: r.text, payload: r.payload}
		if p, ok := r.payload.(models.DeltaPayload); ok {
			next.payload = models.LiteralPayload{Text: r.text}
			if prevKept {
				step, ok := p.Step.Rescale(r.row-prevOldRow, row-prevNewRow)
				if ok && step.Encodable() {
					if text, err := applyStep(tk, prevText, step); err == nil {
						next = record{row: row, text: text, payload: models.DeltaPayload{Step: step}}
					}
				}
			}
		}

		out = append(out, next)
		prevKept = true
		prevOldRow, prevNewRow = r.row, row
		prevText = next.text
	}
	return out, nil
}

// appendEntry extends the last entry when it carries the same payload
// directly above pos.
func appendEntry(out models.Compact, pos models.Position, payload models.Payload) models.Compact {
	if extends(out, pos, payload) {
		out[len(out)-1].Key.EndRow = pos.Row
		return out
	}
	return append(out, models.Entry{Key: models.CellKey(pos), Payload: payload})
}
