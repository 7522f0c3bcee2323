package gridsquish

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/delta"
	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/formula"
	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/models"
)

var (
	errOverlap       = errors.New("entry overlaps a previous entry")
	errNoPredecessor = errors.New("delta entry has no cell above it")
	errEmptyLiteral  = errors.New("literal entry is empty")
	errNotFormula    = errors.New("cell above a delta entry is not a formula")
)

// record is one restored cell together with the payload that produced it.
type record struct {
	row     int
	text    string
	payload models.Payload
}

// UnsquishSheet restores the cells of one compacted sheet. A delta entry
// applies its step to the nearest populated cell above it in the same
// column, once per cell of its key. Inconsistent input is reported as a
// *CorruptDataError.
func UnsquishSheet(c models.Compact, opts Options) (models.Sheet, error) {
	columns, err := replay(c, opts.tokenizer())
	if err != nil {
		opts.logger().Warn("corrupt compact data", slog.Any("error", err))
		return nil, err
	}

	sheet := make(models.Sheet)
	for col, recs := range columns {
		for _, r := range recs {
			sheet[models.Position{Col: col, Row: r.row}] = r.text
		}
	}
	return sheet, nil
}

// replay restores every column of c, keeping one record per cell.
func replay(c models.Compact, tk formula.Tokenizer) (map[int][]record, error) {
	byCol := make(map[int][]models.Entry)
	for _, e := range c {
		if e.Key.Col < 0 || e.Key.Row < 0 || e.Key.Len() < 1 {
			return nil, NewCorruptDataError("", fmt.Sprintf("%+v", e.Key), models.ErrInvalidKey)
		}
		byCol[e.Key.Col] = append(byCol[e.Key.Col], e)
	}

	out := make(map[int][]record, len(byCol))
	for col, entries := range byCol {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Key.Row < entries[j].Key.Row })
		recs, err := replayColumn(entries, tk)
		if err != nil {
			return nil, err
		}
		out[col] = recs
	}
	return out, nil
}

func replayColumn(entries []models.Entry, tk formula.Tokenizer) ([]record, error) {
	var recs []record
	for i, e := range entries {
		if i > 0 && entries[i-1].Key.Overlaps(e.Key) {
			return nil, NewCorruptDataError("", e.Key.String(), errOverlap)
		}

		switch p := e.Payload.(type) {
		case models.LiteralPayload:
			if p.Text == "" {
				return nil, NewCorruptDataError("", e.Key.String(), errEmptyLiteral)
			}
			for row := e.Key.Row; row <= e.Key.EndRow; row++ {
				recs = append(recs, record{row: row, text: p.Text, payload: p})
			}
		case models.DeltaPayload:
			if len(recs) == 0 {
				return nil, NewCorruptDataError("", e.Key.String(), errNoPredecessor)
			}
			for row := e.Key.Row; row <= e.Key.EndRow; row++ {
				text, err := applyStep(tk, recs[len(recs)-1].text, p.Step)
				if err != nil {
					key := models.Position{Col: e.Key.Col, Row: row}.String()
					return nil, NewCorruptDataError("", key, err)
				}
				recs = append(recs, record{row: row, text: text, payload: p})
			}
		default:
			return nil, NewCorruptDataError("", e.Key.String(), models.ErrInvalidEntry)
		}
	}
	return recs, nil
}

// applyStep re-classifies prev and applies step to it.
func applyStep(tk formula.Tokenizer, prev string, step delta.Step) (string, error) {
	shape, ok := formula.Classify(tk, prev)
	if !ok {
		return "", errNotFormula
	}
	next, err := delta.Apply(shape, step)
	if err != nil {
		return "", err
	}
	return next.String(), nil
}
