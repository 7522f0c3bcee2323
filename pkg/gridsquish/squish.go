package gridsquish

import (
	"log/slog"
	"sort"

	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/delta"
	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/formula"
	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/models"
)

// classified is one populated cell with its token shape, if it has one.
type classified struct {
	pos   models.Position
	text  string
	shape formula.Shape
	ok    bool
}

// SquishSheet compacts one sheet. Columns are processed independently,
// rows ascending; the result is ordered column-major.
func SquishSheet(sheet models.Sheet, opts Options) models.Compact {
	tk := opts.tokenizer()
	columns := sheet.Columns()

	cols := make([]int, 0, len(columns))
	for col := range columns {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	var out models.Compact
	for _, col := range cols {
		out = squishColumn(out, sheet, columns[col], tk)
	}

	opts.logger().Debug("squished sheet",
		slog.Int("cells", len(sheet)),
		slog.Int("entries", len(out)))
	return out
}

func squishColumn(out models.Compact, sheet models.Sheet, positions []models.Position, tk formula.Tokenizer) models.Compact {
	var prev *classified
	for _, pos := range positions {
		text := sheet[pos]
		shape, ok := formula.Classify(tk, text)
		cur := &classified{pos: pos, text: text, shape: shape, ok: ok}

		switch {
		case prev == nil || pos.Row != prev.pos.Row+1:
			out = appendLiteral(out, pos, text, false)
		case cur.text == prev.text:
			out = appendLiteral(out, pos, text, true)
		default:
			if step, ok := stepBetween(prev, cur); ok {
				out = appendEntry(out, pos, models.DeltaPayload{Step: step})
			} else {
				out = appendLiteral(out, pos, text, false)
			}
		}
		prev = cur
	}
	return out
}

// stepBetween returns the step from prev to cur when cur can be stored as a
// delta entry.
func stepBetween(prev, cur *classified) (delta.Step, bool) {
	if !prev.ok || !cur.ok {
		return delta.Step{}, false
	}
	step, ok := delta.ComputeStep(prev.shape, cur.shape)
	if !ok || step.Trivial() || !step.Encodable() {
		return delta.Step{}, false
	}
	applied, err := delta.Apply(prev.shape, step)
	if err != nil || applied.String() != cur.text {
		return delta.Step{}, false
	}
	return step, true
}

// appendLiteral starts a literal entry at pos, or extends the last entry
// when merge is set and it holds the same text directly above pos.
func appendLiteral(out models.Compact, pos models.Position, text string, merge bool) models.Compact {
	payload := models.LiteralPayload{Text: text}
	if merge {
		return appendEntry(out, pos, payload)
	}
	return append(out, models.Entry{Key: models.CellKey(pos), Payload: payload})
}

func extends(out models.Compact, pos models.Position, payload models.Payload) bool {
	if len(out) == 0 {
		return false
	}
	last := out[len(out)-1]
	return last.Key.Col == pos.Col &&
		last.Key.EndRow == pos.Row-1 &&
		models.SamePayload(last.Payload, payload)
}
