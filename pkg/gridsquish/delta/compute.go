package delta

import (
	"math/big"

	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/formula"
)

// ComputeStep derives the step that turns prev into next. It returns false
// when the two formulas differ in shape and cannot be compared.
//
// Every token delta is checked by applying it back to the previous token; a
// delta that does not reproduce the next token byte for byte is replaced by
// a Literal.
func ComputeStep(prev, next formula.Shape) (Step, bool) {
	if !formula.SameShape(prev, next) {
		return Step{}, false
	}

	var step Step
	for i, a := range prev {
		if a.Kind == formula.KindRigid {
			continue
		}
		b := next[i]

		d, ok := tokenDelta(a, b)
		if !ok {
			return Step{}, false
		}
		if text, err := applyToken(a, d); err != nil || text != b.Text {
			d, ok = literalFor(b)
			if !ok {
				return Step{}, false
			}
		}

		switch a.Kind {
		case formula.KindRange:
			step.Range = append(step.Range, d)
		case formula.KindNumber:
			step.Number = append(step.Number, d)
		case formula.KindString:
			step.String = append(step.String, d)
		}
	}
	return step, true
}

func tokenDelta(a, b formula.Token) (Delta, bool) {
	if a.Text == b.Text {
		return Unchanged{}, true
	}

	switch a.Kind {
	case formula.KindRange:
		ra, okA := formula.ParseReference(a.Text)
		rb, okB := formula.ParseReference(b.Text)
		if okA && okB && ra.SameAnchoring(rb) {
			switch {
			case ra.Col == rb.Col && ra.Row != rb.Row:
				return RowShift{N: rb.Row - ra.Row}, true
			case ra.Row == rb.Row && ra.Col != rb.Col:
				return ColShift{N: rb.Col - ra.Col}, true
			}
		}
	case formula.KindNumber:
		va, okA := ParseNumber(a.Text)
		vb, okB := ParseNumber(b.Text)
		if okA && okB {
			return NumericOffset{N: new(big.Rat).Sub(vb, va)}, true
		}
	}
	return literalFor(b)
}

func literalFor(tok formula.Token) (Delta, bool) {
	if tok.Kind != formula.KindString {
		return Literal{Text: tok.Text}, true
	}
	value, ok := formula.UnquoteString(tok.Text)
	if !ok {
		return nil, false
	}
	return Literal{Text: value}, true
}
