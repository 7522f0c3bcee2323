// Package delta computes and applies token-level changes between two
// formulas of the same shape.
package delta

import (
	"math/big"
	"slices"
)

// Delta describes how one channel token changes from one formula to the
// next. The set of implementations is closed: Unchanged, RowShift, ColShift,
// NumericOffset and Literal.
type Delta interface {
	isDelta()
}

// Unchanged copies the token.
type Unchanged struct{}

// RowShift moves a single-cell reference N rows.
type RowShift struct{ N int }

// ColShift moves a single-cell reference N columns.
type ColShift struct{ N int }

// NumericOffset adds N to a numeric literal.
type NumericOffset struct{ N *big.Rat }

// Literal replaces the token. For string tokens Text is the unquoted value,
// for the other channels it is the token text.
type Literal struct{ Text string }

func (Unchanged) isDelta()     {}
func (RowShift) isDelta()      {}
func (ColShift) isDelta()      {}
func (NumericOffset) isDelta() {}
func (Literal) isDelta()       {}

// Offset builds a NumericOffset from an integer.
func Offset(n int64) NumericOffset {
	return NumericOffset{N: new(big.Rat).SetInt64(n)}
}

// Equal compares two deltas by kind and magnitude.
func Equal(a, b Delta) bool {
	switch x := a.(type) {
	case Unchanged:
		_, ok := b.(Unchanged)
		return ok
	case RowShift:
		y, ok := b.(RowShift)
		return ok && x.N == y.N
	case ColShift:
		y, ok := b.(ColShift)
		return ok && x.N == y.N
	case NumericOffset:
		y, ok := b.(NumericOffset)
		return ok && x.N.Cmp(y.N) == 0
	case Literal:
		y, ok := b.(Literal)
		return ok && x.Text == y.Text
	}
	return false
}

// Step is the full change between two vertically adjacent formulas, one
// delta per channel token in appearance order.
type Step struct {
	Range  []Delta
	Number []Delta
	String []Delta
}

// Equal reports whether all three vectors are element-wise equal.
func (s Step) Equal(o Step) bool {
	return vectorEqual(s.Range, o.Range) &&
		vectorEqual(s.Number, o.Number) &&
		vectorEqual(s.String, o.String)
}

func vectorEqual(a, b []Delta) bool {
	return slices.EqualFunc(a, b, Equal)
}

// Trivial reports whether every delta is Unchanged.
func (s Step) Trivial() bool {
	for _, vec := range [][]Delta{s.Range, s.Number, s.String} {
		for _, d := range vec {
			if _, ok := d.(Unchanged); !ok {
				return false
			}
		}
	}
	return true
}

// Rescale re-expresses a step measured over from rows as one measured over
// to rows: every shift and offset magnitude is multiplied by to/from. It
// fails when a shift would not stay integral. Unchanged and Literal deltas
// are kept as is.
func (s Step) Rescale(from, to int) (Step, bool) {
	if from <= 0 || to <= 0 {
		return Step{}, false
	}
	var out Step
	var ok bool
	if out.Range, ok = rescaleVector(s.Range, from, to); !ok {
		return Step{}, false
	}
	if out.Number, ok = rescaleVector(s.Number, from, to); !ok {
		return Step{}, false
	}
	if out.String, ok = rescaleVector(s.String, from, to); !ok {
		return Step{}, false
	}
	return out, true
}

func rescaleVector(vec []Delta, from, to int) ([]Delta, bool) {
	if vec == nil {
		return nil, true
	}
	out := make([]Delta, len(vec))
	for i, d := range vec {
		switch x := d.(type) {
		case RowShift:
			if x.N*to%from != 0 {
				return nil, false
			}
			out[i] = RowShift{N: x.N * to / from}
		case ColShift:
			if x.N*to%from != 0 {
				return nil, false
			}
			out[i] = ColShift{N: x.N * to / from}
		case NumericOffset:
			out[i] = NumericOffset{N: new(big.Rat).Mul(x.N, big.NewRat(int64(to), int64(from)))}
		case Unchanged, Literal:
			out[i] = x
		default:
			return nil, false
		}
	}
	return out, true
}
