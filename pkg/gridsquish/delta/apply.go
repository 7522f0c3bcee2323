package delta

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/formula"
)

// Sentinel errors returned by Apply.
var (
	ErrArity        = errors.New("delta vector length does not match formula")
	ErrKindMismatch = errors.New("delta kind not valid for token")
	ErrNotShiftable = errors.New("token is not a single-cell reference")
	ErrBadNumber    = errors.New("number cannot be offset")
)

// Apply rewrites the channel tokens of prev according to step and returns the
// resulting formula. Rigid tokens are copied untouched.
func Apply(prev formula.Shape, step Step) (formula.Shape, error) {
	vectors := map[formula.Kind][]Delta{
		formula.KindRange:  step.Range,
		formula.KindNumber: step.Number,
		formula.KindString: step.String,
	}
	for _, kind := range formula.Channels {
		if got, want := len(vectors[kind]), prev.Count(kind); got != want {
			return nil, fmt.Errorf("%s channel: %d deltas for %d tokens: %w", kind, got, want, ErrArity)
		}
	}

	next := make(formula.Shape, len(prev))
	index := map[formula.Kind]int{}
	for i, tok := range prev {
		if tok.Kind == formula.KindRigid {
			next[i] = tok
			continue
		}
		d := vectors[tok.Kind][index[tok.Kind]]
		index[tok.Kind]++

		text, err := applyToken(tok, d)
		if err != nil {
			return nil, fmt.Errorf("%s token %q: %w", tok.Kind, tok.Text, err)
		}
		next[i] = formula.Token{Kind: tok.Kind, Text: text}
	}
	return next, nil
}

// applyToken returns the text of tok after d.
func applyToken(tok formula.Token, d Delta) (string, error) {
	switch x := d.(type) {
	case Unchanged:
		return tok.Text, nil
	case Literal:
		if tok.Kind == formula.KindString {
			return formula.QuoteString(x.Text), nil
		}
		return x.Text, nil
	case RowShift:
		if tok.Kind != formula.KindRange {
			return "", ErrKindMismatch
		}
		ref, ok := formula.ParseReference(tok.Text)
		if !ok {
			return "", ErrNotShiftable
		}
		shifted, err := ref.ShiftRows(x.N)
		if err != nil {
			return "", err
		}
		return shifted.String(), nil
	case ColShift:
		if tok.Kind != formula.KindRange {
			return "", ErrKindMismatch
		}
		ref, ok := formula.ParseReference(tok.Text)
		if !ok {
			return "", ErrNotShiftable
		}
		shifted, err := ref.ShiftCols(x.N)
		if err != nil {
			return "", err
		}
		return shifted.String(), nil
	case NumericOffset:
		if tok.Kind != formula.KindNumber {
			return "", ErrKindMismatch
		}
		value, ok := ParseNumber(tok.Text)
		if !ok {
			return "", ErrBadNumber
		}
		text, ok := FormatNumber(new(big.Rat).Add(value, x.N))
		if !ok {
			return "", ErrBadNumber
		}
		return text, nil
	}
	return "", fmt.Errorf("%T: %w", d, ErrKindMismatch)
}

// ParseNumber reads a numeric literal exactly.
func ParseNumber(text string) (*big.Rat, bool) {
	if text == "" {
		return nil, false
	}
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return nil, false
	}
	return r, true
}

// FormatNumber renders r as a plain decimal with the fewest fraction digits
// that represent it exactly. It fails for values with no finite decimal form.
func FormatNumber(r *big.Rat) (string, bool) {
	if r.IsInt() {
		return r.Num().String(), true
	}

	den := new(big.Int).Set(r.Denom())
	two, five := big.NewInt(2), big.NewInt(5)
	var twos, fives int
	mod := new(big.Int)
	for {
		q, m := new(big.Int).QuoRem(den, two, mod)
		if m.Sign() != 0 {
			break
		}
		den = q
		twos++
	}
	for {
		q, m := new(big.Int).QuoRem(den, five, mod)
		if m.Sign() != 0 {
			break
		}
		den = q
		fives++
	}
	if den.Cmp(big.NewInt(1)) != 0 {
		return "", false
	}
	return r.FloatString(max(twos, fives)), true
}
