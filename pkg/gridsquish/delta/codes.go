package delta

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// Wire codes.
const (
	KeepCode  = "="
	Separator = "|"
)

// ErrInvalidCode indicates a wire code that cannot be decoded.
var ErrInvalidCode = errors.New("invalid delta code")

var shiftCode = regexp.MustCompile(`^([+-])([RC])(\d+)$`)

// Wire is the serialized form of a Step. R and N hold one code per token
// joined by Separator; S holds one code per string token.
type Wire struct {
	R string   `json:"R,omitempty"`
	N string   `json:"N,omitempty"`
	S []string `json:"S,omitempty"`
}

// Wire renders the step in its serialized form. Callers should check
// Encodable first.
func (s Step) Wire() Wire {
	var w Wire
	if len(s.Range) > 0 {
		codes := make([]string, len(s.Range))
		for i, d := range s.Range {
			codes[i] = rangeCode(d)
		}
		w.R = strings.Join(codes, Separator)
	}
	if len(s.Number) > 0 {
		codes := make([]string, len(s.Number))
		for i, d := range s.Number {
			codes[i] = numberCode(d)
		}
		w.N = strings.Join(codes, Separator)
	}
	if len(s.String) > 0 {
		w.S = make([]string, len(s.String))
		for i, d := range s.String {
			w.S[i] = stringCode(d)
		}
	}
	return w
}

func rangeCode(d Delta) string {
	switch x := d.(type) {
	case RowShift:
		return signed(x.N) + "R" + strconv.Itoa(abs(x.N))
	case ColShift:
		return signed(x.N) + "C" + strconv.Itoa(abs(x.N))
	case Literal:
		return x.Text
	}
	return KeepCode
}

func numberCode(d Delta) string {
	switch x := d.(type) {
	case NumericOffset:
		text, _ := FormatNumber(new(big.Rat).Abs(x.N))
		if x.N.Sign() < 0 {
			return "-" + text
		}
		return "+" + text
	case Literal:
		return x.Text
	}
	return KeepCode
}

func stringCode(d Delta) string {
	if x, ok := d.(Literal); ok {
		return x.Text
	}
	return KeepCode
}

func signed(n int) string {
	if n < 0 {
		return "-"
	}
	return "+"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Encodable reports whether the step survives a trip through Wire and
// FromWire unchanged. Literal texts that collide with the separator or with
// the spelling of a keep, shift or offset code are not encodable.
func (s Step) Encodable() bool {
	for _, d := range s.Range {
		switch x := d.(type) {
		case Unchanged, RowShift, ColShift:
		case Literal:
			if x.Text == "" || x.Text == KeepCode || strings.Contains(x.Text, Separator) || shiftCode.MatchString(x.Text) {
				return false
			}
		default:
			return false
		}
	}
	for _, d := range s.Number {
		switch x := d.(type) {
		case Unchanged:
		case NumericOffset:
			if _, ok := FormatNumber(x.N); !ok {
				return false
			}
		case Literal:
			if x.Text == "" || x.Text == KeepCode || strings.Contains(x.Text, Separator) ||
				strings.HasPrefix(x.Text, "+") || strings.HasPrefix(x.Text, "-") {
				return false
			}
		default:
			return false
		}
	}
	for _, d := range s.String {
		switch x := d.(type) {
		case Unchanged:
		case Literal:
			if x.Text == KeepCode {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// FromWire decodes a serialized step.
func FromWire(w Wire) (Step, error) {
	var step Step
	if w.R != "" {
		for _, code := range strings.Split(w.R, Separator) {
			d, err := parseRangeCode(code)
			if err != nil {
				return Step{}, err
			}
			step.Range = append(step.Range, d)
		}
	}
	if w.N != "" {
		for _, code := range strings.Split(w.N, Separator) {
			d, err := parseNumberCode(code)
			if err != nil {
				return Step{}, err
			}
			step.Number = append(step.Number, d)
		}
	}
	for _, code := range w.S {
		if code == KeepCode {
			step.String = append(step.String, Unchanged{})
		} else {
			step.String = append(step.String, Literal{Text: code})
		}
	}
	return step, nil
}

func parseRangeCode(code string) (Delta, error) {
	if code == "" {
		return nil, fmt.Errorf("empty range code: %w", ErrInvalidCode)
	}
	if code == KeepCode {
		return Unchanged{}, nil
	}
	m := shiftCode.FindStringSubmatch(code)
	if m == nil {
		return Literal{Text: code}, nil
	}
	n, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, fmt.Errorf("range code %q: %w", code, ErrInvalidCode)
	}
	if m[1] == "-" {
		n = -n
	}
	if m[2] == "R" {
		return RowShift{N: n}, nil
	}
	return ColShift{N: n}, nil
}

func parseNumberCode(code string) (Delta, error) {
	switch {
	case code == "":
		return nil, fmt.Errorf("empty number code: %w", ErrInvalidCode)
	case code == KeepCode:
		return Unchanged{}, nil
	case code[0] == '+' || code[0] == '-':
		n, ok := ParseNumber(code[1:])
		if !ok || strings.ContainsAny(code[1:], "+-/") {
			return nil, fmt.Errorf("number code %q: %w", code, ErrInvalidCode)
		}
		if code[0] == '-' {
			n.Neg(n)
		}
		return NumericOffset{N: n}, nil
	}
	return Literal{Text: code}, nil
}
