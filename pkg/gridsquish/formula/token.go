// Package formula classifies formula text into diffable token channels.
package formula

import "strings"

// Kind is the channel a token belongs to.
type Kind uint8

const (
	// KindRigid covers operators, function names, punctuation and whitespace.
	KindRigid Kind = iota
	// KindRange is a cell, range or name reference.
	KindRange
	// KindNumber is a numeric literal.
	KindNumber
	// KindString is a double-quoted string literal.
	KindString
)

// Channels lists the diffable kinds in wire order (R, N, S).
var Channels = []Kind{KindRange, KindNumber, KindString}

func (k Kind) String() string {
	switch k {
	case KindRange:
		return "range"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "rigid"
	}
}

// Token is one classified piece of a formula. Text is the exact source
// slice, so concatenating the texts of a Shape yields the formula again.
type Token struct {
	Kind Kind
	Text string
}

// Shape is the ordered token list of one formula.
type Shape []Token

// String rebuilds the formula text.
func (s Shape) String() string {
	var b strings.Builder
	for _, tok := range s {
		b.WriteString(tok.Text)
	}
	return b.String()
}

// Count returns the number of tokens of the given kind.
func (s Shape) Count(kind Kind) int {
	n := 0
	for _, tok := range s {
		if tok.Kind == kind {
			n++
		}
	}
	return n
}

// Channel returns the tokens of one kind in appearance order.
func (s Shape) Channel(kind Kind) []Token {
	var out []Token
	for _, tok := range s {
		if tok.Kind == kind {
			out = append(out, tok)
		}
	}
	return out
}

// SameShape reports whether two shapes have the same kind sequence and
// byte-identical rigid tokens.
func SameShape(a, b Shape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Kind != b[i].Kind {
			return false
		}
		if a[i].Kind == KindRigid && a[i].Text != b[i].Text {
			return false
		}
	}
	return true
}

// QuoteString renders a string literal with doubled embedded quotes.
func QuoteString(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// UnquoteString is the inverse of QuoteString. It returns false when text
// is not a well-formed string literal.
func UnquoteString(text string) (string, bool) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", false
	}
	inner := text[1 : len(text)-1]
	value := strings.ReplaceAll(inner, `""`, `"`)
	if QuoteString(value) != text {
		return "", false
	}
	return value, true
}
