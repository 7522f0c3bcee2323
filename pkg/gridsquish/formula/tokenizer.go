package formula

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/efp"
)

// Prefix marks cell text as a formula.
const Prefix = "="

// ErrUnparseable indicates the tokenizer could not produce a lossless token
// stream for the text.
var ErrUnparseable = errors.New("unparseable formula")

// Tokenizer turns formula text into classified tokens. Implementations must
// be lossless: the token texts concatenate to the input.
type Tokenizer interface {
	Tokenize(text string) (Shape, error)
}

// EFPTokenizer tokenizes with the efp Excel formula parser and aligns the
// parser output back onto the source bytes.
type EFPTokenizer struct{}

// NewEFPTokenizer returns the default tokenizer.
func NewEFPTokenizer() EFPTokenizer {
	return EFPTokenizer{}
}

// Tokenize implements Tokenizer.
func (EFPTokenizer) Tokenize(text string) (shape Shape, err error) {
	if !strings.HasPrefix(text, Prefix) {
		return nil, fmt.Errorf("%q: %w", text, ErrUnparseable)
	}

	defer func() {
		if r := recover(); r != nil {
			shape, err = nil, fmt.Errorf("%q: %v: %w", text, r, ErrUnparseable)
		}
	}()

	ps := efp.ExcelParser()
	items := ps.Parse(text)

	var tokens Shape
	pos := 0
	for _, item := range items {
		kind, rendered := renderItem(item)
		if rendered == "" {
			continue
		}

		start, ok := alignToken(text, pos, rendered)
		if !ok && kind == KindRange {
			for _, quoted := range quotedSheetForms(rendered) {
				if start, ok = alignToken(text, pos, quoted); ok {
					rendered = quoted
					break
				}
			}
		}
		if !ok {
			return nil, fmt.Errorf("%q: cannot align %q at offset %d: %w", text, rendered, pos, ErrUnparseable)
		}
		if start > pos {
			tokens = appendRigid(tokens, text[pos:start])
		}
		if kind == KindRigid {
			tokens = appendRigid(tokens, rendered)
		} else {
			tokens = append(tokens, Token{Kind: kind, Text: rendered})
		}
		pos = start + len(rendered)
	}

	// trailing gap may only be whitespace
	if rest := text[pos:]; rest != "" {
		if strings.TrimLeft(rest, gapChars) != "" && !(pos == 0 && rest == Prefix) {
			return nil, fmt.Errorf("%q: unconsumed input %q: %w", text, rest, ErrUnparseable)
		}
		tokens = appendRigid(tokens, rest)
	}

	if tokens.String() != text {
		return nil, fmt.Errorf("%q: lossy tokenization: %w", text, ErrUnparseable)
	}
	return tokens, nil
}

const gapChars = " \t\r\n"

// renderItem maps an efp token to a channel kind and the source text it was
// read from.
func renderItem(item efp.Token) (Kind, string) {
	switch item.TType {
	case efp.TokenTypeOperand:
		switch item.TSubType {
		case efp.TokenSubTypeRange:
			return KindRange, item.TValue
		case efp.TokenSubTypeNumber:
			return KindNumber, item.TValue
		case efp.TokenSubTypeText:
			return KindString, QuoteString(item.TValue)
		}
		return KindRigid, item.TValue
	case efp.TokenTypeFunction:
		if item.TSubType == efp.TokenSubTypeStart {
			return KindRigid, item.TValue + "("
		}
		return KindRigid, ")"
	case efp.TokenTypeSubexpression:
		if item.TSubType == efp.TokenSubTypeStart {
			return KindRigid, "("
		}
		return KindRigid, ")"
	case efp.TokenTypeWhitespace:
		return KindRigid, ""
	}
	return KindRigid, item.TValue
}

// alignToken finds rendered in text at pos, allowing only whitespace (and the
// formula prefix at the very start) in between.
func alignToken(text string, pos int, rendered string) (int, bool) {
	for i := pos; i <= len(text); i++ {
		if strings.HasPrefix(text[i:], rendered) {
			return i, true
		}
		if i == len(text) {
			break
		}
		ch := text[i]
		if strings.IndexByte(gapChars, ch) >= 0 || (i == 0 && ch == '=') {
			continue
		}
		break
	}
	return 0, false
}

// quotedSheetForms returns the spellings a sheet-qualified range may have
// had in the source before efp dropped the quotes around its sheet name.
func quotedSheetForms(rendered string) []string {
	i := strings.LastIndexByte(rendered, '!')
	if i <= 0 {
		return nil
	}
	sheet, cell := rendered[:i], rendered[i:]
	forms := []string{"'" + strings.ReplaceAll(sheet, "'", "''") + "'" + cell}
	if strings.Contains(sheet, "'") {
		forms = append(forms, "'"+sheet+"'"+cell)
	}
	return forms
}

// appendRigid merges adjacent rigid text into one token.
func appendRigid(tokens Shape, text string) Shape {
	if n := len(tokens); n > 0 && tokens[n-1].Kind == KindRigid {
		tokens[n-1].Text += text
		return tokens
	}
	return append(tokens, Token{Kind: KindRigid, Text: text})
}

// Classify tokenizes text and reports whether the result can take part in
// token-level diffing. Non-formulas and unparseable formulas are opaque.
func Classify(tk Tokenizer, text string) (Shape, bool) {
	if !strings.HasPrefix(text, Prefix) {
		return nil, false
	}
	shape, err := tk.Tokenize(text)
	if err != nil {
		return nil, false
	}
	return shape, true
}
