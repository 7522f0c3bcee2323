package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEFPTokenizerLossless(t *testing.T) {
	formulas := []string{
		"=SUM(B1)",
		"=SUM(B1:B10)",
		"=A1+1",
		"=A1 + B1 * 2",
		`=CONCATENATE("Hello ", B2)`,
		`="say ""hi"""`,
		"=Sheet2!A1+$C$3",
		"=SUM('Q1 data'!B1)*1",
		"='Q1 data'!B1:B3+'Q1 data'!$C$2",
		"=SUM(1,2)",
		"=IF(A1>0,1.5,-2)",
	}

	tk := NewEFPTokenizer()
	for _, text := range formulas {
		t.Run(text, func(t *testing.T) {
			shape, err := tk.Tokenize(text)
			require.NoError(t, err)
			assert.Equal(t, text, shape.String())
		})
	}
}

func TestClassifyChannels(t *testing.T) {
	tk := NewEFPTokenizer()

	shape, ok := Classify(tk, `=IF(B3>10,"big",B3*2)`)
	require.True(t, ok)

	ranges := shape.Channel(KindRange)
	numbers := shape.Channel(KindNumber)
	strs := shape.Channel(KindString)

	require.Len(t, ranges, 2)
	assert.Equal(t, "B3", ranges[0].Text)
	assert.Equal(t, "B3", ranges[1].Text)
	require.Len(t, numbers, 2)
	assert.Equal(t, "10", numbers[0].Text)
	assert.Equal(t, "2", numbers[1].Text)
	require.Len(t, strs, 1)
	assert.Equal(t, `"big"`, strs[0].Text)
}

func TestClassifyQuotedSheet(t *testing.T) {
	tk := NewEFPTokenizer()

	shape, ok := Classify(tk, "=SUM('Q1 data'!B1)*1")
	require.True(t, ok)

	ranges := shape.Channel(KindRange)
	require.Len(t, ranges, 1)
	assert.Equal(t, "'Q1 data'!B1", ranges[0].Text)

	ref, ok := ParseReference(ranges[0].Text)
	require.True(t, ok)
	assert.Equal(t, "'Q1 data'!", ref.Sheet)
	assert.Equal(t, 1, ref.Row)
}

func TestQuotedSheetForms(t *testing.T) {
	assert.Equal(t, []string{"'Q1 data'!B1"}, quotedSheetForms("Q1 data!B1"))
	assert.Equal(t, []string{"'Bob''s'!A1", "'Bob's'!A1"}, quotedSheetForms("Bob's!A1"))
	assert.Nil(t, quotedSheetForms("B1:B3"))
}

func TestClassifyOpaque(t *testing.T) {
	tk := NewEFPTokenizer()

	for _, text := range []string{"", "plain text", "42"} {
		_, ok := Classify(tk, text)
		assert.False(t, ok, "expected %q to be opaque", text)
	}
}

func TestSameShape(t *testing.T) {
	tk := NewEFPTokenizer()
	mustShape := func(text string) Shape {
		shape, ok := Classify(tk, text)
		require.True(t, ok, text)
		return shape
	}

	tests := []struct {
		a, b     string
		expected bool
	}{
		{"=SUM(B1)", "=SUM(B2)", true},
		{"=SUM(B1)", "=SUM(B1:B4)", true},
		{"=SUM(1)", "=SUM(1,2)", false},
		{"=SUM(B1)", "=MAX(B1)", false},
		{"=A1+1", "=A1-1", false},
		{`=A1&"x"`, `=A1&"y"`, true},
	}

	for _, tt := range tests {
		result := SameShape(mustShape(tt.a), mustShape(tt.b))
		if result != tt.expected {
			t.Errorf("SameShape(%q, %q) = %v, expected %v", tt.a, tt.b, result, tt.expected)
		}
	}
}

func TestQuoteString(t *testing.T) {
	tests := []struct {
		value    string
		expected string
	}{
		{"", `""`},
		{"abc", `"abc"`},
		{`a"b`, `"a""b"`},
	}

	for _, tt := range tests {
		quoted := QuoteString(tt.value)
		assert.Equal(t, tt.expected, quoted)

		value, ok := UnquoteString(quoted)
		assert.True(t, ok)
		assert.Equal(t, tt.value, value)
	}

	_, ok := UnquoteString(`"a"b"`)
	assert.False(t, ok)
}
