package tokenizer

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func types(tokens []Token) []TokenType {
	result := make([]TokenType, 0, len(tokens))
	for _, token := range tokens {
		result = append(result, token.Type)
	}

	return result
}

func TestTokenIterator(t *testing.T) {
	tokens := Tokenize("a{color:red;}")

	assert.Equal(t, []TokenType{
		IDENT, OPENED_BRACE, IDENT, COLON, IDENT, SEMICOLON, CLOSED_BRACE, EOF,
	}, types(tokens))
	assert.Equal(t, "a", tokens[0].Value)
	assert.Equal(t, "color", tokens[2].Value)
	assert.Equal(t, "red", tokens[4].Value)
}

func TestTokenIteratorWithOptions(t *testing.T) {
	tokens := NewTokenizer("a { color : red ; }", TokenizerOptions{SkipWhitespace: true}).AllTokens()

	assert.Equal(t, []TokenType{
		IDENT, OPENED_BRACE, IDENT, COLON, IDENT, SEMICOLON, CLOSED_BRACE, EOF,
	}, types(tokens))
}

func TestIteratorEarlyTermination(t *testing.T) {
	count := 0
	for range NewTokenizer("a b c d e f g").Tokens() {
		count++
		if count >= 5 {
			break
		}
	}

	assert.Equal(t, 5, count)
}

func TestSingleTrailingEOF(t *testing.T) {
	for _, input := range []string{"", "a", "/* open comment", "'open string", "url(x"} {
		tokens := Tokenize(input)
		eofCount := 0
		for _, token := range tokens {
			if token.Type == EOF {
				eofCount++
			}
		}

		assert.Equal(t, 1, eofCount, input)
		assert.Equal(t, EOF, tokens[len(tokens)-1].Type, input)
	}
}

func TestBasicTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "whitespace run collapses",
			input: " \t\n ",
			expected: []Token{
				{Type: WHITESPACE, Value: " \t\n "},
			},
		},
		{
			name:  "function",
			input: "rgba(",
			expected: []Token{
				{Type: FUNCTION, Value: "rgba"},
			},
		},
		{
			name:  "at keyword",
			input: "@media",
			expected: []Token{
				{Type: AT_KEYWORD, Value: "media"},
			},
		},
		{
			name:  "id hash",
			input: "#main",
			expected: []Token{
				{Type: HASH, Value: "main", Flags: map[string]string{FlagType: TypeID}},
			},
		},
		{
			name:  "unquoted hash",
			input: "#0af",
			expected: []Token{
				{Type: HASH, Value: "0af", Flags: map[string]string{FlagType: TypeUnquoted}},
			},
		},
		{
			name:  "lone hash is delim",
			input: "# ",
			expected: []Token{
				{Type: DELIM, Value: "#"},
				{Type: WHITESPACE, Value: " "},
			},
		},
		{
			name:  "double quoted string",
			input: `"hello"`,
			expected: []Token{
				{Type: STRING, Value: "hello", Flags: map[string]string{FlagQuote: `"`}},
			},
		},
		{
			name:  "single quoted string",
			input: `'it''s'`,
			expected: []Token{
				{Type: STRING, Value: "it", Flags: map[string]string{FlagQuote: "'"}},
				{Type: STRING, Value: "s", Flags: map[string]string{FlagQuote: "'"}},
			},
		},
		{
			name:  "unquoted url",
			input: "url( img/a.png )",
			expected: []Token{
				{Type: URL, Value: "img/a.png"},
			},
		},
		{
			name:  "quoted url stays function",
			input: `url("a.png")`,
			expected: []Token{
				{Type: FUNCTION, Value: "url"},
				{Type: STRING, Value: "a.png", Flags: map[string]string{FlagQuote: `"`}},
				{Type: CLOSED_PARENS, Value: ")"},
			},
		},
		{
			name:  "bad url",
			input: "url(a b) c",
			expected: []Token{
				{Type: BAD_URL, Value: "a"},
				{Type: WHITESPACE, Value: " "},
				{Type: IDENT, Value: "c"},
			},
		},
		{
			name:  "cdo and cdc",
			input: "<!---->",
			expected: []Token{
				{Type: CDO, Value: "<!--"},
				{Type: CDC, Value: "-->"},
			},
		},
		{
			name:  "comments are dropped",
			input: "a/* x */b",
			expected: []Token{
				{Type: IDENT, Value: "a"},
				{Type: IDENT, Value: "b"},
			},
		},
		{
			name:  "structural delimiters",
			input: "()[]{},:;",
			expected: []Token{
				{Type: OPENED_PARENS, Value: "("},
				{Type: CLOSED_PARENS, Value: ")"},
				{Type: OPENED_BRACKET, Value: "["},
				{Type: CLOSED_BRACKET, Value: "]"},
				{Type: OPENED_BRACE, Value: "{"},
				{Type: CLOSED_BRACE, Value: "}"},
				{Type: COMMA, Value: ","},
				{Type: COLON, Value: ":"},
				{Type: SEMICOLON, Value: ";"},
			},
		},
		{
			name:  "custom property ident",
			input: "--main-color",
			expected: []Token{
				{Type: IDENT, Value: "--main-color"},
			},
		},
		{
			name:  "variable sigil is delim",
			input: "$x",
			expected: []Token{
				{Type: DELIM, Value: "$"},
				{Type: IDENT, Value: "x"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.input)
			assert.Equal(t, EOF, tokens[len(tokens)-1].Type)

			actual := make([]Token, 0, len(tokens)-1)
			for _, token := range tokens[:len(tokens)-1] {
				token.Position = Position{}
				actual = append(actual, token)
			}

			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		tokenType  TokenType
		value      string
		numberType string
		unit       string
	}{
		{name: "integer", input: "10", tokenType: NUMBER, value: "10", numberType: TypeInteger},
		{name: "signed integer", input: "+5", tokenType: NUMBER, value: "+5", numberType: TypeInteger},
		{name: "negative", input: "-3", tokenType: NUMBER, value: "-3", numberType: TypeInteger},
		{name: "fraction", input: "1.5", tokenType: NUMBER, value: "1.5", numberType: TypeNumber},
		{name: "leading dot", input: ".5", tokenType: NUMBER, value: ".5", numberType: TypeNumber},
		{name: "exponent", input: "1e3", tokenType: NUMBER, value: "1e3", numberType: TypeNumber},
		{name: "signed exponent", input: "2E-2", tokenType: NUMBER, value: "2E-2", numberType: TypeNumber},
		{name: "percentage", input: "50%", tokenType: PERCENTAGE, value: "50", numberType: TypeInteger},
		{name: "dimension", input: "10px", tokenType: DIMENSION, value: "10", numberType: TypeInteger, unit: "px"},
		{name: "fractional dimension", input: "1.25em", tokenType: DIMENSION, value: "1.25", numberType: TypeNumber, unit: "em"},
		{name: "e is a unit without digits", input: "3em", tokenType: DIMENSION, value: "3", numberType: TypeInteger, unit: "em"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.input)
			assert.Equal(t, 2, len(tokens))
			assert.Equal(t, tt.tokenType, tokens[0].Type)
			assert.Equal(t, tt.value, tokens[0].Value)
			assert.Equal(t, tt.numberType, tokens[0].Flag(FlagType))
			assert.Equal(t, tt.unit, tokens[0].Flag(FlagUnit))
		})
	}
}

func TestSignWithoutDigitsIsDelim(t *testing.T) {
	tokens := Tokenize("+a")
	assert.Equal(t, []TokenType{DELIM, IDENT, EOF}, types(tokens))
	assert.Equal(t, "+", tokens[0].Value)

	tokens = Tokenize(".x")
	assert.Equal(t, []TokenType{DELIM, IDENT, EOF}, types(tokens))
}

func TestDecimal(t *testing.T) {
	tokens := Tokenize("12.50px")
	d, err := tokens[0].Decimal()
	assert.NoError(t, err)
	assert.Equal(t, "12.5", d.String())

	_, err = tokens[1].Decimal()
	assert.IsError(t, err, ErrNotNumeric)
}

func TestEscapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "hex escape in ident", input: `\41 b`, expected: "Ab"},
		{name: "hex escape in string", input: `"\41"`, expected: "A"},
		{name: "six digit escape", input: `"\00004A"`, expected: "J"},
		{name: "null escape", input: `"\0"`, expected: "�"},
		{name: "surrogate escape", input: `"\D800"`, expected: "�"},
		{name: "out of range escape", input: `"\110000"`, expected: "�"},
		{name: "literal escape", input: `"\""`, expected: `"`},
		{name: "line continuation", input: "\"a\\\nb\"", expected: "ab"},
		{name: "escape at eof", input: `a\`, expected: "a�"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.input)
			assert.Equal(t, tt.expected, tokens[0].Value)
		})
	}
}

func TestBadString(t *testing.T) {
	tokens := Tokenize("'abc\ndef'")

	assert.Equal(t, BAD_STRING, tokens[0].Type)
	assert.Equal(t, "abc", tokens[0].Value)
	assert.Equal(t, WHITESPACE, tokens[1].Type)
	assert.Equal(t, IDENT, tokens[2].Type)
}

func TestPositions(t *testing.T) {
	tokens := Tokenize("a {\n  color: red;\n}")

	tests := []struct {
		index  int
		value  string
		line   int
		column int
	}{
		{index: 0, value: "a", line: 1, column: 1},
		{index: 2, value: "{", line: 1, column: 3},
		{index: 4, value: "color", line: 2, column: 3},
		{index: 5, value: ":", line: 2, column: 8},
		{index: 7, value: "red", line: 2, column: 10},
		{index: 10, value: "}", line: 3, column: 1},
	}

	for _, tt := range tests {
		token := tokens[tt.index]
		assert.Equal(t, tt.value, token.Value)
		assert.Equal(t, tt.line, token.Position.Line, tt.value)
		assert.Equal(t, tt.column, token.Position.Column, tt.value)
	}
}

func TestCarriageReturnNormalized(t *testing.T) {
	tokens := Tokenize("a\r\nb")
	assert.Equal(t, "\n", tokens[1].Value)
	assert.Equal(t, 2, tokens[2].Position.Line)
}
