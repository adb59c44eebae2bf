package tokenizer

import (
	"iter"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// TokenIterator uses Go 1.23 iterator pattern
type TokenIterator iter.Seq[Token]

// Tokenizer converts CSS+ source into tokens following CSS Syntax Level 3.
// It never fails: malformed input degrades to BAD_STRING, BAD_URL or DELIM tokens.
type Tokenizer struct {
	input   string
	options TokenizerOptions
}

// TokenizerOptions are options for the tokenizer
type TokenizerOptions struct {
	SkipWhitespace bool
}

const (
	eof         rune = -1
	replacement rune = '\uFFFD'
	maxCodePoint     = 0x10FFFF
)

// NewTokenizer creates a new Tokenizer
func NewTokenizer(input string, options ...TokenizerOptions) *Tokenizer {
	var opts TokenizerOptions
	if len(options) > 0 {
		opts = options[0]
	}

	return &Tokenizer{
		input:   input,
		options: opts,
	}
}

// Tokenize returns all tokens of input, terminated by a single EOF token.
func Tokenize(input string, options ...TokenizerOptions) []Token {
	return NewTokenizer(input, options...).AllTokens()
}

// Tokens returns an iterator of tokens. The last yielded token is EOF.
func (t *Tokenizer) Tokens() TokenIterator {
	return func(yield func(Token) bool) {
		tk := &tokenizer{
			input: preprocess(t.input),
			cursor: cursor{
				line:   1,
				column: 1,
			},
		}

		for {
			token := tk.nextToken()
			if token.Type == EOF {
				yield(token)
				return
			}

			if t.options.SkipWhitespace && token.Type == WHITESPACE {
				continue
			}

			if !yield(token) {
				return
			}
		}
	}
}

// AllTokens gets all tokens as a slice
func (t *Tokenizer) AllTokens() []Token {
	tokens := make([]Token, 0, 64)
	for token := range t.Tokens() {
		tokens = append(tokens, token)
	}

	return tokens
}

// preprocess normalizes newlines and NUL code points.
func preprocess(input string) []rune {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.NewReplacer("\r", "\n", "\f", "\n").Replace(input)

	runes := []rune(input)
	for i, r := range runes {
		if r == 0 {
			runes[i] = replacement
		}
	}

	return runes
}

type cursor struct {
	pos    int
	line   int
	column int
	offset int
}

// Internal tokenizer implementation
type tokenizer struct {
	input []rune
	cursor
	start cursor
}

// peek looks ahead n code points without consuming.
func (t *tokenizer) peek(n int) rune {
	if t.pos+n >= len(t.input) {
		return eof
	}

	return t.input[t.pos+n]
}

// readChar consumes one code point and returns it.
func (t *tokenizer) readChar() rune {
	if t.pos >= len(t.input) {
		return eof
	}

	c := t.input[t.pos]
	t.pos++
	t.offset += utf8.RuneLen(c)

	if c == '\n' {
		t.line++
		t.column = 1
	} else {
		t.column++
	}

	return c
}

func (t *tokenizer) skip(n int) {
	for range n {
		t.readChar()
	}
}

// nextToken gets the next token
func (t *tokenizer) nextToken() Token {
	t.consumeComments()
	t.start = t.cursor

	c := t.peek(0)
	switch {
	case c == eof:
		return t.newToken(EOF, "")
	case isWhitespace(c):
		return t.readWhitespace()
	case c == '"' || c == '\'':
		return t.readString()
	case c == '#':
		if isIdentCodePoint(t.peek(1)) || isValidEscape(t.peek(1), t.peek(2)) {
			t.readChar()

			hashType := TypeUnquoted
			if startsIdentSequence(t.peek(0), t.peek(1), t.peek(2)) {
				hashType = TypeID
			}

			return t.newToken(HASH, t.readIdentSequence(), FlagType, hashType)
		}

		return t.readDelim()
	case c == '(':
		return t.readSingle(OPENED_PARENS)
	case c == ')':
		return t.readSingle(CLOSED_PARENS)
	case c == '[':
		return t.readSingle(OPENED_BRACKET)
	case c == ']':
		return t.readSingle(CLOSED_BRACKET)
	case c == '{':
		return t.readSingle(OPENED_BRACE)
	case c == '}':
		return t.readSingle(CLOSED_BRACE)
	case c == ',':
		return t.readSingle(COMMA)
	case c == ':':
		return t.readSingle(COLON)
	case c == ';':
		return t.readSingle(SEMICOLON)
	case c == '+' || c == '.':
		if startsNumber(c, t.peek(1), t.peek(2)) {
			return t.readNumeric()
		}

		return t.readDelim()
	case c == '-':
		if startsNumber(c, t.peek(1), t.peek(2)) {
			return t.readNumeric()
		}

		if t.peek(1) == '-' && t.peek(2) == '>' {
			t.skip(3)
			return t.newToken(CDC, "-->")
		}

		if startsIdentSequence(c, t.peek(1), t.peek(2)) {
			return t.readIdentLike()
		}

		return t.readDelim()
	case c == '<':
		if t.peek(1) == '!' && t.peek(2) == '-' && t.peek(3) == '-' {
			t.skip(4)
			return t.newToken(CDO, "<!--")
		}

		return t.readDelim()
	case c == '@':
		if startsIdentSequence(t.peek(1), t.peek(2), t.peek(3)) {
			t.readChar()
			return t.newToken(AT_KEYWORD, t.readIdentSequence())
		}

		return t.readDelim()
	case c == '\\':
		if isValidEscape(c, t.peek(1)) {
			return t.readIdentLike()
		}

		return t.readDelim()
	case isDigit(c):
		return t.readNumeric()
	case isIdentStart(c):
		return t.readIdentLike()
	default:
		return t.readDelim()
	}
}

// consumeComments discards /* ... */ comments. An unterminated comment runs to EOF.
func (t *tokenizer) consumeComments() {
	for t.peek(0) == '/' && t.peek(1) == '*' {
		t.skip(2)

		for {
			c := t.readChar()
			if c == eof {
				return
			}

			if c == '*' && t.peek(0) == '/' {
				t.readChar()
				break
			}
		}
	}
}

func (t *tokenizer) readSingle(tokenType TokenType) Token {
	return t.newToken(tokenType, string(t.readChar()))
}

func (t *tokenizer) readDelim() Token {
	return t.newToken(DELIM, string(t.readChar()))
}

// readWhitespace collapses a whitespace run into one token
func (t *tokenizer) readWhitespace() Token {
	var builder strings.Builder
	for isWhitespace(t.peek(0)) {
		builder.WriteRune(t.readChar())
	}

	return t.newToken(WHITESPACE, builder.String())
}

// readString reads a quoted string. An unescaped newline yields BAD_STRING and is left unconsumed.
func (t *tokenizer) readString() Token {
	quote := t.readChar()

	var builder strings.Builder

	for {
		c := t.peek(0)
		switch {
		case c == eof:
			return t.newToken(STRING, builder.String(), FlagQuote, string(quote))
		case c == quote:
			t.readChar()
			return t.newToken(STRING, builder.String(), FlagQuote, string(quote))
		case c == '\n':
			return t.newToken(BAD_STRING, builder.String(), FlagQuote, string(quote))
		case c == '\\':
			switch t.peek(1) {
			case eof:
				t.readChar()
			case '\n':
				t.skip(2)
			default:
				t.readChar()
				builder.WriteRune(t.readEscape())
			}
		default:
			builder.WriteRune(t.readChar())
		}
	}
}

// readEscape decodes an escape; the backslash has already been consumed.
func (t *tokenizer) readEscape() rune {
	c := t.readChar()
	if c == eof {
		return replacement
	}

	if !isHexDigit(c) {
		return c
	}

	digits := []rune{c}
	for len(digits) < 6 && isHexDigit(t.peek(0)) {
		digits = append(digits, t.readChar())
	}

	if isWhitespace(t.peek(0)) {
		t.readChar()
	}

	value, err := strconv.ParseUint(string(digits), 16, 32)
	if err != nil || value == 0 || value > maxCodePoint || isSurrogate(rune(value)) {
		return replacement
	}

	return rune(value)
}

// readIdentSequence consumes the longest identifier sequence, decoding escapes.
func (t *tokenizer) readIdentSequence() string {
	var builder strings.Builder

	for {
		c := t.peek(0)
		switch {
		case isIdentCodePoint(c):
			builder.WriteRune(t.readChar())
		case isValidEscape(c, t.peek(1)):
			t.readChar()
			builder.WriteRune(t.readEscape())
		default:
			return builder.String()
		}
	}
}

// readNumber consumes the numeric representation and reports integer/number.
func (t *tokenizer) readNumber() (string, string) {
	var builder strings.Builder

	numberType := TypeInteger

	if c := t.peek(0); c == '+' || c == '-' {
		builder.WriteRune(t.readChar())
	}

	t.readDigits(&builder)

	if t.peek(0) == '.' && isDigit(t.peek(1)) {
		builder.WriteRune(t.readChar())
		t.readDigits(&builder)

		numberType = TypeNumber
	}

	if e := t.peek(0); e == 'e' || e == 'E' {
		next := t.peek(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(t.peek(2))) {
			builder.WriteRune(t.readChar())
			if next == '+' || next == '-' {
				builder.WriteRune(t.readChar())
			}

			t.readDigits(&builder)

			numberType = TypeNumber
		}
	}

	return builder.String(), numberType
}

func (t *tokenizer) readDigits(builder *strings.Builder) {
	for isDigit(t.peek(0)) {
		builder.WriteRune(t.readChar())
	}
}

// readNumeric emits DIMENSION, PERCENTAGE or NUMBER
func (t *tokenizer) readNumeric() Token {
	repr, numberType := t.readNumber()

	if startsIdentSequence(t.peek(0), t.peek(1), t.peek(2)) {
		unit := t.readIdentSequence()
		return t.newToken(DIMENSION, repr, FlagType, numberType, FlagUnit, unit)
	}

	if t.peek(0) == '%' {
		t.readChar()
		return t.newToken(PERCENTAGE, repr, FlagType, numberType)
	}

	return t.newToken(NUMBER, repr, FlagType, numberType)
}

// readIdentLike emits IDENT, FUNCTION, URL or BAD_URL
func (t *tokenizer) readIdentLike() Token {
	name := t.readIdentSequence()

	if t.peek(0) != '(' {
		return t.newToken(IDENT, name)
	}

	t.readChar()

	if cases.Fold().String(name) != "url" {
		return t.newToken(FUNCTION, name)
	}

	for isWhitespace(t.peek(0)) && isWhitespace(t.peek(1)) {
		t.readChar()
	}

	if isQuote(t.peek(0)) || (isWhitespace(t.peek(0)) && isQuote(t.peek(1))) {
		return t.newToken(FUNCTION, name)
	}

	return t.readURL()
}

// readURL reads an unquoted url( body; "url(" has been consumed.
func (t *tokenizer) readURL() Token {
	var builder strings.Builder

	for isWhitespace(t.peek(0)) {
		t.readChar()
	}

	for {
		c := t.readChar()
		switch {
		case c == ')' || c == eof:
			return t.newToken(URL, builder.String())
		case isWhitespace(c):
			for isWhitespace(t.peek(0)) {
				t.readChar()
			}

			if t.peek(0) == ')' || t.peek(0) == eof {
				t.readChar()
				return t.newToken(URL, builder.String())
			}

			return t.readBadURL(builder.String())
		case isQuote(c) || c == '(' || isNonPrintable(c):
			return t.readBadURL(builder.String())
		case c == '\\':
			if !isValidEscape(c, t.peek(0)) {
				return t.readBadURL(builder.String())
			}

			builder.WriteRune(t.readEscape())
		default:
			builder.WriteRune(c)
		}
	}
}

// readBadURL fast-forwards to the next unescaped ")" or EOF.
func (t *tokenizer) readBadURL(partial string) Token {
	for {
		c := t.readChar()
		switch {
		case c == ')' || c == eof:
			return t.newToken(BAD_URL, partial)
		case isValidEscape(c, t.peek(0)):
			t.readEscape()
		}
	}
}

// newToken creates a token positioned at the start of the current lexeme.
// flags are key/value pairs.
func (t *tokenizer) newToken(tokenType TokenType, value string, flags ...string) Token {
	token := Token{
		Type:  tokenType,
		Value: value,
		Position: Position{
			Line:   t.start.line,
			Column: t.start.column,
			Offset: t.start.offset,
		},
	}

	if len(flags) > 0 {
		token.Flags = make(map[string]string, len(flags)/2)
		for i := 0; i+1 < len(flags); i += 2 {
			token.Flags[flags[i]] = flags[i+1]
		}
	}

	return token
}

func isWhitespace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c rune) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isQuote(c rune) bool {
	return c == '"' || c == '\''
}

func isSurrogate(c rune) bool {
	return c >= 0xD800 && c <= 0xDFFF
}

func isNonPrintable(c rune) bool {
	return (c >= 0 && c <= 0x08) || c == 0x0B || (c >= 0x0E && c <= 0x1F) || c == 0x7F
}

func isIdentStart(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c >= 0x80
}

func isIdentCodePoint(c rune) bool {
	return isIdentStart(c) || isDigit(c) || c == '-'
}

// isValidEscape checks whether two code points start a valid escape.
func isValidEscape(first, second rune) bool {
	return first == '\\' && second != '\n'
}

// startsIdentSequence checks whether three code points would start an ident sequence.
func startsIdentSequence(first, second, third rune) bool {
	switch {
	case first == '-':
		return isIdentStart(second) || second == '-' || isValidEscape(second, third)
	case first == '\\':
		return isValidEscape(first, second)
	default:
		return isIdentStart(first)
	}
}

// startsNumber checks whether three code points would start a number.
func startsNumber(first, second, third rune) bool {
	switch first {
	case '+', '-':
		return isDigit(second) || (second == '.' && isDigit(third))
	case '.':
		return isDigit(second)
	default:
		return isDigit(first)
	}
}
