package tokenizer

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors
var (
	ErrNotNumeric = errors.New("token is not numeric")
)

// TokenType represents the type of a token
type TokenType int

const (
	EOF TokenType = iota
	WHITESPACE
	IDENT
	FUNCTION   // ident immediately followed by "(" (Value excludes the paren)
	AT_KEYWORD // @name (Value excludes the "@")
	HASH       // #name (Value excludes the "#")
	STRING
	BAD_STRING
	URL // url(...) without quotes (Value is the decoded body)
	BAD_URL
	DELIM // any other single code point
	NUMBER
	PERCENTAGE
	DIMENSION
	CDO // <!--
	CDC // -->
	COLON
	SEMICOLON
	COMMA
	OPENED_BRACKET // [
	CLOSED_BRACKET // ]
	OPENED_PARENS  // (
	CLOSED_PARENS  // )
	OPENED_BRACE   // {
	CLOSED_BRACE   // }
)

var tokenTypeNames = map[TokenType]string{
	EOF:            "EOF",
	WHITESPACE:     "WHITESPACE",
	IDENT:          "IDENT",
	FUNCTION:       "FUNCTION",
	AT_KEYWORD:     "AT_KEYWORD",
	HASH:           "HASH",
	STRING:         "STRING",
	BAD_STRING:     "BAD_STRING",
	URL:            "URL",
	BAD_URL:        "BAD_URL",
	DELIM:          "DELIM",
	NUMBER:         "NUMBER",
	PERCENTAGE:     "PERCENTAGE",
	DIMENSION:      "DIMENSION",
	CDO:            "CDO",
	CDC:            "CDC",
	COLON:          "COLON",
	SEMICOLON:      "SEMICOLON",
	COMMA:          "COMMA",
	OPENED_BRACKET: "OPENED_BRACKET",
	CLOSED_BRACKET: "CLOSED_BRACKET",
	OPENED_PARENS:  "OPENED_PARENS",
	CLOSED_PARENS:  "CLOSED_PARENS",
	OPENED_BRACE:   "OPENED_BRACE",
	CLOSED_BRACE:   "CLOSED_BRACE",
}

// String returns the string representation of TokenType
func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Flag keys and values stored in Token.Flags
const (
	FlagType  = "type"  // hash: id/unquoted, numeric: integer/number
	FlagUnit  = "unit"  // dimension unit
	FlagQuote = "quote" // string quote character

	TypeID       = "id"
	TypeUnquoted = "unquoted"
	TypeInteger  = "integer"
	TypeNumber   = "number"
)

// Position represents a position in the source code
type Position struct {
	Line   int // 1-based
	Column int // 1-based, points at the first code point of the token
	Offset int // 0-based byte offset
}

// String returns the string representation of Position
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Token represents a lexical token
type Token struct {
	Type     TokenType
	Value    string
	Position Position
	Flags    map[string]string
}

// Flag returns a flag value or "" when unset.
func (t Token) Flag(key string) string {
	if t.Flags == nil {
		return ""
	}

	return t.Flags[key]
}

// IsDelim reports whether the token is the delimiter ch.
func (t Token) IsDelim(ch string) bool {
	return t.Type == DELIM && t.Value == ch
}

// IsNumeric reports whether the token carries a numeric value.
func (t Token) IsNumeric() bool {
	return t.Type == NUMBER || t.Type == PERCENTAGE || t.Type == DIMENSION
}

// Decimal returns the numeric value of NUMBER, PERCENTAGE and DIMENSION tokens.
func (t Token) Decimal() (decimal.Decimal, error) {
	if !t.IsNumeric() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNotNumeric, t.Type)
	}

	d, err := decimal.NewFromString(t.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %w", ErrNotNumeric, t.Value, err)
	}

	return d, nil
}

// IsBlockOpener reports whether the token opens a simple block.
func (t Token) IsBlockOpener() bool {
	return t.Type == OPENED_BRACE || t.Type == OPENED_BRACKET || t.Type == OPENED_PARENS
}

// String returns a debug representation of the token
func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "EOF"
	case DIMENSION:
		return fmt.Sprintf("%s(%s%s)", t.Type, t.Value, t.Flag(FlagUnit))
	default:
		return fmt.Sprintf("%s(%q)", t.Type, t.Value)
	}
}

// Mirror returns the closing token type for a block opener.
func Mirror(opener TokenType) (TokenType, bool) {
	switch opener {
	case OPENED_BRACE:
		return CLOSED_BRACE, true
	case OPENED_BRACKET:
		return CLOSED_BRACKET, true
	case OPENED_PARENS:
		return CLOSED_PARENS, true
	default:
		return EOF, false
	}
}

// Start returns the token position. It lets tokens stand in for parsed nodes.
func (t Token) Start() Position {
	return t.Position
}
