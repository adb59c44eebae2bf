package parsercommon

import (
	"fmt"

	tok "github.com/shibukawa/hcss/tokenizer"
)

// expansionEnd marks where a spliced mixin body ends.
type expansionEnd struct {
	name string
	pos  tok.Position
}

func (e expansionEnd) Start() tok.Position { return e.pos }

// Cursor is a re-entrant reader over component values. Values spliced at the
// front are read before the remaining input.
type Cursor struct {
	values     []ComponentValue
	pos        int
	baseDepth  int
	expansions []string
	last       tok.Position
}

// NewCursor creates a cursor over values. baseDepth is the number of mixin
// expansions already active in the enclosing cursor.
func NewCursor(values []ComponentValue, baseDepth int) *Cursor {
	c := &Cursor{
		values:    values,
		baseDepth: baseDepth,
	}
	if len(values) > 0 {
		c.last = values[0].Start()
	}

	return c
}

// NewTokenCursor creates a cursor over lexer output. The EOF token is dropped.
func NewTokenCursor(tokens []tok.Token) *Cursor {
	values := make([]ComponentValue, 0, len(tokens))

	var eofPos tok.Position

	for _, token := range tokens {
		if token.Type == tok.EOF {
			eofPos = token.Position
			continue
		}

		values = append(values, token)
	}

	c := NewCursor(values, 0)
	if len(values) == 0 {
		c.last = eofPos
	}

	return c
}

// Peek returns the value at offset without consuming, or nil past the end.
func (c *Cursor) Peek(offset int) ComponentValue {
	for i := c.pos; i < len(c.values); i++ {
		if _, ok := c.values[i].(expansionEnd); ok {
			continue
		}

		if offset == 0 {
			return c.values[i]
		}

		offset--
	}

	return nil
}

// PeekAs returns the value at offset when it has type T.
func PeekAs[T ComponentValue](c *Cursor, offset int) (T, bool) {
	v, ok := c.Peek(offset).(T)
	return v, ok
}

// PeekToken returns the token at offset when the value there is a token.
func (c *Cursor) PeekToken(offset int) (tok.Token, bool) {
	return PeekAs[tok.Token](c, offset)
}

// Check reports whether the value at offset is a token of one of types.
func (c *Cursor) Check(offset int, types ...tok.TokenType) bool {
	return IsTokenType(c.Peek(offset), types...)
}

// CheckDelim reports whether the value at offset is the delimiter ch.
func (c *Cursor) CheckDelim(offset int, ch string) bool {
	return IsDelim(c.Peek(offset), ch)
}

// EOF reports whether all values are consumed.
func (c *Cursor) EOF() bool {
	return c.Peek(0) == nil
}

// Next pops and returns the front value, or nil at the end.
func (c *Cursor) Next() ComponentValue {
	c.dropMarkers()

	if c.pos >= len(c.values) {
		return nil
	}

	v := c.values[c.pos]
	c.pos++
	c.last = v.Start()

	return v
}

func (c *Cursor) dropMarkers() {
	for c.pos < len(c.values) {
		if _, ok := c.values[c.pos].(expansionEnd); !ok {
			return
		}

		c.pos++
		if len(c.expansions) > 0 {
			c.expansions = c.expansions[:len(c.expansions)-1]
		}
	}
}

// ConsumeAs pops the front value as T, failing with ErrTypeMismatch.
func ConsumeAs[T ComponentValue](c *Cursor) (T, error) {
	v, ok := c.Peek(0).(T)
	if !ok {
		var zero T
		return zero, NewParseError(ErrTypeMismatch, c.tokenAt(0), c.last, "expected %T but found %s", zero, describe(c.Peek(0)))
	}

	c.Next()

	return v, nil
}

// Consume pops a token of the given type or fails with a syntax error carrying message.
func (c *Cursor) Consume(tokenType tok.TokenType, message string) (tok.Token, error) {
	t, ok := c.PeekToken(0)
	if !ok || t.Type != tokenType {
		return tok.Token{}, NewSyntaxError(c.tokenAt(0), c.last, fmt.Sprintf("%s, found %s", message, describe(c.Peek(0))))
	}

	c.Next()

	return t, nil
}

// ConsumeDelim pops the delimiter ch or fails with a syntax error carrying message.
func (c *Cursor) ConsumeDelim(ch, message string) (tok.Token, error) {
	if !c.CheckDelim(0, ch) {
		return tok.Token{}, NewSyntaxError(c.tokenAt(0), c.last, fmt.Sprintf("%s, found %s", message, describe(c.Peek(0))))
	}

	t, _ := c.Next().(tok.Token)

	return t, nil
}

// SkipWhitespace consumes whitespace tokens.
func (c *Cursor) SkipWhitespace() {
	for c.Check(0, tok.WHITESPACE) {
		c.Next()
	}
}

// SkipWhitespaceOffset returns the offset of the first non-whitespace value.
func (c *Cursor) SkipWhitespaceOffset() int {
	i := 0
	for c.Check(i, tok.WHITESPACE) {
		i++
	}

	return i
}

// Splice inserts values at the front of the cursor.
func (c *Cursor) Splice(values []ComponentValue) {
	rest := c.values[c.pos:]
	merged := make([]ComponentValue, 0, len(values)+len(rest))
	merged = append(merged, values...)
	merged = append(merged, rest...)
	c.values = merged
	c.pos = 0
}

// SpliceExpansion inserts a mixin body and counts it as active until it is consumed.
func (c *Cursor) SpliceExpansion(name string, values []ComponentValue) {
	body := make([]ComponentValue, 0, len(values)+1)
	body = append(body, values...)
	body = append(body, expansionEnd{name: name, pos: c.last})
	c.Splice(body)
	c.expansions = append(c.expansions, name)
}

// AtExpansionEnd reports whether the next raw value closes a spliced mixin
// body. A statement running to the end of the body stops there.
func (c *Cursor) AtExpansionEnd() bool {
	if c.pos >= len(c.values) {
		return false
	}

	_, ok := c.values[c.pos].(expansionEnd)

	return ok
}

// ExpansionDepth returns the number of active mixin expansions including enclosing cursors.
func (c *Cursor) ExpansionDepth() int {
	return c.baseDepth + len(c.expansions)
}

// LastPosition returns the position of the most recently consumed value.
func (c *Cursor) LastPosition() tok.Position {
	return c.last
}

// Rest returns the unconsumed values.
func (c *Cursor) Rest() []ComponentValue {
	result := make([]ComponentValue, 0, len(c.values)-c.pos)
	for _, v := range c.values[c.pos:] {
		if _, ok := v.(expansionEnd); !ok {
			result = append(result, v)
		}
	}

	return result
}

// tokenAt returns the token at offset for diagnostics. Nodes are described by type.
func (c *Cursor) tokenAt(offset int) *tok.Token {
	switch v := c.Peek(offset).(type) {
	case tok.Token:
		return &v
	case nil:
		return nil
	default:
		t := tok.Token{Type: tok.DELIM, Value: fmt.Sprintf("%T", v), Position: v.Start()}
		return &t
	}
}

// ErrorAt creates a syntax error located at the value at offset.
func (c *Cursor) ErrorAt(offset int, message string) *ParseError {
	return NewSyntaxError(c.tokenAt(offset), c.last, message)
}

// ErrorfAt creates an error of kind located at the value at offset.
func (c *Cursor) ErrorfAt(kind error, offset int, format string, args ...any) *ParseError {
	return NewParseError(kind, c.tokenAt(offset), c.last, format, args...)
}

func describe(v ComponentValue) string {
	switch v := v.(type) {
	case nil:
		return "end of input"
	case tok.Token:
		return v.String()
	default:
		return fmt.Sprintf("%T", v)
	}
}
