package parserstep2

import (
	"fmt"

	cmn "github.com/shibukawa/hcss/parser/parsercommon"
	tok "github.com/shibukawa/hcss/tokenizer"
)

// parseComplexSelector parses compound selectors joined by combinators.
func parseComplexSelector(seg segment) (cmn.ComplexSelector, error) {
	values := cmn.TrimWhitespace(seg.values)
	if len(values) == 0 {
		return nil, cmn.NewSyntaxError(nil, seg.at, "Expected selector")
	}

	c := cmn.NewCursor(values, 0)

	first, err := parseCompound(c)
	if err != nil {
		return nil, err
	}

	result := cmn.ComplexSelector{{Compound: first}}

	for !c.EOF() {
		hadSpace := c.Check(0, tok.WHITESPACE)
		c.SkipWhitespace()

		combinator, explicit, err := parseCombinator(c, hadSpace)
		if err != nil {
			return nil, err
		}

		if !explicit && !hadSpace {
			return nil, c.ErrorAt(0, fmt.Sprintf("Unexpected %s in selector", describeValue(c.Peek(0))))
		}

		c.SkipWhitespace()

		if c.EOF() {
			return nil, c.ErrorAt(0, fmt.Sprintf("Expected selector after combinator '%s'", combinator.Kind))
		}

		compound, err := parseCompound(c)
		if err != nil {
			return nil, err
		}

		result = append(result, cmn.ComplexSelectorPart{Combinator: combinator, Compound: compound})
	}

	return result, nil
}

// parseCombinator consumes >, +, ~ or ||. explicit is false for the
// descendant combinator. After whitespace "|name" starts a compound instead.
func parseCombinator(c *cmn.Cursor, afterSpace bool) (cmn.Combinator, bool, error) {
	t, ok := c.PeekToken(0)
	if !ok || t.Type != tok.DELIM {
		return cmn.Combinator{Kind: cmn.CombinatorNone}, false, nil
	}

	var kind cmn.CombinatorKind

	switch t.Value {
	case ">":
		kind = cmn.CombinatorChild
	case "+":
		kind = cmn.CombinatorNextSibling
	case "~":
		kind = cmn.CombinatorSubsequentSibling
	case "|":
		if afterSpace && hasNsPrefix(c, 0) {
			return cmn.Combinator{Kind: cmn.CombinatorNone}, false, nil
		}

		c.Next()

		second, err := c.ConsumeDelim("|", "Expected second |")
		if err != nil {
			return cmn.Combinator{}, false, err
		}

		return cmn.Combinator{Kind: cmn.CombinatorColumn, Tokens: []tok.Token{t, second}}, true, nil
	default:
		return cmn.Combinator{Kind: cmn.CombinatorNone}, false, nil
	}

	c.Next()

	return cmn.Combinator{Kind: kind, Tokens: []tok.Token{t}}, true, nil
}

// parseCompound parses [type] subclass* (pseudo-element pseudo-class*)*.
func parseCompound(c *cmn.Cursor) (cmn.CompoundSelector, error) {
	var compound cmn.CompoundSelector

	typeSelector, err := parseTypeSelector(c)
	if err != nil {
		return compound, err
	}

	compound.Type = typeSelector

	for {
		sub, err := parseSubclass(c)
		if err != nil {
			return compound, err
		}

		if sub == nil {
			break
		}

		compound.Subclasses = append(compound.Subclasses, sub)
	}

	for isPseudoElementStart(c) {
		colon, _ := c.Next().(tok.Token)

		pseudo, err := parsePseudoClass(c)
		if err != nil {
			return compound, err
		}

		group := cmn.PseudoGroup{Element: cmn.PseudoElementSelector{Colon: colon, Selector: *pseudo}}

		for c.Check(0, tok.COLON) && !isPseudoElementStart(c) {
			class, err := parsePseudoClass(c)
			if err != nil {
				return compound, err
			}

			group.Classes = append(group.Classes, *class)
		}

		compound.Pseudos = append(compound.Pseudos, group)
	}

	if compound.IsEmpty() {
		return compound, c.ErrorAt(0, fmt.Sprintf("Expected selector, found %s", describeValue(c.Peek(0))))
	}

	return compound, nil
}

func isPseudoElementStart(c *cmn.Cursor) bool {
	return c.Check(0, tok.COLON) && c.Check(1, tok.COLON)
}

// isNameOrStar reports whether the value at offset can follow a namespace bar.
func isNameOrStar(c *cmn.Cursor, offset int) bool {
	return c.Check(offset, tok.IDENT) || c.CheckDelim(offset, "*")
}

// hasNsPrefix reports whether the values at offset start "ns|name". "a||b" is
// a column combinator, not a namespace.
func hasNsPrefix(c *cmn.Cursor, offset int) bool {
	return c.CheckDelim(offset, "|") && isNameOrStar(c, offset+1)
}

func parseTypeSelector(c *cmn.Cursor) (*cmn.TypeSelector, error) {
	var prefix *cmn.NsPrefix

	switch {
	case isNameOrStar(c, 0) && hasNsPrefix(c, 1):
		value, _ := c.Next().(tok.Token)
		bar, _ := c.Next().(tok.Token)
		prefix = &cmn.NsPrefix{Value: &value, Bar: bar}
	case hasNsPrefix(c, 0):
		bar, _ := c.Next().(tok.Token)
		prefix = &cmn.NsPrefix{Bar: bar}
	}

	t, _ := c.PeekToken(0)

	switch {
	case t.Type == tok.IDENT:
		c.Next()
		return &cmn.TypeSelector{Name: &cmn.WqName{Prefix: prefix, Ident: t}}, nil
	case t.IsDelim("*"):
		c.Next()
		return &cmn.TypeSelector{Prefix: prefix, Star: &t}, nil
	case prefix != nil:
		return nil, c.ErrorAt(0, "Expected name or '*' after namespace prefix")
	}

	return nil, nil
}

// parseSubclass returns nil when the front value does not start a subclass selector.
func parseSubclass(c *cmn.Cursor) (cmn.SubclassSelector, error) {
	switch v := c.Peek(0).(type) {
	case tok.Token:
		switch {
		case v.Type == tok.HASH:
			if v.Flag(tok.FlagType) != tok.TypeID {
				return nil, c.ErrorAt(0, fmt.Sprintf("Expected identifier after '#', found %q", v.Value))
			}

			c.Next()

			return &cmn.IDSelector{Hash: v}, nil
		case v.IsDelim("."):
			c.Next()

			ident, err := c.Consume(tok.IDENT, "Expected class name after '.'")
			if err != nil {
				return nil, err
			}

			return &cmn.ClassSelector{Dot: v, Ident: ident}, nil
		case v.IsDelim("&"):
			c.Next()
			return &cmn.NestingSelector{Ampersand: v}, nil
		case v.Type == tok.OPENED_BRACKET:
			c.Next()
			return parseAttribute(c, v)
		case v.Type == tok.COLON && !c.Check(1, tok.COLON):
			return parsePseudoClass(c)
		}
	case *cmn.SimpleBlock:
		if v.Open.Type != tok.OPENED_BRACKET {
			return nil, nil
		}

		if v.Close == nil {
			return nil, cmn.NewSyntaxError(nil, v.Open.Position, "Expected ']'")
		}

		c.Next()

		inner := cmn.NewCursor(append(append([]cmn.ComponentValue{}, v.Value...), *v.Close), 0)

		return parseAttribute(inner, v.Open)
	}

	return nil, nil
}

// parseAttribute parses the rest of an attribute selector after "[".
func parseAttribute(c *cmn.Cursor, open tok.Token) (*cmn.AttributeSelector, error) {
	attr := &cmn.AttributeSelector{Open: open}

	c.SkipWhitespace()

	switch {
	case isNameOrStar(c, 0) && hasNsPrefix(c, 1):
		value, _ := c.Next().(tok.Token)
		bar, _ := c.Next().(tok.Token)
		attr.Name.Prefix = &cmn.NsPrefix{Value: &value, Bar: bar}
	case hasNsPrefix(c, 0):
		bar, _ := c.Next().(tok.Token)
		attr.Name.Prefix = &cmn.NsPrefix{Bar: bar}
	}

	ident, err := c.Consume(tok.IDENT, "Expected attribute name")
	if err != nil {
		return nil, err
	}

	attr.Name.Ident = ident

	c.SkipWhitespace()

	if t, ok := c.PeekToken(0); ok && t.Type == tok.DELIM {
		switch t.Value {
		case "~", "|", "^", "$", "*":
			c.Next()

			equals, err := c.ConsumeDelim("=", fmt.Sprintf("Expected '=' after '%s'", t.Value))
			if err != nil {
				return nil, err
			}

			attr.Matcher = &cmn.AttrMatcher{Prefix: &t, Equals: equals}
		case "=":
			c.Next()

			attr.Matcher = &cmn.AttrMatcher{Equals: t}
		}
	}

	if attr.Matcher != nil {
		c.SkipWhitespace()

		value, ok := c.PeekToken(0)
		if !ok || (value.Type != tok.STRING && value.Type != tok.IDENT) {
			return nil, c.ErrorAt(0, "Expected string or identifier as attribute value")
		}

		c.Next()

		attr.Value = &value

		c.SkipWhitespace()

		if modifier, ok := c.PeekToken(0); ok && modifier.Type == tok.IDENT {
			switch modifier.Value {
			case "i", "I", "s", "S":
				c.Next()

				attr.Modifier = &modifier
			default:
				return nil, c.ErrorAt(0, fmt.Sprintf("Expected attribute modifier 'i' or 's', found %q", modifier.Value))
			}
		}

		c.SkipWhitespace()
	}

	closeToken, err := c.Consume(tok.CLOSED_BRACKET, "Expected ']'")
	if err != nil {
		return nil, err
	}

	attr.Close = closeToken

	return attr, nil
}

// parsePseudoClass parses ":name" or ":name(any-value)".
func parsePseudoClass(c *cmn.Cursor) (*cmn.PseudoClassSelector, error) {
	colon, err := c.Consume(tok.COLON, "Expected ':'")
	if err != nil {
		return nil, err
	}

	pseudo := &cmn.PseudoClassSelector{Colon: colon}

	switch v := c.Peek(0).(type) {
	case tok.Token:
		switch v.Type {
		case tok.IDENT:
			c.Next()

			pseudo.Name = v

			return pseudo, nil
		case tok.FUNCTION:
			c.Next()

			pseudo.Name = v

			anyValue, err := ConsumeDeclarationValue(c, true)
			if err != nil {
				return nil, err
			}

			closeToken, err := c.Consume(tok.CLOSED_PARENS, fmt.Sprintf("Expected ')' to close :%s(", v.Value))
			if err != nil {
				return nil, err
			}

			pseudo.AnyValue = nonNil(anyValue)
			pseudo.CloseParen = &closeToken

			return pseudo, nil
		}
	case *cmn.FunctionCall:
		if v.Close == nil {
			return nil, cmn.NewSyntaxError(&v.Name, v.Name.Position, fmt.Sprintf("Expected ')' to close :%s(", v.Name.Value))
		}

		c.Next()

		pseudo.Name = v.Name
		pseudo.AnyValue = nonNil(v.Flatten())
		pseudo.CloseParen = v.Close

		return pseudo, nil
	}

	return nil, c.ErrorAt(0, "Expected pseudo-class name after ':'")
}

// nonNil keeps an empty argument list distinguishable from the ident form.
func nonNil(values []cmn.ComponentValue) []cmn.ComponentValue {
	if values == nil {
		return []cmn.ComponentValue{}
	}

	return values
}

// ConsumeDeclarationValue consumes a bracket-balanced run of values. The run
// stops before a closer that has no opener in the run. Unless anyValue is
// set it also stops before a top-level ";" or "!". A closer that does not
// match the innermost opener is an error.
func ConsumeDeclarationValue(c *cmn.Cursor, anyValue bool) ([]cmn.ComponentValue, error) {
	var (
		values  []cmn.ComponentValue
		closers []tok.TokenType
	)

	for {
		v := c.Peek(0)
		if v == nil {
			return values, nil
		}

		if t, ok := v.(tok.Token); ok {
			switch {
			case t.IsBlockOpener():
				closer, _ := tok.Mirror(t.Type)
				closers = append(closers, closer)
			case t.Type == tok.FUNCTION:
				closers = append(closers, tok.CLOSED_PARENS)
			case t.Type == tok.CLOSED_PARENS || t.Type == tok.CLOSED_BRACKET || t.Type == tok.CLOSED_BRACE:
				if len(closers) == 0 {
					return values, nil
				}

				if expected := closers[len(closers)-1]; t.Type != expected {
					return nil, c.ErrorAt(0, fmt.Sprintf("Mismatched closing bracket, expected %s", expected))
				}

				closers = closers[:len(closers)-1]
			case !anyValue && len(closers) == 0 && (t.Type == tok.SEMICOLON || t.IsDelim("!")):
				return values, nil
			}
		}

		values = append(values, c.Next())
	}
}

func describeValue(v cmn.ComponentValue) string {
	switch v := v.(type) {
	case nil:
		return "end of input"
	case tok.Token:
		return v.String()
	default:
		return fmt.Sprintf("%T", v)
	}
}
