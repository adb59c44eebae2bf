package parsercommon

import (
	"slices"

	pc "github.com/shibukawa/parsercombinator"
	tok "github.com/shibukawa/hcss/tokenizer"
)

var (
	// Space parses a whitespace token.
	Space = PrimitiveType("space", tok.WHITESPACE)
	// Comma parses a comma delimiter.
	Comma = PrimitiveType("comma", tok.COMMA)
	// Bang parses the "!" delimiter.
	Bang = DelimType("bang", "!")
	// ImportantKeyword parses the "important" identifier, case-insensitively.
	ImportantKeyword = KeywordType("important", "important")

	// SP consumes zero or more whitespace tokens.
	SP = pc.Drop(pc.ZeroOrMore("space", Space))
	// EOS matches end of stream.
	EOS = pc.EOS[ComponentValue]()

	// ImportantSuffix matches a trailing "! important" at the end of a declaration value.
	ImportantSuffix = pc.Seq(SP, Bang, SP, ImportantKeyword, SP, EOS)
)

// PrimitiveType matches one token of the given types.
func PrimitiveType(typeName string, types ...tok.TokenType) pc.Parser[ComponentValue] {
	return func(pctx *pc.ParseContext[ComponentValue], tokens []pc.Token[ComponentValue]) (int, []pc.Token[ComponentValue], error) {
		if len(tokens) > 0 {
			if t, ok := tokens[0].Val.(tok.Token); ok && slices.Contains(types, t.Type) {
				return 1, tokens[:1], nil
			}
		}

		return 0, nil, pc.ErrNotMatch
	}
}

// DelimType matches the delimiter token ch.
func DelimType(typeName, ch string) pc.Parser[ComponentValue] {
	return func(pctx *pc.ParseContext[ComponentValue], tokens []pc.Token[ComponentValue]) (int, []pc.Token[ComponentValue], error) {
		if len(tokens) > 0 && IsDelim(tokens[0].Val, ch) {
			return 1, tokens[:1], nil
		}

		return 0, nil, pc.ErrNotMatch
	}
}

// KeywordType matches an identifier equal to one of words, ignoring case.
func KeywordType(typeName string, words ...string) pc.Parser[ComponentValue] {
	return func(pctx *pc.ParseContext[ComponentValue], tokens []pc.Token[ComponentValue]) (int, []pc.Token[ComponentValue], error) {
		if len(tokens) > 0 {
			if t, ok := tokens[0].Val.(tok.Token); ok && t.Type == tok.IDENT {
				folded := FoldName(t.Value)
				for _, w := range words {
					if folded == FoldName(w) {
						return 1, tokens[:1], nil
					}
				}
			}
		}

		return 0, nil, pc.ErrNotMatch
	}
}

// NewParseContext creates a combinator context for component values.
func NewParseContext() *pc.ParseContext[ComponentValue] {
	pctx := pc.NewParseContext[ComponentValue]()
	pctx.OrMode = pc.OrModeTryFast
	pctx.CheckTransformSafety = true

	return pctx
}

// ToParserToken wraps component values for the combinator library.
func ToParserToken(values []ComponentValue) []pc.Token[ComponentValue] {
	results := make([]pc.Token[ComponentValue], len(values))

	for i, v := range values {
		pos := v.Start()

		raw := ""
		if t, ok := v.(tok.Token); ok {
			raw = t.Value
		}

		results[i] = pc.Token[ComponentValue]{
			Type: "raw",
			Pos: &pc.Pos{
				Line:  pos.Line,
				Col:   pos.Column,
				Index: pos.Offset,
			},
			Val: v,
			Raw: raw,
		}
	}

	return results
}

// ToValues unwraps combinator tokens.
func ToValues(entities []pc.Token[ComponentValue]) []ComponentValue {
	results := make([]ComponentValue, 0, len(entities))
	for _, entity := range entities {
		results = append(results, entity.Val)
	}

	return results
}
