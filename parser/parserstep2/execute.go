// Package parserstep2 parses rule preludes into selector trees.
package parserstep2

import (
	"fmt"

	pc "github.com/shibukawa/parsercombinator"
	cmn "github.com/shibukawa/hcss/parser/parsercommon"
	tok "github.com/shibukawa/hcss/tokenizer"
)

var (
	opener   = cmn.PrimitiveType("opener", tok.OPENED_PARENS, tok.OPENED_BRACKET, tok.FUNCTION)
	closer   = cmn.PrimitiveType("closer", tok.CLOSED_PARENS, tok.CLOSED_BRACKET)
	splitter = pc.Or(cmn.Comma, opener, closer)
)

// Execute parses a selector list. The prelude may hold raw tokens or values
// already grouped into blocks and function calls.
func Execute(prelude []cmn.ComponentValue) (cmn.ComplexSelectorList, error) {
	pctx := cmn.NewParseContext()

	var list cmn.ComplexSelectorList

	for _, part := range splitSelectorList(pctx, cmn.ToParserToken(prelude)) {
		complex, err := parseComplexSelector(part)
		if err != nil {
			return nil, err
		}

		list = append(list, complex)
	}

	return list, nil
}

// ParseSelectors tokenizes src and parses it as a selector list.
func ParseSelectors(src string) (cmn.ComplexSelectorList, error) {
	tokens := tok.Tokenize(src)

	values := make([]cmn.ComponentValue, 0, len(tokens))
	for _, t := range tokens {
		if t.Type != tok.EOF {
			values = append(values, t)
		}
	}

	list, err := Execute(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse selector %q: %w", src, err)
	}

	return list, nil
}

// segment is one comma separated selector. at locates an empty segment.
type segment struct {
	values []cmn.ComponentValue
	at     tok.Position
}

// splitSelectorList cuts the prelude at commas outside of brackets and functions.
func splitSelectorList(pctx *pc.ParseContext[cmn.ComponentValue], tokens []pc.Token[cmn.ComponentValue]) []segment {
	var (
		result  []segment
		current []pc.Token[cmn.ComponentValue]
		nest    int
		at      tok.Position
	)

	if len(tokens) > 0 {
		at = tokens[0].Val.Start()
	}

	for _, part := range pc.FindIter(pctx, splitter, tokens) {
		current = append(current, part.Skipped...)

		if part.Last {
			break
		}

		matched, _ := part.Match[0].Val.(tok.Token)

		switch {
		case matched.Type == tok.COMMA && nest == 0:
			result = append(result, segment{values: cmn.ToValues(current), at: matched.Position})
			current = nil
			at = matched.Position

			continue
		case matched.Type == tok.COMMA:
		case matched.Type == tok.CLOSED_PARENS || matched.Type == tok.CLOSED_BRACKET:
			if nest > 0 {
				nest--
			}
		default:
			nest++
		}

		current = append(current, part.Match...)
	}

	return append(result, segment{values: cmn.ToValues(current), at: at})
}
