// Package parserstep3 resolves rule bodies: style blocks with declarations
// and nested rules, rule lists of grouping at-rules and keyframe lists.
package parserstep3

import (
	"fmt"
	"log/slog"

	pc "github.com/shibukawa/parsercombinator"
	cmn "github.com/shibukawa/hcss/parser/parsercommon"
	"github.com/shibukawa/hcss/parser/parserstep1"
	"github.com/shibukawa/hcss/parser/parserstep2"
	tok "github.com/shibukawa/hcss/tokenizer"
)

// Execute consumes every top-level rule of p. Qualified rules are promoted to
// style rules as soon as they are read, so definitions that follow a rule do
// not affect it.
func Execute(p *parserstep1.Parser) ([]cmn.SyntaxNode, error) {
	var result []cmn.SyntaxNode

	for node, err := range p.Rules() {
		if err != nil {
			return nil, err
		}

		resolved, err := resolveRule(p, node, false)
		if err != nil {
			return nil, err
		}

		result = append(result, resolved)
	}

	return result, nil
}

func resolveRule(p *parserstep1.Parser, node cmn.SyntaxNode, nested bool) (cmn.SyntaxNode, error) {
	switch n := node.(type) {
	case *cmn.QualifiedRule:
		return StyleRule(p, n)
	case *cmn.AtRule:
		return AtRule(p, n, nested)
	default:
		return nil, fmt.Errorf("%w: unexpected %T at rule level", cmn.ErrTypeMismatch, node)
	}
}

// StyleRule selector-parses the prelude and resolves the block as a style block.
func StyleRule(p *parserstep1.Parser, rule *cmn.QualifiedRule) (*cmn.StyleRule, error) {
	selectors, err := parserstep2.Execute(rule.Prelude)
	if err != nil {
		return nil, err
	}

	block, err := StyleBlock(p, rule.Block)
	if err != nil {
		return nil, err
	}

	return &cmn.StyleRule{
		Selectors: selectors,
		Block:     block,
		Prelude:   rule.Prelude,
	}, nil
}

// StyleBlock parses the contents of block in a child scope.
func StyleBlock(p *parserstep1.Parser, block *cmn.SimpleBlock) (cmn.StyleBlock, error) {
	if block == nil {
		return cmn.StyleBlock{}, nil
	}

	sub := p.Sub(block.Value)

	if err := sub.EnterBlock(); err != nil {
		return nil, err
	}
	defer sub.LeaveBlock()

	ns := sub.Namespace()
	ns.Enter()
	defer ns.Exit() //nolint:errcheck

	result := cmn.StyleBlock{}

	for {
		switch v := sub.Peek(0).(type) {
		case nil:
			return result, nil
		case tok.Token:
			switch {
			case v.Type == tok.WHITESPACE || v.Type == tok.SEMICOLON:
				sub.Next()
			case v.Type == tok.AT_KEYWORD:
				rule, err := sub.ConsumeAtRule()
				if err != nil {
					return nil, err
				}

				if rule == nil {
					continue
				}

				resolved, err := AtRule(sub, rule, true)
				if err != nil {
					return nil, err
				}

				result = append(result, resolved)
			case sub.IsVariableStart():
				if _, _, err := sub.ConsumeVariable(); err != nil {
					return nil, err
				}
			case v.Type == tok.IDENT:
				decl, err := consumeDeclaration(sub)
				if err != nil {
					return nil, err
				}

				result = append(result, decl)
			case v.IsDelim("&"):
				rule, err := sub.ConsumeQualifiedRule()
				if err != nil {
					return nil, err
				}

				styleRule, err := StyleRule(sub, rule)
				if err != nil {
					return nil, err
				}

				result = append(result, styleRule)
			default:
				if err := skipStatement(sub); err != nil {
					return nil, err
				}
			}
		case *cmn.AtRule:
			sub.Next()

			resolved, err := AtRule(sub, v, true)
			if err != nil {
				return nil, err
			}

			result = append(result, resolved)
		default:
			if err := skipStatement(sub); err != nil {
				return nil, err
			}
		}
	}
}

// consumeDeclaration parses "name: value [!important]" up to the next ";"
// or the end of the mixin body it came from.
func consumeDeclaration(p *parserstep1.Parser) (*cmn.Declaration, error) {
	name, err := p.Consume(tok.IDENT, "Expected property name")
	if err != nil {
		return nil, err
	}

	p.SkipWhitespace()

	colon, err := p.Consume(tok.COLON, fmt.Sprintf("Expected ':' after property name %s", name.Value))
	if err != nil {
		return nil, err
	}

	var values []cmn.ComponentValue

	for {
		v := p.Peek(0)
		if v == nil || p.AtExpansionEnd() {
			break
		}

		if cmn.IsTokenType(v, tok.SEMICOLON) {
			p.Next()
			break
		}

		value, err := p.ConsumeComponentValue()
		if err != nil {
			return nil, err
		}

		if value != nil {
			values = append(values, value)
		}
	}

	decl := &cmn.Declaration{Name: name, Colon: colon}

	decl.Value, decl.Important, err = splitImportant(cmn.TrimWhitespace(values))
	if err != nil {
		return nil, err
	}

	return decl, nil
}

// splitImportant separates the value run from a trailing "!important". Only
// a value with a top-level "!" is searched for the suffix.
func splitImportant(values []cmn.ComponentValue) ([]cmn.ComponentValue, bool, error) {
	c := cmn.NewCursor(values, 0)

	run, err := parserstep2.ConsumeDeclarationValue(c, false)
	if err != nil {
		return nil, false, err
	}

	if c.EOF() {
		return run, false, nil
	}

	value, important := stripImportant(values)

	return value, important, nil
}

// stripImportant removes a trailing "!important" and reports whether it was present.
func stripImportant(values []cmn.ComponentValue) ([]cmn.ComponentValue, bool) {
	pctx := cmn.NewParseContext()

	skipped, _, _, _, found := pc.Find(pctx, cmn.ImportantSuffix, cmn.ToParserToken(values))
	if !found {
		return values, false
	}

	return cmn.TrimWhitespace(cmn.ToValues(skipped)), true
}

// skipStatement drops values up to and including the next ";". It also
// stops at the end of a mixin body.
func skipStatement(p *parserstep1.Parser) error {
	for skipped := 0; ; skipped++ {
		v := p.Peek(0)
		if v == nil || (skipped > 0 && p.AtExpansionEnd()) {
			return nil
		}

		if cmn.IsTokenType(v, tok.SEMICOLON) {
			p.Next()
			return nil
		}

		value, err := p.ConsumeComponentValue()
		if err != nil {
			return err
		}

		if value != nil {
			p.Logger().Trace("skipped value in style block", slog.String("position", value.Start().String()))
		}
	}
}
