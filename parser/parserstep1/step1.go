// Package parserstep1 implements the component-value grammar of CSS Syntax
// Level 3 together with scope resolution of variables, mixins and custom
// at-rule aliases. Later steps reuse the Parser for nested blocks.
package parserstep1

import (
	"iter"
	"log/slog"
	"strings"

	cmn "github.com/shibukawa/hcss/parser/parsercommon"
	tok "github.com/shibukawa/hcss/tokenizer"
)

// Default limits
const (
	DefaultMaxIncludeDepth = 64
	DefaultMaxNestingDepth = 256
)

// Options controls resolution limits and tracing.
type Options struct {
	MaxIncludeDepth int
	MaxNestingDepth int
	Logger          *slog.Logger
}

// state is shared by a parser and every sub parser created from it.
type state struct {
	ns      *cmn.Namespace
	opts    Options
	log     cmn.Logger
	nesting int
}

// Parser consumes component values from a cursor, resolving variables,
// mixins and at-rule aliases against a shared namespace.
type Parser struct {
	*cmn.Cursor
	st *state
}

// NewParser creates a parser over lexer output with a fresh namespace.
func NewParser(tokens []tok.Token, opts Options) *Parser {
	if opts.MaxIncludeDepth <= 0 {
		opts.MaxIncludeDepth = DefaultMaxIncludeDepth
	}

	if opts.MaxNestingDepth <= 0 {
		opts.MaxNestingDepth = DefaultMaxNestingDepth
	}

	return &Parser{
		Cursor: cmn.NewTokenCursor(tokens),
		st: &state{
			ns:   cmn.NewNamespace(),
			opts: opts,
			log:  cmn.Logger{L: opts.Logger},
		},
	}
}

// Sub creates a parser over values that shares the namespace and limits.
func (p *Parser) Sub(values []cmn.ComponentValue) *Parser {
	return &Parser{
		Cursor: cmn.NewCursor(values, p.ExpansionDepth()),
		st:     p.st,
	}
}

// Namespace returns the scope stack.
func (p *Parser) Namespace() *cmn.Namespace {
	return p.st.ns
}

// Logger returns the trace logger.
func (p *Parser) Logger() cmn.Logger {
	return p.st.log
}

// EnterBlock increases the nesting depth and fails past MaxNestingDepth.
func (p *Parser) EnterBlock() error {
	if p.st.nesting >= p.st.opts.MaxNestingDepth {
		return p.ErrorfAt(cmn.ErrRecursionLimitExceeded, 0, "block nesting exceeds %d levels", p.st.opts.MaxNestingDepth)
	}

	p.st.nesting++

	return nil
}

// LeaveBlock undoes EnterBlock.
func (p *Parser) LeaveBlock() {
	p.st.nesting--
}

// Rules yields the top-level rules of a stylesheet: *cmn.AtRule and
// *cmn.QualifiedRule. Variable, mixin and alias definitions are consumed
// without being yielded. Iteration stops after the first error.
func (p *Parser) Rules() iter.Seq2[cmn.SyntaxNode, error] {
	return func(yield func(cmn.SyntaxNode, error) bool) {
		for {
			p.SkipWhitespace()

			switch v := p.Peek(0).(type) {
			case nil:
				return
			case tok.Token:
				switch {
				case v.Type == tok.CDO || v.Type == tok.CDC:
					p.Next()
					continue
				case v.Type == tok.AT_KEYWORD:
					rule, err := p.ConsumeAtRule()
					if err != nil {
						yield(nil, err)
						return
					}

					if rule != nil && !yield(rule, nil) {
						return
					}

					continue
				case p.IsVariableStart():
					if _, _, err := p.ConsumeVariable(); err != nil {
						yield(nil, err)
						return
					}

					continue
				}
			case *cmn.AtRule:
				p.Next()

				if !yield(v, nil) {
					return
				}

				continue
			}

			rule, err := p.ConsumeQualifiedRule()
			if err != nil {
				yield(nil, err)
				return
			}

			if !yield(rule, nil) {
				return
			}
		}
	}
}

// ConsumeComponentValue consumes one value. Blocks and functions are built
// recursively. A nil value with nil error means the input was a variable
// declaration or a substituted reference whose values are now queued.
func (p *Parser) ConsumeComponentValue() (cmn.ComponentValue, error) {
	v := p.Peek(0)

	if variable, ok := v.(*cmn.Variable); ok {
		p.Next()
		return p.ResolveVariableNode(variable)
	}

	t, ok := v.(tok.Token)
	if !ok {
		return p.Next(), nil
	}

	switch {
	case t.IsBlockOpener():
		return p.ConsumeSimpleBlock()
	case t.Type == tok.FUNCTION:
		return p.ConsumeFunction()
	case p.IsVariableStart():
		node, substituted, err := p.ConsumeVariable()
		if err != nil {
			return nil, err
		}

		if variable, ok := node.(*cmn.Variable); ok && !substituted {
			return variable, nil
		}

		return nil, nil
	default:
		return p.Next(), nil
	}
}

// ConsumeSimpleBlock consumes a block opened by the front token, resolving
// its contents inside a child scope. A missing closer is tolerated.
func (p *Parser) ConsumeSimpleBlock() (*cmn.SimpleBlock, error) {
	open, mirror, err := p.consumeOpener()
	if err != nil {
		return nil, err
	}

	if err := p.EnterBlock(); err != nil {
		return nil, err
	}
	defer p.LeaveBlock()

	p.st.ns.Enter()
	defer p.st.ns.Exit() //nolint:errcheck

	block := &cmn.SimpleBlock{Open: open}

	for {
		v := p.Peek(0)
		if v == nil {
			return block, nil
		}

		if cmn.IsTokenType(v, mirror) {
			closeToken, _ := p.Next().(tok.Token)
			block.Close = &closeToken

			return block, nil
		}

		value, err := p.ConsumeComponentValue()
		if err != nil {
			return nil, err
		}

		if value != nil {
			block.Value = append(block.Value, value)
		}
	}
}

// ConsumeRawBlock consumes a block without resolving anything inside it.
// The contents stay flat so a later step can parse them in their own scope.
func (p *Parser) ConsumeRawBlock() (*cmn.SimpleBlock, error) {
	open, mirror, err := p.consumeOpener()
	if err != nil {
		return nil, err
	}

	block := &cmn.SimpleBlock{Open: open}

	var closers []tok.TokenType

	for {
		v := p.Next()
		if v == nil {
			return block, nil
		}

		if t, ok := v.(tok.Token); ok {
			switch {
			case len(closers) == 0 && t.Type == mirror:
				block.Close = &t
				return block, nil
			case t.IsBlockOpener():
				closer, _ := tok.Mirror(t.Type)
				closers = append(closers, closer)
			case t.Type == tok.FUNCTION:
				closers = append(closers, tok.CLOSED_PARENS)
			case len(closers) > 0 && t.Type == closers[len(closers)-1]:
				closers = closers[:len(closers)-1]
			}
		}

		block.Value = append(block.Value, v)
	}
}

func (p *Parser) consumeOpener() (tok.Token, tok.TokenType, error) {
	open, ok := p.PeekToken(0)
	if !ok {
		return tok.Token{}, tok.EOF, p.ErrorfAt(cmn.ErrInvalidBlockOpener, 0, "simple block must start with a bracket")
	}

	mirror, ok := tok.Mirror(open.Type)
	if !ok {
		return tok.Token{}, tok.EOF, p.ErrorfAt(cmn.ErrInvalidBlockOpener, 0, "%s cannot open a simple block", open.Type)
	}

	p.Next()

	return open, mirror, nil
}

// ConsumeFunction consumes a function token and its comma separated arguments.
func (p *Parser) ConsumeFunction() (*cmn.FunctionCall, error) {
	name, err := p.Consume(tok.FUNCTION, "Expected function")
	if err != nil {
		return nil, err
	}

	if err := p.EnterBlock(); err != nil {
		return nil, err
	}
	defer p.LeaveBlock()

	call := &cmn.FunctionCall{Name: name}

	var current []cmn.ComponentValue

	finish := func() {
		if len(current) > 0 || len(call.Commas) > 0 {
			call.Arguments = append(call.Arguments, current)
		}
	}

	for {
		v := p.Peek(0)
		switch {
		case v == nil:
			finish()
			return call, nil
		case cmn.IsTokenType(v, tok.CLOSED_PARENS):
			closeToken, _ := p.Next().(tok.Token)
			call.Close = &closeToken

			finish()

			return call, nil
		case cmn.IsTokenType(v, tok.COMMA):
			comma, _ := p.Next().(tok.Token)
			call.Commas = append(call.Commas, comma)
			call.Arguments = append(call.Arguments, current)
			current = nil
		default:
			value, err := p.ConsumeComponentValue()
			if err != nil {
				return nil, err
			}

			if value != nil {
				current = append(current, value)
			}
		}
	}
}

// ConsumeQualifiedRule consumes a prelude up to its {} block. Reaching the
// end of input first is an error.
func (p *Parser) ConsumeQualifiedRule() (*cmn.QualifiedRule, error) {
	rule := &cmn.QualifiedRule{}

	for {
		v := p.Peek(0)
		switch {
		case v == nil:
			return nil, p.ErrorAt(0, "Qualified rule was not closed")
		case cmn.IsTokenType(v, tok.OPENED_BRACE):
			block, err := p.ConsumeRawBlock()
			if err != nil {
				return nil, err
			}

			rule.Block = block
			rule.Prelude = cmn.TrimWhitespace(rule.Prelude)

			return rule, nil
		case cmn.IsBraceBlock(v):
			rule.Block, _ = p.Next().(*cmn.SimpleBlock)
			rule.Prelude = cmn.TrimWhitespace(rule.Prelude)

			return rule, nil
		default:
			value, err := p.ConsumeComponentValue()
			if err != nil {
				return nil, err
			}

			if value != nil {
				rule.Prelude = append(rule.Prelude, value)
			}
		}
	}
}

// ConsumeValueList consumes the value of a variable or alias definition. It
// ends at ";" or at whitespace containing a newline; both are consumed.
func (p *Parser) ConsumeValueList() ([]cmn.ComponentValue, error) {
	p.skipInlineWhitespace()

	var values []cmn.ComponentValue

	for {
		v := p.Peek(0)
		if v == nil {
			return cmn.TrimWhitespace(values), nil
		}

		if t, ok := v.(tok.Token); ok {
			if t.Type == tok.SEMICOLON || (t.Type == tok.WHITESPACE && strings.Contains(t.Value, "\n")) {
				p.Next()
				return cmn.TrimWhitespace(values), nil
			}
		}

		value, err := p.ConsumeComponentValue()
		if err != nil {
			return nil, err
		}

		if value != nil {
			values = append(values, value)
		}
	}
}

func (p *Parser) skipInlineWhitespace() {
	for {
		t, ok := p.PeekToken(0)
		if !ok || t.Type != tok.WHITESPACE || strings.Contains(t.Value, "\n") {
			return
		}

		p.Next()
	}
}
