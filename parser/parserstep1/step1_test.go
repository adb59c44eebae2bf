package parserstep1

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	cmn "github.com/shibukawa/hcss/parser/parsercommon"
	tok "github.com/shibukawa/hcss/tokenizer"
)

func newParser(src string) *Parser {
	return NewParser(tok.Tokenize(src), Options{})
}

func collect(t *testing.T, p *Parser) []cmn.SyntaxNode {
	t.Helper()

	var nodes []cmn.SyntaxNode

	for node, err := range p.Rules() {
		assert.NoError(t, err)
		nodes = append(nodes, node)
	}

	return nodes
}

func TestConsumeSimpleBlock(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		open   tok.TokenType
		values int
		closed bool
	}{
		{name: "parens", src: "(a b)", open: tok.OPENED_PARENS, values: 3, closed: true},
		{name: "brackets", src: "[a]", open: tok.OPENED_BRACKET, values: 1, closed: true},
		{name: "braces", src: "{a;b}", open: tok.OPENED_BRACE, values: 3, closed: true},
		{name: "nested", src: "(a [b] (c))", open: tok.OPENED_PARENS, values: 5, closed: true},
		{name: "unclosed at EOF", src: "(a", open: tok.OPENED_PARENS, values: 1, closed: false},
		{name: "other closers are values", src: "(a ] b)", open: tok.OPENED_PARENS, values: 5, closed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := newParser(tt.src).ConsumeSimpleBlock()
			assert.NoError(t, err)
			assert.Equal(t, tt.open, block.Open.Type)
			assert.Equal(t, tt.values, len(block.Value))
			assert.Equal(t, tt.closed, block.Close != nil)

			if tt.closed {
				mirror, _ := tok.Mirror(tt.open)
				assert.Equal(t, mirror, block.Close.Type)
			}
		})
	}
}

func TestInvalidBlockOpener(t *testing.T) {
	for _, src := range []string{"a", ")", "foo(", ""} {
		t.Run(src, func(t *testing.T) {
			_, err := newParser(src).ConsumeSimpleBlock()
			assert.True(t, errors.Is(err, cmn.ErrInvalidBlockOpener))
		})
	}
}

func TestConsumeFunction(t *testing.T) {
	p := newParser("rgba(0, 0, 0, .5) rest")

	v, err := p.ConsumeComponentValue()
	assert.NoError(t, err)

	call, ok := v.(*cmn.FunctionCall)
	assert.True(t, ok)
	assert.Equal(t, "rgba", call.Name.Value)
	assert.Equal(t, 4, len(call.Arguments))
	assert.Equal(t, 3, len(call.Commas))
	assert.NotZero(t, call.Close)
	assert.Equal(t, 10, len(call.Flatten()))

	p.SkipWhitespace()

	rest, ok := p.PeekToken(0)
	assert.True(t, ok)
	assert.Equal(t, "rest", rest.Value)
}

func TestConsumeFunctionEmpty(t *testing.T) {
	call, err := newParser("f()").ConsumeFunction()
	assert.NoError(t, err)
	assert.Equal(t, 0, len(call.Arguments))
}

func TestConsumeAs(t *testing.T) {
	p := newParser("a")

	_, err := cmn.ConsumeAs[*cmn.SimpleBlock](p.Cursor)
	assert.True(t, errors.Is(err, cmn.ErrTypeMismatch))

	token, err := cmn.ConsumeAs[tok.Token](p.Cursor)
	assert.NoError(t, err)
	assert.Equal(t, "a", token.Value)
	assert.True(t, p.EOF())
}

func TestRules(t *testing.T) {
	t.Run("rules are yielded in order", func(t *testing.T) {
		nodes := collect(t, newParser(`<!-- @charset "utf-8"; a { x: 1 } @media print { b { y: 2 } } -->`))
		assert.Equal(t, 3, len(nodes))

		charset, ok := nodes[0].(*cmn.AtRule)
		assert.True(t, ok)
		assert.Equal(t, "charset", charset.Name.Value)
		assert.Zero(t, charset.Block)

		rule, ok := nodes[1].(*cmn.QualifiedRule)
		assert.True(t, ok)
		assert.Equal(t, 1, len(rule.Prelude))
		assert.NotZero(t, rule.Block.Close)

		media, ok := nodes[2].(*cmn.AtRule)
		assert.True(t, ok)
		assert.Equal(t, 1, len(media.Prelude))
		assert.True(t, media.Block.IsBrace())
	})

	t.Run("qualified rule blocks stay raw", func(t *testing.T) {
		nodes := collect(t, newParser("a { b { c: $undeclared } }"))
		rule := nodes[0].(*cmn.QualifiedRule)

		for _, v := range rule.Block.Value {
			_, isToken := v.(tok.Token)
			assert.True(t, isToken)
		}
	})

	t.Run("definitions are not yielded", func(t *testing.T) {
		p := newParser("$x: 1; @mixin m { a: b; } @narrow = (max-width: 10px);")
		nodes := collect(t, p)
		assert.Equal(t, 0, len(nodes))

		_, ok := p.Namespace().FindVariable("x")
		assert.True(t, ok)

		_, ok = p.Namespace().FindMixin("m")
		assert.True(t, ok)

		_, ok = p.Namespace().FindAtRule("NARROW")
		assert.True(t, ok)
	})

	t.Run("unclosed qualified rule", func(t *testing.T) {
		for _, err := range newParser("a b c").Rules() {
			assert.Error(t, err)
			assert.True(t, errors.Is(err, cmn.ErrSyntax))
			assert.Contains(t, err.Error(), "Qualified rule was not closed")
		}
	})
}

func TestVariableDeclaration(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		values int
	}{
		{name: "colon", src: "$a: 1px solid red;", values: 5},
		{name: "equals", src: "$a = 1px", values: 1},
		{name: "space before colon", src: "$a : b", values: 1},
		{name: "ends at newline", src: "$a: b c\n d", values: 3},
		{name: "empty", src: "$a:;", values: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(tt.src)

			node, substituted, err := p.ConsumeVariable()
			assert.NoError(t, err)
			assert.False(t, substituted)

			decl, ok := node.(*cmn.VariableDeclaration)
			assert.True(t, ok)
			assert.Equal(t, "a", decl.Name.Value)
			assert.Equal(t, tt.values, len(decl.Value))

			value, ok := p.Namespace().FindVariable("a")
			assert.True(t, ok)
			assert.Equal(t, tt.values, len(value))
		})
	}
}

func TestVariableSubstitution(t *testing.T) {
	p := newParser("$a: 1px 2px; $a")
	_, _, err := p.ConsumeVariable()
	assert.NoError(t, err)
	p.SkipWhitespace()

	v, err := p.ConsumeComponentValue()
	assert.NoError(t, err)
	assert.Zero(t, v)

	first, ok := p.PeekToken(0)
	assert.True(t, ok)
	assert.Equal(t, tok.DIMENSION, first.Type)
	assert.Equal(t, "1", first.Value)
}

func TestDollarWithoutIdentIsDelim(t *testing.T) {
	p := newParser("$ 1")

	v, err := p.ConsumeComponentValue()
	assert.NoError(t, err)
	assert.True(t, cmn.IsDelim(v, "$"))
}

func TestMixinDefinition(t *testing.T) {
	p := newParser("@mixin m($a, $b: 2, $c = 3) { x: $a $b $c $free; }")
	collect(t, p)

	mixin, ok := p.Namespace().FindMixin("m")
	assert.True(t, ok)
	assert.Equal(t, 3, len(mixin.Function.Parameters))
	assert.False(t, mixin.Function.Parameters[0].HasDefault)
	assert.True(t, mixin.Function.Parameters[1].HasDefault)
	assert.True(t, mixin.Function.Parameters[2].HasDefault)

	var variables []string

	for _, v := range mixin.Body {
		if variable, ok := v.(*cmn.Variable); ok {
			variables = append(variables, variable.Name.Value)
		}
	}

	assert.Equal(t, []string{"a", "b", "c", "free"}, variables)
}

func TestMixinDefinitionErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
	}{
		{name: "optional first", src: "@mixin m($a: 1, $b) {}", message: "Optional parameters must come last"},
		{name: "missing dollar", src: "@mixin m(a) {}", message: "Expected '$' before parameter name"},
		{name: "missing body", src: "@mixin m;", message: "Expected '{' after mixin m"},
		{name: "missing name", src: "@mixin {}", message: "Expected mixin name"},
		{name: "unclosed parameters", src: "@mixin m(", message: "was not closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, err := range newParser(tt.src).Rules() {
				assert.True(t, errors.Is(err, cmn.ErrSyntax))
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestIncludeDepth(t *testing.T) {
	p := NewParser(tok.Tokenize("@mixin a { @include a; } @include a;"), Options{MaxIncludeDepth: 3})

	var last error
	for _, err := range p.Rules() {
		last = err
	}

	assert.True(t, errors.Is(last, cmn.ErrRecursionLimitExceeded))
	assert.Contains(t, last.Error(), "maximum include depth 3")
}

func TestAliasExpansion(t *testing.T) {
	nodes := collect(t, newParser("@tablet = screen and (min-width: 768px)\n@tablet { a { b: c } }"))
	assert.Equal(t, 1, len(nodes))

	media, ok := nodes[0].(*cmn.AtRule)
	assert.True(t, ok)
	assert.Equal(t, "media", media.Name.Value)
	assert.Equal(t, 5, len(media.Prelude))
}

func TestMediaIsNeverAnAlias(t *testing.T) {
	nodes := collect(t, newParser("@media = x;"))
	assert.Equal(t, 1, len(nodes))

	media := nodes[0].(*cmn.AtRule)
	assert.Equal(t, "media", media.Name.Value)
}
