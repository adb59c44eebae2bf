package parserstep1

import (
	"fmt"
	"log/slog"

	cmn "github.com/shibukawa/hcss/parser/parsercommon"
	tok "github.com/shibukawa/hcss/tokenizer"
)

// ConsumeAtRule consumes an at-rule. Directives (@mixin, @include, alias
// definitions and alias uses) are applied to the scope or the input and
// return nil; any other at-rule is returned as *cmn.AtRule with a raw block.
func (p *Parser) ConsumeAtRule() (*cmn.AtRule, error) {
	name, err := p.Consume(tok.AT_KEYWORD, "Expected at-rule")
	if err != nil {
		return nil, err
	}

	folded := cmn.FoldName(name.Value)

	switch folded {
	case "mixin":
		return nil, p.consumeMixin()
	case "include":
		return nil, p.consumeInclude(name)
	}

	if folded != "media" {
		if offset := p.SkipWhitespaceOffset(); p.CheckDelim(offset, "=") {
			p.SkipWhitespace()
			p.Next()

			values, err := p.ConsumeValueList()
			if err != nil {
				return nil, err
			}

			p.st.ns.SetAtRule(name.Value, values)
			p.st.log.Trace("at-rule alias defined", slog.String("name", name.Value), slog.Int("values", len(values)))

			return nil, nil
		}

		if values, ok := p.st.ns.FindAtRule(name.Value); ok {
			media := tok.Token{Type: tok.AT_KEYWORD, Value: "media", Position: name.Position}
			space := tok.Token{Type: tok.WHITESPACE, Value: " ", Position: name.Position}

			spliced := make([]cmn.ComponentValue, 0, len(values)+2)
			spliced = append(spliced, media, space)
			spliced = append(spliced, values...)
			p.Splice(spliced)
			p.st.log.Trace("at-rule alias expanded", slog.String("name", name.Value))

			return nil, nil
		}
	}

	rule := &cmn.AtRule{Name: name}

	for {
		v := p.Peek(0)
		switch {
		case v == nil:
			rule.Prelude = cmn.TrimWhitespace(rule.Prelude)
			return rule, nil
		case cmn.IsTokenType(v, tok.SEMICOLON):
			p.Next()

			rule.Prelude = cmn.TrimWhitespace(rule.Prelude)

			return rule, nil
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

// consumeMixin handles "@mixin name { body }" and "@mixin name($a, $b=1) { body }".
func (p *Parser) consumeMixin() error {
	p.SkipWhitespace()

	var (
		name       tok.Token
		definition *cmn.FunctionDefinition
	)

	switch t, _ := p.PeekToken(0); t.Type {
	case tok.IDENT:
		p.Next()

		name = t
	case tok.FUNCTION:
		def, err := p.consumeFunctionDefinition()
		if err != nil {
			return err
		}

		name = def.Name
		definition = def
	default:
		return p.ErrorAt(0, "Expected mixin name after @mixin")
	}

	p.SkipWhitespace()

	var params []string
	if definition != nil {
		for _, param := range definition.Parameters {
			params = append(params, param.Name)
		}
	}

	var body []cmn.ComponentValue

	switch v := p.Peek(0).(type) {
	case tok.Token:
		if v.Type != tok.OPENED_BRACE {
			return p.ErrorAt(0, fmt.Sprintf("Expected '{' after mixin %s", name.Value))
		}

		p.st.ns.EnterParameters(params)
		block, err := p.ConsumeSimpleBlock()
		exitErr := p.st.ns.Exit()

		if err != nil {
			return err
		}

		if exitErr != nil {
			return exitErr
		}

		body = block.Value
	case *cmn.SimpleBlock:
		if !v.IsBrace() {
			return p.ErrorAt(0, fmt.Sprintf("Expected '{' after mixin %s", name.Value))
		}

		p.Next()

		body = v.Value
	default:
		return p.ErrorAt(0, fmt.Sprintf("Expected '{' after mixin %s", name.Value))
	}

	p.st.ns.SetMixin(name.Value, &cmn.Mixin{Function: definition, Body: body})
	p.st.log.Trace("mixin defined",
		slog.String("name", name.Value),
		slog.Int("parameters", len(params)),
		slog.Int("line", name.Position.Line))

	return nil
}

// consumeFunctionDefinition parses "name($a, $b=default)". Parameters with a
// default must follow every parameter without one.
func (p *Parser) consumeFunctionDefinition() (*cmn.FunctionDefinition, error) {
	name, err := p.Consume(tok.FUNCTION, "Expected mixin name")
	if err != nil {
		return nil, err
	}

	def := &cmn.FunctionDefinition{Name: name}
	seenDefault := false

	for {
		p.SkipWhitespace()

		if p.EOF() {
			return nil, p.ErrorAt(0, fmt.Sprintf("Parameter list of mixin %s was not closed", name.Value))
		}

		if p.Check(0, tok.CLOSED_PARENS) {
			p.Next()
			return def, nil
		}

		if _, err := p.ConsumeDelim("$", "Expected '$' before parameter name"); err != nil {
			return nil, err
		}

		ident, err := p.Consume(tok.IDENT, "Expected parameter name after '$'")
		if err != nil {
			return nil, err
		}

		param := cmn.Parameter{Name: ident.Value, Token: ident}

		p.SkipWhitespace()

		if p.CheckDelim(0, "=") || p.Check(0, tok.COLON) {
			p.Next()

			value, err := p.consumeArgument()
			if err != nil {
				return nil, err
			}

			param.Default = value
			param.HasDefault = true
			seenDefault = true
		} else if seenDefault {
			return nil, cmn.NewSyntaxError(&ident, ident.Position, "Optional parameters must come last")
		}

		def.Parameters = append(def.Parameters, param)

		p.SkipWhitespace()

		switch {
		case p.Check(0, tok.COMMA):
			p.Next()
		case p.Check(0, tok.CLOSED_PARENS):
		default:
			return nil, p.ErrorAt(0, "Expected ',' or ')' in parameter list")
		}
	}
}

// consumeArgument consumes values up to a top-level "," or ")".
func (p *Parser) consumeArgument() ([]cmn.ComponentValue, error) {
	var values []cmn.ComponentValue

	for {
		v := p.Peek(0)
		if v == nil || cmn.IsTokenType(v, tok.COMMA, tok.CLOSED_PARENS) {
			return cmn.TrimWhitespace(values), nil
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

type inclusion struct {
	name string
	body []cmn.ComponentValue
}

// consumeInclude handles "@include a, b(1, 2);". All bodies are instantiated
// before any is spliced so the remaining targets are not displaced.
func (p *Parser) consumeInclude(at tok.Token) error {
	var inclusions []inclusion

loop:
	for {
		p.SkipWhitespace()

		switch v := p.Peek(0).(type) {
		case nil:
			break loop
		case tok.Token:
			switch v.Type {
			case tok.SEMICOLON:
				p.Next()
				break loop
			case tok.COMMA:
				p.Next()
			case tok.IDENT:
				p.Next()

				body, err := p.instantiate(v, nil)
				if err != nil {
					return err
				}

				inclusions = append(inclusions, inclusion{name: v.Value, body: body})
			case tok.FUNCTION:
				call, err := p.ConsumeFunction()
				if err != nil {
					return err
				}

				body, err := p.instantiate(call.Name, call.Arguments)
				if err != nil {
					return err
				}

				inclusions = append(inclusions, inclusion{name: call.Name.Value, body: body})
			default:
				return p.ErrorAt(0, "Expected mixin name after @include")
			}
		case *cmn.FunctionCall:
			p.Next()

			body, err := p.instantiate(v.Name, v.Arguments)
			if err != nil {
				return err
			}

			inclusions = append(inclusions, inclusion{name: v.Name.Value, body: body})
		default:
			return p.ErrorAt(0, "Expected mixin name after @include")
		}
	}

	if len(inclusions) == 0 {
		return cmn.NewSyntaxError(&at, at.Position, "Expected mixin name after @include")
	}

	if depth := p.ExpansionDepth() + len(inclusions); depth > p.st.opts.MaxIncludeDepth {
		return cmn.NewParseError(cmn.ErrRecursionLimitExceeded, &at, at.Position,
			"including mixin %s exceeds the maximum include depth %d", inclusions[0].name, p.st.opts.MaxIncludeDepth)
	}

	for i := len(inclusions) - 1; i >= 0; i-- {
		p.SpliceExpansion(inclusions[i].name, inclusions[i].body)
		p.st.log.Trace("mixin included",
			slog.String("name", inclusions[i].name),
			slog.Int("depth", p.ExpansionDepth()))
	}

	return nil
}

// instantiate binds call arguments to the mixin parameters in a transient
// scope and returns a copy of the body with the parameters substituted.
func (p *Parser) instantiate(name tok.Token, args [][]cmn.ComponentValue) ([]cmn.ComponentValue, error) {
	ns := p.st.ns

	mixin, ok := ns.FindMixin(name.Value)
	if !ok {
		return nil, cmn.NewParseError(cmn.ErrUndeclaredMixin, &name, name.Position,
			"mixin %s is not declared%s", name.Value, cmn.Suggest(name.Value, ns.MixinNames()))
	}

	var params []cmn.Parameter
	if mixin.Function != nil {
		params = mixin.Function.Parameters
	}

	if len(args) > len(params) {
		return nil, cmn.NewSyntaxError(&name, name.Position,
			fmt.Sprintf("mixin %s takes %d arguments but %d were given", name.Value, len(params), len(args)))
	}

	scope := ns.Enter()
	defer ns.Exit() //nolint:errcheck

	names := make(map[string]bool, len(params))

	for i, param := range params {
		var value []cmn.ComponentValue

		if i < len(args) {
			value = cmn.TrimWhitespace(args[i])
		}

		if len(value) == 0 {
			if !param.HasDefault {
				return nil, cmn.NewSyntaxError(&name, name.Position,
					fmt.Sprintf("missing argument $%s for mixin %s", param.Name, name.Value))
			}

			value = param.Default
		}

		scope.Variables[param.Name] = value
		names[param.Name] = true
	}

	return bindParameters(ns, mixin.Body, names), nil
}
