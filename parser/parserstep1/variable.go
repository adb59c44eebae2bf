package parserstep1

import (
	"log/slog"
	"slices"

	cmn "github.com/shibukawa/hcss/parser/parsercommon"
	tok "github.com/shibukawa/hcss/tokenizer"
)

// IsVariableStart reports whether the input starts with "$" immediately followed by an identifier.
func (p *Parser) IsVariableStart() bool {
	return p.CheckDelim(0, "$") && p.Check(1, tok.IDENT)
}

// ConsumeVariable consumes "$name".
//
//   - "$name: values" or "$name = values" binds the values in the current scope
//     and returns *cmn.VariableDeclaration.
//   - A parameter of the mixin being captured stays unresolved; the returned
//     *cmn.Variable is kept in the body and substituted when the mixin is included.
//   - Otherwise the bound values are spliced into the input and substituted is true.
func (p *Parser) ConsumeVariable() (node cmn.SyntaxNode, substituted bool, err error) {
	dollar, err := p.ConsumeDelim("$", "Expected '$'")
	if err != nil {
		return nil, false, err
	}

	name, err := p.Consume(tok.IDENT, "Expected variable name after '$'")
	if err != nil {
		return nil, false, err
	}

	variable := cmn.Variable{Dollar: dollar, Name: name}

	if offset := p.SkipWhitespaceOffset(); p.Check(offset, tok.COLON) || p.CheckDelim(offset, "=") {
		p.SkipWhitespace()
		operator, _ := p.Next().(tok.Token)

		values, err := p.ConsumeValueList()
		if err != nil {
			return nil, false, err
		}

		p.st.ns.SetVariable(name.Value, values)
		p.st.log.Trace("variable defined",
			slog.String("name", name.Value),
			slog.Int("scope", p.st.ns.Depth()))

		return &cmn.VariableDeclaration{Variable: variable, Operator: operator, Value: values}, false, nil
	}

	return p.resolve(&variable)
}

// resolve splices the value bound to variable. Unknown names are kept for
// later resolution while a mixin body is being captured.
func (p *Parser) resolve(variable *cmn.Variable) (cmn.SyntaxNode, bool, error) {
	ns := p.st.ns
	name := variable.Name.Value

	if ns.IsParameter(name) {
		return variable, false, nil
	}

	values, ok := ns.FindVariable(name)
	if !ok {
		if p.capturingMixin() {
			return variable, false, nil
		}

		return nil, false, cmn.NewParseError(cmn.ErrUndeclaredVariable, &variable.Name, variable.Name.Position,
			"$%s is not declared%s", name, cmn.Suggest(name, ns.VariableNames()))
	}

	p.Splice(slices.Clone(values))

	return variable, true, nil
}

// ResolveVariableNode resolves a *cmn.Variable kept from a mixin body that
// was not bound by the mixin parameters. It returns the variable itself
// while the name is still a parameter of an enclosing capture.
func (p *Parser) ResolveVariableNode(variable *cmn.Variable) (cmn.ComponentValue, error) {
	node, substituted, err := p.resolve(variable)
	if err != nil || substituted {
		return nil, err
	}

	return node, nil
}

func (p *Parser) capturingMixin() bool {
	return p.st.ns.CapturingMixin()
}

// bindParameters copies values, replacing every parameter reference by the
// value bound in the innermost scope.
func bindParameters(ns *cmn.Namespace, values []cmn.ComponentValue, params map[string]bool) []cmn.ComponentValue {
	result := make([]cmn.ComponentValue, 0, len(values))

	for _, v := range values {
		switch v := v.(type) {
		case *cmn.Variable:
			if params[v.Name.Value] {
				bound, _ := ns.FindVariable(v.Name.Value)
				result = append(result, bound...)

				continue
			}

			result = append(result, v)
		case *cmn.SimpleBlock:
			result = append(result, &cmn.SimpleBlock{
				Open:  v.Open,
				Value: bindParameters(ns, v.Value, params),
				Close: v.Close,
			})
		case *cmn.FunctionCall:
			call := &cmn.FunctionCall{
				Name:   v.Name,
				Commas: v.Commas,
				Close:  v.Close,
			}
			for _, arg := range v.Arguments {
				call.Arguments = append(call.Arguments, bindParameters(ns, arg, params))
			}

			result = append(result, call)
		default:
			result = append(result, v)
		}
	}

	return result
}
