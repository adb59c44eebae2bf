package parsercommon

import (
	tok "github.com/shibukawa/hcss/tokenizer"
)

// ComponentValue is either a tokenizer.Token or a SyntaxNode.
type ComponentValue interface {
	Start() tok.Position
}

// SyntaxNode is a parsed grammar node.
type SyntaxNode interface {
	ComponentValue
	syntaxNode()
}

// SimpleBlock is a bracket, brace or paren delimited run of component values.
// Close is nil when input ended before the mirror token.
type SimpleBlock struct {
	Open  tok.Token
	Value []ComponentValue
	Close *tok.Token
}

// FunctionCall is a function token followed by comma separated arguments.
type FunctionCall struct {
	Name      tok.Token
	Arguments [][]ComponentValue
	Commas    []tok.Token
	Close     *tok.Token
}

// Parameter is one mixin parameter.
type Parameter struct {
	Name       string
	Token      tok.Token
	Default    []ComponentValue
	HasDefault bool
}

// FunctionDefinition is the head of a parameterized mixin: name($a, $b=default).
type FunctionDefinition struct {
	Name       tok.Token
	Parameters []Parameter
}

// AtRule is @name prelude followed by ";" or a block.
type AtRule struct {
	Name    tok.Token
	Prelude []ComponentValue
	Block   *SimpleBlock
}

// QualifiedRule is a prelude with a block that has not been selector parsed.
type QualifiedRule struct {
	Prelude []ComponentValue
	Block   *SimpleBlock
}

// StyleBlock holds *Declaration, *AtRule, *QualifiedRule and *StyleRule entries.
type StyleBlock []ComponentValue

// StyleRule is a qualified rule whose prelude and block are resolved.
type StyleRule struct {
	Selectors ComplexSelectorList
	Block     StyleBlock
	Prelude   []ComponentValue
}

// Declaration is property: value [!important]
type Declaration struct {
	Name      tok.Token
	Colon     tok.Token
	Value     []ComponentValue
	Important bool
}

// Variable is a $name reference.
type Variable struct {
	Dollar tok.Token
	Name   tok.Token
}

// VariableDeclaration is $name: value or $name = value.
type VariableDeclaration struct {
	Variable
	Operator tok.Token
	Value    []ComponentValue
}

// Mixin is a captured @mixin body. Function is nil for mixins without parameters.
type Mixin struct {
	Function *FunctionDefinition
	Body     []ComponentValue
}

func (n *SimpleBlock) Start() tok.Position         { return n.Open.Position }
func (n *FunctionCall) Start() tok.Position        { return n.Name.Position }
func (n *FunctionDefinition) Start() tok.Position  { return n.Name.Position }
func (n *AtRule) Start() tok.Position              { return n.Name.Position }
func (n *Declaration) Start() tok.Position         { return n.Name.Position }
func (n *Variable) Start() tok.Position            { return n.Dollar.Position }
func (n *VariableDeclaration) Start() tok.Position { return n.Dollar.Position }

func (n *QualifiedRule) Start() tok.Position {
	if len(n.Prelude) > 0 {
		return n.Prelude[0].Start()
	}

	if n.Block != nil {
		return n.Block.Open.Position
	}

	return tok.Position{}
}

func (n *StyleRule) Start() tok.Position {
	if len(n.Prelude) > 0 {
		return n.Prelude[0].Start()
	}

	return tok.Position{}
}

func (*SimpleBlock) syntaxNode()         {}
func (*FunctionCall) syntaxNode()        {}
func (*FunctionDefinition) syntaxNode()  {}
func (*AtRule) syntaxNode()              {}
func (*QualifiedRule) syntaxNode()       {}
func (*StyleRule) syntaxNode()           {}
func (*Declaration) syntaxNode()         {}
func (*Variable) syntaxNode()            {}
func (*VariableDeclaration) syntaxNode() {}

// Flatten returns the argument list with the separating commas restored.
func (n *FunctionCall) Flatten() []ComponentValue {
	var result []ComponentValue

	for i, arg := range n.Arguments {
		if i > 0 && i-1 < len(n.Commas) {
			result = append(result, n.Commas[i-1])
		}

		result = append(result, arg...)
	}

	return result
}

// IsBrace reports whether the block is delimited by curly braces.
func (n *SimpleBlock) IsBrace() bool {
	return n.Open.Type == tok.OPENED_BRACE
}

// AsToken returns v as a token when it is one.
func AsToken(v ComponentValue) (tok.Token, bool) {
	t, ok := v.(tok.Token)
	return t, ok
}

// IsTokenType reports whether v is a token of one of the given types.
func IsTokenType(v ComponentValue, types ...tok.TokenType) bool {
	t, ok := v.(tok.Token)
	if !ok {
		return false
	}

	for _, tp := range types {
		if t.Type == tp {
			return true
		}
	}

	return false
}

// IsDelim reports whether v is the delimiter token ch.
func IsDelim(v ComponentValue, ch string) bool {
	t, ok := v.(tok.Token)
	return ok && t.IsDelim(ch)
}

// IsBraceBlock reports whether v is an already built {} block.
func IsBraceBlock(v ComponentValue) bool {
	b, ok := v.(*SimpleBlock)
	return ok && b.IsBrace()
}

// TrimWhitespace removes leading and trailing whitespace tokens.
func TrimWhitespace(values []ComponentValue) []ComponentValue {
	start := 0
	for start < len(values) && IsTokenType(values[start], tok.WHITESPACE) {
		start++
	}

	end := len(values)
	for end > start && IsTokenType(values[end-1], tok.WHITESPACE) {
		end--
	}

	return values[start:end]
}
