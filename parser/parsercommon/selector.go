package parsercommon

import (
	tok "github.com/shibukawa/hcss/tokenizer"
)

// NsPrefix is the namespace part of ns|name. Value is nil for the empty namespace (|name).
type NsPrefix struct {
	Value *tok.Token // IDENT or DELIM "*"
	Bar   tok.Token
}

// WqName is a possibly namespace qualified name.
type WqName struct {
	Prefix *NsPrefix
	Ident  tok.Token
}

// TypeSelector is either Name or an optional Prefix with Star.
type TypeSelector struct {
	Name   *WqName
	Prefix *NsPrefix
	Star   *tok.Token
}

// SubclassSelector is one of *IDSelector, *ClassSelector, *AttributeSelector,
// *PseudoClassSelector or *NestingSelector.
type SubclassSelector interface {
	ComponentValue
	subclassSelector()
}

type IDSelector struct {
	Hash tok.Token
}

type ClassSelector struct {
	Dot   tok.Token
	Ident tok.Token
}

// AttrMatcher is "=" optionally preceded by one of ~ | ^ $ *.
type AttrMatcher struct {
	Prefix *tok.Token
	Equals tok.Token
}

type AttributeSelector struct {
	Open     tok.Token
	Name     WqName
	Matcher  *AttrMatcher
	Value    *tok.Token // STRING or IDENT
	Modifier *tok.Token // i, I, s, S
	Close    tok.Token
}

// PseudoClassSelector is :name or :name(any-value). AnyValue is nil for the ident form.
type PseudoClassSelector struct {
	Colon      tok.Token
	Name       tok.Token
	AnyValue   []ComponentValue
	CloseParen *tok.Token
}

type PseudoElementSelector struct {
	Colon    tok.Token
	Selector PseudoClassSelector
}

// NestingSelector is the & parent reference.
type NestingSelector struct {
	Ampersand tok.Token
}

// PseudoGroup is a pseudo-element with the pseudo-classes chained after it.
type PseudoGroup struct {
	Element PseudoElementSelector
	Classes []PseudoClassSelector
}

type CompoundSelector struct {
	Type       *TypeSelector
	Subclasses []SubclassSelector
	Pseudos    []PseudoGroup
}

// CombinatorKind identifies the relation between two compound selectors.
type CombinatorKind int

const (
	// CombinatorNone is the implicit descendant combinator, and the combinator of the first compound.
	CombinatorNone CombinatorKind = iota
	CombinatorChild
	CombinatorNextSibling
	CombinatorSubsequentSibling
	CombinatorColumn
)

// String returns the combinator symbol
func (k CombinatorKind) String() string {
	switch k {
	case CombinatorChild:
		return ">"
	case CombinatorNextSibling:
		return "+"
	case CombinatorSubsequentSibling:
		return "~"
	case CombinatorColumn:
		return "||"
	default:
		return " "
	}
}

type Combinator struct {
	Kind   CombinatorKind
	Tokens []tok.Token
}

type ComplexSelectorPart struct {
	Combinator Combinator
	Compound   CompoundSelector
}

type ComplexSelector []ComplexSelectorPart

type ComplexSelectorList []ComplexSelector

func (s *IDSelector) Start() tok.Position          { return s.Hash.Position }
func (s *ClassSelector) Start() tok.Position       { return s.Dot.Position }
func (s *AttributeSelector) Start() tok.Position   { return s.Open.Position }
func (s *PseudoClassSelector) Start() tok.Position { return s.Colon.Position }
func (s *NestingSelector) Start() tok.Position     { return s.Ampersand.Position }

func (*IDSelector) subclassSelector()          {}
func (*ClassSelector) subclassSelector()       {}
func (*AttributeSelector) subclassSelector()   {}
func (*PseudoClassSelector) subclassSelector() {}
func (*NestingSelector) subclassSelector()     {}

// IsEmpty reports whether the compound has no selector at all.
func (c CompoundSelector) IsEmpty() bool {
	return c.Type == nil && len(c.Subclasses) == 0 && len(c.Pseudos) == 0
}

// HasNesting reports whether any compound of the complex selector contains &.
func (s ComplexSelector) HasNesting() bool {
	for _, part := range s {
		for _, sub := range part.Compound.Subclasses {
			if _, ok := sub.(*NestingSelector); ok {
				return true
			}
		}
	}

	return false
}
