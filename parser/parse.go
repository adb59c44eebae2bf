package parser

import (
	"fmt"
	"io"

	cmn "github.com/shibukawa/hcss/parser/parsercommon"
	"github.com/shibukawa/hcss/parser/parserstep1"
	"github.com/shibukawa/hcss/parser/parserstep3"
	"github.com/shibukawa/hcss/tokenizer"
)

// Re-export common types for user convenience
type (
	ComponentValue = cmn.ComponentValue
	SyntaxNode     = cmn.SyntaxNode

	AtRule        = cmn.AtRule
	QualifiedRule = cmn.QualifiedRule
	StyleRule     = cmn.StyleRule
	StyleBlock    = cmn.StyleBlock
	Declaration   = cmn.Declaration
	SimpleBlock   = cmn.SimpleBlock
	FunctionCall  = cmn.FunctionCall

	ComplexSelectorList = cmn.ComplexSelectorList
	ComplexSelector     = cmn.ComplexSelector
	CompoundSelector    = cmn.CompoundSelector

	ParseError = cmn.ParseError
)

// Re-export sentinel errors
var (
	ErrSyntax                 = cmn.ErrSyntax
	ErrTypeMismatch           = cmn.ErrTypeMismatch
	ErrUndeclaredVariable     = cmn.ErrUndeclaredVariable
	ErrUndeclaredMixin        = cmn.ErrUndeclaredMixin
	ErrRecursionLimitExceeded = cmn.ErrRecursionLimitExceeded
	ErrInvalidBlockOpener     = cmn.ErrInvalidBlockOpener
)

// LevelTrace is the slog level of parser tracing.
const LevelTrace = cmn.LevelTrace

// Stylesheet is the resolved tree of one source file. Every qualified rule
// is a *StyleRule; variables, mixins and aliases are gone.
type Stylesheet struct {
	File  string
	Rules []SyntaxNode
}

// Parse tokenizes and parses src. file is used in diagnostics only.
func Parse(src, file string, opts Options) (*Stylesheet, error) {
	return ParseTokens(tokenizer.Tokenize(src), file, opts)
}

// ParseReader reads all of r and parses it.
func ParseReader(r io.Reader, file string, opts Options) (*Stylesheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	return Parse(string(data), file, opts)
}

// ParseTokens runs the parsing pipeline over lexer output.
func ParseTokens(tokens []tokenizer.Token, file string, opts Options) (*Stylesheet, error) {
	// Step 1: component values, scopes and directive resolution
	p := parserstep1.NewParser(tokens, opts.step1())

	// Step 2 and 3: selectors and rule bodies, rule by rule
	rules, err := parserstep3.Execute(p)
	if err != nil {
		return nil, cmn.WithFile(err, file)
	}

	return &Stylesheet{File: file, Rules: rules}, nil
}
