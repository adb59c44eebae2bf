package parsercommon

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	tok "github.com/shibukawa/hcss/tokenizer"
)

// Sentinel errors
var (
	ErrSyntax                 = errors.New("syntax error")
	ErrTypeMismatch           = errors.New("type mismatch")
	ErrUndeclaredVariable     = errors.New("undeclared variable")
	ErrUndeclaredMixin        = errors.New("undeclared mixin")
	ErrRecursionLimitExceeded = errors.New("recursion limit exceeded")
	ErrInvalidBlockOpener     = errors.New("invalid simple block opener")
	ErrNoScope                = errors.New("no scope to exit")
)

// ParseError is a fatal diagnostic. Kind is one of the sentinel errors above.
type ParseError struct {
	Kind     error
	Message  string
	Token    *tok.Token
	Position tok.Position
	File     string
}

// Error returns the formatted error message
func (e *ParseError) Error() string {
	var b strings.Builder

	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(":")
	}

	fmt.Fprintf(&b, "%d:%d: %s: %s", e.Position.Line, e.Position.Column, e.Kind, e.Message)

	if e.Token != nil {
		fmt.Fprintf(&b, " (token: %s)", e.Token)
	} else {
		b.WriteString(" (at end of input)")
	}

	return b.String()
}

// Unwrap returns the error category
func (e *ParseError) Unwrap() error {
	return e.Kind
}

// NewParseError creates an error located at token. A nil token means end of input at pos.
func NewParseError(kind error, token *tok.Token, pos tok.Position, format string, args ...any) *ParseError {
	if token != nil {
		pos = token.Position
	}

	return &ParseError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Token:    token,
		Position: pos,
	}
}

// NewSyntaxError creates an ErrSyntax error.
func NewSyntaxError(token *tok.Token, pos tok.Position, message string) *ParseError {
	return NewParseError(ErrSyntax, token, pos, "%s", message)
}

// WithFile sets the source file on a ParseError inside err.
func WithFile(err error, file string) error {
	var perr *ParseError
	if errors.As(err, &perr) && perr.File == "" {
		perr.File = file
	}

	return err
}

// Suggest returns ` (did you mean "x"?)` for the closest candidate, or "".
// Candidates containing target as a fuzzy subsequence win; otherwise the
// candidate within a small edit distance is used.
func Suggest(target string, candidates []string) string {
	if ranks := fuzzy.RankFindFold(target, candidates); len(ranks) > 0 {
		sort.Sort(ranks)
		return fmt.Sprintf(" (did you mean %q?)", ranks[0].Target)
	}

	best, bestDistance := "", maxTypoDistance(target)+1

	for _, candidate := range candidates {
		if d := fuzzy.LevenshteinDistance(FoldName(target), FoldName(candidate)); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}

	if best == "" {
		return ""
	}

	return fmt.Sprintf(" (did you mean %q?)", best)
}

func maxTypoDistance(target string) int {
	return max(1, len(target)/3)
}
