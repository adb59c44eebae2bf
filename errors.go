package hcss

import (
	"errors"

	"github.com/shibukawa/hcss/parser"
)

// Common errors used throughout the hcss package
var (
	// ErrSyntax indicates malformed input.
	ErrSyntax = parser.ErrSyntax
	// ErrUndeclaredVariable is returned when a $variable is used outside the scope of its declaration.
	ErrUndeclaredVariable = parser.ErrUndeclaredVariable
	// ErrUndeclaredMixin is returned when @include names an unknown mixin.
	ErrUndeclaredMixin = parser.ErrUndeclaredMixin
	// ErrRecursionLimitExceeded indicates runaway @include expansion or block nesting.
	ErrRecursionLimitExceeded = parser.ErrRecursionLimitExceeded

	// ErrUnsupportedExtension is returned when a file does not have a configured source extension.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	// ErrEmptyInput indicates that no source files were found.
	ErrEmptyInput = errors.New("no source files found")
)
