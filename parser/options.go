package parser

import (
	"log/slog"

	"github.com/shibukawa/hcss/parser/parserstep1"
)

// Options controls resolution limits and tracing.
type Options struct {
	// MaxIncludeDepth bounds nested @include expansion. Zero uses the default.
	MaxIncludeDepth int
	// MaxNestingDepth bounds block nesting. Zero uses the default.
	MaxNestingDepth int
	// Logger receives trace output of scope resolution. Nil disables it.
	Logger *slog.Logger
}

// DefaultOptions provides the default parser options.
var DefaultOptions = Options{
	MaxIncludeDepth: parserstep1.DefaultMaxIncludeDepth,
	MaxNestingDepth: parserstep1.DefaultMaxNestingDepth,
}

func (o Options) step1() parserstep1.Options {
	return parserstep1.Options{
		MaxIncludeDepth: o.MaxIncludeDepth,
		MaxNestingDepth: o.MaxNestingDepth,
		Logger:          o.Logger,
	}
}
