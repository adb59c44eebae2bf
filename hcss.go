// Package hcss compiles CSS with variables, mixins and nesting into plain CSS.
package hcss

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shibukawa/hcss/formatter"
	"github.com/shibukawa/hcss/parser"
	"github.com/shibukawa/hcss/tokenizer"
)

// Option customizes a compilation
type Option func(*options)

type options struct {
	parser    parser.Options
	formatter formatter.Options
}

// WithConfig applies the output and parser sections of a configuration.
func WithConfig(config *Config) Option {
	return func(o *options) {
		o.parser.MaxIncludeDepth = config.Parser.MaxIncludeDepth
		o.parser.MaxNestingDepth = config.Parser.MaxNestingDepth
		o.formatter.Minify = config.Output.Minify
		o.formatter.Indent = config.Output.Indent
		o.formatter.Header = config.Output.Header
	}
}

// WithMinify switches between minified and pretty output.
func WithMinify(minify bool) Option {
	return func(o *options) {
		o.formatter.Minify = minify
	}
}

// WithLogger enables parser tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.parser.Logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{parser: parser.DefaultOptions}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Timings holds the time spent in each compilation stage.
type Timings struct {
	Tokenize time.Duration
	Parse    time.Duration
	Format   time.Duration
}

// Total returns the sum of all stages.
func (t Timings) Total() time.Duration {
	return t.Tokenize + t.Parse + t.Format
}

// Result is the outcome of CompileDetailed.
type Result struct {
	CSS        string
	Stylesheet *parser.Stylesheet
	Tokens     int
	Timings    Timings
}

// Compile converts hcss source to CSS. file is used in diagnostics only.
func Compile(src, file string, opts ...Option) (string, error) {
	result, err := CompileDetailed(src, file, opts...)
	if err != nil {
		return "", err
	}

	return result.CSS, nil
}

// CompileDetailed compiles src and reports the resolved tree and stage timings.
func CompileDetailed(src, file string, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	result := &Result{}

	start := time.Now()
	tokens := tokenizer.Tokenize(src)
	result.Tokens = len(tokens)
	result.Timings.Tokenize = time.Since(start)

	start = time.Now()

	sheet, err := parser.ParseTokens(tokens, file, o.parser)
	if err != nil {
		return nil, err
	}

	result.Stylesheet = sheet
	result.Timings.Parse = time.Since(start)

	start = time.Now()

	css, err := formatter.NewCSSFormatter(o.formatter).Format(sheet.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to format %s: %w", file, err)
	}

	result.CSS = css
	result.Timings.Format = time.Since(start)

	return result, nil
}

// CompileReader reads all of r and compiles it.
func CompileReader(r io.Reader, file string, opts ...Option) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}

	return Compile(string(data), file, opts...)
}

// CompileFile reads and compiles the file at path.
func CompileFile(path string, opts ...Option) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	return Compile(string(data), path, opts...)
}

// Source is a source file found by CollectSources.
type Source struct {
	Path string
	// Rel is the path relative to the directory it was found in.
	Rel string
}

// OutputPath returns the .css destination of the source under dir.
func (s Source) OutputPath(dir string) string {
	rel := s.Rel
	rel = rel[:len(rel)-len(filepath.Ext(rel))] + ".css"

	return filepath.Join(dir, rel)
}

// CollectSources expands files and directories into source files with a
// configured extension. Explicitly named files must carry one as well.
func CollectSources(config *Config, paths []string) ([]Source, error) {
	var sources []Source

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if !info.IsDir() {
			if !config.HasExtension(path) {
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, path)
			}

			sources = append(sources, Source{Path: path, Rel: filepath.Base(path)})

			continue
		}

		root := path

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() || !config.HasExtension(p) {
				return nil
			}

			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}

			sources = append(sources, Source{Path: p, Rel: rel})

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	if len(sources) == 0 {
		return nil, ErrEmptyInput
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Path < sources[j].Path
	})

	return sources, nil
}
