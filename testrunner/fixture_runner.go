// Package testrunner runs compile fixtures: Markdown documents with source
// and expected output blocks, and .hcss files with a sibling .css file.
package testrunner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"github.com/shibukawa/hcss"
	"github.com/shibukawa/hcss/markdownparser"
)

var (
	// ErrNoFixturesFound is returned when no fixture matched.
	ErrNoFixturesFound = errors.New("no fixtures found")
	// ErrOutputMismatch indicates that compiled CSS differs from the expectation.
	ErrOutputMismatch = errors.New("output mismatch")
	// ErrUnexpectedSuccess indicates that a case expecting an error compiled.
	ErrUnexpectedSuccess = errors.New("expected an error but compilation succeeded")
	// ErrWrongError indicates that compilation failed with a different message.
	ErrWrongError = errors.New("error message mismatch")
)

// Options holds runner settings. Front matter of a document overrides them.
type Options struct {
	IgnoreWhitespace bool
	MaxDuration      time.Duration
	Minify           bool
	Config           *hcss.Config
}

// FixtureTestRunner manages fixture-based test execution
type FixtureTestRunner struct {
	paths      []string
	options    Options
	verbose    bool
	runPattern *regexp.Regexp
	out        io.Writer
}

// NewFixtureTestRunner creates a new fixture test runner
func NewFixtureTestRunner(paths []string, options Options) *FixtureTestRunner {
	return &FixtureTestRunner{
		paths:   paths,
		options: options,
		out:     color.Output,
	}
}

// SetVerbose enables or disables verbose output
func (ftr *FixtureTestRunner) SetVerbose(verbose bool) {
	ftr.verbose = verbose
}

// SetOutput redirects progress and summary output.
func (ftr *FixtureTestRunner) SetOutput(w io.Writer) {
	ftr.out = w
}

// SetRunPattern sets the test name filter. The pattern is matched against
// "file/case" names like go test -run.
func (ftr *FixtureTestRunner) SetRunPattern(pattern string) error {
	if pattern == "" {
		ftr.runPattern = nil
		return nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid run pattern: %w", err)
	}

	ftr.runPattern = re

	return nil
}

// fixture is one case ready to run
type fixture struct {
	name     string
	file     string
	line     int
	source   string
	expected string
	wantErr  string
	options  Options
}

// FixtureTestResult represents the result of a fixture test
type FixtureTestResult struct {
	TestName   string
	SourceFile string
	SourceLine int
	Success    bool
	Duration   time.Duration
	Timings    hcss.Timings
	Error      error
	Diff       string
	// Warning is set when the case exceeded its max duration.
	Warning string
}

// FixtureTestSummary represents the summary of fixture test execution
type FixtureTestSummary struct {
	TotalTests    int
	PassedTests   int
	FailedTests   int
	Warnings      int
	TotalDuration time.Duration
	Results       []FixtureTestResult
}

// RunAll executes all fixtures found under the configured paths.
func (ftr *FixtureTestRunner) RunAll(ctx context.Context) (*FixtureTestSummary, error) {
	fixtures, loadErrors, err := ftr.collect()
	if err != nil {
		return nil, err
	}

	if len(fixtures) == 0 && len(loadErrors) == 0 {
		return nil, ErrNoFixturesFound
	}

	if ftr.verbose {
		fmt.Fprintf(ftr.out, "Executing %d test cases\n", len(fixtures))
	}

	summary := &FixtureTestSummary{}
	start := time.Now()

	summary.Results = append(summary.Results, loadErrors...)

	for _, f := range fixtures {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := ftr.run(f)
		if ftr.verbose {
			ftr.printProgress(result)
		}

		summary.Results = append(summary.Results, result)
	}

	for _, result := range summary.Results {
		summary.TotalTests++

		if result.Success {
			summary.PassedTests++
		} else {
			summary.FailedTests++
		}

		if result.Warning != "" {
			summary.Warnings++
		}
	}

	summary.TotalDuration = time.Since(start)

	return summary, nil
}

// collect loads fixtures from all paths. Documents that cannot be parsed
// are reported as failed results.
func (ftr *FixtureTestRunner) collect() ([]fixture, []FixtureTestResult, error) {
	var (
		fixtures   []fixture
		loadErrors []FixtureTestResult
		files      []string
	)

	for _, root := range ftr.paths {
		err := walkAndProcessFiles(root, func(p string) error {
			files = append(files, p)
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to find fixtures in %s: %w", root, err)
		}
	}

	sort.Strings(files)

	for _, file := range files {
		switch {
		case strings.EqualFold(filepath.Ext(file), ".md"):
			loaded, err := ftr.loadDocument(file)
			if err != nil {
				loadErrors = append(loadErrors, FixtureTestResult{
					TestName:   filepath.Base(file),
					SourceFile: file,
					Error:      err,
				})

				continue
			}

			fixtures = append(fixtures, loaded...)
		case ftr.isSource(file):
			loaded, ok, err := ftr.loadPair(file)
			if err != nil {
				return nil, nil, err
			}

			if ok {
				fixtures = append(fixtures, loaded)
			}
		}
	}

	var filtered []fixture

	for _, f := range fixtures {
		if ftr.runPattern == nil || ftr.runPattern.MatchString(f.name) {
			filtered = append(filtered, f)
		}
	}

	return filtered, loadErrors, nil
}

func (ftr *FixtureTestRunner) isSource(file string) bool {
	if ftr.options.Config != nil {
		return ftr.options.Config.HasExtension(file)
	}

	return strings.EqualFold(filepath.Ext(file), ".hcss")
}

func (ftr *FixtureTestRunner) loadDocument(file string) ([]fixture, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	doc, err := markdownparser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markdown: %w", err)
	}

	options := ftr.options
	if doc.FrontMatter.IgnoreWhitespace != nil {
		options.IgnoreWhitespace = *doc.FrontMatter.IgnoreWhitespace
	}

	if doc.FrontMatter.MaxDuration > 0 {
		options.MaxDuration = doc.FrontMatter.MaxDuration
	}

	if doc.FrontMatter.Minify {
		options.Minify = true
	}

	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	fixtures := make([]fixture, 0, len(doc.Cases))

	for _, c := range doc.Cases {
		fixtures = append(fixtures, fixture{
			name:     base + "/" + c.Name,
			file:     file,
			line:     c.Line,
			source:   c.Source,
			expected: c.Expected,
			wantErr:  c.ExpectedError,
			options:  options,
		})
	}

	return fixtures, nil
}

// loadPair reads name.hcss and name.css. A source without expectation is skipped.
func (ftr *FixtureTestRunner) loadPair(file string) (fixture, bool, error) {
	expectedPath := strings.TrimSuffix(file, filepath.Ext(file)) + ".css"

	expected, err := os.ReadFile(expectedPath)
	if errors.Is(err, os.ErrNotExist) {
		return fixture{}, false, nil
	} else if err != nil {
		return fixture{}, false, fmt.Errorf("failed to read %s: %w", expectedPath, err)
	}

	source, err := os.ReadFile(file)
	if err != nil {
		return fixture{}, false, fmt.Errorf("failed to read %s: %w", file, err)
	}

	return fixture{
		name:     strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)),
		file:     file,
		line:     1,
		source:   string(source),
		expected: string(expected),
		options:  ftr.options,
	}, true, nil
}

func (ftr *FixtureTestRunner) run(f fixture) FixtureTestResult {
	result := FixtureTestResult{
		TestName:   f.name,
		SourceFile: f.file,
		SourceLine: f.line,
	}

	var opts []hcss.Option
	if f.options.Config != nil {
		opts = append(opts, hcss.WithConfig(f.options.Config))
	}

	opts = append(opts, hcss.WithMinify(f.options.Minify))

	start := time.Now()
	compiled, err := hcss.CompileDetailed(f.source, f.file, opts...)
	result.Duration = time.Since(start)

	if compiled != nil {
		result.Timings = compiled.Timings
	}

	if f.options.MaxDuration > 0 && result.Duration > f.options.MaxDuration {
		result.Warning = fmt.Sprintf("took %s, limit %s", result.Duration, f.options.MaxDuration)
	}

	switch {
	case f.wantErr != "" && err == nil:
		result.Error = ErrUnexpectedSuccess
	case f.wantErr != "" && !strings.Contains(err.Error(), f.wantErr):
		result.Error = fmt.Errorf("%w: want %q in %q", ErrWrongError, f.wantErr, err.Error())
	case f.wantErr != "":
		result.Success = true
	case err != nil:
		result.Error = err
	default:
		if Equal(f.expected, compiled.CSS, f.options.IgnoreWhitespace) {
			result.Success = true
		} else {
			result.Error = ErrOutputMismatch
			result.Diff = cmp.Diff(strings.TrimSpace(f.expected), strings.TrimSpace(compiled.CSS))
		}
	}

	return result
}

// Equal compares CSS text. With ignoreWhitespace all whitespace is removed
// first; otherwise only leading and trailing whitespace is ignored.
func Equal(expected, actual string, ignoreWhitespace bool) bool {
	if ignoreWhitespace {
		return strings.Join(strings.Fields(expected), "") == strings.Join(strings.Fields(actual), "")
	}

	return strings.TrimSpace(expected) == strings.TrimSpace(actual)
}

func (ftr *FixtureTestRunner) printProgress(result FixtureTestResult) {
	if result.Success {
		color.New(color.FgGreen).Fprintf(ftr.out, "PASS")
	} else {
		color.New(color.FgRed).Fprintf(ftr.out, "FAIL")
	}

	fmt.Fprintf(ftr.out, " %s (%.3fms: tokenize %s, parse %s, format %s)\n",
		result.TestName,
		float64(result.Duration.Microseconds())/1000,
		result.Timings.Tokenize, result.Timings.Parse, result.Timings.Format)

	if result.Warning != "" {
		color.New(color.FgYellow).Fprintf(ftr.out, "  warning: %s\n", result.Warning)
	}
}

// PrintSummary prints the fixture test execution summary
func (ftr *FixtureTestRunner) PrintSummary(summary *FixtureTestSummary) {
	bold := color.New(color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(ftr.out, "\n")
	fmt.Fprintf(ftr.out, "%s\n", bold("=== Fixture Test Summary ==="))
	fmt.Fprintf(ftr.out, "Tests: %d total, %d passed, %d failed\n",
		summary.TotalTests, summary.PassedTests, summary.FailedTests)
	fmt.Fprintf(ftr.out, "Duration: %.3fs\n", summary.TotalDuration.Seconds())

	if summary.Warnings > 0 {
		fmt.Fprintf(ftr.out, "\n%s\n", yellow("Slow tests:"))

		for _, result := range summary.Results {
			if result.Warning != "" {
				fmt.Fprintf(ftr.out, "  %s: %s\n", result.TestName, result.Warning)
			}
		}
	}

	if summary.FailedTests > 0 {
		fmt.Fprintf(ftr.out, "\nFailed tests:\n")

		for _, result := range summary.Results {
			if result.Success {
				continue
			}

			fmt.Fprintf(ftr.out, "  %s %s (%s:%d)\n", red("❌"), result.TestName, result.SourceFile, result.SourceLine)

			if result.Error != nil {
				fmt.Fprintf(ftr.out, "    Error: %v\n", result.Error)
			}

			if result.Diff != "" {
				fmt.Fprintf(ftr.out, "    Diff (-expected +actual):\n")

				for _, line := range strings.Split(strings.TrimRight(result.Diff, "\n"), "\n") {
					fmt.Fprintf(ftr.out, "      %s\n", line)
				}
			}
		}
	}

	if summary.FailedTests == 0 {
		color.New(color.FgGreen).Fprintf(ftr.out, "\nAll fixture tests passed! ✅\n")
	} else {
		color.New(color.FgRed).Fprintf(ftr.out, "\nSome fixture tests failed! ❌\n")
	}
}
