package testrunner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingDoc = "# Basics\n\n## Variable\n\n```hcss\n$c: red;\na { color: $c; }\n```\n\n```css\na {\n  color: red;\n}\n```\n\n## Error\n\n```hcss\na { color: $x; }\n```\n\n```error\nundeclared variable\n```\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunAllDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "basics.md"), passingDoc)

	runner := NewFixtureTestRunner([]string{dir}, Options{})

	summary, err := runner.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalTests)
	assert.Equal(t, 2, summary.PassedTests)
	assert.Equal(t, 0, summary.FailedTests)
	assert.Equal(t, "basics/Variable", summary.Results[0].TestName)
	assert.Equal(t, 3, summary.Results[0].SourceLine)
}

func TestRunAllFilePairs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "card.hcss"), "@mixin pad { padding: 0 } .card { @include pad; }")
	writeFile(t, filepath.Join(dir, "card.css"), ".card { padding: 0; }")
	writeFile(t, filepath.Join(dir, "orphan.hcss"), "a { b: c }")

	runner := NewFixtureTestRunner([]string{dir}, Options{IgnoreWhitespace: true})

	summary, err := runner.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalTests)
	assert.Equal(t, 1, summary.PassedTests)
	assert.Equal(t, "card", summary.Results[0].TestName)
}

func TestRunAllReportsMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.md"), "## Wrong\n\n```hcss\na { color: red; }\n```\n\n```css\na { color: blue; }\n```\n\n## Succeeds\n\n```hcss\na { b: c; }\n```\n\n```error\nsyntax\n```\n")
	writeFile(t, filepath.Join(dir, "broken.md"), "no cases here\n")

	runner := NewFixtureTestRunner([]string{dir}, Options{IgnoreWhitespace: true})

	summary, err := runner.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalTests)
	assert.Equal(t, 3, summary.FailedTests)

	byName := map[string]FixtureTestResult{}
	for _, result := range summary.Results {
		byName[result.TestName] = result
	}

	assert.ErrorIs(t, byName["bad/Wrong"].Error, ErrOutputMismatch)
	assert.Contains(t, byName["bad/Wrong"].Diff, "blue")
	assert.ErrorIs(t, byName["bad/Succeeds"].Error, ErrUnexpectedSuccess)
	assert.Error(t, byName["broken.md"].Error)
}

func TestRunPattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "basics.md"), passingDoc)

	runner := NewFixtureTestRunner([]string{dir}, Options{})
	require.NoError(t, runner.SetRunPattern("Variable$"))

	summary, err := runner.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalTests)

	require.Error(t, runner.SetRunPattern("("))

	require.NoError(t, runner.SetRunPattern("nothing"))
	_, err = runner.RunAll(context.Background())
	assert.ErrorIs(t, err, ErrNoFixturesFound)
}

func TestRunAllMaxDurationWarns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "basics.md"), passingDoc)

	runner := NewFixtureTestRunner([]string{dir}, Options{MaxDuration: time.Nanosecond})

	summary, err := runner.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.FailedTests)
	assert.Equal(t, 2, summary.Warnings)
}

func TestRunAllCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "basics.md"), passingDoc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFixtureTestRunner([]string{dir}, Options{}).RunAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("a {\n  b: c;\n}", "a{b:c;}", true))
	assert.False(t, Equal("a {\n  b: c;\n}", "a{b:c;}", false))
	assert.True(t, Equal("\na{b:c}\n\n", "a{b:c}", false))
}

func TestPrintSummary(t *testing.T) {
	color.NoColor = true

	t.Cleanup(func() {
		color.NoColor = false
	})

	var out bytes.Buffer

	runner := NewFixtureTestRunner(nil, Options{})
	runner.SetOutput(&out)
	runner.PrintSummary(&FixtureTestSummary{
		TotalTests:    2,
		PassedTests:   1,
		FailedTests:   1,
		Warnings:      1,
		TotalDuration: 1500 * time.Millisecond,
		Results: []FixtureTestResult{
			{TestName: "a/ok", Success: true, Warning: "took 2ms, limit 1ms"},
			{TestName: "a/bad", SourceFile: "cases/a.md", SourceLine: 7, Error: ErrOutputMismatch, Diff: "-x\n+y\n"},
		},
	})

	output := out.String()
	assert.Contains(t, output, "Tests: 2 total, 1 passed, 1 failed")
	assert.Contains(t, output, "Duration: 1.500s")
	assert.Contains(t, output, "a/ok: took 2ms, limit 1ms")
	assert.Contains(t, output, "a/bad (cases/a.md:7)")
	assert.Contains(t, output, "Error: output mismatch")
	assert.Contains(t, output, "      +y")
	assert.Contains(t, output, "Some fixture tests failed!")
}

func TestRepositoryFixtures(t *testing.T) {
	runner := NewFixtureTestRunner([]string{filepath.Join("..", "testdata", "fixtures")}, Options{IgnoreWhitespace: true})

	summary, err := runner.RunAll(context.Background())
	require.NoError(t, err)

	for _, result := range summary.Results {
		assert.True(t, result.Success, "%s (%s:%d): %v\n%s", result.TestName, result.SourceFile, result.SourceLine, result.Error, result.Diff)
	}
}
