package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/fatih/color"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

// newTestContext returns a context with a missing config file, so defaults apply.
func newTestContext(t *testing.T, stdin string) (*Context, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	color.NoColor = true

	var stdout, stderr bytes.Buffer

	return &Context{
		Config: filepath.Join(t.TempDir(), "hcss.yaml"),
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

func TestBuildCmd(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "styles/a.hcss", "$c: red; a { color: $c; }")
	writeTemp(t, dir, "styles/parts/b.hcss", "@mixin m { margin: 0 } b { @include m; }")
	writeTemp(t, dir, "styles/ignored.txt", "not a stylesheet")

	ctx, stdout, _ := newTestContext(t, "")
	cmd := &BuildCmd{Paths: []string{filepath.Join(dir, "styles")}, Output: filepath.Join(dir, "dist"), Minify: true}

	assert.NoError(t, cmd.Run(ctx))

	a, err := os.ReadFile(filepath.Join(dir, "dist", "a.css"))
	assert.NoError(t, err)
	assert.Equal(t, "a{color:red}", string(a))

	b, err := os.ReadFile(filepath.Join(dir, "dist", "parts", "b.css"))
	assert.NoError(t, err)
	assert.Equal(t, "b{margin:0}", string(b))

	assert.Contains(t, stdout.String(), "Generated: ")
}

func TestBuildCmdReportsFailures(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "ok.hcss", "a { color: red; }")
	writeTemp(t, dir, "bad.hcss", "a { color: $missing; }")

	ctx, _, stderr := newTestContext(t, "")
	cmd := &BuildCmd{Paths: []string{dir}, Output: filepath.Join(dir, "dist")}

	err := cmd.Run(ctx)
	assert.IsError(t, err, ErrBuildFailed)
	assert.Contains(t, err.Error(), "1 of 2 files")
	assert.Contains(t, stderr.String(), "undeclared variable")

	_, err = os.Stat(filepath.Join(dir, "dist", "ok.css"))
	assert.NoError(t, err)
}

func TestBuildCmdStdin(t *testing.T) {
	ctx, stdout, _ := newTestContext(t, "$w: 1px; p { border-width: $w }")
	cmd := &BuildCmd{Paths: []string{"-"}, Minify: true}

	assert.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "p{border-width:1px}", stdout.String())
}

func TestTokensCmd(t *testing.T) {
	ctx, stdout, _ := newTestContext(t, "a {\n  width: 10px;\n}")
	cmd := &TokensCmd{File: "-", SkipWhitespace: true}

	assert.NoError(t, cmd.Run(ctx))

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	assert.Equal(t, `1:1 IDENT "a"`, lines[0])
	assert.Contains(t, stdout.String(), `2:10 DIMENSION "10" type=integer unit=px`)
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], "EOF"))
}

func TestDumpCmd(t *testing.T) {
	src := "$c: red;\n.card { color: $c; &:hover { color: blue !important; } }\n"

	t.Run("yaml", func(t *testing.T) {
		ctx, stdout, _ := newTestContext(t, src)
		assert.NoError(t, (&DumpCmd{File: "-", Format: "yaml"}).Run(ctx))

		output := stdout.String()
		assert.Contains(t, output, "rules:")
		assert.Contains(t, output, "- .card")
		assert.Contains(t, output, "property: color")
		assert.Contains(t, output, "value: red")
		assert.Contains(t, output, "&:hover")
		assert.Contains(t, output, "important: true")
	})

	t.Run("text", func(t *testing.T) {
		ctx, stdout, _ := newTestContext(t, src)
		assert.NoError(t, (&DumpCmd{File: "-", Format: "text"}).Run(ctx))

		assert.Equal(t, "StyleRule .card\n  Declaration color: red\n  StyleRule &:hover\n    Declaration color: blue !important\n", stdout.String())
	})

	t.Run("error", func(t *testing.T) {
		ctx, _, _ := newTestContext(t, "a { color: $nope; }")
		err := (&DumpCmd{File: "-", Format: "text"}).Run(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "undeclared variable")
	})
}

func TestTestCmd(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "basics.md", "## Color\n\n```hcss\n$c: red;\na { color: $c; }\n```\n\n```css\na {\n  color: red;\n}\n```\n")

	ctx, stdout, _ := newTestContext(t, "")
	assert.NoError(t, (&TestCmd{Paths: []string{dir}}).Run(ctx))
	assert.Contains(t, stdout.String(), "1 passed")

	writeTemp(t, dir, "wrong.md", "## Color\n\n```hcss\na { color: red; }\n```\n\n```css\na{color:blue}\n```\n")

	ctx, _, _ = newTestContext(t, "")
	err := (&TestCmd{Paths: []string{dir}}).Run(ctx)
	assert.IsError(t, err, ErrTestsFailed)

	ctx, _, _ = newTestContext(t, "")
	assert.NoError(t, (&TestCmd{Paths: []string{dir}, Pattern: "basics/"}).Run(ctx))
}

func TestFormatCmd(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "site.css", "a{color:red;margin:0 auto}")

	ctx, stdout, _ := newTestContext(t, "")
	assert.NoError(t, (&FormatCmd{Input: path}).Run(ctx))
	assert.Equal(t, "a {\n  color: red;\n  margin: 0 auto;\n}\n", stdout.String())

	ctx, _, _ = newTestContext(t, "")
	assert.IsError(t, (&FormatCmd{Input: path, Check: true}).Run(ctx), ErrFileNotFormatted)

	ctx, _, _ = newTestContext(t, "")
	assert.NoError(t, (&FormatCmd{Input: dir, Write: true}).Run(ctx))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "a {\n  color: red;\n  margin: 0 auto;\n}\n", string(data))

	ctx, _, _ = newTestContext(t, "")
	assert.NoError(t, (&FormatCmd{Input: path, Check: true}).Run(ctx))
}

func TestInitCmd(t *testing.T) {
	dir := t.TempDir()

	ctx, stdout, _ := newTestContext(t, "")
	assert.NoError(t, (&InitCmd{Dir: dir}).Run(ctx))
	assert.Contains(t, stdout.String(), "Created: ")

	for _, name := range []string{"hcss.yaml", filepath.Join("styles", "main.hcss"), filepath.Join("testdata", "fixtures", "button.md")} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	ctx, stdout, _ = newTestContext(t, "")
	assert.NoError(t, (&InitCmd{Dir: dir}).Run(ctx))
	assert.Contains(t, stdout.String(), "Skipped existing: ")

	// The generated project builds and its fixture passes.
	ctx, _, _ = newTestContext(t, "")
	ctx.Config = filepath.Join(dir, "hcss.yaml")
	assert.NoError(t, (&BuildCmd{Paths: []string{filepath.Join(dir, "styles")}, Output: filepath.Join(dir, "dist")}).Run(ctx))

	css, err := os.ReadFile(filepath.Join(dir, "dist", "main.css"))
	assert.NoError(t, err)
	assert.Contains(t, string(css), "border-radius: 4px;")
	assert.Contains(t, string(css), ".button:hover {")

	ctx, _, _ = newTestContext(t, "")
	assert.NoError(t, (&TestCmd{Paths: []string{filepath.Join(dir, "testdata", "fixtures")}}).Run(ctx))
}

func TestVersionCmd(t *testing.T) {
	ctx, stdout, _ := newTestContext(t, "")
	assert.NoError(t, (&VersionCmd{}).Run(ctx))
	assert.Equal(t, "hcss "+Version+"\n", stdout.String())
}
