package hcss

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/hcss/testhelper"
)

func TestCompile(t *testing.T) {
	src := `
$brand: #336699;
@mixin rounded($r: 4px) { border-radius: $r; }
@phone = (max-width: 600px);
.button {
  color: $brand;
  @include rounded;
  &:hover { color: white; }
  @phone { padding: 0; }
}
`
	css, err := Compile(src, "button.hcss", WithMinify(true))
	assert.NoError(t, err)
	assert.Equal(t, ".button{color:#336699;border-radius:4px}.button:hover{color:white}@media (max-width:600px){.button{padding:0}}", css)
}

func TestCompileMixinBodyWithoutTrailingSemicolon(t *testing.T) {
	css, err := Compile("@mixin m{color:red} a{@include m; &:hover{x:1}}", "m.hcss", WithMinify(true))
	assert.NoError(t, err)
	assert.Equal(t, "a{color:red}a:hover{x:1}", css)
}

func TestCompilePretty(t *testing.T) {
	src := testhelper.TrimIndent(t, `
		@mixin flex($dir: row) {
			display: flex;
			flex-direction: $dir;
		}
		nav {
			@include flex(column);
			& > a { color: inherit; }
		}
	`)
	expected := testhelper.TrimIndent(t, `
		nav {
			display: flex;
			flex-direction: column;
		}

		nav > a {
			color: inherit;
		}
	`)

	css, err := Compile(src, "nav.hcss")
	assert.NoError(t, err)
	assert.Equal(t, expected, css)
}

func TestCompileWithConfig(t *testing.T) {
	config := DefaultConfig()
	config.Output.Indent = 4
	config.Output.Header = "generated"

	css, err := Compile("a{b:c}", "", WithConfig(config))
	assert.NoError(t, err)
	assert.Equal(t, "/* generated */\na {\n    b: c;\n}\n", css)

	config.Parser.MaxIncludeDepth = 1
	_, err = Compile("@mixin a { x: 1 } @mixin b { @include a; } p { @include b; }", "", WithConfig(config))
	assert.IsError(t, err, ErrRecursionLimitExceeded)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind error
	}{
		{name: "syntax", src: "a { color red }", kind: ErrSyntax},
		{name: "variable", src: "a { color: $x }", kind: ErrUndeclaredVariable},
		{name: "mixin", src: "a { @include x; }", kind: ErrUndeclaredMixin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src, "in.hcss")
			assert.True(t, errors.Is(err, tt.kind))
			assert.True(t, strings.HasPrefix(err.Error(), "in.hcss:"))
		})
	}
}

func TestCompileDetailed(t *testing.T) {
	result, err := CompileDetailed("a { b: c }", "")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(result.Stylesheet.Rules))
	assert.True(t, result.Tokens > 0)
	assert.Equal(t, result.Timings.Tokenize+result.Timings.Parse+result.Timings.Format, result.Timings.Total())
}

func TestCompileFileAndReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.hcss")
	assert.NoError(t, os.WriteFile(path, []byte("$c: red; p { color: $c }"), 0o644))

	css, err := CompileFile(path, WithMinify(true))
	assert.NoError(t, err)
	assert.Equal(t, "p{color:red}", css)

	css, err = CompileReader(strings.NewReader("p { color: blue }"), "stdin", WithMinify(true))
	assert.NoError(t, err)
	assert.Equal(t, "p{color:blue}", css)

	_, err = CompileFile(filepath.Join(t.TempDir(), "missing.hcss"))
	assert.Error(t, err)
}

func TestCollectSources(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"main.hcss", "parts/button.hcss", "parts/readme.md"} {
		path := filepath.Join(dir, name)
		assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		assert.NoError(t, os.WriteFile(path, []byte("a{b:c}"), 0o644))
	}

	config := DefaultConfig()

	sources, err := CollectSources(config, []string{dir})
	assert.NoError(t, err)
	assert.Equal(t, 2, len(sources))
	assert.Equal(t, "main.hcss", sources[0].Rel)
	assert.Equal(t, filepath.Join("parts", "button.hcss"), sources[1].Rel)
	assert.Equal(t, filepath.Join("dist", "parts", "button.css"), sources[1].OutputPath("dist"))

	_, err = CollectSources(config, []string{filepath.Join(dir, "parts", "readme.md")})
	assert.IsError(t, err, ErrUnsupportedExtension)

	_, err = CollectSources(config, []string{filepath.Join(dir, "parts", "empty")})
	assert.Error(t, err)

	empty := t.TempDir()
	_, err = CollectSources(config, []string{empty})
	assert.IsError(t, err, ErrEmptyInput)
}
