package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
)

// InitCmd represents the init command
type InitCmd struct {
	Dir string `arg:"" optional:"" help:"Project directory" default:"."`
}

const sampleConfig = `# hcss configuration
input_dir: "./styles"
output_dir: "./dist"
extensions: [".hcss"]

output:
  minify: false
  indent: 2
  header: ""

parser:
  max_include_depth: 64
  max_nesting_depth: 256

test:
  dir: "./testdata/fixtures"
  ignore_whitespace: true
  max_duration: 100ms
`

const sampleStyle = `$brand: #0b7285;

@mixin rounded($r = 4px) {
  border-radius: $r;
}

.button {
  color: $brand;
  @include rounded;

  &:hover {
    color: white;
    background: $brand;
  }
}
`

const sampleFixture = "# Button\n\n## Brand color\n\n```hcss\n$brand: red;\n.button { color: $brand; }\n```\n\n```css\n.button {\n  color: red;\n}\n```\n"

// Run executes the init command
func (cmd *InitCmd) Run(ctx *Context) error {
	files := []struct {
		path    string
		content string
	}{
		{"hcss.yaml", sampleConfig},
		{filepath.Join("styles", "main.hcss"), sampleStyle},
		{filepath.Join("testdata", "fixtures", "button.md"), sampleFixture},
	}

	for _, file := range files {
		path := filepath.Join(cmd.Dir, file.path)

		if _, err := os.Stat(path); err == nil {
			if !ctx.Quiet {
				color.New(color.FgYellow).Fprintf(ctx.Stdout, "Skipped existing: %s\n", path)
			}

			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}

		if err := os.WriteFile(path, []byte(file.content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		if !ctx.Quiet {
			color.New(color.FgGreen).Fprintf(ctx.Stdout, "Created: %s\n", path)
		}
	}

	if !ctx.Quiet {
		fmt.Fprintln(ctx.Stdout, "Run 'hcss build' to compile styles/ into dist/.")
	}

	return nil
}
