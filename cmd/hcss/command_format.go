package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/shibukawa/hcss/formatter"
	"github.com/shibukawa/hcss/parser"
)

// FormatCmd represents the format command
type FormatCmd struct {
	Input string `arg:"" optional:"" help:"Input file or directory (default: stdin)"`
	Write bool   `short:"w" help:"Write result to input file instead of stdout"`
	Check bool   `short:"c" help:"Check if files are formatted (exit 1 if not)"`
}

// Run executes the format command
func (cmd *FormatCmd) Run(ctx *Context) error {
	if cmd.Input == "" || cmd.Input == "-" {
		src, err := readSource(ctx, "-")
		if err != nil {
			return err
		}

		formatted, err := cmd.format(src, "<stdin>")
		if err != nil {
			return err
		}

		_, err = fmt.Fprint(ctx.Stdout, formatted)

		return err
	}

	info, err := os.Stat(cmd.Input)
	if err != nil {
		return fmt.Errorf("failed to stat input: %w", err)
	}

	if !info.IsDir() {
		return cmd.formatFile(ctx, cmd.Input)
	}

	var failed int

	err = filepath.WalkDir(cmd.Input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !isFormattable(path) {
			return nil
		}

		if err := cmd.formatFile(ctx, path); err != nil {
			failed++

			color.New(color.FgRed).Fprintf(ctx.Stderr, "%v\n", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if failed > 0 {
		if cmd.Check {
			return fmt.Errorf("%w: %d files", ErrFileNotFormatted, failed)
		}

		return fmt.Errorf("%w: %d files", ErrFormattingErrors, failed)
	}

	return nil
}

func (cmd *FormatCmd) formatFile(ctx *Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	formatted, err := cmd.format(string(data), path)
	if err != nil {
		return err
	}

	switch {
	case cmd.Check:
		if strings.TrimSpace(string(data)) != strings.TrimSpace(formatted) {
			return fmt.Errorf("%w: %s", ErrFileNotFormatted, path)
		}

		return nil
	case cmd.Write:
		if formatted == string(data) {
			return nil
		}

		if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		if !ctx.Quiet {
			color.New(color.FgGreen).Fprintf(ctx.Stdout, "Formatted: %s\n", path)
		}

		return nil
	default:
		_, err = fmt.Fprint(ctx.Stdout, formatted)
		return err
	}
}

// format reformats a plain CSS file or the css blocks of a fixture document.
func (cmd *FormatCmd) format(src, name string) (string, error) {
	if formatter.IsMarkdownFile(name) {
		formatted, err := formatter.NewMarkdownFormatter().Format(src)
		if err != nil {
			return "", fmt.Errorf("failed to format Markdown in %s: %w", name, err)
		}

		return formatted, nil
	}

	sheet, err := parser.Parse(src, name, parser.DefaultOptions)
	if err != nil {
		return "", err
	}

	return formatter.NewCSSFormatter(formatter.Options{}).Format(sheet.Rules)
}

func isFormattable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".css" || formatter.IsMarkdownFile(path)
}
