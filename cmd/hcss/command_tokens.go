package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/shibukawa/hcss/tokenizer"
)

// TokensCmd represents the tokens command
type TokensCmd struct {
	File           string `arg:"" help:"Source file ('-' for stdin)"`
	SkipWhitespace bool   `help:"Omit whitespace tokens"`
}

// Run executes the tokens command
func (cmd *TokensCmd) Run(ctx *Context) error {
	src, err := readSource(ctx, cmd.File)
	if err != nil {
		return err
	}

	tz := tokenizer.NewTokenizer(src, tokenizer.TokenizerOptions{SkipWhitespace: cmd.SkipWhitespace})

	for token := range tz.Tokens() {
		fmt.Fprintln(ctx.Stdout, formatToken(token))
	}

	return nil
}

// formatToken renders "line:col TYPE value flags".
func formatToken(token tokenizer.Token) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d:%d %s", token.Position.Line, token.Position.Column, token.Type)

	if token.Type != tokenizer.EOF {
		fmt.Fprintf(&b, " %q", token.Value)
	}

	if len(token.Flags) > 0 {
		keys := make([]string, 0, len(token.Flags))
		for key := range token.Flags {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for _, key := range keys {
			fmt.Fprintf(&b, " %s=%s", key, token.Flags[key])
		}
	}

	return b.String()
}

// readSource reads a file, or stdin when name is "-".
func readSource(ctx *Context, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(ctx.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}

	return string(data), nil
}
