package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/shibukawa/hcss/formatter"
	"github.com/shibukawa/hcss/parser"
	"github.com/shibukawa/hcss/tokenizer"
)

// DumpCmd represents the dump command
type DumpCmd struct {
	File   string `arg:"" help:"Source file ('-' for stdin)"`
	Format string `short:"f" help:"Output format" enum:"yaml,text" default:"yaml"`
}

// Run executes the dump command
func (cmd *DumpCmd) Run(ctx *Context) error {
	src, err := readSource(ctx, cmd.File)
	if err != nil {
		return err
	}

	config, err := ctx.LoadConfig()
	if err != nil {
		return err
	}

	sheet, err := parser.Parse(src, cmd.File, parser.Options{
		MaxIncludeDepth: config.Parser.MaxIncludeDepth,
		MaxNestingDepth: config.Parser.MaxNestingDepth,
		Logger:          ctx.Logger(),
	})
	if err != nil {
		return err
	}

	d := &dumper{f: formatter.NewCSSFormatter(formatter.Options{Minify: true})}

	switch cmd.Format {
	case "yaml":
		return d.writeYAML(ctx.Stdout, sheet.Rules)
	case "text":
		d.writeText(ctx.Stdout, sheet.Rules, 0)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, cmd.Format)
	}
}

type dumper struct {
	f *formatter.CSSFormatter
}

func (d *dumper) writeYAML(w io.Writer, rules []parser.SyntaxNode) error {
	nodes := make([]any, 0, len(rules))
	for _, rule := range rules {
		nodes = append(nodes, d.node(rule))
	}

	data, err := yaml.Marshal(yaml.MapSlice{{Key: "rules", Value: nodes}})
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}

	_, err = w.Write(data)

	return err
}

// node converts a block entry to an ordered map for YAML output.
func (d *dumper) node(v parser.ComponentValue) yaml.MapSlice {
	switch n := v.(type) {
	case *parser.StyleRule:
		return yaml.MapSlice{
			{Key: "style", Value: d.f.FormatSelectors(n.Selectors)},
			{Key: "line", Value: n.Start().Line},
			{Key: "block", Value: d.entries(n.Block)},
		}
	case *parser.AtRule:
		item := yaml.MapSlice{
			{Key: "at", Value: n.Name.Value},
			{Key: "line", Value: n.Start().Line},
			{Key: "prelude", Value: strings.TrimSpace(d.f.FormatValues(n.Prelude))},
		}
		if n.Block != nil {
			item = append(item, yaml.MapItem{Key: "block", Value: d.entries(n.Block.Value)})
		}

		return item
	case *parser.QualifiedRule:
		return yaml.MapSlice{
			{Key: "qualified", Value: strings.TrimSpace(d.f.FormatValues(n.Prelude))},
			{Key: "line", Value: n.Start().Line},
			{Key: "block", Value: d.entries(n.Block.Value)},
		}
	case *parser.Declaration:
		item := yaml.MapSlice{
			{Key: "property", Value: n.Name.Value},
			{Key: "value", Value: strings.TrimSpace(d.f.FormatValues(n.Value))},
		}
		if n.Important {
			item = append(item, yaml.MapItem{Key: "important", Value: true})
		}

		return item
	default:
		return yaml.MapSlice{{Key: "value", Value: d.f.FormatValues([]parser.ComponentValue{v})}}
	}
}

func (d *dumper) entries(values []parser.ComponentValue) []yaml.MapSlice {
	result := make([]yaml.MapSlice, 0, len(values))

	for _, v := range values {
		if isSkippable(v) {
			continue
		}

		result = append(result, d.node(v))
	}

	return result
}

func (d *dumper) writeText(w io.Writer, values []parser.SyntaxNode, level int) {
	for _, v := range values {
		d.textNode(w, v, level)
	}
}

func (d *dumper) textNode(w io.Writer, v parser.ComponentValue, level int) {
	if isSkippable(v) {
		return
	}

	indent := strings.Repeat("  ", level)

	switch n := v.(type) {
	case *parser.StyleRule:
		fmt.Fprintf(w, "%sStyleRule %s\n", indent, strings.Join(d.f.FormatSelectors(n.Selectors), ", "))
		d.textEntries(w, n.Block, level+1)
	case *parser.AtRule:
		fmt.Fprintf(w, "%sAtRule @%s %s\n", indent, n.Name.Value, strings.TrimSpace(d.f.FormatValues(n.Prelude)))
		if n.Block != nil {
			d.textEntries(w, n.Block.Value, level+1)
		}
	case *parser.QualifiedRule:
		fmt.Fprintf(w, "%sQualifiedRule %s\n", indent, strings.TrimSpace(d.f.FormatValues(n.Prelude)))
		d.textEntries(w, n.Block.Value, level+1)
	case *parser.Declaration:
		important := ""
		if n.Important {
			important = " !important"
		}

		fmt.Fprintf(w, "%sDeclaration %s: %s%s\n", indent, n.Name.Value, strings.TrimSpace(d.f.FormatValues(n.Value)), important)
	default:
		fmt.Fprintf(w, "%s%T %s\n", indent, v, d.f.FormatValues([]parser.ComponentValue{v}))
	}
}

func (d *dumper) textEntries(w io.Writer, values []parser.ComponentValue, level int) {
	for _, v := range values {
		d.textNode(w, v, level)
	}
}

// isSkippable reports whether v is whitespace or a stray semicolon.
func isSkippable(v parser.ComponentValue) bool {
	t, ok := v.(tokenizer.Token)
	if !ok {
		return false
	}

	return t.Type == tokenizer.WHITESPACE || t.Type == tokenizer.SEMICOLON
}
