// Package markdownparser reads literate fixture documents: Markdown files
// whose "## " sections each hold an hcss source block and the CSS it must
// compile to.
package markdownparser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Sentinel errors
var (
	ErrInvalidFrontMatter     = errors.New("invalid front matter")
	ErrMissingRequiredSection = errors.New("missing required section")
	ErrInvalidTestCase        = errors.New("invalid test case")
)

// Code block info strings
const (
	LangSource   = "hcss"
	LangExpected = "css"
	LangError    = "error"
)

// Document represents a parsed fixture document
type Document struct {
	Title       string
	FrontMatter FrontMatter
	Cases       []Case
}

// Case is one "## " section.
type Case struct {
	Name string
	// Line is the 1-based line of the heading in the original document.
	Line   int
	Source string
	// SourceLine is the line of the first source line.
	SourceLine int
	Expected   string
	// ExpectedError is a substring the compile error must contain.
	ExpectedError string
	// Description is the prose between the heading and the first code block.
	Description string
}

// WantsError reports whether the case expects compilation to fail.
func (c Case) WantsError() bool {
	return c.ExpectedError != ""
}

// Parse parses a fixture document
func Parse(reader io.Reader) (*Document, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	frontMatter, body, offset, err := parseFrontMatter(string(content))
	if err != nil {
		return nil, err
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
		),
	)

	source := []byte(body)
	doc := md.Parser().Parse(text.NewReader(source))

	document := &Document{FrontMatter: frontMatter}

	var current *Case

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			heading := extractTextFromNode(n, source)

			switch {
			case n.Level == 1 && document.Title == "":
				document.Title = heading
			case n.Level == 2:
				document.Cases = append(document.Cases, Case{
					Name: heading,
					Line: lineOf(source, headingOffset(n, source)) + offset,
				})
				current = &document.Cases[len(document.Cases)-1]
			}
		case *ast.FencedCodeBlock:
			if current == nil {
				continue
			}

			if err := assignCodeBlock(current, n, source, offset); err != nil {
				return nil, err
			}
		case *ast.Paragraph:
			if current != nil && current.Source == "" && current.Description == "" {
				current.Description = extractTextFromNode(n, source)
			}
		}
	}

	if len(document.Cases) == 0 {
		return nil, fmt.Errorf("%w: no '## ' test case found", ErrMissingRequiredSection)
	}

	for _, c := range document.Cases {
		if c.Source == "" {
			return nil, fmt.Errorf("%w: %s (line %d): missing ```%s block", ErrInvalidTestCase, c.Name, c.Line, LangSource)
		}

		if c.Expected == "" && c.ExpectedError == "" {
			return nil, fmt.Errorf("%w: %s (line %d): missing ```%s or ```%s block", ErrInvalidTestCase, c.Name, c.Line, LangExpected, LangError)
		}
	}

	return document, nil
}

func assignCodeBlock(c *Case, block *ast.FencedCodeBlock, source []byte, offset int) error {
	lang := strings.ToLower(string(block.Language(source)))
	content := extractCodeBlockContent(block, source)

	var target *string

	switch lang {
	case LangSource:
		target = &c.Source
	case LangExpected:
		target = &c.Expected
	case LangError:
		target = &c.ExpectedError
		content = strings.TrimSpace(content)
	default:
		return nil
	}

	if *target != "" {
		return fmt.Errorf("%w: %s (line %d): duplicate ```%s block", ErrInvalidTestCase, c.Name, c.Line, lang)
	}

	*target = content

	if lang == LangSource && block.Lines().Len() > 0 {
		c.SourceLine = lineOf(source, block.Lines().At(0).Start) + offset
	}

	return nil
}

// headingOffset returns the byte offset of the heading line.
func headingOffset(heading *ast.Heading, source []byte) int {
	if heading.Lines() != nil && heading.Lines().Len() > 0 {
		return heading.Lines().At(0).Start
	}

	return 0
}

// lineOf converts a byte offset to a 1-based line number.
func lineOf(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}

	return bytes.Count(source[:offset], []byte("\n")) + 1
}

func extractCodeBlockContent(codeBlock ast.Node, content []byte) string {
	var result strings.Builder

	if codeBlock.Lines() != nil {
		for i := 0; i < codeBlock.Lines().Len(); i++ {
			line := codeBlock.Lines().At(i)
			result.Write(content[line.Start:line.Stop])
		}
	}

	return strings.TrimRight(result.String(), "\n")
}

func extractTextFromNode(node ast.Node, content []byte) string {
	var result strings.Builder

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch textNode := n.(type) {
		case *ast.Text:
			segment := textNode.Segment
			result.Write(content[segment.Start:segment.Stop])

			if textNode.SoftLineBreak() {
				result.WriteString(" ")
			}
		case *ast.String:
			result.Write(textNode.Value)
		}

		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(result.String())
}
