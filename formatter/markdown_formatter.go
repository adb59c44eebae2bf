package formatter

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shibukawa/hcss/parser"
)

// MarkdownFormatter rewrites the CSS code blocks of a fixture document in
// canonical form. hcss blocks are left untouched.
type MarkdownFormatter struct {
	cssFormatter *CSSFormatter
}

// NewMarkdownFormatter creates a new Markdown formatter
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{
		cssFormatter: NewCSSFormatter(Options{}),
	}
}

var (
	cssBlockStartRe = regexp.MustCompile(`^(\s*)\x60{3}css\s*$`)
	codeBlockEndRe  = regexp.MustCompile(`^(\s*)\x60{3}\s*$`)
)

// Format formats CSS code blocks within a Markdown document. A block that
// fails to parse is kept as is.
func (f *MarkdownFormatter) Format(markdown string) (string, error) {
	var result strings.Builder

	scanner := bufio.NewScanner(strings.NewReader(markdown))

	var (
		inBlock     bool
		content     strings.Builder
		blockIndent string
	)

	for scanner.Scan() {
		line := scanner.Text()

		if !inBlock {
			if match := cssBlockStartRe.FindStringSubmatch(line); match != nil {
				inBlock = true
				blockIndent = match[1]
				content.Reset()
			}

			result.WriteString(line)
			result.WriteString("\n")

			continue
		}

		if codeBlockEndRe.MatchString(line) {
			inBlock = false

			css := content.String()
			if strings.TrimSpace(css) != "" {
				formatted, err := f.formatCSS(css)
				if err != nil {
					formatted = css
				}

				for _, cssLine := range strings.Split(strings.TrimRight(formatted, "\n"), "\n") {
					if strings.TrimSpace(cssLine) != "" {
						result.WriteString(blockIndent)
						result.WriteString(cssLine)
					}

					result.WriteString("\n")
				}
			}

			result.WriteString(line)
			result.WriteString("\n")

			continue
		}

		content.WriteString(strings.TrimPrefix(line, blockIndent))
		content.WriteString("\n")
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("error reading markdown: %w", err)
	}

	return strings.TrimRight(result.String(), "\n"), nil
}

func (f *MarkdownFormatter) formatCSS(css string) (string, error) {
	sheet, err := parser.Parse(css, "", parser.DefaultOptions)
	if err != nil {
		return "", err
	}

	return f.cssFormatter.Format(sheet.Rules)
}

// FormatFromReader formats CSS code blocks from a reader and writes to a writer
func (f *MarkdownFormatter) FormatFromReader(reader io.Reader, writer io.Writer) error {
	input, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	formatted, err := f.Format(string(input))
	if err != nil {
		return fmt.Errorf("failed to format markdown: %w", err)
	}

	_, err = writer.Write([]byte(formatted))

	return err
}

// IsMarkdownFile checks if a file is a Markdown file
func IsMarkdownFile(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".md"
}
