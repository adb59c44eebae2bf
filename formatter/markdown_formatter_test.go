package formatter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestMarkdownFormatter_Format(t *testing.T) {
	formatter := NewMarkdownFormatter()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "css block",
			input: `# Card

` + "```css" + `
a{color:red}
` + "```" + `

done`,
			expected: `# Card

` + "```css" + `
a {
  color: red;
}
` + "```" + `

done`,
		},
		{
			name: "hcss block is kept",
			input: "```hcss\n$c: red;\na{color:$c}\n```",
			expected: "```hcss\n$c: red;\na{color:$c}\n```",
		},
		{
			name:     "indented block",
			input:    "- item\n  ```css\n  b{x:1}\n  ```",
			expected: "- item\n  ```css\n  b {\n    x: 1;\n  }\n  ```",
		},
		{
			name:     "broken css is kept",
			input:    "```css\na b c\n```",
			expected: "```css\na b c\n```",
		},
		{
			name:     "empty block",
			input:    "```css\n```",
			expected: "```css\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := formatter.Format(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestMarkdownFormatter_FormatFromReader(t *testing.T) {
	var out bytes.Buffer

	err := NewMarkdownFormatter().FormatFromReader(strings.NewReader("```css\np{a:b}\n```\n"), &out)
	assert.NoError(t, err)
	assert.Equal(t, "```css\np {\n  a: b;\n}\n```", out.String())
}

func TestIsMarkdownFile(t *testing.T) {
	assert.True(t, IsMarkdownFile("cases/basic.md"))
	assert.True(t, IsMarkdownFile("README.MD"))
	assert.False(t, IsMarkdownFile("main.hcss"))
}
