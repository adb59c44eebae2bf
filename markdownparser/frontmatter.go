package markdownparser

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// FrontMatter holds per-document fixture settings.
type FrontMatter struct {
	// IgnoreWhitespace is a pointer to distinguish between unset and false.
	IgnoreWhitespace *bool         `yaml:"ignore_whitespace"`
	MaxDuration      time.Duration `yaml:"max_duration"`
	Minify           bool          `yaml:"minify"`
	Description      string        `yaml:"description"`
}

// parseFrontMatter extracts YAML front matter from markdown content. The
// returned line count is the number of lines the front matter occupied.
func parseFrontMatter(content string) (FrontMatter, string, int, error) {
	var frontMatter FrontMatter

	if !strings.HasPrefix(content, "---\n") {
		return frontMatter, content, 0, nil
	}

	endIndex := strings.Index(content[4:], "\n---")
	if endIndex == -1 {
		return frontMatter, "", 0, ErrInvalidFrontMatter
	}

	endIndex += 4

	raw := content[4:endIndex]
	remaining := strings.TrimPrefix(content[endIndex+4:], "\n")

	err := yaml.UnmarshalWithOptions([]byte(raw), &frontMatter, yaml.Strict())
	if err != nil {
		return frontMatter, "", 0, fmt.Errorf("%w: %w", ErrInvalidFrontMatter, err)
	}

	if frontMatter.MaxDuration < 0 {
		return frontMatter, "", 0, fmt.Errorf("%w: max_duration must be >= 0", ErrInvalidFrontMatter)
	}

	lines := bytes.Count([]byte(content[:len(content)-len(remaining)]), []byte("\n"))

	return frontMatter, remaining, lines, nil
}
