package testhelper

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestTrimIndent(t *testing.T) {
	src := `
		a {
			color: red;
		}
	`
	assert.Equal(t, "a {\n  color: red;\n}\n", TrimIndent(t, src))
}
