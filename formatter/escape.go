package formatter

import (
	"fmt"
	"strings"
)

// escapeIdent serializes an identifier so that it tokenizes back to the same
// ident. Leading digits and a lone "-" are escaped.
func escapeIdent(s string) string {
	var b strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case isControl(r):
			writeHexEscape(&b, r)
		case i == 0 && isDigit(r):
			writeHexEscape(&b, r)
		case i == 1 && isDigit(r) && runes[0] == '-':
			writeHexEscape(&b, r)
		case i == 0 && r == '-' && len(runes) == 1:
			b.WriteString(`\-`)
		case isNameRune(r):
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}

	return b.String()
}

// escapeName serializes a name that needs no ident start, such as a hash
// value or a dimension unit.
func escapeName(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case isControl(r):
			writeHexEscape(&b, r)
		case isNameRune(r):
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}

	return b.String()
}

// quoteString wraps s in quote. Anything but a single quote means a double quote.
func quoteString(s, quote string) string {
	if quote != "'" {
		quote = `"`
	}

	var b strings.Builder

	b.WriteString(quote)

	for _, r := range s {
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case isControl(r):
			writeHexEscape(&b, r)
		case r == '\\' || string(r) == quote:
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteString(quote)

	return b.String()
}

// escapeURL serializes the body of an unquoted url().
func escapeURL(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case isControl(r) || r == ' ' || r == '\t':
			writeHexEscape(&b, r)
		case r == '\\' || r == '"' || r == '\'' || r == '(' || r == ')':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

func writeHexEscape(b *strings.Builder, r rune) {
	fmt.Fprintf(b, "\\%x ", r)
}

func isControl(r rune) bool {
	return (r >= 0x01 && r <= 0x1F) || r == 0x7F
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNameRune(r rune) bool {
	return r >= 0x80 || r == '-' || r == '_' || isDigit(r) ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
