package formatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	cmn "github.com/shibukawa/hcss/parser/parsercommon"
	tok "github.com/shibukawa/hcss/tokenizer"
)

// ErrUnsupportedNode is returned for nodes that cannot appear in resolved output.
var ErrUnsupportedNode = errors.New("unsupported node")

// Options controls CSS output
type Options struct {
	Minify bool
	// Indent is the number of spaces per nesting level. Zero means 2.
	Indent int
	// Header is written as a leading comment when not empty.
	Header string
}

// CSSFormatter writes resolved rules as plain CSS. Nested style rules are
// flattened: "&" is replaced by the parent selector.
type CSSFormatter struct {
	indentSize int
	minify     bool
	header     string
}

// NewCSSFormatter creates a new CSS formatter
func NewCSSFormatter(opts Options) *CSSFormatter {
	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}

	return &CSSFormatter{
		indentSize: indent,
		minify:     opts.Minify,
		header:     opts.Header,
	}
}

// writer accumulates output for one Format call
type writer struct {
	f     *CSSFormatter
	b     strings.Builder
	first bool
}

// Format serializes top-level rules.
func (f *CSSFormatter) Format(rules []cmn.SyntaxNode) (string, error) {
	w := &writer{f: f, first: true}

	if f.header != "" {
		w.b.WriteString("/* ")
		w.b.WriteString(strings.ReplaceAll(f.header, "*/", "* /"))
		w.b.WriteString(" */")

		if !f.minify {
			w.b.WriteString("\n")
		}
	}

	for _, rule := range rules {
		if err := w.rule(rule, nil, 0); err != nil {
			return "", err
		}
	}

	return w.b.String(), nil
}

// FormatValues serializes a component value list such as a declaration value.
func (f *CSSFormatter) FormatValues(values []cmn.ComponentValue) string {
	w := &writer{f: f}
	w.values(values)

	return w.b.String()
}

// FormatSelectors serializes a selector list without nesting resolution.
func (f *CSSFormatter) FormatSelectors(list cmn.ComplexSelectorList) []string {
	w := &writer{f: f}

	result := make([]string, 0, len(list))
	for _, complex := range list {
		result = append(result, w.complexSelector(complex, "&"))
	}

	return result
}

func (w *writer) indent(level int) {
	if !w.f.minify {
		w.b.WriteString(strings.Repeat(" ", level*w.f.indentSize))
	}
}

func (w *writer) newline() {
	if !w.f.minify {
		w.b.WriteString("\n")
	}
}

// open starts a rule at level. Top-level rules are separated by a blank line.
func (w *writer) open(prelude string, level int) {
	if level == 0 && !w.first {
		w.newline()
	}

	w.first = false

	w.indent(level)
	w.b.WriteString(prelude)

	if w.f.minify {
		w.b.WriteString("{")
	} else {
		w.b.WriteString(" {\n")
	}
}

func (w *writer) close(level int) {
	w.indent(level)
	w.b.WriteString("}")
	w.newline()
}

// rule writes one node. parents holds the resolved selectors of the
// enclosing style rule, nil at rule level.
func (w *writer) rule(node cmn.ComponentValue, parents []string, level int) error {
	switch n := node.(type) {
	case *cmn.StyleRule:
		return w.styleRule(n, parents, level)
	case *cmn.AtRule:
		return w.atRule(n, parents, level)
	case *cmn.QualifiedRule:
		return w.qualifiedRule(n, level)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedNode, node)
	}
}

func (w *writer) styleRule(rule *cmn.StyleRule, parents []string, level int) error {
	selectors := w.resolveSelectors(rule.Selectors, parents)

	var (
		decls  []*cmn.Declaration
		nested []cmn.ComponentValue
	)

	for _, entry := range rule.Block {
		switch e := entry.(type) {
		case *cmn.Declaration:
			decls = append(decls, e)
		case *cmn.StyleRule, *cmn.AtRule:
			nested = append(nested, e)
		default:
			return fmt.Errorf("%w in style block: %T", ErrUnsupportedNode, entry)
		}
	}

	if len(decls) > 0 || (len(nested) == 0 && !w.f.minify) {
		w.open(w.joinSelectors(selectors), level)
		w.declarations(decls, level+1, true)
		w.close(level)
	}

	for _, entry := range nested {
		if err := w.rule(entry, selectors, level); err != nil {
			return err
		}
	}

	return nil
}

// atRule writes an at-rule. Inside a style rule the declarations of the
// body are wrapped in a copy of the parent selector.
func (w *writer) atRule(rule *cmn.AtRule, parents []string, level int) error {
	prelude := "@" + escapeIdent(rule.Name.Value)
	if len(rule.Prelude) > 0 {
		prelude += " " + w.f.FormatValues(rule.Prelude)
	}

	if rule.Block == nil {
		if level == 0 && !w.first {
			w.newline()
		}

		w.first = false

		w.indent(level)
		w.b.WriteString(prelude)
		w.b.WriteString(";")
		w.newline()

		return nil
	}

	w.open(prelude, level)

	var err error
	if parents != nil {
		err = w.wrappedRule(rule.Block.Value, parents, level+1)
	} else {
		err = w.body(rule.Block.Value, level+1)
	}

	if err != nil {
		return err
	}

	w.close(level)

	return nil
}

// wrappedRule writes the body of a nested at-rule as a rule for parents.
func (w *writer) wrappedRule(entries []cmn.ComponentValue, parents []string, level int) error {
	var (
		decls  []*cmn.Declaration
		nested []cmn.ComponentValue
	)

	for _, entry := range entries {
		if decl, ok := entry.(*cmn.Declaration); ok {
			decls = append(decls, decl)
		} else {
			nested = append(nested, entry)
		}
	}

	if len(decls) > 0 {
		w.open(w.joinSelectors(parents), level)
		w.declarations(decls, level+1, true)
		w.close(level)
	}

	for _, entry := range nested {
		if err := w.rule(entry, parents, level); err != nil {
			return err
		}
	}

	return nil
}

// body writes the block of a top-level at-rule. Runs of declarations
// (font-face, page) are written as a declaration list.
func (w *writer) body(entries []cmn.ComponentValue, level int) error {
	var decls []*cmn.Declaration

	for _, entry := range entries {
		if decl, ok := entry.(*cmn.Declaration); ok {
			decls = append(decls, decl)
			continue
		}

		if len(decls) > 0 {
			w.declarations(decls, level, false)
			decls = nil
		}

		if err := w.rule(entry, nil, level); err != nil {
			return err
		}
	}

	if len(decls) > 0 {
		w.declarations(decls, level, true)
	}

	return nil
}

// qualifiedRule writes a keyframe block.
func (w *writer) qualifiedRule(rule *cmn.QualifiedRule, level int) error {
	w.open(w.f.FormatValues(rule.Prelude), level)

	if rule.Block != nil {
		var decls []*cmn.Declaration

		for _, entry := range rule.Block.Value {
			decl, ok := entry.(*cmn.Declaration)
			if !ok {
				return fmt.Errorf("%w in keyframe: %T", ErrUnsupportedNode, entry)
			}

			decls = append(decls, decl)
		}

		w.declarations(decls, level+1, true)
	}

	w.close(level)

	return nil
}

// declarations writes a declaration list. When last is set, minified
// output omits the final semicolon.
func (w *writer) declarations(decls []*cmn.Declaration, level int, last bool) {
	for i, decl := range decls {
		w.indent(level)
		w.b.WriteString(escapeIdent(decl.Name.Value))

		if w.f.minify {
			w.b.WriteString(":")
		} else {
			w.b.WriteString(": ")
		}

		w.values(decl.Value)

		if decl.Important {
			if w.f.minify {
				w.b.WriteString("!important")
			} else {
				w.b.WriteString(" !important")
			}
		}

		if !w.f.minify || !last || i < len(decls)-1 {
			w.b.WriteString(";")
		}

		w.newline()
	}
}

func (w *writer) joinSelectors(selectors []string) string {
	if w.f.minify {
		return strings.Join(selectors, ",")
	}

	return strings.Join(selectors, ", ")
}

// values writes component values. Whitespace tokens become one space; when
// minifying, spaces are kept only where tokens would otherwise merge.
func (w *writer) values(values []cmn.ComponentValue) {
	values = cmn.TrimWhitespace(values)

	var prev cmn.ComponentValue

	for i, v := range values {
		if cmn.IsTokenType(v, tok.WHITESPACE) {
			if w.f.minify {
				next := nextNonSpace(values, i)
				if prev != nil && next != nil && needsSpace(prev, next) {
					w.b.WriteString(" ")
				}
			} else {
				w.b.WriteString(" ")
			}

			continue
		}

		w.value(v)
		prev = v
	}
}

func nextNonSpace(values []cmn.ComponentValue, from int) cmn.ComponentValue {
	for _, v := range values[from:] {
		if !cmn.IsTokenType(v, tok.WHITESPACE) {
			return v
		}
	}

	return nil
}

func (w *writer) value(v cmn.ComponentValue) {
	switch v := v.(type) {
	case tok.Token:
		w.b.WriteString(w.f.token(v))
	case *cmn.FunctionCall:
		w.b.WriteString(escapeIdent(v.Name.Value))
		w.b.WriteString("(")

		for i, arg := range v.Arguments {
			if i > 0 {
				w.b.WriteString(",")

				if !w.f.minify {
					w.b.WriteString(" ")
				}
			}

			w.values(arg)
		}

		w.b.WriteString(")")
	case *cmn.SimpleBlock:
		w.b.WriteString(v.Open.Value)
		w.values(v.Value)

		if closer, ok := tok.Mirror(v.Open.Type); ok {
			w.b.WriteString(closerText(closer))
		}
	}
}

func closerText(t tok.TokenType) string {
	switch t {
	case tok.CLOSED_BRACE:
		return "}"
	case tok.CLOSED_BRACKET:
		return "]"
	default:
		return ")"
	}
}

// token serializes a single token.
func (f *CSSFormatter) token(t tok.Token) string {
	switch t.Type {
	case tok.IDENT:
		return escapeIdent(t.Value)
	case tok.FUNCTION:
		return escapeIdent(t.Value) + "("
	case tok.AT_KEYWORD:
		return "@" + escapeIdent(t.Value)
	case tok.HASH:
		if t.Flag(tok.FlagType) == tok.TypeID {
			return "#" + escapeIdent(t.Value)
		}

		return "#" + escapeName(t.Value)
	case tok.STRING:
		return quoteString(t.Value, t.Flag(tok.FlagQuote))
	case tok.BAD_STRING:
		return quoteString(t.Value, t.Flag(tok.FlagQuote))
	case tok.URL:
		return "url(" + escapeURL(t.Value) + ")"
	case tok.BAD_URL:
		return "url()"
	case tok.NUMBER:
		return f.number(t.Value)
	case tok.PERCENTAGE:
		return f.number(t.Value) + "%"
	case tok.DIMENSION:
		return f.number(t.Value) + escapeName(t.Flag(tok.FlagUnit))
	case tok.WHITESPACE:
		return " "
	default:
		return t.Value
	}
}

// number shortens numeric text when minifying: "0.50" becomes ".5" and
// "10.0" becomes "10". An explicit plus sign is kept.
func (f *CSSFormatter) number(repr string) string {
	if !f.minify {
		return repr
	}

	d, err := decimal.NewFromString(repr)
	if err != nil {
		return repr
	}

	s := d.String()

	switch {
	case strings.HasPrefix(s, "0."):
		s = s[1:]
	case strings.HasPrefix(s, "-0."):
		s = "-" + s[2:]
	}

	if strings.HasPrefix(repr, "+") && !d.IsZero() {
		s = "+" + s
	}

	if len(s) > len(repr) {
		return repr
	}

	return s
}

// needsSpace reports whether a space between a and b must survive minification.
func needsSpace(a, b cmn.ComponentValue) bool {
	if cmn.IsTokenType(a, tok.COMMA, tok.COLON, tok.SEMICOLON, tok.OPENED_PARENS, tok.OPENED_BRACKET, tok.OPENED_BRACE, tok.FUNCTION) {
		return false
	}

	if cmn.IsTokenType(b, tok.COMMA, tok.COLON, tok.SEMICOLON, tok.CLOSED_PARENS, tok.CLOSED_BRACKET, tok.CLOSED_BRACE) {
		return false
	}

	if opensBlock(b) {
		return endsWord(a)
	}

	return true
}

func opensBlock(v cmn.ComponentValue) bool {
	if block, ok := v.(*cmn.SimpleBlock); ok {
		return block.Open.Type == tok.OPENED_PARENS
	}

	return cmn.IsTokenType(v, tok.OPENED_PARENS)
}

func endsWord(v cmn.ComponentValue) bool {
	t, ok := v.(tok.Token)
	return ok && t.Type != tok.DELIM
}
