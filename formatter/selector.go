package formatter

import (
	"strings"

	cmn "github.com/shibukawa/hcss/parser/parsercommon"
	tok "github.com/shibukawa/hcss/tokenizer"
)

// resolveSelectors flattens a nested selector list against the selectors of
// the enclosing rule. "&" takes the parent's place; a selector without "&"
// becomes a descendant of each parent.
func (w *writer) resolveSelectors(list cmn.ComplexSelectorList, parents []string) []string {
	var result []string

	for _, complex := range list {
		switch {
		case parents == nil:
			result = append(result, w.complexSelector(complex, ":scope"))
		case complex.HasNesting():
			result = append(result, w.complexSelector(complex, w.nestingText(parents)))
		default:
			self := w.complexSelector(complex, "")
			for _, parent := range parents {
				if len(complex) > 0 && complex[0].Combinator.Kind != cmn.CombinatorNone {
					result = append(result, w.join(parent, self))
				} else {
					result = append(result, parent+" "+self)
				}
			}
		}
	}

	return result
}

// join places a relative selector after parent.
func (w *writer) join(parent, relative string) string {
	if w.f.minify {
		return parent + relative
	}

	return parent + " " + relative
}

func (w *writer) nestingText(parents []string) string {
	if len(parents) == 1 {
		return parents[0]
	}

	return ":is(" + w.joinSelectors(parents) + ")"
}

func (w *writer) complexSelector(complex cmn.ComplexSelector, nesting string) string {
	var b strings.Builder

	for i, part := range complex {
		kind := part.Combinator.Kind

		switch {
		case kind == cmn.CombinatorNone && i > 0:
			b.WriteString(" ")
		case kind != cmn.CombinatorNone:
			if w.f.minify {
				b.WriteString(kind.String())
			} else {
				if i > 0 {
					b.WriteString(" ")
				}

				b.WriteString(kind.String())
				b.WriteString(" ")
			}
		}

		b.WriteString(w.compound(part.Compound, nesting))
	}

	return b.String()
}

// compound serializes one compound selector. A parent standing in for "&"
// is wrapped in :is() unless it can be written in place.
func (w *writer) compound(c cmn.CompoundSelector, nesting string) string {
	var b strings.Builder

	if c.Type != nil {
		b.WriteString(typeSelector(c.Type))
	}

	for i, sub := range c.Subclasses {
		switch s := sub.(type) {
		case *cmn.IDSelector:
			b.WriteString("#")
			b.WriteString(escapeIdent(s.Hash.Value))
		case *cmn.ClassSelector:
			b.WriteString(".")
			b.WriteString(escapeIdent(s.Ident.Value))
		case *cmn.AttributeSelector:
			b.WriteString(w.attribute(s))
		case *cmn.PseudoClassSelector:
			b.WriteString(w.pseudoClass(*s))
		case *cmn.NestingSelector:
			inPlace := (c.Type == nil && i == 0) || nesting == "&"
			if !inPlace && isPlainCompound(nesting) && strings.ContainsRune(".#[:", rune(nesting[0])) {
				inPlace = true
			}

			if inPlace {
				b.WriteString(nesting)
			} else {
				b.WriteString(":is(" + nesting + ")")
			}
		}
	}

	for _, group := range c.Pseudos {
		b.WriteString(":")
		b.WriteString(w.pseudoClass(group.Element.Selector))

		for _, class := range group.Classes {
			b.WriteString(w.pseudoClass(class))
		}
	}

	return b.String()
}

// isPlainCompound reports whether s has no top-level combinator or comma.
func isPlainCompound(s string) bool {
	depth := 0

	for _, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ' ', '>', '+', '~', ',':
			if depth == 0 {
				return false
			}
		}
	}

	return true
}

func typeSelector(t *cmn.TypeSelector) string {
	if t.Name != nil {
		return nsPrefix(t.Name.Prefix) + escapeIdent(t.Name.Ident.Value)
	}

	return nsPrefix(t.Prefix) + "*"
}

func nsPrefix(p *cmn.NsPrefix) string {
	if p == nil {
		return ""
	}

	if p.Value == nil {
		return "|"
	}

	if p.Value.IsDelim("*") {
		return "*|"
	}

	return escapeIdent(p.Value.Value) + "|"
}

func (w *writer) attribute(s *cmn.AttributeSelector) string {
	var b strings.Builder

	b.WriteString("[")
	b.WriteString(nsPrefix(s.Name.Prefix))
	b.WriteString(escapeIdent(s.Name.Ident.Value))

	if s.Matcher != nil {
		if s.Matcher.Prefix != nil {
			b.WriteString(s.Matcher.Prefix.Value)
		}

		b.WriteString("=")

		if s.Value != nil {
			if s.Value.Type == tok.STRING {
				b.WriteString(quoteString(s.Value.Value, s.Value.Flag(tok.FlagQuote)))
			} else {
				b.WriteString(escapeIdent(s.Value.Value))
			}
		}
	}

	if s.Modifier != nil {
		b.WriteString(" ")
		b.WriteString(s.Modifier.Value)
	}

	b.WriteString("]")

	return b.String()
}

func (w *writer) pseudoClass(s cmn.PseudoClassSelector) string {
	if s.AnyValue == nil {
		return ":" + escapeIdent(s.Name.Value)
	}

	return ":" + escapeIdent(s.Name.Value) + "(" + w.f.FormatValues(s.AnyValue) + ")"
}
