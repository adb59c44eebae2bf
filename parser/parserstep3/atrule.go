package parserstep3

import (
	"strings"

	cmn "github.com/shibukawa/hcss/parser/parsercommon"
	"github.com/shibukawa/hcss/parser/parserstep1"
)

// bodyKind selects how the {} block of an at-rule is parsed.
type bodyKind int

const (
	bodyRules bodyKind = iota
	bodyDeclarations
	bodyKeyframes
)

// declarationAtRules hold declarations directly.
var declarationAtRules = map[string]bool{
	"font-face":           true,
	"page":                true,
	"property":            true,
	"counter-style":       true,
	"font-palette-values": true,
	"viewport":            true,
}

// vendorPrefixes are stripped before an at-rule name is classified.
var vendorPrefixes = []string{"-webkit-", "-moz-", "-ms-", "-o-"}

func classify(name string) bodyKind {
	folded := cmn.FoldName(name)
	for _, prefix := range vendorPrefixes {
		if trimmed, ok := strings.CutPrefix(folded, prefix); ok {
			folded = trimmed
			break
		}
	}

	switch {
	case folded == "keyframes":
		return bodyKeyframes
	case declarationAtRules[folded]:
		return bodyDeclarations
	default:
		return bodyRules
	}
}

// AtRule resolves the block of a genuine at-rule in a child scope. Inside a
// style rule (nested) grouping rules such as @media hold a style block; at
// rule level they hold a list of rules. The resolved entries replace the
// block contents.
func AtRule(p *parserstep1.Parser, rule *cmn.AtRule, nested bool) (*cmn.AtRule, error) {
	if rule.Block == nil {
		return rule, nil
	}

	var (
		values []cmn.ComponentValue
		err    error
	)

	switch kind := classify(rule.Name.Value); {
	case kind == bodyKeyframes:
		values, err = keyframes(p, rule.Block)
	case kind == bodyDeclarations || nested:
		var block cmn.StyleBlock

		block, err = StyleBlock(p, rule.Block)
		values = block
	default:
		values, err = rulesList(p, rule.Block)
	}

	if err != nil {
		return nil, err
	}

	return &cmn.AtRule{
		Name:    rule.Name,
		Prelude: rule.Prelude,
		Block: &cmn.SimpleBlock{
			Open:  rule.Block.Open,
			Value: values,
			Close: rule.Block.Close,
		},
	}, nil
}

// rulesList parses block as a list of rules like a stylesheet.
func rulesList(p *parserstep1.Parser, block *cmn.SimpleBlock) ([]cmn.ComponentValue, error) {
	sub := p.Sub(block.Value)

	if err := sub.EnterBlock(); err != nil {
		return nil, err
	}
	defer sub.LeaveBlock()

	ns := sub.Namespace()
	ns.Enter()
	defer ns.Exit() //nolint:errcheck

	result := []cmn.ComponentValue{}

	for node, err := range sub.Rules() {
		if err != nil {
			return nil, err
		}

		resolved, err := resolveRule(sub, node, false)
		if err != nil {
			return nil, err
		}

		result = append(result, resolved)
	}

	return result, nil
}

// keyframes parses keyframe blocks. Keyframe selectors such as "from" or
// "50%" stay as the prelude of a qualified rule whose block holds the
// resolved declarations.
func keyframes(p *parserstep1.Parser, block *cmn.SimpleBlock) ([]cmn.ComponentValue, error) {
	sub := p.Sub(block.Value)

	if err := sub.EnterBlock(); err != nil {
		return nil, err
	}
	defer sub.LeaveBlock()

	ns := sub.Namespace()
	ns.Enter()
	defer ns.Exit() //nolint:errcheck

	result := []cmn.ComponentValue{}

	for node, err := range sub.Rules() {
		if err != nil {
			return nil, err
		}

		switch n := node.(type) {
		case *cmn.QualifiedRule:
			body, err := StyleBlock(sub, n.Block)
			if err != nil {
				return nil, err
			}

			result = append(result, &cmn.QualifiedRule{
				Prelude: n.Prelude,
				Block: &cmn.SimpleBlock{
					Open:  n.Block.Open,
					Value: body,
					Close: n.Block.Close,
				},
			})
		case *cmn.AtRule:
			resolved, err := AtRule(sub, n, true)
			if err != nil {
				return nil, err
			}

			result = append(result, resolved)
		}
	}

	return result, nil
}
