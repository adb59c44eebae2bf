package parsercommon

import (
	"fmt"
	"slices"
	"sort"

	"golang.org/x/text/cases"
)

// Scope is one lexical frame. Capture is set on the frame opened for a mixin
// body while it is captured; Parameters holds that mixin's parameter names.
type Scope struct {
	Variables  map[string][]ComponentValue
	AtRules    map[string][]ComponentValue
	Mixins     map[string]*Mixin
	Parameters []string
	Capture    bool
}

func newScope() *Scope {
	return &Scope{
		Variables: make(map[string][]ComponentValue),
		AtRules:   make(map[string][]ComponentValue),
		Mixins:    make(map[string]*Mixin),
	}
}

// Namespace is a stack of scopes. frames[0] is the stylesheet scope; lookups
// walk from the innermost frame outwards.
type Namespace struct {
	frames []*Scope
}

// NewNamespace creates a namespace holding only the stylesheet scope.
func NewNamespace() *Namespace {
	return &Namespace{
		frames: []*Scope{newScope()},
	}
}

// Enter pushes a child scope.
func (ns *Namespace) Enter() *Scope {
	scope := newScope()
	ns.frames = append(ns.frames, scope)

	return scope
}

// EnterParameters pushes a child scope carrying mixin parameter names.
func (ns *Namespace) EnterParameters(names []string) *Scope {
	scope := ns.Enter()
	scope.Parameters = slices.Clone(names)
	scope.Capture = true

	return scope
}

// CapturingMixin reports whether a mixin body is being captured.
func (ns *Namespace) CapturingMixin() bool {
	for _, frame := range ns.frames {
		if frame.Capture {
			return true
		}
	}

	return false
}

// Exit pops the innermost scope. The stylesheet scope cannot be popped.
func (ns *Namespace) Exit() error {
	if len(ns.frames) <= 1 {
		return fmt.Errorf("%w: depth %d", ErrNoScope, len(ns.frames))
	}

	ns.frames = ns.frames[:len(ns.frames)-1]

	return nil
}

// Current returns the innermost scope.
func (ns *Namespace) Current() *Scope {
	return ns.frames[len(ns.frames)-1]
}

// Depth returns the number of frames.
func (ns *Namespace) Depth() int {
	return len(ns.frames)
}

// SetVariable binds a variable in the innermost scope.
func (ns *Namespace) SetVariable(name string, value []ComponentValue) {
	ns.Current().Variables[name] = value
}

// SetAtRule binds a custom at-rule alias in the innermost scope.
func (ns *Namespace) SetAtRule(name string, value []ComponentValue) {
	ns.Current().AtRules[FoldName(name)] = value
}

// SetMixin binds a mixin in the innermost scope.
func (ns *Namespace) SetMixin(name string, mixin *Mixin) {
	ns.Current().Mixins[name] = mixin
}

// FindVariable looks a variable up from the innermost scope outwards.
// A variable bound to an empty value is found.
func (ns *Namespace) FindVariable(name string) ([]ComponentValue, bool) {
	for i := len(ns.frames) - 1; i >= 0; i-- {
		if value, ok := ns.frames[i].Variables[name]; ok {
			return value, true
		}
	}

	return nil, false
}

// FindAtRule looks a custom at-rule alias up; names are case-insensitive.
func (ns *Namespace) FindAtRule(name string) ([]ComponentValue, bool) {
	folded := FoldName(name)
	for i := len(ns.frames) - 1; i >= 0; i-- {
		if value, ok := ns.frames[i].AtRules[folded]; ok {
			return value, true
		}
	}

	return nil, false
}

// FindMixin looks a mixin up from the innermost scope outwards.
func (ns *Namespace) FindMixin(name string) (*Mixin, bool) {
	for i := len(ns.frames) - 1; i >= 0; i-- {
		if mixin, ok := ns.frames[i].Mixins[name]; ok {
			return mixin, true
		}
	}

	return nil, false
}

// IsParameter reports whether name is a parameter of a mixin body being captured.
// Parameters shadow variables of the same name.
func (ns *Namespace) IsParameter(name string) bool {
	for i := len(ns.frames) - 1; i >= 0; i-- {
		if slices.Contains(ns.frames[i].Parameters, name) {
			return true
		}
	}

	return false
}

// VariableNames lists every variable visible from the innermost scope.
func (ns *Namespace) VariableNames() []string {
	return ns.visibleNames(func(s *Scope) []string {
		names := make([]string, 0, len(s.Variables))
		for name := range s.Variables {
			names = append(names, name)
		}

		return names
	})
}

// MixinNames lists every mixin visible from the innermost scope.
func (ns *Namespace) MixinNames() []string {
	return ns.visibleNames(func(s *Scope) []string {
		names := make([]string, 0, len(s.Mixins))
		for name := range s.Mixins {
			names = append(names, name)
		}

		return names
	})
}

func (ns *Namespace) visibleNames(namesOf func(*Scope) []string) []string {
	seen := make(map[string]bool)

	var names []string

	for _, frame := range ns.frames {
		for _, name := range namesOf(frame) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	sort.Strings(names)

	return names
}

// FoldName case-folds CSS keywords such as at-rule names.
func FoldName(name string) string {
	return cases.Fold().String(name)
}
