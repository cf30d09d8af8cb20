package transform

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps transform names to implementations. It is built explicitly
// by whoever assembles the pipeline and passed to consumers; there is no
// package-level registry.
type Registry struct {
	byName map[string]Transform
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Transform)}
}

// Defaults returns a registry holding every built-in transform.
func Defaults() *Registry {
	r := NewRegistry()
	for _, t := range builtins() {
		r.mustRegister(t)
	}
	return r
}

func (r *Registry) mustRegister(t Transform) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Register adds t under its name.
func (r *Registry) Register(t Transform) error {
	if t == nil || t.Name() == "" {
		return fmt.Errorf("register: transform has no name")
	}
	if _, ok := r.byName[t.Name()]; ok {
		return fmt.Errorf("register %q: %w", t.Name(), ErrDuplicateTransform)
	}
	r.byName[t.Name()] = t
	return nil
}

// Lookup returns the transform registered under name.
func (r *Registry) Lookup(name string) (Transform, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Chain resolves names, in the given order, into a runnable chain.
func (r *Registry) Chain(names ...string) (*Chain, error) {
	steps := make([]Transform, 0, len(names))
	for _, name := range names {
		t, ok := r.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, name)
		}
		steps = append(steps, t)
	}
	return &Chain{steps: steps}, nil
}

// ParseNames splits a comma-separated transform list, dropping blanks.
func ParseNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

func builtins() []Transform {
	return []Transform{
		Func(MoveFirstGoodParagraphUp, moveFirstGoodParagraphUp),
	}
}
