package tools

import (
	"errors"
	"fmt"
	"slices"
)

// Registry is the set of tools offered to the model. It is built once and
// read-only afterwards, so it can be shared between requests.
type Registry struct {
	tools map[string]Tool
	names []string
}

// NewRegistry builds a registry. Tools must have unique, non-empty names.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}

	for _, t := range tools {
		name := t.Spec().Name
		if name == "" {
			return nil, errors.New("tool with empty name")
		}
		if _, ok := r.tools[name]; ok {
			return nil, fmt.Errorf("duplicate tool name: %q", name)
		}
		r.tools[name] = t
		r.names = append(r.names, name)
	}

	slices.Sort(r.names)
	return r, nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Specs returns the tool specs sorted by name.
func (r *Registry) Specs() []Spec {
	specs := make([]Spec, 0, len(r.names))
	for _, name := range r.names {
		specs = append(specs, r.tools[name].Spec())
	}
	return specs
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.names)
}
