// Package tools provides the tool registry and executor the stream translator
// dispatches model tool calls to.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Spec describes a tool to the model.
type Spec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Tool is a callable tool. Call receives the parsed argument object.
type Tool interface {
	Spec() Spec
	Call(ctx context.Context, args map[string]any) (any, error)
}

// LoadingReporter customizes the preliminary loading text of a tool.
type LoadingReporter interface {
	Loading(args map[string]any) string
}

// Func is a Tool backed by a typed handler. Arguments are validated against
// the schema generated from T before they are decoded into it.
type Func[T any] struct {
	spec     Spec
	resolved *jsonschema.Resolved
	handler  func(context.Context, T) (any, error)
	loading  func(T) string
}

// NewFunc builds a tool named name whose parameter schema is generated from T.
func NewFunc[T any](name, description string, handler func(context.Context, T) (any, error)) (*Func[T], error) {
	params, resolved, err := SchemaFor[T]()
	if err != nil {
		return nil, fmt.Errorf("generating schema for %s: %w", name, err)
	}

	return &Func[T]{
		spec: Spec{
			Name:        name,
			Description: description,
			Parameters:  params,
		},
		resolved: resolved,
		handler:  handler,
	}, nil
}

// WithLoading sets the loading text reported while the tool runs.
func (f *Func[T]) WithLoading(fn func(T) string) *Func[T] {
	f.loading = fn
	return f
}

func (f *Func[T]) Spec() Spec {
	return f.spec
}

func (f *Func[T]) Call(ctx context.Context, args map[string]any) (any, error) {
	in, err := f.decode(args)
	if err != nil {
		return nil, err
	}
	return f.handler(ctx, in)
}

func (f *Func[T]) Loading(args map[string]any) string {
	if f.loading == nil {
		return ""
	}
	in, err := f.decode(args)
	if err != nil {
		return ""
	}
	return f.loading(in)
}

func (f *Func[T]) decode(args map[string]any) (T, error) {
	var in T
	if args == nil {
		args = map[string]any{}
	}

	if err := f.resolved.Validate(args); err != nil {
		return in, fmt.Errorf("invalid arguments: %w", err)
	}

	data, err := json.Marshal(args)
	if err != nil {
		return in, fmt.Errorf("encoding arguments: %w", err)
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("decoding arguments: %w", err)
	}
	return in, nil
}
