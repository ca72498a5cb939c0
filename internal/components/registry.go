// Package components holds the registry that resolves component references in
// page bodies to renderers.
//
// A registry is assembled once at startup and passed to the compiler; nothing
// registers itself globally.
package components

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/a-h/templ"
)

// Expression is a prop written as {expr} that is neither a boolean nor a number.
type Expression string

// Props are the attributes of a component reference.
type Props map[string]any

// String returns a prop as text. Expressions return their source.
func (p Props) String(key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case Expression:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return ""
	}
}

// Bool reports whether a prop is true. Bare attributes are true.
func (p Props) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}

// Has reports whether the prop was given.
func (p Props) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Factory turns props and rendered children into a component. Returning an
// *errors.InvalidPropsError rejects the reference.
type Factory func(props Props, children templ.Component) (templ.Component, error)

// ErrAlreadyRegistered is returned when a name is registered twice.
var ErrAlreadyRegistered = errors.New("component already registered")

// ErrUnknownBuiltin is returned when configuration enables a builtin that does not exist.
var ErrUnknownBuiltin = errors.New("unknown builtin component")

// Registry maps component names to factories. Register during setup; lookups
// are read-only afterwards and safe for concurrent use.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("register component %q: name and factory are required", name)
	}
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	r.factories[name] = f
	return nil
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.factories[name]
	return f, ok
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered components.
func (r *Registry) Len() int { return len(r.factories) }

// NewDefaultRegistry registers the builtins named in enabled, or all of them when enabled is empty.
func NewDefaultRegistry(enabled []string) (*Registry, error) {
	builtins := Builtins()
	if len(enabled) == 0 {
		enabled = make([]string, 0, len(builtins))
		for name := range builtins {
			enabled = append(enabled, name)
		}
	}
	r := NewRegistry()
	for _, name := range enabled {
		f, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBuiltin, name)
		}
		if err := r.Register(name, f); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Render renders c to a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	s, err := templ.ToGoHTML(ctx, c)
	return string(s), err
}

// Raw wraps pre-rendered HTML as a component.
func Raw(html string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, html)
		return err
	})
}
