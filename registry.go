package getconfig

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// CoerceFunc converts a raw environment string into a typed value.
// args are the ":"-separated arguments that follow the type name in a placeholder.
type CoerceFunc func(raw string, args ...string) (any, error)

// Registry maps type names to coercion functions.
// Built-in types are registered by NewRegistry; custom types are added with Register
// before loading. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]CoerceFunc
}

// NewRegistry returns a registry holding the built-in types:
// array, boolean, date, number, object and regex.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]CoerceFunc)}
	r.funcs["array"] = r.coerceArray
	r.funcs["boolean"] = coerceBoolean
	r.funcs["date"] = coerceDate
	r.funcs["number"] = coerceNumber
	r.funcs["object"] = coerceObject
	r.funcs["regex"] = coerceRegex
	return r
}

// Register adds a custom type. Names are append-only: registering an existing
// name (built-in or custom) returns ErrTypeRegistered.
func (r *Registry) Register(name string, fn CoerceFunc) error {
	if name == "" || strings.ContainsAny(name, ": \t\r\n") {
		return fmt.Errorf("getconfig: invalid type name %q", name)
	}
	if fn == nil {
		return errors.New("getconfig: nil coercion function for type " + name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.funcs[name]; ok {
		return fmt.Errorf("%w: %s", ErrTypeRegistered, name)
	}
	r.funcs[name] = fn
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, fn CoerceFunc) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// Names returns the registered type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named coercion. Every failure, including an unknown name,
// wraps ErrConversion; callers attach variable and type context.
func (r *Registry) Invoke(name, raw string, args ...string) (Value, error) {
	fn, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q", ErrConversion, name)
	}

	out, err := fn(raw, args...)
	if err != nil {
		if errors.Is(err, ErrConversion) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrConversion, err)
	}
	return FromAny(out), nil
}

func (r *Registry) lookup(name string) (CoerceFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[name]
	return fn, ok
}
