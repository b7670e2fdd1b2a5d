// Package registry provides an in-memory symbol source for the pipeline
// engine: plugins are registered under a dotted module path and a member
// name, and string specs resolve against it.
package registry

import (
	"errors"
	"fmt"

	"github.com/ravi-parthasarathy/cascade/pkg/pipeline"
)

// ErrUnknownModule is the cause returned when no plugins are registered
// under the requested module path.
var ErrUnknownModule = errors.New("unknown module")

// ErrUnknownMember is the cause returned when the module exists but has no
// member with the requested name.
var ErrUnknownMember = errors.New("unknown member")

// Registry maps module paths to named plugins. It implements
// pipeline.Source. Lookups return the registered func value itself, so two
// specs naming the same symbol share execution identity.
type Registry[T any] struct {
	modules map[string]map[string]pipeline.Plugin[T]
}

// New creates an empty Registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{modules: make(map[string]map[string]pipeline.Plugin[T])}
}

// Register associates a plugin with module:member. Registering the same
// member twice panics; module wiring is a programming error, not input.
func (r *Registry[T]) Register(module, member string, p pipeline.Plugin[T]) {
	members, ok := r.modules[module]
	if !ok {
		members = make(map[string]pipeline.Plugin[T])
		r.modules[module] = members
	}
	if _, exists := members[member]; exists {
		panic(fmt.Sprintf("plugin %s:%s already registered", module, member))
	}
	members[member] = p
}

// Alias makes module resolve to the same members as target. Specs naming
// either path resolve to identical func values and execute once.
func (r *Registry[T]) Alias(module, target string) {
	members, ok := r.modules[target]
	if !ok {
		panic(fmt.Sprintf("alias target %s not registered", target))
	}
	r.modules[module] = members
}

// Lookup implements pipeline.Source.
func (r *Registry[T]) Lookup(module, member string) (pipeline.Plugin[T], error) {
	members, ok := r.modules[module]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, module)
	}
	p, ok := members[member]
	if !ok {
		return nil, fmt.Errorf("%w: %s:%s", ErrUnknownMember, module, member)
	}
	return p, nil
}

// Chain combines sources: the first one that recognises the module wins.
// A source signals "not mine" by returning an error matching
// ErrUnknownModule; any other error stops the chain.
type Chain[T any] []pipeline.Source[T]

// Lookup implements pipeline.Source.
func (c Chain[T]) Lookup(module, member string) (pipeline.Plugin[T], error) {
	for _, src := range c {
		p, err := src.Lookup(module, member)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrUnknownModule) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownModule, module)
}
