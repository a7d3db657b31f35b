package password

import (
	"fmt"
	"sort"
	"sync"
)

// Names of the built-in validators.
const (
	NameMaximumLength   = "maximum_length"
	NameMinimumLength   = "minimum_length"
	NameCommonPassword  = "common_password"
	NameNumericPassword = "numeric_password"
)

// Registry maps stable validator names to factories. It is populated at startup
// and safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// DefaultRegistry creates a registry with every built-in validator registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NameMaximumLength, NewMaximumLengthValidator)
	r.Register(NameMinimumLength, NewMinimumLengthValidator)
	r.Register(NameCommonPassword, NewCommonPasswordValidator)
	r.Register(NameNumericPassword, NewNumericPasswordValidator)
	return r
}

// Register adds a factory under name. It panics if name is empty, the factory is
// nil, or the name is already registered.
func (r *Registry) Register(name string, factory Factory) {
	if name == "" {
		panic("password: Register called with empty name")
	}
	if factory == nil {
		panic("password: Register factory is nil for " + name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.factories[name]; dup {
		panic("password: Register called twice for " + name)
	}
	r.factories[name] = factory
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	return factory, ok
}

// Names returns the registered validator names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build resolves and instantiates the descriptors in order. Every name is
// resolved before any factory runs, so an unknown name fails the whole build
// without constructing anything.
func (r *Registry) Build(descriptors []Descriptor) ([]Validator, error) {
	factories := make([]Factory, len(descriptors))
	for i, d := range descriptors {
		factory, ok := r.Lookup(d.Name)
		if !ok {
			return nil, &ConfigError{Name: d.Name, Err: ErrUnknownValidator}
		}
		factories[i] = factory
	}

	validators := make([]Validator, len(descriptors))
	for i, factory := range factories {
		v, err := factory(descriptors[i].Options)
		if err != nil {
			return nil, &ConfigError{Name: descriptors[i].Name, Err: err}
		}
		if v == nil {
			return nil, &ConfigError{Name: descriptors[i].Name, Err: fmt.Errorf("%w: factory returned no validator", ErrInvalidOptions)}
		}
		validators[i] = v
	}

	return validators, nil
}

// NewPolicy builds the descriptors into a Policy.
func (r *Registry) NewPolicy(descriptors []Descriptor) (*Policy, error) {
	validators, err := r.Build(descriptors)
	if err != nil {
		return nil, err
	}
	return NewPolicy(validators...), nil
}
