package types

import (
	"fmt"
	"sync"

	"github.com/aretw0/portgraph/pkg/domain"
)

// Registry resolves type names, including custom types, back to Types.
type Registry struct {
	mu    sync.RWMutex
	named map[string]Type
}

// NewRegistry creates a registry that already knows the built-in types.
func NewRegistry() *Registry {
	return &Registry{named: make(map[string]Type)}
}

// Register makes a custom type resolvable by name.
// Re-registering the same name replaces the previous definition.
func (r *Registry) Register(t Type) error {
	if t == nil {
		return fmt.Errorf("cannot register nil type")
	}
	if _, err := ParseType(t.Name()); err == nil {
		return fmt.Errorf("type name %q is reserved", t.Name())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.named[t.Name()] = t
	return nil
}

// Parse resolves a type name. Slice syntax works with custom element types.
func (r *Registry) Parse(name string) (Type, error) {
	if elem, ok := sliceElem(name); ok {
		elemType, err := r.Parse(elem)
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}
	if t, err := ParseType(name); err == nil {
		return t, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.named[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnknownValueType, name)
}
