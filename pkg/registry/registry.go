package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/schema"
	"github.com/aretw0/portgraph/pkg/types"
)

// Resolver maps persisted names back to node and value types.
type Resolver interface {
	NodeType(name string) (*schema.NodeType, error)
	ValueType(name string) (types.Type, error)
}

// Registry manages the available node types and the named value types their
// ports use.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]*schema.NodeType
	order []string
	vals  *types.Registry
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nodes: make(map[string]*schema.NodeType),
		vals:  types.NewRegistry(),
	}
}

// Register adds a node type to the registry. Concrete types are described
// up front so malformed declarations fail here instead of on first use.
func (r *Registry) Register(t *schema.NodeType) error {
	if t == nil || t.Name == "" {
		return &domain.SchemaError{Reason: "node type has no name"}
	}
	if !t.Abstract {
		if _, err := schema.Lookup(t); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodes[t.Name]; ok {
		return fmt.Errorf("node type already registered: %s", t.Name)
	}
	r.nodes[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(ts ...*schema.NodeType) {
	for _, t := range ts {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Replace swaps the node type registered under t.Name, registering it if
// absent. Graphs holding nodes of the old type pick it up through Rebind.
func (r *Registry) Replace(t *schema.NodeType) error {
	if t == nil || t.Name == "" {
		return &domain.SchemaError{Reason: "node type has no name"}
	}
	if !t.Abstract {
		if _, err := schema.Describe(t); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.nodes[t.Name]; ok {
		schema.Invalidate(old)
	} else {
		r.order = append(r.order, t.Name)
	}
	r.nodes[t.Name] = t
	return nil
}

// RegisterValueType makes a custom value type resolvable by name.
func (r *Registry) RegisterValueType(t types.Type) error {
	return r.vals.Register(t)
}

// NodeType looks up a node type by name.
func (r *Registry) NodeType(name string) (*schema.NodeType, error) {
	r.mu.RLock()
	t, ok := r.nodes[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownNodeType, name)
	}
	return t, nil
}

// ValueType resolves a value type name, including slice syntax.
func (r *Registry) ValueType(name string) (types.Type, error) {
	return r.vals.Parse(name)
}

// Types returns the registered node types in registration order.
func (r *Registry) Types() []*schema.NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*schema.NodeType, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.nodes[name])
	}
	return out
}

// Names returns the registered node type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}
