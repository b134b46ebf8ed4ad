package schema

import (
	"github.com/aretw0/portgraph/pkg/domain"
)

// maxDepth bounds base-type chains so a cycle cannot hang Describe.
const maxDepth = 64

// Describe builds the schema of a concrete node type without caching it.
func Describe(t *NodeType) (*Schema, error) {
	if t == nil {
		return nil, &domain.SchemaError{Reason: "nil node type"}
	}
	if t.Name == "" {
		return nil, &domain.SchemaError{Reason: "node type has no name"}
	}
	if t.Abstract {
		return nil, &domain.SchemaError{NodeType: t.Name, Reason: "abstract node type cannot be instantiated"}
	}

	chain, err := lineage(t)
	if err != nil {
		return nil, err
	}

	s := &Schema{nodeType: t, index: make(map[string]int)}
	seen := make(map[string]bool)
	for _, level := range chain {
		own := make(map[string]bool, len(level.Fields))
		for _, f := range level.Fields {
			if f.Name == "" {
				return nil, &domain.SchemaError{NodeType: level.Name, Reason: "field has no name"}
			}
			if own[f.Name] {
				return nil, &domain.SchemaError{NodeType: level.Name, Field: f.Name, Reason: "duplicate field"}
			}
			own[f.Name] = true

			// Derived fields shadow inherited ones.
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true

			if !f.IsPort() {
				continue
			}
			if f.Input != nil && f.Output != nil {
				return nil, &domain.SchemaError{NodeType: level.Name, Field: f.Name, Reason: "declared as both input and output"}
			}
			if f.Type == nil {
				return nil, &domain.SchemaError{NodeType: level.Name, Field: f.Name, Reason: "port has no value type"}
			}

			attr, dir := f.Input, domain.Input
			if f.Output != nil {
				attr, dir = f.Output, domain.Output
			}
			s.index[f.Name] = len(s.ports)
			s.ports = append(s.ports, Port{
				Name:        f.Name,
				ValueType:   f.Type,
				Direction:   dir,
				Connection:  attr.Connection,
				Constraint:  attr.Constraint,
				DynamicList: attr.DynamicList,
			})
		}
	}
	return s, nil
}

// lineage returns t followed by its bases up to the root.
func lineage(t *NodeType) ([]*NodeType, error) {
	var chain []*NodeType
	visited := make(map[*NodeType]bool)
	for cur := t; cur != nil; cur = cur.Base {
		if visited[cur] || len(chain) >= maxDepth {
			return nil, &domain.SchemaError{NodeType: t.Name, Reason: "inheritance cycle"}
		}
		visited[cur] = true
		chain = append(chain, cur)
	}
	return chain, nil
}
