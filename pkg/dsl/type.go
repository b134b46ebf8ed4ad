package dsl

import (
	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/schema"
	"github.com/aretw0/portgraph/pkg/types"
)

// PortOption adjusts a port annotation.
type PortOption func(*schema.PortAttr)

// Single limits the port to one connection.
func Single() PortOption {
	return func(a *schema.PortAttr) { a.Connection = domain.Single }
}

// Constraint sets the type constraint of the port.
func Constraint(c domain.TypeConstraint) PortOption {
	return func(a *schema.PortAttr) { a.Constraint = c }
}

// Strict requires identical value types across the connection.
func Strict() PortOption { return Constraint(domain.ConstraintStrict) }

// Inherited requires the input type to be assignable from the output type.
func Inherited() PortOption { return Constraint(domain.ConstraintInherited) }

// InheritedInverse requires the output type to be assignable from the input type.
func InheritedInverse() PortOption { return Constraint(domain.ConstraintInheritedInverse) }

// List makes the port the backing port of a dynamic port list.
func List() PortOption {
	return func(a *schema.PortAttr) { a.DynamicList = true }
}

// TypeBuilder provides a fluent API for declaring a node type.
type TypeBuilder struct {
	t    schema.NodeType
	byID map[string]int
}

// Type starts the declaration of a node type.
func Type(name string) *TypeBuilder {
	return &TypeBuilder{
		t:    schema.NodeType{Name: name},
		byID: make(map[string]int),
	}
}

// Extends sets the base type whose fields are inherited.
func (b *TypeBuilder) Extends(base *schema.NodeType) *TypeBuilder {
	b.t.Base = base
	return b
}

// Abstract marks the type as a base that cannot be instantiated.
func (b *TypeBuilder) Abstract() *TypeBuilder {
	b.t.Abstract = true
	return b
}

// New sets the implementation constructor.
func (b *TypeBuilder) New(fn func() any) *TypeBuilder {
	b.t.New = fn
	return b
}

// Field declares a plain field. It is not a port but shadows inherited fields.
func (b *TypeBuilder) Field(name string, t types.Type) *TypeBuilder {
	b.field(name, t)
	return b
}

// Input declares an input port. Annotating a field twice stacks the
// annotations like attributes do, so Input and Output on the same name is
// reported by Build.
func (b *TypeBuilder) Input(name string, t types.Type, opts ...PortOption) *TypeBuilder {
	b.field(name, t).Input = attr(opts)
	return b
}

// Output declares an output port.
func (b *TypeBuilder) Output(name string, t types.Type, opts ...PortOption) *TypeBuilder {
	b.field(name, t).Output = attr(opts)
	return b
}

func (b *TypeBuilder) field(name string, t types.Type) *schema.Field {
	if i, ok := b.byID[name]; ok {
		if t != nil {
			b.t.Fields[i].Type = t
		}
		return &b.t.Fields[i]
	}
	b.byID[name] = len(b.t.Fields)
	b.t.Fields = append(b.t.Fields, schema.Field{Name: name, Type: t})
	return &b.t.Fields[len(b.t.Fields)-1]
}

func attr(opts []PortOption) *schema.PortAttr {
	a := &schema.PortAttr{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build validates the declaration. Abstract types are checked through their
// concrete descendants instead.
func (b *TypeBuilder) Build() (*schema.NodeType, error) {
	t := b.t
	t.Fields = append([]schema.Field(nil), b.t.Fields...)
	if t.Abstract {
		if t.Name == "" {
			return nil, &domain.SchemaError{Reason: "node type has no name"}
		}
		return &t, nil
	}
	if _, err := schema.Describe(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// MustBuild is like Build but panics on a malformed declaration.
// Intended for package-level variables.
func (b *TypeBuilder) MustBuild() *schema.NodeType {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}
