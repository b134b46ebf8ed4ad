package registry

import (
	"errors"
	"testing"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/schema"
	"github.com/aretw0/portgraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodeType(name string, fields ...schema.Field) *schema.NodeType {
	return &schema.NodeType{Name: name, Fields: fields}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	a := nodeType("A", schema.Field{Name: "in", Type: types.Float(), Input: &schema.PortAttr{}})
	b := nodeType("B")

	require.NoError(t, r.Register(b))
	require.NoError(t, r.Register(a))

	got, err := r.NodeType("A")
	require.NoError(t, err)
	assert.Same(t, a, got)

	assert.Equal(t, []*schema.NodeType{b, a}, r.Types())
	assert.Equal(t, []string{"A", "B"}, r.Names())
}

func TestRegistry_Errors(t *testing.T) {
	r := NewRegistry()

	_, err := r.NodeType("missing")
	assert.True(t, errors.Is(err, domain.ErrUnknownNodeType))

	assert.True(t, errors.Is(r.Register(nil), domain.ErrSchema))

	bad := nodeType("Bad", schema.Field{Name: "x", Input: &schema.PortAttr{}})
	assert.True(t, errors.Is(r.Register(bad), domain.ErrSchema))

	require.NoError(t, r.Register(nodeType("Dup")))
	assert.Error(t, r.Register(nodeType("Dup")))
}

func TestRegistry_AbstractTypesSkipValidation(t *testing.T) {
	r := NewRegistry()
	base := &schema.NodeType{Name: "Base", Abstract: true}
	require.NoError(t, r.Register(base))
}

func TestRegistry_Replace(t *testing.T) {
	r := NewRegistry()
	v1 := nodeType("N", schema.Field{Name: "a", Type: types.Float(), Input: &schema.PortAttr{}})
	v2 := nodeType("N", schema.Field{Name: "b", Type: types.Float(), Input: &schema.PortAttr{}})
	r.MustRegister(v1)

	require.NoError(t, r.Replace(v2))
	got, err := r.NodeType("N")
	require.NoError(t, err)
	assert.Same(t, v2, got)
	assert.Len(t, r.Types(), 1)
}

func TestRegistry_ValueTypes(t *testing.T) {
	r := NewRegistry()
	vec := types.Custom("vector3", nil)
	require.NoError(t, r.RegisterValueType(vec))

	got, err := r.ValueType("[vector3]")
	require.NoError(t, err)
	assert.Equal(t, "[vector3]", got.Name())

	_, err = r.ValueType("quaternion")
	assert.True(t, errors.Is(err, domain.ErrUnknownValueType))

	var _ Resolver = r
}
