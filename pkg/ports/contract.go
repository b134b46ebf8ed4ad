package ports

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SampleDocument returns a small two-node document used by the contract suites.
func SampleDocument(name string) *codec.GraphDocument {
	return &codec.GraphDocument{
		Version: codec.CurrentVersion,
		Name:    name,
		Nodes: []codec.NodeDocument{
			{
				ID:       "a",
				Type:     "MathNode",
				Position: domain.Vec2{X: 10, Y: 20},
				State:    map[string]any{"a": 1.5, "op": "add"},
				Ports: []codec.PortDocument{
					{Name: "result", Type: "float", Direction: "output", Connections: []codec.ConnectionDocument{
						{Node: "b", Port: "value", Reroute: []domain.Vec2{{X: 50, Y: 50}}},
					}},
				},
			},
			{
				ID:   "b",
				Type: "DisplayValue",
				Ports: []codec.PortDocument{
					{Name: "value", Type: "any", Direction: "input", Connection: "single", Connections: []codec.ConnectionDocument{
						{Node: "a", Port: "result"},
					}},
				},
			},
		},
	}
}

// RunGraphStoreContract runs a suite of tests to verify that a GraphStore implementation
// adheres to the defined interface contract.
func RunGraphStoreContract(t *testing.T, store GraphStore) {
	ctx := context.Background()
	graphID := "contract-test-graph-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		doc := SampleDocument("contract")

		err := store.Save(ctx, graphID, doc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, graphID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, doc.Name, loaded.Name)
		require.Len(t, loaded.Nodes, 2)
		assert.Equal(t, doc.Nodes[0].Position, loaded.Nodes[0].Position)
		assert.Equal(t, "add", loaded.Nodes[0].State["op"])
		assert.Equal(t, doc.Nodes[0].Ports[0].Connections, loaded.Nodes[0].Ports[0].Connections)
		assert.Equal(t, 1, loaded.Connections())
	})

	t.Run("Load returns a private copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, graphID)
		require.NoError(t, err)
		loaded.Name = "mutated"
		loaded.Nodes = nil

		again, err := store.Load(ctx, graphID)
		require.NoError(t, err)
		assert.Equal(t, "contract", again.Name)
		assert.Len(t, again.Nodes, 2)
	})

	t.Run("Overwrite", func(t *testing.T) {
		doc := SampleDocument("renamed")
		require.NoError(t, store.Save(ctx, graphID, doc))

		loaded, err := store.Load(ctx, graphID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", loaded.Name)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+graphID)
		assert.ErrorIs(t, err, domain.ErrGraphNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, graphID, SampleDocument("contract"))
		require.NoError(t, err)

		err = store.Delete(ctx, graphID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, graphID)
		assert.ErrorIs(t, err, domain.ErrGraphNotFound, "Load after Delete should return ErrGraphNotFound")

		assert.NoError(t, store.Delete(ctx, graphID), "Deleting twice should not fail")
	})

	t.Run("List", func(t *testing.T) {
		id1 := graphID + "-1"
		id2 := graphID + "-2"
		_ = store.Save(ctx, id2, SampleDocument("two"))
		_ = store.Save(ctx, id1, SampleDocument("one"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		graphs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, graphs, id1)
		assert.Contains(t, graphs, id2)
		assert.True(t, sort.StringsAreSorted(graphs), "List should be sorted")
	})
}
