package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/ports"
)

// GraphLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.GraphLoader.
// setupData maps each graph ID the loader was seeded with to its expected graph name.
func GraphLoaderContractTest(t *testing.T, loader ports.GraphLoader, setupData map[string]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_Success", func(t *testing.T) {
		for id, name := range setupData {
			doc, err := loader.Load(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error loading graph %s: %v", id, err)
			}
			if doc.Name != name {
				t.Errorf("name mismatch for %s. got %q, want %q", id, doc.Name, name)
			}
			if err := codec.Validate(doc); err != nil {
				t.Errorf("loaded graph %s is invalid: %v", id, err)
			}
		}
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := loader.Load(ctx, "non-existent-graph")
		if !errors.Is(err, domain.ErrGraphNotFound) {
			t.Errorf("expected ErrGraphNotFound for non-existent graph, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		ids, err := loader.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing graphs: %v", err)
		}

		if len(ids) != len(setupData) {
			t.Errorf("expected %d graphs, got %d", len(setupData), len(ids))
		}

		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}

		for id := range setupData {
			if !lookup[id] {
				t.Errorf("graph %s missing from list", id)
			}
		}
	})
}
