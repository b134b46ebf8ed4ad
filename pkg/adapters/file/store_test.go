package file_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/portgraph/pkg/adapters/file"
	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/ports"
)

// Ensure Store implements GraphStore
var _ ports.GraphStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunGraphStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_YAMLContract(t *testing.T) {
	ports.RunGraphStoreContract(t, file.New(t.TempDir(), file.WithFormat(codec.FormatYAML)))
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	doc := ports.SampleDocument("layout")

	jsonStore := file.New(dir)
	if err := jsonStore.Save(ctx, "g1", doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "g1.json")); err != nil {
		t.Fatalf("expected g1.json on disk: %v", err)
	}

	// Switching format rewrites the graph in place.
	yamlStore := file.New(dir, file.WithFormat(codec.FormatYAML))
	if err := yamlStore.Save(ctx, "g1", doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "g1.json")); !os.IsNotExist(err) {
		t.Errorf("g1.json should be replaced by g1.yaml")
	}

	// Either store reads it back.
	loaded, err := jsonStore.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Name != "layout" {
		t.Errorf("expected name 'layout', got %q", loaded.Name)
	}

	// Stray files are ignored by List.
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	_ = os.Mkdir(filepath.Join(dir, "sub.json"), 0755)
	ids, err := jsonStore.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "g1" {
		t.Errorf("expected [g1], got %v", ids)
	}
}

func TestFileStore_InvalidIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "../escape", "a/b", ".hidden"} {
		if err := store.Save(ctx, id, ports.SampleDocument("x")); err == nil {
			t.Errorf("Save(%q) should fail", id)
		}
		if _, err := store.Load(ctx, id); err == nil || errors.Is(err, domain.ErrGraphNotFound) {
			t.Errorf("Load(%q) should reject the id, got %v", id, err)
		}
	}
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	ids, err := store.List(context.Background())
	if err != nil || len(ids) != 0 {
		t.Errorf("expected empty list, got %v, %v", ids, err)
	}
}
