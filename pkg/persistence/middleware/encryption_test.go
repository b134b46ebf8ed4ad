package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/portgraph/pkg/adapters/memory"
	"github.com/aretw0/portgraph/pkg/persistence/middleware"
	"github.com/aretw0/portgraph/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := memory.NewStore()
	key := generateKey(t)
	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(underlyingStore)

	ctx := context.Background()
	doc := ports.SampleDocument("secret-graph")
	doc.Description = "my-secret-sauce"

	if err := secureStore.Save(ctx, "g1", doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The underlying store only sees the envelope.
	stored, err := underlyingStore.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if stored.Name != "secret-graph" {
		t.Errorf("Expected the name to stay readable, got %q", stored.Name)
	}
	if stored.Description != "" {
		t.Fatalf("Expected description to be hidden, found: %v", stored.Description)
	}
	if len(stored.Nodes) != 1 || stored.Nodes[0].ID != "__encrypted__" {
		t.Fatalf("Expected a single envelope node, got %+v", stored.Nodes)
	}

	loaded, err := secureStore.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if loaded.Description != "my-secret-sauce" {
		t.Errorf("Expected 'my-secret-sauce', got %v", loaded.Description)
	}
	if len(loaded.Nodes) != 2 || loaded.Connections() != 1 {
		t.Errorf("Expected the sample nodes back, got %d nodes", len(loaded.Nodes))
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)

	ctx := context.Background()
	doc := ports.SampleDocument("rotation")
	doc.Description = "encrypted-with-old-key"

	if err := secureStoreOld.Save(ctx, "g1", doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load with NEW key (Active) + OLD key (Fallback)
	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loaded, err := secureStoreNew.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("Load with rotated key failed: %v", err)
	}
	if loaded.Description != "encrypted-with-old-key" {
		t.Errorf("Decryption with fallback key failed")
	}

	loaded.Description = "encrypted-with-new-key"
	if err := secureStoreNew.Save(ctx, "g1", loaded); err != nil {
		t.Fatalf("Save with new key failed: %v", err)
	}

	if _, err := secureStoreOld.Load(ctx, "g1"); err == nil {
		t.Error("Expected failure when loading new-key encryption with old-key middleware")
	}
}

func TestEncryptionMiddleware_RejectsPlainDocuments(t *testing.T) {
	underlyingStore := memory.NewStore()
	ctx := context.Background()
	if err := underlyingStore.Save(ctx, "plain", ports.SampleDocument("plain")); err != nil {
		t.Fatal(err)
	}

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	if _, err := secureStore.Load(ctx, "plain"); err == nil {
		t.Error("Expected plain document to be refused")
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for invalid key size")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := middleware.Chain(memory.NewStore(),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)
	ports.RunGraphStoreContract(t, store)
}
