package ports

import (
	"context"

	"github.com/aretw0/portgraph/pkg/codec"
)

// GraphStore defines the interface for persisting graph documents.
type GraphStore interface {
	// Save persists the document for a given graph ID, replacing any previous version.
	Save(ctx context.Context, graphID string, doc *codec.GraphDocument) error

	// Load retrieves the document for a given graph ID.
	// Returns domain.ErrGraphNotFound if the graph does not exist.
	Load(ctx context.Context, graphID string) (*codec.GraphDocument, error)

	// Delete removes the document for a given graph ID.
	// Deleting a missing graph is not an error.
	Delete(ctx context.Context, graphID string) error

	// List returns the IDs of all stored graphs, sorted.
	List(ctx context.Context) ([]string, error)
}
