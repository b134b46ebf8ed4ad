package ports

import (
	"context"

	"github.com/aretw0/portgraph/pkg/codec"
)

// GraphLoader defines read-only access to a catalog of graph documents.
// This allows the storage layer (Loam, FS, Memory) to be decoupled.
type GraphLoader interface {
	// Load retrieves a graph document by ID.
	// Returns domain.ErrGraphNotFound if the graph does not exist.
	Load(ctx context.Context, graphID string) (*codec.GraphDocument, error)

	// List returns the IDs of every graph in the catalog, sorted.
	List(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that receives the ID of every graph that changed.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
