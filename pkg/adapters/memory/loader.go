package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/mohae/deepcopy"
)

// Loader implements ports.GraphLoader using an in-memory map.
type Loader struct {
	docs map[string]*codec.GraphDocument
}

// NewLoader creates a new Loader with the provided documents keyed by graph ID.
func NewLoader(docs map[string]*codec.GraphDocument) *Loader {
	copied := make(map[string]*codec.GraphDocument, len(docs))
	for id, doc := range docs {
		copied[id] = deepcopy.Copy(doc).(*codec.GraphDocument)
	}
	return &Loader{docs: copied}
}

// NewFromRaw creates a Loader from serialized documents.
// This handles parsing automatically, improving DX for tests.
func NewFromRaw(format codec.Format, raw map[string]string) (*Loader, error) {
	docs := make(map[string]*codec.GraphDocument, len(raw))
	for id, data := range raw {
		doc, err := codec.Unmarshal([]byte(data), format)
		if err != nil {
			return nil, fmt.Errorf("failed to parse graph %s: %w", id, err)
		}
		docs[id] = doc
	}
	return &Loader{docs: docs}, nil
}

// Load retrieves a document by graph ID.
func (l *Loader) Load(ctx context.Context, graphID string) (*codec.GraphDocument, error) {
	doc, ok := l.docs[graphID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGraphNotFound, graphID)
	}
	return deepcopy.Copy(doc).(*codec.GraphDocument), nil
}

// List returns all available graph IDs.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(l.docs))
	for k := range l.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
