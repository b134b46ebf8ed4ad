package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/mohae/deepcopy"
)

// Store implements ports.GraphStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*codec.GraphDocument
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*codec.GraphDocument),
	}
}

// Save persists the document in memory.
func (s *Store) Save(ctx context.Context, graphID string, doc *codec.GraphDocument) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := deepcopy.Copy(doc).(*codec.GraphDocument)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[graphID] = copied
	return nil
}

// Load retrieves the document from memory.
func (s *Store) Load(ctx context.Context, graphID string) (*codec.GraphDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[graphID]
	if !ok {
		return nil, domain.ErrGraphNotFound
	}

	// Copy on read so caller can't mutate store state directly by pointer
	return deepcopy.Copy(doc).(*codec.GraphDocument), nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, graphID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, graphID)
	return nil
}

// List returns the stored graph IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
