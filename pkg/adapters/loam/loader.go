package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/domain"
)

// Loader adapts the Loam library to the GraphLoader interface. Each Loam
// document is one graph: its frontmatter (or JSON/YAML body) holds the
// graph document fields and its Markdown body the description.
type Loader struct {
	Repo *loam.TypedRepository[GraphMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[GraphMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only, strict Loam repository at dir.
// Strict mode makes every adapter (JSON, Markdown/YAML) return consistent
// numeric types; ReadOnly avoids Loam's sandbox behavior since the catalog is
// never written through this loader.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[GraphMetadata](repo)), nil
}

// Load retrieves a graph from the Loam repository.
// We trust Loam to find the file (e.g. math.md) when asked for "math".
func (l *Loader) Load(ctx context.Context, graphID string) (*codec.GraphDocument, error) {
	doc, err := l.Repo.Get(ctx, graphID)
	if err != nil {
		if ids, listErr := l.List(ctx); listErr == nil && !slices.Contains(ids, graphID) {
			return nil, fmt.Errorf("%w: %s", domain.ErrGraphNotFound, graphID)
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", graphID, err)
	}

	return doc.Data.Document(graphID, doc.Content), nil
}

// List lists all graphs in the repository.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		// Use the ID from metadata if available, otherwise filename ID
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				// Loam debounces; pass the changed ID up, respecting cancellation.
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
