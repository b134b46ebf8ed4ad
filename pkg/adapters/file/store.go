package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/domain"
)

// Store implements ports.GraphStore using the local filesystem.
// It stores one document per graph in a configured directory.
type Store struct {
	BasePath string
	format   codec.Format
}

// Option configures a Store.
type Option func(*Store)

// WithFormat sets the format new documents are written in. Documents in
// either format are read.
func WithFormat(f codec.Format) Option {
	return func(s *Store) {
		s.format = f
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".portgraph/graphs".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".portgraph", "graphs")
	}
	s := &Store{BasePath: basePath, format: codec.FormatJSON}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var extensions = []string{".json", ".yaml", ".yml"}

func checkID(graphID string) error {
	if graphID == "" {
		return fmt.Errorf("graphID cannot be empty")
	}
	if graphID != filepath.Base(graphID) || strings.HasPrefix(graphID, ".") {
		return fmt.Errorf("invalid graphID %q", graphID)
	}
	return nil
}

// Save persists the document atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, graphID string, doc *codec.GraphDocument) error {
	if err := checkID(graphID); err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure graph directory: %w", err)
	}

	ext := s.format.Ext()
	destPath := filepath.Join(s.BasePath, graphID+ext)

	data, err := codec.Marshal(doc, s.format)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, ".tmp-"+graphID+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing graph file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to graph file: %w", err)
	}

	// A graph lives in exactly one file.
	for _, other := range extensions {
		if other != ext {
			_ = os.Remove(filepath.Join(s.BasePath, graphID+other))
		}
	}
	return nil
}

// Load retrieves the document, whichever supported format it is stored in.
func (s *Store) Load(ctx context.Context, graphID string) (*codec.GraphDocument, error) {
	if err := checkID(graphID); err != nil {
		return nil, err
	}

	for _, ext := range extensions {
		path := filepath.Join(s.BasePath, graphID+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read graph file: %w", err)
		}
		doc, err := codec.Unmarshal(data, codec.FormatFromPath(path))
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal graph %s: %w", graphID, err)
		}
		return doc, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrGraphNotFound, graphID)
}

// Delete removes the graph file.
func (s *Store) Delete(ctx context.Context, graphID string) error {
	if err := checkID(graphID); err != nil {
		return err
	}

	for _, ext := range extensions {
		err := os.Remove(filepath.Join(s.BasePath, graphID+ext))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete graph file: %w", err)
		}
	}
	return nil
}

// List returns all stored graph IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}

	seen := make(map[string]bool)
	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		ext := filepath.Ext(name)
		for _, known := range extensions {
			if ext == known {
				id := strings.TrimSuffix(name, ext)
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}
