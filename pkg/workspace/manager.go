package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/portgraph/internal/logging"
	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/graph"
	"github.com/aretw0/portgraph/pkg/ports"
	"github.com/aretw0/portgraph/pkg/registry"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates graph access, ensuring safe concurrent edits.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store    ports.GraphStore
	resolver registry.Resolver
	hooks    domain.GraphHooks

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger // Logger for internal events (like deferred errors)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock lease.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHooks attaches observers to every graph the Manager decodes.
func WithHooks(h domain.GraphHooks) Option {
	return func(m *Manager) {
		m.hooks = m.hooks.Merge(h)
	}
}

// NewManager creates a new Manager over store. Node and value types in
// stored documents are resolved through resolver.
func NewManager(store ports.GraphStore, resolver registry.Resolver, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		resolver: resolver,
		locks:    make(map[string]*lockEntry),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(graphID) after unlocking.
func (m *Manager) acquire(graphID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[graphID]
	if !exists {
		entry = &lockEntry{}
		m.locks[graphID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(graphID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[graphID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, graphID)
	}
}

func (m *Manager) decode(doc *codec.GraphDocument) (*graph.Graph, error) {
	return codec.Decode(doc, m.resolver, graph.WithHooks(m.hooks))
}

// Create stores g under graphID. It fails with domain.ErrGraphExists if the
// ID is taken.
func (m *Manager) Create(ctx context.Context, graphID string, g *graph.Graph) error {
	doc, err := codec.Encode(g)
	if err != nil {
		return fmt.Errorf("failed to encode graph %s: %w", graphID, err)
	}
	return m.WithLock(ctx, graphID, func(ctx context.Context) error {
		_, err := m.store.Load(ctx, graphID)
		if err == nil {
			return fmt.Errorf("%w: %s", domain.ErrGraphExists, graphID)
		}
		if !errors.Is(err, domain.ErrGraphNotFound) {
			return fmt.Errorf("failed to check graph existence: %w", err)
		}
		return m.store.Save(ctx, graphID, doc)
	})
}

// Put validates doc by decoding it, then stores the reconciled result under
// graphID, replacing any previous version.
func (m *Manager) Put(ctx context.Context, graphID string, doc *codec.GraphDocument) (*graph.Graph, error) {
	g, err := m.decode(doc)
	if err != nil {
		return nil, err
	}
	normalized, err := codec.Encode(g)
	if err != nil {
		return nil, err
	}
	normalized.Description = doc.Description

	err = m.WithLock(ctx, graphID, func(ctx context.Context) error {
		return m.store.Save(ctx, graphID, normalized)
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Open loads and decodes a graph. The result is a private snapshot: changes
// to it are not saved.
func (m *Manager) Open(ctx context.Context, graphID string) (*graph.Graph, error) {
	doc, err := m.store.Load(ctx, graphID)
	if err != nil {
		return nil, err
	}
	g, err := m.decode(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode graph %s: %w", graphID, err)
	}
	return g, nil
}

// Document loads the stored document of a graph.
func (m *Manager) Document(ctx context.Context, graphID string) (*codec.GraphDocument, error) {
	return m.store.Load(ctx, graphID)
}

// Update runs fn on the graph while holding its lock and saves the result.
// Nothing is saved when fn returns an error.
func (m *Manager) Update(ctx context.Context, graphID string, fn func(*graph.Graph) error) error {
	return m.WithLock(ctx, graphID, func(ctx context.Context) error {
		doc, err := m.store.Load(ctx, graphID)
		if err != nil {
			return err
		}
		g, err := m.decode(doc)
		if err != nil {
			return fmt.Errorf("failed to decode graph %s: %w", graphID, err)
		}

		if err := fn(g); err != nil {
			return err
		}

		updated, err := codec.Encode(g)
		if err != nil {
			return fmt.Errorf("failed to encode graph %s: %w", graphID, err)
		}
		updated.Description = doc.Description
		return m.store.Save(ctx, graphID, updated)
	})
}

// Delete removes the graph from the store.
func (m *Manager) Delete(ctx context.Context, graphID string) error {
	return m.WithLock(ctx, graphID, func(ctx context.Context) error {
		return m.store.Delete(ctx, graphID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying graph store.
func (m *Manager) Store() ports.GraphStore {
	return m.store
}

// Resolver returns the type resolver used to decode graphs.
func (m *Manager) Resolver() registry.Resolver {
	return m.resolver
}

// WithLock executes a function while holding the lock for the graph.
func (m *Manager) WithLock(ctx context.Context, graphID string, fn func(context.Context) error) error {
	entry := m.acquire(graphID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(graphID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, graphID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"graph_id", graphID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
