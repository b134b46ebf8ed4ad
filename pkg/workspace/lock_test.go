package workspace

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/ports"
	"github.com/aretw0/portgraph/pkg/registry"
	"github.com/stretchr/testify/assert"
)

// MockStore structure
type MockStore struct{}

func (m *MockStore) Save(ctx context.Context, graphID string, doc *codec.GraphDocument) error {
	return nil
}
func (m *MockStore) Load(ctx context.Context, graphID string) (*codec.GraphDocument, error) {
	return nil, domain.ErrGraphNotFound
}
func (m *MockStore) Delete(ctx context.Context, graphID string) error { return nil }
func (m *MockStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

type failingLocker struct {
	unlocks int
}

func (l *failingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	return func(context.Context) error {
		l.unlocks++
		return errors.New("lock lost")
	}, nil
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(&MockStore{}, registry.NewRegistry())
	ctx := context.Background()
	count := 10000

	// 1. Create and Delete many graphs
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("graph-%d", i)
		_ = mgr.WithLock(ctx, id, func(context.Context) error { return nil })
		_ = mgr.Delete(ctx, id)
	}

	// 2. Count locks remaining in map
	lockCount := len(mgr.locks)
	t.Logf("Graphs Touched: %d, Locks Leaked: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}

func TestManager_DistributedUnlockFailureIsNotFatal(t *testing.T) {
	locker := &failingLocker{}
	mgr := NewManager(&MockStore{}, registry.NewRegistry(), WithLocker(locker), WithLockTTL(time.Second))

	err := mgr.Delete(context.Background(), "g1")
	assert.NoError(t, err)
	assert.Equal(t, 1, locker.unlocks)
	assert.Equal(t, time.Second, mgr.lockTTL)
}
