package schema

import "sync"

var cache = struct {
	sync.RWMutex
	entries map[*NodeType]*Schema
}{entries: make(map[*NodeType]*Schema)}

// Lookup returns the cached schema of t, describing it on first access.
// Failed descriptions are not cached.
func Lookup(t *NodeType) (*Schema, error) {
	cache.RLock()
	s, ok := cache.entries[t]
	cache.RUnlock()
	if ok {
		return s, nil
	}

	s, err := Describe(t)
	if err != nil {
		return nil, err
	}

	cache.Lock()
	defer cache.Unlock()
	if existing, ok := cache.entries[t]; ok {
		return existing, nil
	}
	cache.entries[t] = s
	return s, nil
}

// Invalidate drops the cached schema of a single type.
func Invalidate(t *NodeType) {
	cache.Lock()
	delete(cache.entries, t)
	cache.Unlock()
}

// Reset clears the whole cache, e.g. after node type definitions were reloaded.
func Reset() {
	cache.Lock()
	cache.entries = make(map[*NodeType]*Schema)
	cache.Unlock()
}

// Cached reports how many types currently have a cached schema.
func Cached() int {
	cache.RLock()
	defer cache.RUnlock()
	return len(cache.entries)
}
