package sessions

import (
	"sync"
	"time"

	"github.com/mrlokans/booksearch/internal/metrics"
	"github.com/mrlokans/booksearch/internal/state"
)

// StoreFactory builds a fresh aggregate store for a new session.
type StoreFactory func() *state.Store

type registryEntry struct {
	store    *state.Store
	lastSeen time.Time
}

// Registry holds one aggregate store per session ID. Stores live in memory
// only; sweeping or process exit discards them.
type Registry struct {
	factory   StoreFactory
	now       func() time.Time
	maxStores int // 0 means unbounded

	mu     sync.Mutex
	stores map[string]*registryEntry
}

func NewRegistry(factory StoreFactory) *Registry {
	return &Registry{
		factory: factory,
		now:     time.Now,
		stores:  make(map[string]*registryEntry),
	}
}

// SetMaxStores caps the number of stores held. When a new store would exceed
// the cap, the least recently used one is evicted. n <= 0 removes the cap.
func (r *Registry) SetMaxStores(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxStores = n
}

// Get returns the store for id, creating it on first use.
func (r *Registry) Get(id string) *state.Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.stores[id]
	if !ok {
		if r.maxStores > 0 && len(r.stores) >= r.maxStores {
			r.evictOldest()
		}
		entry = &registryEntry{store: r.factory()}
		r.stores[id] = entry
		metrics.ActiveSessions.Set(float64(len(r.stores)))
	}
	entry.lastSeen = r.now()
	return entry.store
}

// Lookup returns the store for id if one exists. It never creates one.
func (r *Registry) Lookup(id string) (*state.Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.stores[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = r.now()
	return entry.store, true
}

func (r *Registry) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, entry := range r.stores {
		if oldestID == "" || entry.lastSeen.Before(oldest) {
			oldestID, oldest = id, entry.lastSeen
		}
	}
	if oldestID != "" {
		delete(r.stores, oldestID)
		metrics.EvictedStoresTotal.Inc()
	}
}

// Remove drops the store for id, if any.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.stores, id)
	metrics.ActiveSessions.Set(float64(len(r.stores)))
}

// Len returns the number of stores currently held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Sweep removes stores not used within maxIdle and returns how many were removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	removed := 0
	for id, entry := range r.stores {
		if entry.lastSeen.Before(cutoff) {
			delete(r.stores, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.stores)))
	return removed
}
