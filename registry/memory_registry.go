package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRegistry is a process-local Registry.
type MemoryRegistry struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	fn      Function
	expires time.Time // zero means no expiry
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{entries: make(map[string]memoryEntry), now: time.Now}
}

func (r *MemoryRegistry) Register(ctx context.Context, f Function, ttl int64) error {
	if err := f.Validate(); err != nil {
		return err
	}
	entry := memoryEntry{fn: f}
	if ttl > 0 {
		entry.expires = r.now().Add(time.Duration(ttl) * time.Second)
	}
	r.mu.Lock()
	r.entries[f.Name] = entry
	r.mu.Unlock()
	return nil
}

func (r *MemoryRegistry) Deregister(ctx context.Context, name string) error {
	r.mu.Lock()
	delete(r.entries, name)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRegistry) Resolve(ctx context.Context, name string) (Function, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok || r.expired(entry) {
		return Function{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return entry.fn, nil
}

func (r *MemoryRegistry) List(ctx context.Context) ([]Function, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Function, 0, len(r.entries))
	for _, entry := range r.entries {
		if !r.expired(entry) {
			out = append(out, entry.fn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRegistry) expired(e memoryEntry) bool {
	return !e.expires.IsZero() && !r.now().Before(e.expires)
}
