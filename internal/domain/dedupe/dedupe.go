// Package dedupe tracks which scouting submissions have already been accepted.
package dedupe

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMaxSize = 50000

// Deduper records seen submission keys to ensure at-most-once acceptance.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a submission that was accepted but never
	// queued can be retried.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inMemoryDeduper keeps keys in an LRU cache when bounded and in a plain
// set when maxSize <= 0.
type inMemoryDeduper struct {
	maxSize int
	cache   *lru.Cache[string, struct{}]

	mu  sync.Mutex
	set map[string]struct{}
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}

	if d.maxSize <= 0 {
		d.set = make(map[string]struct{})
		return d
	}
	// lru.New only fails for a non-positive size.
	cache, err := lru.New[string, struct{}](d.maxSize)
	if err != nil {
		d.set = make(map[string]struct{})
		return d
	}
	d.cache = cache
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	if d.cache != nil {
		seen, _ := d.cache.ContainsOrAdd(key, struct{}{})
		return seen
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.set[key]; ok {
		return true
	}
	d.set[key] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	if d.cache != nil {
		d.cache.Remove(key)
		return
	}
	d.mu.Lock()
	delete(d.set, key)
	d.mu.Unlock()
}

// Size returns the current number of recorded keys.
func (d *inMemoryDeduper) Size() int64 {
	if d.cache != nil {
		return int64(d.cache.Len())
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.set))
}
