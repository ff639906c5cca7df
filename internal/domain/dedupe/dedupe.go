// Package dedupe tracks which keys have already been claimed during a scan.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen keys. The first caller for a key wins.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	Size() int64
}

// Index maps each key to the value of its first claimant.
type Index interface {
	Deduper

	// Claim stores value under key unless key is already claimed. It
	// returns the winning value and whether this call claimed it.
	Claim(ctx context.Context, key, value string) (string, bool)

	// Snapshot copies the current key to value mapping.
	Snapshot() map[string]string
}

// inMemoryIndex implements Index with a mutex-guarded map.
type inMemoryIndex struct {
	mu       sync.RWMutex
	seen     map[string]string
	capacity int
	size     atomic.Int64
}

// NewInMemoryDeduper creates an unbounded in-memory deduper for keys that
// carry no value.
func NewInMemoryDeduper(opts ...Option) Deduper {
	return NewInMemoryIndex(opts...)
}

// NewInMemoryIndex creates an unbounded in-memory first-wins index.
func NewInMemoryIndex(opts ...Option) Index {
	d := &inMemoryIndex{}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]string, d.capacity)
	return d
}

// SeenAndRecord reports whether key was already claimed and claims it if not.
func (d *inMemoryIndex) SeenAndRecord(ctx context.Context, key string) bool {
	_, claimed := d.Claim(ctx, key, "")
	return !claimed
}

// Claim stores value for key if key is new.
func (d *inMemoryIndex) Claim(_ context.Context, key, value string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.seen[key]; ok {
		return existing, false
	}
	d.seen[key] = value
	d.size.Add(1)
	return value, true
}

// Snapshot returns a copy of the index.
func (d *inMemoryIndex) Snapshot() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]string, len(d.seen))
	for k, v := range d.seen {
		out[k] = v
	}
	return out
}

// Size returns the current number of claimed keys.
func (d *inMemoryIndex) Size() int64 {
	return d.size.Load()
}
