package repository

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// shard is one lock domain of a sharded map.
type shard[V any] struct {
	mu sync.RWMutex
	m  map[string]V
}

type shards[V any] []*shard[V]

func newShards[V any](n int) shards[V] {
	s := make(shards[V], n)
	for i := range s {
		s[i] = &shard[V]{m: make(map[string]V)}
	}
	return s
}

func (s shards[V]) of(key string) *shard[V] {
	return s[xxhash.Sum64String(key)%uint64(len(s))]
}

func (s shards[V]) count() int {
	n := 0
	for _, sh := range s {
		sh.mu.RLock()
		n += len(sh.m)
		sh.mu.RUnlock()
	}
	return n
}

func (s shards[V]) keys() []string {
	var out []string
	for _, sh := range s {
		sh.mu.RLock()
		for k := range sh.m {
			out = append(out, k)
		}
		sh.mu.RUnlock()
	}
	return out
}
