package sync

import (
	"hash/fnv"
	"slices"
	"sync"
)

const shardCount = 64

// ShardedMutex serialises work per resource key (a property, an application)
// without a global lock. Keys hash onto a fixed set of shards, so unrelated
// keys may occasionally share a shard; callers must never assume exclusivity
// beyond "same key, same shard".
type ShardedMutex struct {
	shards [shardCount]sync.Mutex
}

func NewShardedMutex() *ShardedMutex {
	return &ShardedMutex{}
}

// Lock acquires the shard for key. Empty keys map to shard 0.
func (m *ShardedMutex) Lock(key string) {
	m.shards[m.shardFor(key)].Lock()
}

func (m *ShardedMutex) Unlock(key string) {
	m.shards[m.shardFor(key)].Unlock()
}

// LockKeys acquires the shards for every key in ascending shard order and
// returns the matching unlock. Duplicate shards are locked once, so two keys
// colliding on one shard cannot self-deadlock, and the fixed order rules out
// lock-order inversions between concurrent multi-key callers.
func (m *ShardedMutex) LockKeys(keys ...string) (unlock func()) {
	idx := make([]int, 0, len(keys))
	for _, k := range keys {
		idx = append(idx, m.shardFor(k))
	}
	slices.Sort(idx)
	idx = slices.Compact(idx)

	for _, i := range idx {
		m.shards[i].Lock()
	}
	return func() {
		for j := len(idx) - 1; j >= 0; j-- {
			m.shards[idx[j]].Unlock()
		}
	}
}

func (m *ShardedMutex) shardFor(key string) int {
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % shardCount)
}
