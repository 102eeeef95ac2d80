package matching

import "sync"

// shardCount is fixed at construction time, not data-dependent; unlike the
// fixed 2027-bucket table in the original C++ ConcurrentHashMap, Go's
// built-in map already rehashes internally, so a shard only needs to be
// large enough to keep the per-shard RWMutex from becoming a bottleneck.
const defaultShardCount = 64

type shard[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

// ShardedMap is a fixed-bucket concurrent map: each bucket owns a native Go
// map guarded by its own RWMutex, so operations on keys in different
// buckets never contend. This replaces the intrusive per-bucket linked list
// of the original ConcurrentHashMap/HashBucket/HashNode design with Go's
// built-in map, which already handles collisions and growth.
type ShardedMap[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
}

// NewShardedMap builds a ShardedMap with shardCount buckets, hashing keys
// with hash to pick a bucket.
func NewShardedMap[K comparable, V any](shardCount int, hash func(K) uint64) *ShardedMap[K, V] {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	shards := make([]*shard[K, V], shardCount)
	for i := range shards {
		shards[i] = &shard[K, V]{m: make(map[K]V)}
	}
	return &ShardedMap[K, V]{shards: shards, hash: hash}
}

func (s *ShardedMap[K, V]) shardFor(key K) *shard[K, V] {
	return s.shards[s.hash(key)%uint64(len(s.shards))]
}

// Load returns the value stored for key, if any.
func (s *ShardedMap[K, V]) Load(key K) (V, bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	v, ok := sh.m[key]
	return v, ok
}

// Store unconditionally sets the value for key.
func (s *ShardedMap[K, V]) Store(key K, value V) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.m[key] = value
}

// LoadOrStore returns the existing value for key if present; otherwise it
// stores value and returns it. Used by the instrument registry so two
// goroutines racing to create the same book never both win.
func (s *ShardedMap[K, V]) LoadOrStore(key K, value V) V {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if existing, ok := sh.m[key]; ok {
		return existing
	}
	sh.m[key] = value
	return value
}

// Delete removes key, if present. A no-op if key is absent.
func (s *ShardedMap[K, V]) Delete(key K) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.m, key)
}

// Clear empties every bucket. Used on engine shutdown.
func (s *ShardedMap[K, V]) Clear() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.m = make(map[K]V)
		sh.mu.Unlock()
	}
}

// Len returns the total number of entries across all buckets. It is a
// point-in-time estimate under concurrent writers, useful for metrics and
// tests, not for correctness decisions.
func (s *ShardedMap[K, V]) Len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.m)
		sh.mu.RUnlock()
	}
	return total
}
