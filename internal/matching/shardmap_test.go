package matching

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardedMap_StoreLoadDelete(t *testing.T) {
	m := NewShardedMap[string, int](4, HashString)

	_, ok := m.Load("a")
	assert.False(t, ok)

	m.Store("a", 1)
	v, ok := m.Load("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	m.Delete("a")
	_, ok = m.Load("a")
	assert.False(t, ok)
}

func TestShardedMap_LoadOrStoreIsRaceFree(t *testing.T) {
	m := NewShardedMap[string, int](4, HashString)

	var wg sync.WaitGroup
	results := make([]int, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.LoadOrStore("key", i)
		}(i)
	}
	wg.Wait()

	first := results[0]
	for _, r := range results {
		assert.Equal(t, first, r, "every racer must observe the same winning value")
	}
}

func TestShardedMap_ClearAndLen(t *testing.T) {
	m := NewShardedMap[uint32, string](8, HashUint32)
	for i := uint32(0); i < 20; i++ {
		m.Store(i, "v")
	}
	assert.Equal(t, 20, m.Len())

	m.Clear()
	assert.Equal(t, 0, m.Len())
}

func TestShardedMap_ConcurrentDistinctKeysNeverLoseWrites(t *testing.T) {
	m := NewShardedMap[uint32, uint32](16, HashUint32)

	var wg sync.WaitGroup
	for i := uint32(0); i < 500; i++ {
		wg.Add(1)
		go func(i uint32) {
			defer wg.Done()
			m.Store(i, i*2)
		}(i)
	}
	wg.Wait()

	for i := uint32(0); i < 500; i++ {
		v, ok := m.Load(i)
		require.True(t, ok)
		assert.Equal(t, i*2, v)
	}
}
