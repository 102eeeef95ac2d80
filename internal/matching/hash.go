package matching

import "hash/maphash"

var mapSeed = maphash.MakeSeed()

// HashString hashes an instrument symbol for use as a ShardedMap key.
func HashString(s string) uint64 {
	var h maphash.Hash
	h.SetSeed(mapSeed)
	h.WriteString(s)
	return h.Sum64()
}

// HashUint32 hashes an order id for use as a ShardedMap key. This is
// murmur3's 32-bit finalizer, which mixes a small integer well enough to
// spread ids evenly across shards.
func HashUint32(id uint32) uint64 {
	x := uint32(id)
	x ^= x >> 16
	x *= 0x85ebca6b
	x ^= x >> 13
	x *= 0xc2b2ae35
	x ^= x >> 16
	return uint64(x)
}
