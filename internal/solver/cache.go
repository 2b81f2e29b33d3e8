package solver

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheEntry holds the per-component probability vector for one frontier
// state. probs[i] is the (unnormalized, later divided) relative weight of
// placing exactly i mines among this state's cells plus whatever offset its
// caller already fixed. init is false while the entry is provisional: its
// owning frame is still being computed and the bucket holds it only so
// nested lookups can find the same cache slot.
type cacheEntry struct {
	state State
	probs []float64
	epoch int
	init  bool
}

// stateCache maps frontier states to cacheEntry, keyed by an xxhash digest
// of the state and bucketed to survive collisions: a digest match is only
// treated as a hit after an exact State comparison, so a 64-bit collision
// can cost a wasted recomputation but never a wrong answer.
type stateCache struct {
	buckets *lru.Cache[uint64, []*cacheEntry]
}

func newStateCache(size int) *stateCache {
	if size <= 0 {
		size = 1
	}
	c, _ := lru.New[uint64, []*cacheEntry](size)
	return &stateCache{buckets: c}
}

func hashState(s State) uint64 {
	buf := make([]byte, len(s)*4)
	for i, c := range s {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(c))
	}
	return xxhash.Sum64(buf)
}

func stateEqual(a, b State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// get returns the entry for s if one exists, regardless of whether it has
// finished computing.
func (c *stateCache) get(s State) (*cacheEntry, bool) {
	key := hashState(s)
	bucket, ok := c.buckets.Get(key)
	if !ok {
		return nil, false
	}
	for _, e := range bucket {
		if stateEqual(e.state, s) {
			return e, true
		}
	}
	return nil, false
}

// insert replaces any existing entry for s with a fresh provisional one at
// the given epoch and returns it.
func (c *stateCache) insert(s State, epoch int) *cacheEntry {
	key := hashState(s)
	fresh := &cacheEntry{state: append(State(nil), s...), epoch: epoch}

	bucket, _ := c.buckets.Get(key)
	for i, e := range bucket {
		if stateEqual(e.state, s) {
			bucket[i] = fresh
			c.buckets.Add(key, bucket)
			return fresh
		}
	}
	bucket = append(bucket, fresh)
	c.buckets.Add(key, bucket)
	return fresh
}
