package routing

import "sync"

// bucket is an ordered sequence of NodeInfo of length at most capacity.
// The oldest-inserted entry sits at index 0; the most-recently-observed
// entry sits at the end. A reader-writer lock lets closest-node lookups
// (reads) proceed concurrently with inserts (writes).
//
// This mirrors the teacher's KBucket (dht/routing.go) in shape, but the
// replacement policy is pure least-recently-seen, as spec.md requires,
// rather than the teacher's good/bad status-based replacement.
type bucket struct {
	mu       sync.RWMutex
	entries  []NodeInfo
	capacity int
}

func newBucket(capacity int) *bucket {
	return &bucket{entries: make([]NodeInfo, 0, capacity), capacity: capacity}
}

// snapshot returns a copy of the bucket's current entries, for lookups
// that must sort or filter without holding the lock.
func (b *bucket) snapshot() []NodeInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]NodeInfo, len(b.entries))
	copy(out, b.entries)
	return out
}

// find performs a linear scan under a read lock for an entry with the
// given id.
func (b *bucket) find(id NodeInfo) (NodeInfo, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, e := range b.entries {
		if e.ID == id.ID {
			return e, true
		}
	}
	return NodeInfo{}, false
}

// insert removes any existing entry with the same id, then either appends
// info (if there's room) or evicts the oldest entry and appends info,
// returning the conflict that produced in the latter case.
func (b *bucket) insert(info NodeInfo) (conflict EvictionConflict, evicted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.entries {
		if e.ID == info.ID {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			break
		}
	}

	if len(b.entries) == b.capacity {
		oldest := b.entries[0]
		b.entries = b.entries[1:]
		b.entries = append(b.entries, info)
		return EvictionConflict{Evicted: oldest, Inserted: info}, true
	}

	b.entries = append(b.entries, info)
	return EvictionConflict{}, false
}

// replace swaps the entry with id == conflict.Inserted.ID back out for
// conflict.Evicted, used by Table.RevertConflict. It reports whether the
// inserted entry was still present to replace.
func (b *bucket) replace(conflict EvictionConflict) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.entries {
		if e.ID == conflict.Inserted.ID {
			b.entries[i] = conflict.Evicted
			return true
		}
	}
	return false
}

func (b *bucket) len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
