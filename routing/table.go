package routing

import (
	"iter"
	"sort"
	"sync"

	"github.com/TheWaWaR/subotai/hash"
	"github.com/TheWaWaR/subotai/internal/logging"
)

// Table is a fixed array of hash.Size buckets indexed 0..hash.Size-1,
// holding peers at every possible XOR-distance shell from parentID. Bucket
// i contains only peers whose XOR distance to parentID has Height() ==
// i+1. parentID itself never appears in the table.
type Table struct {
	buckets   []*bucket
	parentID  hash.Hash
	bucketCap int

	conflictsMu sync.Mutex
	conflicts   []EvictionConflict
}

// New allocates a routing table of hash.Size empty buckets, each holding
// up to bucketSize peers, for the node identified by parentID.
func New(parentID hash.Hash, bucketSize int) *Table {
	t := &Table{
		buckets:   make([]*bucket, hash.Size),
		parentID:  parentID,
		bucketCap: bucketSize,
	}
	for i := range t.buckets {
		t.buckets[i] = newBucket(bucketSize)
	}
	return t
}

// bucketIndex returns the index of the bucket that should hold id, or -1
// if id is the table's own parent id (which is never stored).
func (t *Table) bucketIndex(id hash.Hash) int {
	height := t.parentID.Xor(id).Height()
	if height == 0 {
		return -1
	}
	return height - 1
}

// Insert adds a peer to the appropriate bucket, evicting the
// least-recently-seen entry if the bucket is full and recording an
// EvictionConflict for the surrounding protocol to reconcile later.
// Inserting the table's own parent id is silently ignored. Inserting an
// already-present id moves it to the back of its bucket (a refresh), and
// never grows the bucket or records a conflict.
func (t *Table) Insert(info NodeInfo) {
	logger := logging.New("routing", "Table.Insert")

	idx := t.bucketIndex(info.ID)
	if idx < 0 {
		logger.WithField("id", info.ID.String()).Debug("ignoring self-insert")
		return
	}

	conflict, evicted := t.buckets[idx].insert(info)
	if evicted {
		t.conflictsMu.Lock()
		t.conflicts = append(t.conflicts, conflict)
		t.conflictsMu.Unlock()
		logger.WithFields(map[string]interface{}{
			"bucket":   idx,
			"evicted":  conflict.Evicted.ID.String(),
			"inserted": conflict.Inserted.ID.String(),
		}).Info("evicted oldest peer from full bucket")
	}
}

// SpecificNode returns the entry for id, if the table has one.
func (t *Table) SpecificNode(id hash.Hash) (NodeInfo, bool) {
	idx := t.bucketIndex(id)
	if idx < 0 {
		return NodeInfo{}, false
	}
	return t.buckets[idx].find(NodeInfo{ID: id})
}

// Lookup answers "is peer X known?" and "which peers are closest to target
// T?" in one call, returning one of LookupMyself, LookupFound,
// LookupClosestNodes, or LookupNothing.
func (t *Table) Lookup(id hash.Hash, n int, blacklist []hash.Hash) LookupResult {
	if id == t.parentID {
		return myself()
	}

	if info, ok := t.SpecificNode(id); ok {
		return found(info)
	}

	closest := t.closestNNodesTo(id, n, blacklist)
	if len(closest) == 0 {
		return nothing()
	}
	return closestNodes(closest)
}

// closestNNodesTo implements the bounce traversal: the buckets indexed by
// the descending positions of the set bits of (parentID ^ id) are visited
// first — these hold peers sharing the most prefix bits with id — then
// the buckets indexed by the ascending positions of its cleared bits, as a
// farther-but-still-ordered fallback.
func (t *Table) closestNNodesTo(id hash.Hash, n int, blacklist []hash.Hash) []NodeInfo {
	distance := t.parentID.Xor(id)
	ones := distance.Ones()
	zeroes := distance.Zeroes()

	order := make([]int, 0, len(ones)+len(zeroes))
	for i := len(ones) - 1; i >= 0; i-- {
		order = append(order, ones[i])
	}
	order = append(order, zeroes...)

	closest := make([]NodeInfo, 0, n)
	for _, bucketIndex := range order {
		entries := t.buckets[bucketIndex].snapshot()
		if len(entries) == 0 {
			continue
		}

		entries = filterBlacklist(entries, blacklist)
		sort.Slice(entries, func(i, j int) bool {
			return lessDistanceTo(id, entries[i].ID, entries[j].ID)
		})

		spaceLeft := n - len(closest)
		if spaceLeft <= 0 {
			break
		}
		if len(entries) > spaceLeft {
			entries = entries[:spaceLeft]
		}
		closest = append(closest, entries...)

		if len(closest) == n {
			break
		}
	}
	return closest
}

func filterBlacklist(entries []NodeInfo, blacklist []hash.Hash) []NodeInfo {
	if len(blacklist) == 0 {
		return entries
	}
	blocked := make(map[hash.Hash]struct{}, len(blacklist))
	for _, b := range blacklist {
		blocked[b] = struct{}{}
	}
	filtered := entries[:0]
	for _, e := range entries {
		if _, skip := blocked[e.ID]; !skip {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// lessDistanceTo reports whether a is closer to target than b is,
// breaking ties by comparing ids lexicographically so the sort is total.
func lessDistanceTo(target, a, b hash.Hash) bool {
	da := target.Xor(a)
	db := target.Xor(b)
	if cmp := compareHash(da, db); cmp != 0 {
		return cmp < 0
	}
	return compareHash(a, b) < 0
}

func compareHash(a, b hash.Hash) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// AllNodes yields a weak snapshot of every stored peer, bucket by bucket
// in ascending index (closest to parentID first), sorted by distance to
// parentID within each bucket. Concurrent mutation during iteration is
// allowed and may cause duplicates or omissions of peers modified after
// the current bucket has already been visited: this deliberately avoids
// holding hash.Size locks at once for a long scan.
func (t *Table) AllNodes() iter.Seq[NodeInfo] {
	return func(yield func(NodeInfo) bool) {
		for _, b := range t.buckets {
			entries := b.snapshot()
			sort.Slice(entries, func(i, j int) bool {
				return lessDistanceTo(t.parentID, entries[i].ID, entries[j].ID)
			})
			for _, e := range entries {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// RevertConflict replaces the Inserted entry in its bucket with Evicted,
// intended for use after a liveness probe confirms the evicted peer
// should be kept after all. It reports whether Inserted was still present
// to revert.
func (t *Table) RevertConflict(conflict EvictionConflict) bool {
	idx := t.bucketIndex(conflict.Inserted.ID)
	if idx < 0 {
		return false
	}
	ok := t.buckets[idx].replace(conflict)
	if ok {
		logging.New("routing", "Table.RevertConflict").WithFields(map[string]interface{}{
			"bucket":   idx,
			"restored": conflict.Evicted.ID.String(),
		}).Info("reverted eviction conflict")
	}
	return ok
}

// Conflicts returns a copy of the currently tracked eviction conflicts.
func (t *Table) Conflicts() []EvictionConflict {
	t.conflictsMu.Lock()
	defer t.conflictsMu.Unlock()
	out := make([]EvictionConflict, len(t.conflicts))
	copy(out, t.conflicts)
	return out
}

// ParentID returns the id this table was constructed around.
func (t *Table) ParentID() hash.Hash {
	return t.parentID
}
