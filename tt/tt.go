// Package tt implements the shared transposition table: a fixed-capacity,
// open-addressed hash table probed without locks, so that multiple search
// workers can read and write it concurrently while it is being searched.
// Each slot holds an atomic pointer to an immutable entry, so a reader never
// observes a half-written entry the way a flat, non-atomic array would;
// callers still must treat a probed best move as a hint; see search's use of
// it for the legality re-check.
package tt

import (
	"sync/atomic"

	"kingly/board"
)

// Bound records whether an entry's score is exact, or only a lower/upper
// bound obtained from a cutoff.
type Bound uint8

const (
	Exact Bound = iota
	Lower
	Upper
)

func (b Bound) String() string {
	switch b {
	case Exact:
		return "exact"
	case Lower:
		return "lower"
	case Upper:
		return "upper"
	default:
		return "?"
	}
}

// Entry is one stored search result.
type Entry struct {
	Score    board.Value
	BestMove board.Move
	Bound    Bound
	Depth    uint8
}

// replacementScore favors deep, exact entries when a probe window is full;
// it is capped at 255 so it fits a uint8.
func (e Entry) replacementScore() uint8 {
	s := e.Depth
	if e.Bound == Exact && s < 255 {
		s++
	}
	return s
}

// probeDepth is the number of slots examined after the home slot on lookup
// and insertion, so each probe window spans probeDepth+1 consecutive slots.
const probeDepth = 2

type slot struct {
	key   uint64
	entry Entry
}

// Table is a lock-free, fixed-capacity transposition table shared by every
// search worker. The zero value is not usable; construct with New or
// WithHashSizeMB.
type Table struct {
	slots []atomic.Pointer[slot]
	mask  uint64
	count atomic.Int64
}

const defaultHashSizeMB = 16

// New allocates a table with the default 16 MiB of backing storage.
func New() *Table {
	return WithHashSizeMB(defaultHashSizeMB)
}

// WithHashSizeMB allocates a table sized to approximately hashSizeMB
// megabytes, rounded down to the nearest power of two number of slots.
func WithHashSizeMB(hashSizeMB int) *Table {
	if hashSizeMB < 1 {
		hashSizeMB = 1
	}
	const slotSize = 24 // key(8) + Score(2, padded) + BestMove(2) + Bound(1) + Depth(1), pointer-sized bucket overhead folded in
	capacity := (hashSizeMB << 20) / slotSize
	capacity = prevPowerOfTwo(capacity)
	if capacity < 2 {
		capacity = 2
	}

	return &Table{
		slots: make([]atomic.Pointer[slot], capacity),
		mask:  uint64(capacity - 1),
	}
}

func prevPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

// Insert stores entry under the given zobrist key, following the probe
// window: an exact key match is overwritten in place; failing that, the
// first empty slot in the window is claimed; failing that, the slot with the
// lowest replacement score is evicted, but only if entry's own replacement
// score is at least as large.
func (t *Table) Insert(key uint64, entry Entry) {
	index := key & t.mask
	fresh := &slot{key: key, entry: entry}

	var minScore uint8 = 255
	minIdx := index

	for i := 0; i <= probeDepth; i++ {
		idx := (index + uint64(i)) & t.mask
		cur := t.slots[idx].Load()
		if cur == nil {
			if t.slots[idx].CompareAndSwap(nil, fresh) {
				t.count.Add(1)
				return
			}
			cur = t.slots[idx].Load()
			if cur == nil {
				continue
			}
		}
		if cur.key == key {
			t.slots[idx].CompareAndSwap(cur, fresh)
			return
		}
		if cur.entry.replacementScore() < minScore {
			minScore = cur.entry.replacementScore()
			minIdx = idx
		}
	}

	if entry.replacementScore() >= minScore {
		t.slots[minIdx].Store(fresh)
	}
}

// Get walks the probe window for key, returning the stored entry on a key
// match. It stops at the first empty slot encountered, or once the window is
// exhausted.
func (t *Table) Get(key uint64) (Entry, bool) {
	index := key & t.mask
	for i := 0; i <= probeDepth; i++ {
		idx := (index + uint64(i)) & t.mask
		cur := t.slots[idx].Load()
		if cur == nil {
			return Entry{}, false
		}
		if cur.key == key {
			return cur.entry, true
		}
	}
	return Entry{}, false
}

// Clear empties every slot.
func (t *Table) Clear() {
	for i := range t.slots {
		t.slots[i].Store(nil)
	}
	t.count.Store(0)
}

// Len reports the approximate number of occupied slots; under concurrent
// writes this is a best-effort count, not a precise one.
func (t *Table) Len() int { return int(t.count.Load()) }

// Capacity returns the number of slots in the table.
func (t *Table) Capacity() int { return len(t.slots) }

// FillPermille reports table occupancy in parts per thousand, the unit
// SearchInfo reports hash usage in.
func (t *Table) FillPermille() int {
	if len(t.slots) == 0 {
		return 0
	}
	return t.Len() * 1000 / len(t.slots)
}
