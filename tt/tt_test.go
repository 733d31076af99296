package tt

import (
	"testing"

	"kingly/board"
)

func TestInsertGetRoundTrip(t *testing.T) {
	table := WithHashSizeMB(1)
	mv := board.NewMove(board.E2, board.E4, board.Regular)
	entry := Entry{Score: 42, BestMove: mv, Bound: Exact, Depth: 6}

	table.Insert(0xdeadbeef, entry)
	got, ok := table.Get(0xdeadbeef)
	if !ok {
		t.Fatalf("expected entry to be found")
	}
	if got.Score != 42 || got.BestMove != mv || got.Bound != Exact || got.Depth != 6 {
		t.Errorf("got %+v, want %+v", got, entry)
	}
}

func TestGetMissReturnsFalse(t *testing.T) {
	table := WithHashSizeMB(1)
	if _, ok := table.Get(12345); ok {
		t.Errorf("expected miss on empty table")
	}
}

func TestInsertOverwritesSameKey(t *testing.T) {
	table := WithHashSizeMB(1)
	key := uint64(7)
	table.Insert(key, Entry{Score: 1, Depth: 3, Bound: Lower})
	table.Insert(key, Entry{Score: 2, Depth: 5, Bound: Exact})

	got, ok := table.Get(key)
	if !ok {
		t.Fatalf("expected entry to be found")
	}
	if got.Score != 2 || got.Depth != 5 {
		t.Errorf("expected overwrite to win, got %+v", got)
	}
}

func TestReplacementPrefersHigherScore(t *testing.T) {
	// Keys that share their low bits force collisions within the probe window.
	table := WithHashSizeMB(1)
	capacity := uint64(table.Capacity())

	shallow := Entry{Score: 1, Depth: 1, Bound: Upper}
	deep := Entry{Score: 2, Depth: 20, Bound: Exact}

	base := uint64(3)
	table.Insert(base, shallow)
	table.Insert(base+1, shallow)
	table.Insert(base+2, shallow)

	// This key shares the same probe window (base..base+2 mod capacity) as
	// the three shallow entries above; it should evict the lowest-scoring one.
	collidingKey := base + capacity // same low bits as base, since mask = capacity-1
	table.Insert(collidingKey, deep)

	if _, ok := table.Get(collidingKey); !ok {
		t.Errorf("expected deeper entry to win a slot in its probe window")
	}
}

func TestClearEmptiesTable(t *testing.T) {
	table := WithHashSizeMB(1)
	table.Insert(1, Entry{Score: 1, Depth: 1})
	table.Clear()
	if _, ok := table.Get(1); ok {
		t.Errorf("expected table to be empty after Clear")
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after Clear", table.Len())
	}
}

func TestFillPermilleTracksInsertions(t *testing.T) {
	table := WithHashSizeMB(1)
	if table.FillPermille() != 0 {
		t.Errorf("expected empty table to report 0 fill")
	}
	// Fill is reported in whole permille, so one permille of the table must
	// be occupied before it reads nonzero.
	for key := uint64(1); key <= uint64(table.Capacity()/1000+1); key++ {
		table.Insert(key, Entry{Depth: 1})
	}
	if table.FillPermille() <= 0 {
		t.Errorf("expected nonzero fill after the inserts")
	}
}
