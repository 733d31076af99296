package engine

import (
	"testing"
	"time"

	"kingly/board"
	"kingly/eval"
	"kingly/position"
	"kingly/search"
	"kingly/tables"
)

func mustParse(t *testing.T, tb *tables.Tables, fen string) *position.Position {
	t.Helper()
	p, err := position.ParseFEN(tb, fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return p
}

func TestSpawnReportsFinishedEvent(t *testing.T) {
	tb := tables.New()
	p := mustParse(t, tb, "4k3/8/8/3q4/3Q4/8/8/4K3 w - - 0 1")

	pool := New()
	pool.SetNumThreads(2)

	ch, err := pool.Spawn(SearchJob{Position: p, Eval: eval.Material{}, Limits: search.Limits{Depth: 2}})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	var sawFinished bool
	timeout := time.After(5 * time.Second)
drain:
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				break drain
			}
			if ev.Finished {
				sawFinished = true
			}
		case <-timeout:
			t.Fatalf("timed out waiting for search to finish")
		}
	}

	if !sawFinished {
		t.Errorf("expected a Finished event before the channel closed")
	}
	if pool.IsRunning() {
		t.Errorf("expected pool to report not running after completion")
	}
}

func TestSpawnWhileRunningReturnsError(t *testing.T) {
	tb := tables.New()
	p := mustParse(t, tb, position.StartposFEN)

	pool := New()
	pool.SetNumThreads(1)

	_, err := pool.Spawn(SearchJob{Position: p, Eval: eval.Material{}, Limits: search.Limits{Time: 300 * time.Millisecond}})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer pool.Stop()

	if _, err := pool.Spawn(SearchJob{Position: p, Eval: eval.Material{}, Limits: search.Limits{Depth: 1}}); err != ErrSearchRunning {
		t.Errorf("expected ErrSearchRunning, got %v", err)
	}
	if err := pool.SetHashSizeMB(8); err != ErrSearchRunning {
		t.Errorf("expected ErrSearchRunning from SetHashSizeMB, got %v", err)
	}
	if err := pool.SetNumThreads(4); err != ErrSearchRunning {
		t.Errorf("expected ErrSearchRunning from SetNumThreads, got %v", err)
	}
}

func TestStopHaltsSearch(t *testing.T) {
	tb := tables.New()
	p := mustParse(t, tb, position.StartposFEN)

	pool := New()
	pool.SetNumThreads(2)

	_, err := pool.Spawn(SearchJob{Position: p, Eval: eval.Material{}, Limits: search.Limits{}})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	pool.Stop()

	if pool.IsRunning() {
		t.Errorf("expected pool to report not running after Stop")
	}
}

func TestBestOfPrefersGreaterDepth(t *testing.T) {
	shallow := SearchResult{Depth: 3, Score: board.CentiPawn(500)}
	deep := SearchResult{Depth: 5, Score: board.CentiPawn(0)}

	got, worker := bestOf(shallow, 0, deep, 1)
	if got.Depth != 5 || worker != 1 {
		t.Errorf("expected deeper result to win, got depth=%d worker=%d", got.Depth, worker)
	}
}

func TestBestOfBreaksDepthTieByScore(t *testing.T) {
	low := SearchResult{Depth: 4, Score: board.CentiPawn(10)}
	high := SearchResult{Depth: 4, Score: board.CentiPawn(20)}

	got, worker := bestOf(low, 0, high, 1)
	if got.Score != board.CentiPawn(20) || worker != 1 {
		t.Errorf("expected higher score to win a depth tie, got score=%v worker=%d", got.Score, worker)
	}
}

func TestBestOfBreaksFullTieByLowerWorkerIndex(t *testing.T) {
	a := SearchResult{Depth: 4, Score: board.CentiPawn(10)}
	b := SearchResult{Depth: 4, Score: board.CentiPawn(10)}

	got, worker := bestOf(a, 2, b, 1)
	if worker != 1 {
		t.Errorf("expected lower worker index to win a full tie, got worker=%d", worker)
	}
	_ = got
}
