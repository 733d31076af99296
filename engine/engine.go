// Package engine implements the lazy-SMP worker pool: several goroutines
// each run an independent iterative-deepening search (package search) over
// their own clone of the position, sharing one transposition table without
// locks. Workers diverge naturally from TT races; their per-depth results
// are merged by a simple, deterministic rule so the pool as a whole reports
// one PV per depth.
package engine

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"kingly/board"
	"kingly/eval"
	"kingly/position"
	"kingly/search"
	"kingly/tt"
)

// ErrSearchRunning is returned by any admission-controlled operation
// (Spawn, SetHashSizeMB, SetNumThreads) attempted while a search is active.
var ErrSearchRunning = errors.New("search is running")

// defaultThreads mirrors the teacher's toolchain-era observation that more
// than a handful of lazy-SMP workers stops paying off; six is the ceiling
// used regardless of core count.
const defaultThreads = 6

const defaultHashSizeMB = 16

// SearchResult is one worker's reported outcome for a completed depth.
type SearchResult struct {
	Score board.Value
	PV    []board.Move
	Depth int
	Nodes uint64
}

// bestOf implements the pool's merge rule across workers: prefer the result
// from the greater depth; a depth tie favors the higher score; a further tie
// favors the lower worker index, for determinism in tests.
func bestOf(a SearchResult, aWorker int, b SearchResult, bWorker int) (SearchResult, int) {
	if b.Depth != a.Depth {
		if b.Depth > a.Depth {
			return b, bWorker
		}
		return a, aWorker
	}
	if b.Score != a.Score {
		if b.Score > a.Score {
			return b, bWorker
		}
		return a, aWorker
	}
	if bWorker < aWorker {
		return b, bWorker
	}
	return a, aWorker
}

// SearchJob describes one search to run across the pool.
type SearchJob struct {
	Position *position.Position
	Eval     eval.Evaluator
	Limits   search.Limits
}

// InfoEvent is one message on a job's info channel: either a newly completed
// depth's merged result, or the final result once the job stops.
type InfoEvent struct {
	Finished bool

	Depth    int
	Result   SearchResult
	NPS      uint64
	Elapsed  time.Duration
	HashFull int
}

const infoChannelBuffer = 64

// Pool is a lazy-SMP worker pool sharing one transposition table across
// searches. The zero value is not usable; construct with New.
type Pool struct {
	mu         sync.Mutex
	table      *tt.Table
	numThreads int
	stop       *atomic.Bool
	running    atomic.Bool
	done       chan struct{}
}

// New creates a pool with the default hash size and thread count.
func New() *Pool {
	threads := runtime.NumCPU()
	if threads > defaultThreads {
		threads = defaultThreads
	}
	return &Pool{
		table:      tt.WithHashSizeMB(defaultHashSizeMB),
		numThreads: threads,
		stop:       &atomic.Bool{},
	}
}

// IsRunning reports whether a search is currently active.
func (p *Pool) IsRunning() bool { return p.running.Load() }

// SetHashSizeMB resizes the shared transposition table. Returns
// ErrSearchRunning if a search is active.
func (p *Pool) SetHashSizeMB(mb int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.IsRunning() {
		return ErrSearchRunning
	}
	p.table = tt.WithHashSizeMB(mb)
	return nil
}

// SetNumThreads changes the worker count for future searches. Returns
// ErrSearchRunning if a search is active.
func (p *Pool) SetNumThreads(n int) error {
	if n <= 0 {
		n = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.IsRunning() {
		return ErrSearchRunning
	}
	p.numThreads = n
	return nil
}

// Spawn starts job across the pool's workers and returns a channel of
// InfoEvents. Returns ErrSearchRunning if a search is already active.
func (p *Pool) Spawn(job SearchJob) (<-chan InfoEvent, error) {
	p.mu.Lock()
	if p.IsRunning() {
		p.mu.Unlock()
		return nil, ErrSearchRunning
	}
	p.running.Store(true)
	p.stop.Store(false)
	numThreads := p.numThreads
	table := p.table
	done := make(chan struct{})
	p.done = done
	p.mu.Unlock()

	out := make(chan InfoEvent, infoChannelBuffer)
	go p.run(job, numThreads, table, out, done)
	return out, nil
}

// Stop signals the active search to halt and waits for it to finish,
// returning once all workers have stopped and the final event has been
// offered to the channel (the send does not block, so a full buffer drops
// it). Safe to call when no search is running.
func (p *Pool) Stop() {
	p.stop.Store(true)
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
	p.stop.Store(false)
}

func (p *Pool) run(job SearchJob, numThreads int, table *tt.Table, out chan<- InfoEvent, done chan struct{}) {
	defer close(done)
	defer close(out)
	defer p.running.Store(false)

	searchStart := time.Now()

	var mu sync.Mutex
	var best SearchResult
	var bestWorker = -1
	var haveResult bool

	var wg sync.WaitGroup
	for worker := 0; worker < numThreads; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			pos := job.Position.Clone()
			s := search.New(pos, job.Eval, table).WithDepth(job.Limits.Depth).
				WithNodes(job.Limits.Nodes).WithTime(job.Limits.Time)
			if job.Limits.Moves != nil {
				s = s.WithMoves(job.Limits.Moves)
			}

			s.OnInfo(func(info search.SearchInfo) {
				result := SearchResult{Score: info.Score, PV: info.PV, Depth: info.Depth, Nodes: info.Nodes}

				mu.Lock()
				defer mu.Unlock()
				if !haveResult {
					best, bestWorker, haveResult = result, worker, true
				} else {
					best, bestWorker = bestOf(best, bestWorker, result, worker)
				}
				if bestWorker != worker {
					return
				}

				elapsed := time.Since(searchStart)
				event := InfoEvent{
					Depth:    result.Depth,
					Result:   result,
					NPS:      info.NPS,
					Elapsed:  elapsed,
					HashFull: info.HashFull,
				}
				select {
				case out <- event:
				default:
				}
			})

			s.Start(p.stop)
		}(worker)
	}
	wg.Wait()

	mu.Lock()
	final := InfoEvent{Finished: true}
	if haveResult {
		final.Result = best
		final.Depth = best.Depth
	}
	mu.Unlock()

	select {
	case out <- final:
	default:
	}

	table.Clear()
}
