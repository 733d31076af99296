// Package search implements iterative-deepening negamax alpha-beta search:
// quiescence, null-move pruning, aspiration windows, and principal-variation
// extraction through the transposition table. One Search value drives one
// position to whatever depth/time/node limit it is given; the worker pool in
// package engine is what fans several of these out across goroutines sharing
// one table.
package search

import (
	"log"
	"sync/atomic"
	"time"

	"kingly/board"
	"kingly/eval"
	"kingly/movegen"
	"kingly/position"
	"kingly/tt"
)

// aspirationDelta is the half-width of the first aspiration window tried at
// each depth, in centipawns.
const aspirationDelta = board.Value(15)

// Limits bounds a search. The zero value for each field means "unbounded":
// Depth 0 searches to maxSearchDepth, Nodes 0 and Time 0 never trigger.
type Limits struct {
	Moves []board.Move
	Depth int
	Nodes uint64
	Time  time.Duration
}

const maxSearchDepth = 127

// SearchInfo reports the result of one completed iterative-deepening
// iteration.
type SearchInfo struct {
	Score      board.Value
	PV         []board.Move
	Depth      int
	SelDepth   int
	Nodes      uint64
	NPS        uint64
	Elapsed    time.Duration
	HashFull   int
}

// Search drives one iterative-deepening search of a single position. Build
// one with New, configure it with the chained setters, then run it with
// Start.
type Search struct {
	limits   Limits
	onInfo   []func(SearchInfo)
	pos      *position.Position
	eval     eval.Evaluator
	table    *tt.Table
}

// New creates a Search over pos using eval for static evaluation and table
// as the shared transposition table.
func New(pos *position.Position, ev eval.Evaluator, table *tt.Table) *Search {
	return &Search{pos: pos, eval: ev, table: table}
}

// WithMoves restricts the search to the given root moves instead of every
// legal move.
func (s *Search) WithMoves(moves []board.Move) *Search {
	s.limits.Moves = moves
	return s
}

// WithDepth caps the search at the given depth.
func (s *Search) WithDepth(depth int) *Search {
	s.limits.Depth = depth
	return s
}

// WithNodes caps the search at the given node count.
func (s *Search) WithNodes(nodes uint64) *Search {
	s.limits.Nodes = nodes
	return s
}

// WithTime caps the search at the given wall-clock duration.
func (s *Search) WithTime(d time.Duration) *Search {
	s.limits.Time = d
	return s
}

// OnInfo registers a callback invoked after each completed depth. No extra
// call is made when the search stops.
func (s *Search) OnInfo(cb func(SearchInfo)) *Search {
	s.onInfo = append(s.onInfo, cb)
	return s
}

// searchParams tracks the mutable state threaded through one iterative-
// deepening iteration: node count, selective depth reached, and the stop
// conditions shared with the rest of the search.
type searchParams struct {
	nodes       uint64
	selDepth    int
	startDepth  int
	stop        *atomic.Bool
	searchStart time.Time
	limits      *Limits
}

func (s *Search) rootMoves() board.MoveList {
	var l board.MoveList
	if s.limits.Moves != nil {
		for _, mv := range s.limits.Moves {
			l.Push(mv)
		}
		return l
	}
	movegen.Generate(s.pos, &l, false)
	return l
}

func (s *Search) quiesce(alpha, beta board.Value, selDepth int, params *searchParams) board.Value {
	if selDepth > params.selDepth {
		params.selDepth = selDepth
	}

	// We assume the side to move can do at least as well as the static
	// evaluation of the current position; zugzwang is not considered.
	staticEval := s.eval.Eval(s.pos)
	if staticEval >= beta {
		return staticEval
	}
	if staticEval > alpha {
		alpha = staticEval
	}
	bestScore := staticEval

	var l board.MoveList
	movegen.Generate(s.pos, &l, true)
	for _, mv := range l.Slice() {
		s.pos.MakeMove(mv)
		params.nodes++
		score := s.quiesce(neg(beta), neg(alpha), selDepth+1, params).Neg()
		s.pos.UnmakeMove()

		if score >= beta {
			return score
		}
		if score > bestScore {
			bestScore = score
			if score > alpha {
				alpha = score
			}
		}
	}
	return bestScore
}

func neg(v board.Value) board.Value { return v.Neg() }

// reorderMoves places bestMove (if any and if present) first, then sorts the
// remainder captures-before-quiets. A best move absent from the list is a
// hash collision: it is logged and ignored, falling through to ordinary
// captures-first ordering over the whole list.
func (s *Search) reorderMoves(moves []board.Move, bestMove board.Move, hasBest bool) {
	if len(moves) == 0 {
		return
	}
	if hasBest {
		idx := -1
		for i, mv := range moves {
			if mv == bestMove {
				idx = i
				break
			}
		}
		if idx < 0 {
			log.Printf("search: table move %s not in legal move list (hash collision)", bestMove)
		} else {
			moves[0], moves[idx] = moves[idx], moves[0]
			moves = moves[1:]
		}
	}

	isCapture := func(mv board.Move) bool {
		return s.pos.PieceAt(mv.To()) != board.NoPiece || mv.Kind() == board.EnPassant
	}
	// Stable-ish partition: captures before quiets, preserving generation
	// order within each group.
	captures := make([]board.Move, 0, len(moves))
	quiets := make([]board.Move, 0, len(moves))
	for _, mv := range moves {
		if isCapture(mv) {
			captures = append(captures, mv)
		} else {
			quiets = append(quiets, mv)
		}
	}
	n := copy(moves, captures)
	copy(moves[n:], quiets)
}

func (s *Search) shouldStop(params *searchParams) bool {
	if params.stop.Load() {
		return true
	}
	if params.limits.Time != 0 && time.Since(params.searchStart) >= params.limits.Time {
		return true
	}
	if params.limits.Nodes != 0 && params.nodes >= params.limits.Nodes {
		return true
	}
	return false
}

// searchFn is the recursive entry point passed to searchMoves: either
// (*Search).search for interior nodes or (*Search).aspirationWindowSearch
// for the root.
type searchFn func(s *Search, alpha, beta board.Value, depth int, params *searchParams) board.Value

// searchMoves searches each of moves in turn and returns the score of the
// best one, storing a TT entry before returning. moves must be legal. The
// bool result is false if moves is empty or a stop condition is seen before
// one of the moves is started; the partial score is then discarded.
func (s *Search) searchMoves(moves []board.Move, alpha, beta board.Value, depth int, params *searchParams, rec searchFn) (board.Value, bool) {
	if len(moves) == 0 {
		return 0, false
	}

	bestMove := moves[0]
	bestScore := board.MatedIn(0)
	low := alpha

	for _, mv := range moves {
		if s.shouldStop(params) {
			return 0, false
		}

		s.pos.MakeMove(mv)
		params.nodes++
		score := rec(s, neg(beta).DecMate(), neg(low).DecMate(), depth-1, params).Neg().IncMate()
		s.pos.UnmakeMove()

		if score >= beta {
			s.table.Insert(s.pos.Zobrist(), tt.Entry{Score: score, BestMove: mv, Bound: tt.Lower, Depth: clampDepth(depth)})
			return score, true
		}

		if score > bestScore {
			bestMove = mv
			bestScore = score
			if score > low {
				low = score
			}
		}
	}

	bound := tt.Exact
	if bestScore <= alpha {
		bound = tt.Upper
	}
	s.table.Insert(s.pos.Zobrist(), tt.Entry{Score: bestScore, BestMove: bestMove, Bound: bound, Depth: clampDepth(depth)})
	return bestScore, true
}

func clampDepth(depth int) uint8 {
	if depth < 0 {
		return 0
	}
	if depth > 255 {
		return 255
	}
	return uint8(depth)
}

// prune returns a usable score for the current node without a full move
// search, if one is available: either by dropping into quiescence at a leaf,
// or via a null-move cutoff. ok is false when no pruning applied and the
// caller must search moves normally.
func (s *Search) prune(alpha, beta board.Value, depth int, bestMove board.Move, params *searchParams) (board.Value, bool) {
	if depth <= 0 {
		score := s.quiesce(alpha, beta, params.startDepth+(-depth), params)
		bound := tt.Exact
		switch {
		case score <= alpha:
			bound = tt.Upper
		case score >= beta:
			bound = tt.Lower
		}
		s.table.Insert(s.pos.Zobrist(), tt.Entry{Score: score, BestMove: bestMove, Bound: bound, Depth: clampDepth(depth)})
		return score, true
	}

	if depth > 2 && s.pos.NullMoveHeuristic() {
		s.pos.MakeNullMove()
		params.nodes++
		score := s.search(neg(beta).DecMate(), neg(alpha).DecMate(), depth-2, params).Neg().IncMate()
		s.pos.UnmakeNullMove()

		if score >= beta {
			s.table.Insert(s.pos.Zobrist(), tt.Entry{Score: score, BestMove: bestMove, Bound: tt.Lower, Depth: clampDepth(depth)})
			return score, true
		}
	}

	return 0, false
}

// search runs fail-soft negamax alpha-beta to depth, returning a score
// relative to the side to move at this node.
func (s *Search) search(alpha, beta board.Value, depth int, params *searchParams) board.Value {
	var l board.MoveList
	movegen.Generate(s.pos, &l, false)
	check := movegen.InCheck(s.pos)

	if l.Len == 0 {
		if check {
			return board.MatedIn(0)
		}
		return board.CentiPawn(0)
	}

	if s.pos.IsDraw() {
		return board.CentiPawn(0)
	}

	var tableMove board.Move
	hasTableMove := false
	if entry, ok := s.table.Get(s.pos.Zobrist()); ok {
		if int(entry.Depth) >= depth {
			switch entry.Bound {
			case tt.Exact:
				return entry.Score
			case tt.Lower:
				if entry.Score > alpha {
					alpha = entry.Score
				}
			case tt.Upper:
				if entry.Score < beta {
					beta = entry.Score
				}
			}
			if beta <= alpha {
				return entry.Score
			}
		}
		tableMove = entry.BestMove
		hasTableMove = true
	}

	bestMove := l.Slice()[0]
	if hasTableMove {
		bestMove = tableMove
	}
	if !check {
		if score, ok := s.prune(alpha, beta, depth, bestMove, params); ok {
			return score
		}
	}

	moves := l.Slice()
	s.reorderMoves(moves, tableMove, hasTableMove)

	score, ok := s.searchMoves(moves, alpha, beta, depth, params, (*Search).search)
	if !ok {
		return board.MatedIn(0)
	}
	return score
}

func (s *Search) aspirationWindowSearch(alpha, beta board.Value, depth int, params *searchParams) board.Value {
	entry, ok := s.table.Get(s.pos.Zobrist())
	if !ok {
		return s.search(alpha, beta, depth, params)
	}

	low := maxValue(alpha, entry.Score.Sub(aspirationDelta))
	high := minValue(beta, entry.Score.Add(aspirationDelta))

	for shift := uint(1); ; shift++ {
		score := s.search(low, high, depth, params)
		delta := aspirationDelta.Mul(1 << shift)

		switch {
		case score >= high:
			if score >= beta {
				return score
			}
			high = minValue(maxValue(score, entry.Score).Add(delta), beta)
		case score <= low:
			if score <= alpha {
				return score
			}
			low = maxValue(minValue(score, entry.Score).Sub(delta), alpha)
		default:
			return score
		}
	}
}

func maxValue(a, b board.Value) board.Value {
	if a > b {
		return a
	}
	return b
}

func minValue(a, b board.Value) board.Value {
	if a < b {
		return a
	}
	return b
}

// primaryVariation walks the table from the current position, following the
// stored best move at each step, stopping at a missing entry, a move the
// generator no longer recognizes as legal (hash collision), or once depth
// moves have been collected. The position is restored before returning.
func (s *Search) primaryVariation(depth int) []board.Move {
	var pv []board.Move

	for i := 0; i < depth; i++ {
		entry, ok := s.table.Get(s.pos.Zobrist())
		if !ok {
			break
		}

		var l board.MoveList
		movegen.Generate(s.pos, &l, false)
		if !l.Contains(entry.BestMove) {
			break
		}

		pv = append(pv, entry.BestMove)
		s.pos.MakeMove(entry.BestMove)
	}

	for range pv {
		s.pos.UnmakeMove()
	}

	return pv
}

func (s *Search) notifyInfo(searchStart, iterationStart time.Time, depth int, bestScore board.Value, params *searchParams) {
	if len(s.onInfo) == 0 {
		return
	}
	pv := s.primaryVariation(depth)
	elapsed := time.Since(iterationStart)
	var nps uint64
	if elapsed > 0 {
		nps = uint64(float64(params.nodes) / elapsed.Seconds())
	}

	info := SearchInfo{
		Score:    bestScore,
		PV:       pv,
		Depth:    depth,
		SelDepth: params.selDepth,
		Nodes:    params.nodes,
		NPS:      nps,
		Elapsed:  time.Since(searchStart),
		HashFull: s.table.FillPermille(),
	}
	for _, cb := range s.onInfo {
		cb(info)
	}
}

// Start runs iterative deepening from depth 1 up to the configured depth
// limit (or maxSearchDepth), notifying OnInfo callbacks after each completed
// depth. It returns once a limit is hit or stop is set.
func (s *Search) Start(stop *atomic.Bool) {
	searchStart := time.Now()

	root := s.rootMoves()
	maxDepth := s.limits.Depth
	if maxDepth <= 0 || maxDepth > maxSearchDepth {
		maxDepth = maxSearchDepth
	}

	for depth := 1; depth <= maxDepth; depth++ {
		iterationStart := time.Now()
		params := &searchParams{startDepth: depth, stop: stop, searchStart: searchStart, limits: &s.limits}

		var tableMove board.Move
		hasTableMove := false
		if entry, ok := s.table.Get(s.pos.Zobrist()); ok {
			tableMove, hasTableMove = entry.BestMove, true
		}
		moves := root.Slice()
		s.reorderMoves(moves, tableMove, hasTableMove)

		bestScore, ok := s.searchMoves(moves, board.MatedIn(0), board.MateIn(0), depth, params, (*Search).aspirationWindowSearch)
		if !ok {
			return
		}

		if s.shouldStop(params) {
			return
		}

		s.notifyInfo(searchStart, iterationStart, depth, bestScore, params)
	}
}
