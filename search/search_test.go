package search

import (
	"sync/atomic"
	"testing"

	"kingly/board"
	"kingly/eval"
	"kingly/position"
	"kingly/tables"
	"kingly/tt"
)

func mustParse(t *testing.T, tb *tables.Tables, fen string) *position.Position {
	t.Helper()
	p, err := position.ParseFEN(tb, fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return p
}

func runToDepth(t *testing.T, p *position.Position, depth int) SearchInfo {
	t.Helper()
	table := tt.WithHashSizeMB(1)
	s := New(p, eval.Material{}, table).WithDepth(depth)

	var last SearchInfo
	s.OnInfo(func(info SearchInfo) { last = info })

	var stop atomic.Bool
	s.Start(&stop)
	return last
}

func TestQueenStandoff(t *testing.T) {
	tb := tables.New()

	white := mustParse(t, tb, "4k3/8/8/3q4/3Q4/8/8/4K3 w - - 0 1")
	info := runToDepth(t, white, 1)
	if info.Score != board.CentiPawn(900) {
		t.Errorf("white to move: score = %v, want cp 900", info.Score)
	}
	if len(info.PV) == 0 || info.PV[0].To() != board.D5 {
		t.Errorf("white to move: expected first PV move to capture on d5, got %v", info.PV)
	}

	black := mustParse(t, tb, "4k3/8/8/3q4/3Q4/8/8/4K3 b - - 0 1")
	info = runToDepth(t, black, 1)
	if info.Score != board.CentiPawn(900) {
		t.Errorf("black to move: score = %v, want cp 900", info.Score)
	}
	if len(info.PV) == 0 || info.PV[0].To() != board.D4 {
		t.Errorf("black to move: expected first PV move to capture on d4, got %v", info.PV)
	}
}

func TestMateInTwo(t *testing.T) {
	tb := tables.New()
	p := mustParse(t, tb, "3r2k1/5ppp/8/8/8/8/4R3/K3R3 w - - 0 1")
	info := runToDepth(t, p, 4)
	if info.Score != board.MateIn(3) {
		t.Errorf("score = %v, want mate in 3 plies (%v)", info.Score, board.MateIn(3))
	}
}

func TestThreefoldRepetitionDrawScore(t *testing.T) {
	tb := tables.New()
	p := mustParse(t, tb, "6kq/6p1/6Q1/8/8/8/1q6/6K1 w - - 0 1")
	seq := []board.Move{
		board.NewMove(board.G6, board.E8, board.Regular),
		board.NewMove(board.G8, board.H7, board.Regular),
		board.NewMove(board.E8, board.H5, board.Regular),
		board.NewMove(board.H7, board.G8, board.Regular),
		board.NewMove(board.H5, board.E8, board.Regular),
		board.NewMove(board.G8, board.H7, board.Regular),
	}
	for _, mv := range seq {
		p.MakeMove(mv)
	}

	info := runToDepth(t, p, 4)
	if info.Score != board.CentiPawn(0) {
		t.Errorf("score = %v, want cp 0 (threefold repetition)", info.Score)
	}
}

func TestFiftyMoveDraw(t *testing.T) {
	tb := tables.New()
	p := mustParse(t, tb, "6kq/8/8/8/5K2/8/8/8 b - - 98 4")
	info := runToDepth(t, p, 2)
	if info.Score != board.CentiPawn(0) {
		t.Errorf("score = %v, want cp 0 (fifty-move draw)", info.Score)
	}
}

func TestFiftyMoveDoesNotMaskCheckmate(t *testing.T) {
	tb := tables.New()
	p := mustParse(t, tb, "7q/5kp1/8/8/8/8/1q6/6K1 w - - 98 2")
	info := runToDepth(t, p, 4)
	if info.Score != board.MatedIn(2) {
		t.Errorf("score = %v, want mated in 2 plies (%v)", info.Score, board.MatedIn(2))
	}
}

func TestStopFlagHaltsSearch(t *testing.T) {
	tb := tables.New()
	p := mustParse(t, tb, position.StartposFEN)
	table := tt.WithHashSizeMB(1)
	s := New(p, eval.Material{}, table).WithDepth(maxSearchDepth)

	var stop atomic.Bool
	stop.Store(true)
	s.Start(&stop)
}
