package position

import (
	"testing"

	"kingly/board"
	"kingly/tables"
)

func mustParse(t *testing.T, tb *tables.Tables, fen string) *Position {
	t.Helper()
	p, err := ParseFEN(tb, fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return p
}

func TestFENRoundTrip(t *testing.T) {
	tb := tables.New()
	cases := []string{
		StartposFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"6kq/6p1/6Q1/8/8/8/1q6/6K1 w - - 0 1",
	}
	for _, fen := range cases {
		p := mustParse(t, tb, fen)
		if got := p.FEN(); got != fen {
			t.Errorf("FEN round trip: got %q, want %q", got, fen)
		}
	}
}

func TestMakeUnmakeRestoresState(t *testing.T) {
	tb := tables.New()
	p := mustParse(t, tb, StartposFEN)

	before := p.FEN()
	beforeZobrist := p.zobrist

	mv := board.NewMove(board.E2, board.E4, board.Regular)
	p.MakeMove(mv)
	if p.FEN() == before {
		t.Fatalf("position did not change after MakeMove")
	}
	p.UnmakeMove()

	if got := p.FEN(); got != before {
		t.Errorf("UnmakeMove: got %q, want %q", got, before)
	}
	if p.zobrist != beforeZobrist {
		t.Errorf("UnmakeMove: zobrist = %x, want %x", p.zobrist, beforeZobrist)
	}
}

func TestZobristMatchesRecompute(t *testing.T) {
	tb := tables.New()
	p := mustParse(t, tb, StartposFEN)

	moves := []board.Move{
		board.NewMove(board.E2, board.E4, board.Regular),
		board.NewMove(board.E7, board.E5, board.Regular),
		board.NewMove(board.G1, board.F3, board.Regular),
	}
	for _, mv := range moves {
		p.MakeMove(mv)
		if got, want := p.zobrist, p.recomputeZobrist(); got != want {
			t.Fatalf("after %s: incremental zobrist %x != recomputed %x", mv, got, want)
		}
	}
}

func TestEnPassantCaptureRestoresCapturedPawn(t *testing.T) {
	tb := tables.New()
	p := mustParse(t, tb, "rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")
	before := p.FEN()

	mv := board.NewMove(board.E5, board.D6, board.EnPassant)
	p.MakeMove(mv)
	if p.PieceAt(board.D5) != board.NoPiece {
		t.Errorf("captured pawn still present after en passant")
	}
	p.UnmakeMove()
	if got := p.FEN(); got != before {
		t.Errorf("UnmakeMove after en passant: got %q, want %q", got, before)
	}
}

func TestCastlingRightsClearedOnKingMove(t *testing.T) {
	tb := tables.New()
	p := mustParse(t, tb, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	p.MakeMove(board.NewMove(board.E1, board.E2, board.Regular))
	if p.Castling().Has(board.WhiteKingside) || p.Castling().Has(board.WhiteQueenside) {
		t.Errorf("white castling rights survived a king move")
	}
}

func TestIsDrawFiftyMove(t *testing.T) {
	tb := tables.New()
	p := mustParse(t, tb, "6kq/8/8/8/5K2/8/8/8 b - - 98 4")
	p.MakeMove(board.NewMove(board.H8, board.H7, board.Regular))
	p.MakeMove(board.NewMove(board.F4, board.F3, board.Regular))
	if !p.IsDraw() {
		t.Errorf("expected fifty-move draw after ply clock reaches 100")
	}
}

func TestThreefoldRepetition(t *testing.T) {
	tb := tables.New()
	p := mustParse(t, tb, "6kq/6p1/6Q1/8/8/8/1q6/6K1 w - - 0 1")
	seq := []board.Move{
		board.NewMove(board.G6, board.E8, board.Regular),
		board.NewMove(board.G8, board.H7, board.Regular),
		board.NewMove(board.E8, board.H5, board.Regular),
		board.NewMove(board.H7, board.G8, board.Regular),
		board.NewMove(board.H5, board.E8, board.Regular),
		board.NewMove(board.G8, board.H7, board.Regular),
		board.NewMove(board.E8, board.H5, board.Regular),
		board.NewMove(board.H7, board.G8, board.Regular),
		board.NewMove(board.H5, board.E8, board.Regular),
	}
	for _, mv := range seq {
		p.MakeMove(mv)
	}
	if !p.IsDraw() {
		t.Errorf("expected threefold repetition draw")
	}
}
