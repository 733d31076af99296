package movegen

import (
	"testing"

	"kingly/board"
	"kingly/position"
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

func TestPerftConformance(t *testing.T) {
	tb := tables.New()
	cases := []struct {
		name  string
		fen   string
		depth int
		want  uint64
	}{
		{"startpos", position.StartposFEN, 5, 4865609},
		{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 4, 4085603},
		{"endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 6, 11030083},
		{"mirrored asymmetric", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 5, 15833292},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if testing.Short() && c.depth >= 5 {
				t.Skip("skipping deep perft in short mode")
			}
			p := mustParse(t, tb, c.fen)
			if got := Perft(p, c.depth); got != c.want {
				t.Errorf("Perft(%d) = %d, want %d", c.depth, got, c.want)
			}
		})
	}
}

func TestEnPassantDiscoveredCheckIsIllegal(t *testing.T) {
	tb := tables.New()
	p := mustParse(t, tb, "rnbq1bnr/pppp1p2/P5p1/8/N1RPpk1p/1P5P/1BP1PPP1/3QKBNR b K d3 0 12")

	var l board.MoveList
	Generate(p, &l, false)

	target := board.NewMove(board.E4, board.D3, board.EnPassant)
	if l.Contains(target) {
		t.Errorf("expected e4xd3 e.p. to be illegal (horizontal discovered check)")
	}
}

func TestCastlingLegality(t *testing.T) {
	tb := tables.New()

	p := mustParse(t, tb, "rnbqkbnr/7p/ppppppp1/1B6/3PPB2/2NQ1N2/PPP2PPP/R3K2R w KQkq - 0 8")
	var l board.MoveList
	Generate(p, &l, false)
	if !l.Contains(board.NewMove(board.E1, board.G1, board.Castling)) {
		t.Errorf("expected O-O to be legal for White")
	}
	if !l.Contains(board.NewMove(board.E1, board.C1, board.Castling)) {
		t.Errorf("expected O-O-O to be legal for White")
	}

	p2 := mustParse(t, tb, "r3k2r/ppp1bppp/2nq1N2/3p4/3PP3/2P5/PP2BPPP/RNBQK2R b KQkq - 0 8")
	var l2 board.MoveList
	Generate(p2, &l2, false)
	if l2.Contains(board.NewMove(board.E8, board.G8, board.Castling)) {
		t.Errorf("expected O-O to be illegal while Black is in check")
	}
	if l2.Contains(board.NewMove(board.E8, board.C8, board.Castling)) {
		t.Errorf("expected O-O-O to be illegal while Black is in check")
	}
}

func TestDangerSquaresExcludeKingSteps(t *testing.T) {
	tb := tables.New()
	p := mustParse(t, tb, position.StartposFEN)
	var l board.MoveList
	Generate(p, &l, false)
	for i := 0; i < l.Len; i++ {
		mv := l.Moves[i]
		if p.PieceAt(mv.From()).Kind() != board.King {
			continue
		}
		st := &state{pos: p, color: p.ToMove(), kingSq: p.King(p.ToMove()), occupied: p.Occupancy()}
		st.setDangerSquares()
		if st.dangerSqs.Has(mv.To()) {
			t.Errorf("king move %s lands on a danger square", mv)
		}
	}
}
