package eval

import (
	"testing"

	"kingly/position"
	"kingly/tables"
)

func TestMaterialStartposIsBalanced(t *testing.T) {
	tb := tables.New()
	p, err := position.ParseFEN(tb, position.StartposFEN)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if got := (Material{}).Eval(p); got != 0 {
		t.Errorf("Eval(startpos) = %v, want 0", got)
	}
}

func TestMaterialFavorsExtraQueen(t *testing.T) {
	tb := tables.New()
	p, err := position.ParseFEN(tb, "4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	got := (Material{}).Eval(p)
	if got != QueenValue {
		t.Errorf("Eval = %v, want %v", got, QueenValue)
	}
}

func TestMaterialIsSideToMoveRelative(t *testing.T) {
	tb := tables.New()
	white, err := position.ParseFEN(tb, "4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	black, err := position.ParseFEN(tb, "4k3/8/8/8/8/8/8/3QK3 b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if (Material{}).Eval(white) != -(Material{}).Eval(black) {
		t.Errorf("expected evaluation to flip sign with side to move")
	}
}
