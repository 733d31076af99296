package movegen

import "kingly/position"
import "kingly/board"

// Perft bulk-counts the number of leaf nodes reachable from p at exactly
// depth plies. At depth==1 it returns the length of the generated move list
// directly instead of recursing one level deeper (bulk-counting).
func Perft(p *position.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	var l board.MoveList
	Generate(p, &l, false)

	if depth == 1 {
		return uint64(l.Len)
	}

	var nodes uint64
	for i := 0; i < l.Len; i++ {
		p.MakeMove(l.Moves[i])
		nodes += Perft(p, depth-1)
		p.UnmakeMove()
	}
	return nodes
}

// Divide returns the perft(depth-1) count reached by each of the root's
// legal moves, for use in debugging perft discrepancies against a reference
// engine.
func Divide(p *position.Position, depth int) map[board.Move]uint64 {
	result := make(map[board.Move]uint64)
	var l board.MoveList
	Generate(p, &l, false)

	for i := 0; i < l.Len; i++ {
		p.MakeMove(l.Moves[i])
		if depth <= 1 {
			result[l.Moves[i]] = 1
		} else {
			result[l.Moves[i]] = Perft(p, depth-1)
		}
		p.UnmakeMove()
	}
	return result
}
