// Package movegen implements legal chess move generation: danger squares,
// checkers, pin rays, and per-piece destination restriction, following the
// algorithm of the original Kingly engine's move generator rather than the
// teacher's copy-make-and-test approach, so that danger squares / checkers /
// pin rays are inspectable, testable values in their own right.
package movegen

import (
	"kingly/board"
	"kingly/position"
)

// state is the transient generation context for one call, mirroring
// MoveGenState in the original engine's move_gen module.
type state struct {
	pos         *position.Position
	color       board.Color
	kingSq      board.Square
	occupied    board.Bitboard
	dangerSqs   board.Bitboard
	checkers    board.Bitboard
	pinRays     board.Bitboard
	blockingSqs board.Bitboard
	onlyCaptures bool
}

// Generate fills l with every legal move for the position's side to move.
// When onlyCaptures is true, only captures (and capture-promotions) are
// produced — used by quiescence search.
func Generate(p *position.Position, l *board.MoveList, onlyCaptures bool) {
	l.Len = 0
	t := p.Tables()
	color := p.ToMove()
	st := &state{
		pos:          p,
		color:        color,
		kingSq:       p.King(color),
		occupied:     p.Occupancy(),
		onlyCaptures: onlyCaptures,
	}
	st.setDangerSquares()
	checkCount := st.setCheckersAndPins()

	if checkCount >= 2 {
		st.genKingMoves(l)
		return
	}

	if checkCount == 1 {
		checker := st.checkers.LSB()
		st.blockingSqs = t.RayTo[st.kingSq][checker] | checker.Bitboard()
		if onlyCaptures {
			st.blockingSqs &= checker.Bitboard()
		}
	} else {
		st.blockingSqs = ^board.Bitboard(0)
	}

	st.genPawnMoves(l)
	st.genPieceMoves(board.Knight, l)
	st.genPieceMoves(board.Bishop, l)
	st.genPieceMoves(board.Rook, l)
	st.genPieceMoves(board.Queen, l)
	st.genKingMoves(l)

	if checkCount == 0 && !onlyCaptures {
		st.genCastling(l)
	}
}

// InCheck reports whether the side to move is in check, without generating
// moves. Equivalent to but cheaper than computing danger_sqs fully.
func InCheck(p *position.Position) bool { return p.IsInCheck() }

// setDangerSquares computes the union of opponent attacks against an
// occupancy with our own king removed, so the king cannot "hide" behind
// itself when retreating along a checking ray.
func (st *state) setDangerSquares() {
	t := st.pos.Tables()
	opp := st.color.Other()
	occWithoutKing := st.occupied &^ st.kingSq.Bitboard()

	var danger board.Bitboard
	danger |= genPawnAttackSet(st.pos.PieceBitboard(board.MakePiece(board.Pawn, opp)), opp)
	for sq := range st.pos.PieceBitboard(board.MakePiece(board.Knight, opp)).Iter() {
		danger |= t.KnightAttacks[sq]
	}
	for sq := range st.pos.PieceBitboard(board.MakePiece(board.Bishop, opp)).Iter() {
		danger |= t.BishopAttacks(sq, occWithoutKing)
	}
	for sq := range st.pos.PieceBitboard(board.MakePiece(board.Rook, opp)).Iter() {
		danger |= t.RookAttacks(sq, occWithoutKing)
	}
	for sq := range st.pos.PieceBitboard(board.MakePiece(board.Queen, opp)).Iter() {
		danger |= t.QueenAttacks(sq, occWithoutKing)
	}
	for sq := range st.pos.PieceBitboard(board.MakePiece(board.King, opp)).Iter() {
		danger |= t.KingAttacks[sq]
	}
	st.dangerSqs = danger
}

func genPawnAttackSet(pawns board.Bitboard, c board.Color) board.Bitboard {
	if c == board.White {
		return pawns.ShiftNorthEast() | pawns.ShiftNorthWest()
	}
	return pawns.ShiftSouthEast() | pawns.ShiftSouthWest()
}

// setCheckersAndPins computes st.checkers and st.pinRays, returning the
// number of checking pieces (0, 1 or 2).
func (st *state) setCheckersAndPins() int {
	t := st.pos.Tables()
	opp := st.color.Other()
	king := st.kingSq

	var checkers board.Bitboard
	checkers |= t.PawnAttacks[st.color][king] & st.pos.PieceBitboard(board.MakePiece(board.Pawn, opp))
	checkers |= t.KnightAttacks[king] & st.pos.PieceBitboard(board.MakePiece(board.Knight, opp))

	oppBishops := st.pos.PieceBitboard(board.MakePiece(board.Bishop, opp)) | st.pos.PieceBitboard(board.MakePiece(board.Queen, opp))
	checkers |= t.BishopAttacks(king, st.occupied) & oppBishops
	oppRooks := st.pos.PieceBitboard(board.MakePiece(board.Rook, opp)) | st.pos.PieceBitboard(board.MakePiece(board.Queen, opp))
	checkers |= t.RookAttacks(king, st.occupied) & oppRooks

	st.checkers = checkers

	// Pin rays: cast from the king ignoring our own pieces (i.e. against
	// opponent occupancy only); any opponent slider seen this way whose ray
	// back to the king contains exactly one of our own pieces pins that piece.
	var pinRays board.Bitboard
	oppOnly := st.occupied &^ st.pos.ColorOccupancy(st.color)
	potentialPinners := t.BishopAttacks(king, oppOnly) & oppBishops
	potentialPinners |= t.RookAttacks(king, oppOnly) & oppRooks
	for sq := range potentialPinners.Iter() {
		between := t.RayTo[king][sq] &^ sq.Bitboard()
		if (between & st.pos.ColorOccupancy(st.color)).Popcount() == 1 {
			pinRays |= t.RayTo[king][sq]
		}
	}
	st.pinRays = pinRays

	return checkers.Popcount()
}

// restrictedByPin reports whether a pin rules out moving the piece on `from`
// to `to`: true when the piece is pinned and `to` leaves the line through it
// and the king.
func (st *state) restrictedByPin(from, to board.Square) bool {
	if st.pinRays&from.Bitboard() == 0 {
		return false
	}
	line := st.pos.Tables().LineThrough[from][st.kingSq]
	return !line.Has(to)
}

func (st *state) genPieceMoves(kind board.PieceKind, l *board.MoveList) {
	t := st.pos.Tables()
	ours := st.pos.PieceBitboard(board.MakePiece(kind, st.color))
	allies := st.pos.ColorOccupancy(st.color)

	for from := range ours.Iter() {
		dests := t.Attacks(kind, from, st.occupied) &^ allies & st.blockingSqs
		for to := range dests.Iter() {
			if st.restrictedByPin(from, to) {
				continue
			}
			if st.onlyCaptures && st.pos.PieceAt(to) == board.NoPiece {
				continue
			}
			l.Push(board.NewMove(from, to, board.Regular))
		}
	}
}

func (st *state) genKingMoves(l *board.MoveList) {
	t := st.pos.Tables()
	allies := st.pos.ColorOccupancy(st.color)
	dests := t.KingAttacks[st.kingSq] &^ allies &^ st.dangerSqs
	for to := range dests.Iter() {
		if st.onlyCaptures && st.pos.PieceAt(to) == board.NoPiece {
			continue
		}
		l.Push(board.NewMove(st.kingSq, to, board.Regular))
	}
}

func (st *state) genCastling(l *board.MoveList) {
	rights := st.pos.Castling()
	occ := st.occupied
	if st.color == board.White {
		if rights.Has(board.WhiteKingside) && occ&whiteKingsideEmpty == 0 && st.dangerSqs&whiteKingsidePass == 0 {
			l.Push(board.NewMove(board.E1, board.G1, board.Castling))
		}
		if rights.Has(board.WhiteQueenside) && occ&whiteQueensideEmpty == 0 && st.dangerSqs&whiteQueensidePass == 0 {
			l.Push(board.NewMove(board.E1, board.C1, board.Castling))
		}
	} else {
		if rights.Has(board.BlackKingside) && occ&blackKingsideEmpty == 0 && st.dangerSqs&blackKingsidePass == 0 {
			l.Push(board.NewMove(board.E8, board.G8, board.Castling))
		}
		if rights.Has(board.BlackQueenside) && occ&blackQueensideEmpty == 0 && st.dangerSqs&blackQueensidePass == 0 {
			l.Push(board.NewMove(board.E8, board.C8, board.Castling))
		}
	}
}

// Squares that must be empty / not attacked for each castling direction.
// The queenside "empty" mask includes the b-file square (the rook needs it
// clear even though the king never passes over it); the "pass" mask covers
// only the squares the king actually traverses plus its origin.
var (
	whiteKingsideEmpty  = board.F1.Bitboard() | board.G1.Bitboard()
	whiteKingsidePass   = board.E1.Bitboard() | board.F1.Bitboard() | board.G1.Bitboard()
	whiteQueensideEmpty = board.B1.Bitboard() | board.C1.Bitboard() | board.D1.Bitboard()
	whiteQueensidePass  = board.E1.Bitboard() | board.D1.Bitboard() | board.C1.Bitboard()
	blackKingsideEmpty  = board.F8.Bitboard() | board.G8.Bitboard()
	blackKingsidePass   = board.E8.Bitboard() | board.F8.Bitboard() | board.G8.Bitboard()
	blackQueensideEmpty = board.B8.Bitboard() | board.C8.Bitboard() | board.D8.Bitboard()
	blackQueensidePass  = board.E8.Bitboard() | board.D8.Bitboard() | board.C8.Bitboard()
)
