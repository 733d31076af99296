package movegen

import "kingly/board"

// genPawnMoves appends pawn pushes, captures, promotions and en-passant
// captures, subject to pin restriction and the blocking-squares mask.
func (st *state) genPawnMoves(l *board.MoveList) {
	t := st.pos.Tables()
	pawns := st.pos.PieceBitboard(board.MakePiece(board.Pawn, st.color))
	enemies := st.pos.ColorOccupancy(st.color.Other())

	var forward board.Direction
	var startRank, promoRank int
	if st.color == board.White {
		forward, startRank, promoRank = board.North, 1, 7
	} else {
		forward, startRank, promoRank = board.South, 6, 0
	}

	for from := range pawns.Iter() {
		if !st.onlyCaptures {
			if to, ok := from.Step(forward); ok && st.pos.PieceAt(to) == board.NoPiece {
				if st.blockingSqs.Has(to) && !st.restrictedByPin(from, to) {
					st.pushPawnMove(l, from, to, promoRank)
				}
				if from.Rank() == startRank {
					if to2, ok2 := to.Step(forward); ok2 && st.pos.PieceAt(to2) == board.NoPiece &&
						st.blockingSqs.Has(to2) && !st.restrictedByPin(from, to2) {
						l.Push(board.NewMove(from, to2, board.Regular))
					}
				}
			}
		}

		captures := t.PawnAttacks[st.color][from] & enemies & st.blockingSqs
		for to := range captures.Iter() {
			if st.restrictedByPin(from, to) {
				continue
			}
			st.pushPawnMove(l, from, to, promoRank)
		}

		ep := st.pos.EnPassant()
		if ep != board.NoSquare && t.PawnAttacks[st.color][from].Has(ep) {
			if st.legalEnPassant(from, ep) {
				l.Push(board.NewMove(from, ep, board.EnPassant))
			}
		}
	}
}

func (st *state) pushPawnMove(l *board.MoveList, from, to board.Square, promoRank int) {
	if to.Rank() == promoRank {
		l.Push(board.NewPromotionMove(from, to, board.PromoKnight))
		l.Push(board.NewPromotionMove(from, to, board.PromoBishop))
		l.Push(board.NewPromotionMove(from, to, board.PromoRook))
		l.Push(board.NewPromotionMove(from, to, board.PromoQueen))
		return
	}
	l.Push(board.NewMove(from, to, board.Regular))
}

// legalEnPassant handles the two legality checks specific to en-passant:
// ordinary pin restriction along the diagonal, plus the horizontal
// discovered-check case where removing both the capturing and captured pawn
// from the rank exposes the king to a rook/queen that neither pawn was
// blocking before.
func (st *state) legalEnPassant(from, to board.Square) bool {
	if st.pinRays&from.Bitboard() != 0 {
		line := st.pos.Tables().LineThrough[from][st.kingSq]
		if !line.Has(to) {
			return false
		}
	}

	var capturedSq board.Square
	if st.color == board.White {
		capturedSq = to - 8
	} else {
		capturedSq = to + 8
	}

	// When in check, an en-passant capture only resolves it by removing the
	// checking pawn itself; it can never interpose (the destination square is
	// empty by definition, not on the blocking ray for a non-aligned check).
	if st.checkers != 0 && st.checkers&capturedSq.Bitboard() == 0 {
		return false
	}

	if st.kingSq.Rank() != from.Rank() {
		return true
	}

	t := st.pos.Tables()
	occWithout := st.occupied &^ from.Bitboard() &^ capturedSq.Bitboard() | to.Bitboard()
	opp := st.color.Other()
	oppRooks := st.pos.PieceBitboard(board.MakePiece(board.Rook, opp)) | st.pos.PieceBitboard(board.MakePiece(board.Queen, opp))
	return t.RookAttacks(st.kingSq, occWithout)&oppRooks == 0
}
