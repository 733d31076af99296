// Package position implements the chess position representation: piece
// placement, side to move, castling rights, en-passant target, ply clock,
// move number, an incrementally maintained Zobrist hash, and a make/unmake
// history stack supporting repetition detection.
package position

import (
	"kingly/board"
	"kingly/tables"
)

// unmake is the record pushed onto the history stack by MakeMove and popped
// by UnmakeMove, letting the latter invert the former bit-for-bit.
type unmake struct {
	move           board.Move
	captured       board.Piece
	capturedSquare board.Square
	priorCastling  board.CastlingRights
	priorEP        board.Square
	priorPlyClock  int
}

// Position is a mutable chessboard state. Clone (via Clone) before handing it
// to a worker goroutine; a single Position must not be mutated concurrently.
type Position struct {
	tables *tables.Tables

	bitboards [12]board.Bitboard
	occupancy [2]board.Bitboard
	board     [64]board.Piece

	toMove     board.Color
	castling   board.CastlingRights
	epSquare   board.Square
	plyClock   int
	moveNumber int

	zobrist uint64

	history     []unmake
	repetitions map[uint64]int
}

// New returns an empty Position bound to the given Tables. Use ParseFEN or
// SetFEN to populate it.
func New(t *tables.Tables) *Position {
	return &Position{tables: t, repetitions: make(map[uint64]int)}
}

// Tables returns the Tables this position was built with.
func (p *Position) Tables() *tables.Tables { return p.tables }

// ToMove returns the side to move.
func (p *Position) ToMove() board.Color { return p.toMove }

// Castling returns the current castling rights.
func (p *Position) Castling() board.CastlingRights { return p.castling }

// EnPassant returns the en-passant target square, or board.NoSquare.
func (p *Position) EnPassant() board.Square { return p.epSquare }

// PlyClock returns the half-move clock since the last pawn move or capture.
func (p *Position) PlyClock() int { return p.plyClock }

// MoveNumber returns the full-move counter.
func (p *Position) MoveNumber() int { return p.moveNumber }

// Zobrist returns the current incrementally-maintained hash.
func (p *Position) Zobrist() uint64 { return p.zobrist }

// HistoryLen returns the number of moves applied since construction.
func (p *Position) HistoryLen() int { return len(p.history) }

// Occupancy returns the combined occupancy of both colors.
func (p *Position) Occupancy() board.Bitboard { return p.occupancy[board.White] | p.occupancy[board.Black] }

// ColorOccupancy returns the occupancy bitboard of a single color.
func (p *Position) ColorOccupancy(c board.Color) board.Bitboard { return p.occupancy[c] }

// PieceBitboard returns the bitboard for a given colored piece.
func (p *Position) PieceBitboard(pc board.Piece) board.Bitboard { return p.bitboards[pc] }

// KindBitboard returns the union of both colors' bitboards for a piece kind.
func (p *Position) KindBitboard(k board.PieceKind) board.Bitboard {
	return p.bitboards[board.MakePiece(k, board.White)] | p.bitboards[board.MakePiece(k, board.Black)]
}

// PieceAt returns the piece standing on sq, or board.NoPiece.
func (p *Position) PieceAt(sq board.Square) board.Piece { return p.board[sq] }

// King returns the square of the king of the given color.
func (p *Position) King(c board.Color) board.Square {
	return p.bitboards[board.MakePiece(board.King, c)].LSB()
}

// Clone returns an independent deep copy: its own history and repetitions
// map, safe to hand to a separate worker goroutine.
func (p *Position) Clone() *Position {
	c := *p
	c.history = append([]unmake(nil), p.history...)
	c.repetitions = make(map[uint64]int, len(p.repetitions))
	for k, v := range p.repetitions {
		c.repetitions[k] = v
	}
	return &c
}

func (p *Position) setSq(pc board.Piece, sq board.Square) {
	p.bitboards[pc] = p.bitboards[pc].Set(sq)
	p.occupancy[pc.Color()] = p.occupancy[pc.Color()].Set(sq)
	p.board[sq] = pc
	p.zobrist ^= p.tables.Zobrist.Piece[pc][sq]
}

func (p *Position) unsetSq(pc board.Piece, sq board.Square) {
	p.bitboards[pc] = p.bitboards[pc].Clear(sq)
	p.occupancy[pc.Color()] = p.occupancy[pc.Color()].Clear(sq)
	p.board[sq] = board.NoPiece
	p.zobrist ^= p.tables.Zobrist.Piece[pc][sq]
}

func (p *Position) toggleEP() {
	if p.epSquare != board.NoSquare {
		p.zobrist ^= p.tables.Zobrist.EnPassantFile[p.epSquare.File()]
	}
}

func (p *Position) toggleCastling() {
	p.zobrist ^= p.tables.Zobrist.Castling[p.castling]
}

// IsInCheck reports whether the side to move is currently attacked.
func (p *Position) IsInCheck() bool {
	return p.attacksTo(p.King(p.toMove), p.toMove.Other()) != 0
}

// attacksTo returns the bitboard of pieces of color `by` attacking sq.
func (p *Position) attacksTo(sq board.Square, by board.Color) board.Bitboard {
	occ := p.Occupancy()
	var attackers board.Bitboard
	attackers |= p.tables.PawnAttacks[by.Other()][sq] & p.bitboards[board.MakePiece(board.Pawn, by)]
	attackers |= p.tables.KnightAttacks[sq] & p.bitboards[board.MakePiece(board.Knight, by)]
	attackers |= p.tables.KingAttacks[sq] & p.bitboards[board.MakePiece(board.King, by)]
	bishops := p.bitboards[board.MakePiece(board.Bishop, by)] | p.bitboards[board.MakePiece(board.Queen, by)]
	attackers |= p.tables.BishopAttacks(sq, occ) & bishops
	rooks := p.bitboards[board.MakePiece(board.Rook, by)] | p.bitboards[board.MakePiece(board.Queen, by)]
	attackers |= p.tables.RookAttacks(sq, occ) & rooks
	return attackers
}

// MakeMove applies mv, which must be at least pseudo-legal for the current
// position. It pushes an unmake record, toggles the incremental Zobrist hash,
// and updates the repetition map.
func (p *Position) MakeMove(mv board.Move) {
	if mv.IsNull() {
		p.makeNullMove()
		return
	}

	from, to := mv.From(), mv.To()
	moved := p.board[from]

	rec := unmake{
		move:          mv,
		captured:      board.NoPiece,
		priorCastling: p.castling,
		priorEP:       p.epSquare,
		priorPlyClock: p.plyClock,
	}

	p.toggleEP()
	p.epSquare = board.NoSquare
	p.toggleCastling()

	p.plyClock++

	switch mv.Kind() {
	case board.Regular:
		if cap := p.board[to]; cap != board.NoPiece {
			rec.captured, rec.capturedSquare = cap, to
			p.unsetSq(cap, to)
			p.plyClock = 0
		}
		p.unsetSq(moved, from)
		p.setSq(moved, to)

		if moved.Kind() == board.Pawn {
			p.plyClock = 0
			if abs(int(to)-int(from)) == 16 {
				p.epSquare = board.Square((int(from) + int(to)) / 2)
			}
		}
		p.updateCastlingRights(moved, from, to)

	case board.Castling:
		p.unsetSq(moved, from)
		p.setSq(moved, to)
		rookFrom, rookTo := castlingRookSquares(to)
		rook := p.board[rookFrom]
		p.unsetSq(rook, rookFrom)
		p.setSq(rook, rookTo)
		p.clearCastlingRights(moved.Color())

	case board.Promotion:
		if cap := p.board[to]; cap != board.NoPiece {
			rec.captured, rec.capturedSquare = cap, to
			p.unsetSq(cap, to)
		}
		p.unsetSq(moved, from)
		p.setSq(board.MakePiece(mv.Promotion().Kind(), moved.Color()), to)
		p.plyClock = 0
		p.updateCastlingRights(moved, from, to)

	case board.EnPassant:
		p.unsetSq(moved, from)
		p.setSq(moved, to)
		var capSq board.Square
		if moved.Color() == board.White {
			capSq = to - 8
		} else {
			capSq = to + 8
		}
		rec.captured, rec.capturedSquare = p.board[capSq], capSq
		p.unsetSq(rec.captured, capSq)
		p.plyClock = 0
	}

	p.toggleEP()
	p.toggleCastling()

	if p.toMove == board.Black {
		p.moveNumber++
	}
	p.toMove = p.toMove.Other()
	p.zobrist ^= p.tables.Zobrist.Color

	p.repetitions[p.zobrist]++
	p.history = append(p.history, rec)
}

// UnmakeMove reverts the last move applied by MakeMove, restoring every
// observable field and the Zobrist hash bit-for-bit.
func (p *Position) UnmakeMove() {
	n := len(p.history)
	rec := p.history[n-1]
	p.history = p.history[:n-1]

	if count := p.repetitions[p.zobrist]; count <= 1 {
		delete(p.repetitions, p.zobrist)
	} else {
		p.repetitions[p.zobrist]--
	}

	if rec.move.IsNull() {
		p.unmakeNullMove(rec)
		return
	}

	p.zobrist ^= p.tables.Zobrist.Color
	p.toMove = p.toMove.Other()
	if p.toMove == board.Black {
		p.moveNumber--
	}

	p.toggleEP()
	p.toggleCastling()

	from, to := rec.move.From(), rec.move.To()

	switch rec.move.Kind() {
	case board.Regular:
		moved := p.board[to]
		p.unsetSq(moved, to)
		p.setSq(moved, from)
		if rec.captured != board.NoPiece {
			p.setSq(rec.captured, rec.capturedSquare)
		}

	case board.Castling:
		moved := p.board[to]
		p.unsetSq(moved, to)
		p.setSq(moved, from)
		rookFrom, rookTo := castlingRookSquares(to)
		rook := p.board[rookTo]
		p.unsetSq(rook, rookTo)
		p.setSq(rook, rookFrom)

	case board.Promotion:
		promoted := p.board[to]
		p.unsetSq(promoted, to)
		p.setSq(board.MakePiece(board.Pawn, promoted.Color()), from)
		if rec.captured != board.NoPiece {
			p.setSq(rec.captured, rec.capturedSquare)
		}

	case board.EnPassant:
		moved := p.board[to]
		p.unsetSq(moved, to)
		p.setSq(moved, from)
		p.setSq(rec.captured, rec.capturedSquare)
	}

	p.castling = rec.priorCastling
	p.epSquare = rec.priorEP
	p.plyClock = rec.priorPlyClock

	p.toggleEP()
	p.toggleCastling()
}

// MakeNullMove and UnmakeNullMove expose the null-move pruning primitive
// directly; callers must ensure the side to move is not in check.
func (p *Position) MakeNullMove()   { p.makeNullMove() }
func (p *Position) UnmakeNullMove() { p.UnmakeMove() }

func (p *Position) makeNullMove() {
	rec := unmake{
		move:          board.NullMove,
		captured:      board.NoPiece,
		priorCastling: p.castling,
		priorEP:       p.epSquare,
		priorPlyClock: p.plyClock,
	}
	p.toggleEP()
	p.epSquare = board.NoSquare
	p.toggleEP()

	p.plyClock++
	if p.toMove == board.Black {
		p.moveNumber++
	}
	p.toMove = p.toMove.Other()
	p.zobrist ^= p.tables.Zobrist.Color
	p.repetitions[p.zobrist]++
	p.history = append(p.history, rec)
}

func (p *Position) unmakeNullMove(rec unmake) {
	p.zobrist ^= p.tables.Zobrist.Color
	p.toMove = p.toMove.Other()
	if p.toMove == board.Black {
		p.moveNumber--
	}

	p.toggleEP()
	p.epSquare = rec.priorEP
	p.toggleEP()
	p.plyClock = rec.priorPlyClock
}

func (p *Position) updateCastlingRights(moved board.Piece, from, to board.Square) {
	switch moved.Kind() {
	case board.King:
		p.clearCastlingRights(moved.Color())
	case board.Rook:
		clearRookRight(&p.castling, from)
	}
	// A rook captured on its home square also forfeits that side's right.
	clearRookRight(&p.castling, to)
}

func (p *Position) clearCastlingRights(c board.Color) {
	if c == board.White {
		p.castling &^= board.WhiteKingside | board.WhiteQueenside
	} else {
		p.castling &^= board.BlackKingside | board.BlackQueenside
	}
}

func clearRookRight(c *board.CastlingRights, sq board.Square) {
	switch sq {
	case board.A1:
		*c &^= board.WhiteQueenside
	case board.H1:
		*c &^= board.WhiteKingside
	case board.A8:
		*c &^= board.BlackQueenside
	case board.H8:
		*c &^= board.BlackKingside
	}
}

func castlingRookSquares(kingTo board.Square) (from, to board.Square) {
	switch kingTo {
	case board.G1:
		return board.H1, board.F1
	case board.C1:
		return board.A1, board.D1
	case board.G8:
		return board.H8, board.F8
	case board.C8:
		return board.A8, board.D8
	}
	panic("position: castling move to non-castling destination")
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// IsDraw reports whether the position is drawn by the threefold-repetition
// or fifty-move rule.
func (p *Position) IsDraw() bool {
	return p.repetitions[p.zobrist] >= 3 || p.plyClock >= 100
}

// NullMoveHeuristic reports whether a null move is safe to try: false when
// the side to move has only its king and pawns (zugzwang risk).
func (p *Position) NullMoveHeuristic() bool {
	c := p.toMove
	nonPawnMaterial := p.occupancy[c] &^ (p.bitboards[board.MakePiece(board.Pawn, c)] | p.bitboards[board.MakePiece(board.King, c)])
	return nonPawnMaterial != 0
}

// recomputeZobrist derives the hash from scratch; SetFEN uses it to seed the
// hash, and tests use it to cross-check the incrementally maintained value.
func (p *Position) recomputeZobrist() uint64 {
	var z uint64
	for pc := board.WPawn; pc <= board.BKing; pc++ {
		bb := p.bitboards[pc]
		for sq := range bb.Iter() {
			z ^= p.tables.Zobrist.Piece[pc][sq]
		}
	}
	if p.toMove == board.Black {
		z ^= p.tables.Zobrist.Color
	}
	z ^= p.tables.Zobrist.Castling[p.castling]
	if p.epSquare != board.NoSquare {
		z ^= p.tables.Zobrist.EnPassantFile[p.epSquare.File()]
	}
	return z
}
