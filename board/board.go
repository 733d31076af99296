// Package board defines the basic chess types and bitboard algebra shared by
// every other package: squares, bitboards, colors, pieces, castling rights,
// moves and the Value score type.
package board

import "math/bits"

// Square is a board square, 0-63, little-endian rank-file mapping (A1=0, H8=63).
type Square int8

// NoSquare is the sentinel value for "no square", used for the en-passant square and similar.
const NoSquare Square = -1

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)

// File returns the file (0=a .. 7=h) of the square.
func (s Square) File() int { return int(s) & 7 }

// Rank returns the rank (0=1st .. 7=8th) of the square.
func (s Square) Rank() int { return int(s) >> 3 }

// Bitboard returns the single-bit bitboard for the square.
func (s Square) Bitboard() Bitboard { return Bitboard(1) << uint(s) }

// Direction is a signed step vector expressed as (rank delta, file delta).
type Direction struct {
	DRank int
	DFile int
}

var (
	North     = Direction{1, 0}
	South     = Direction{-1, 0}
	East      = Direction{0, 1}
	West      = Direction{0, -1}
	NorthEast = Direction{1, 1}
	NorthWest = Direction{1, -1}
	SouthEast = Direction{-1, 1}
	SouthWest = Direction{-1, -1}
)

// Step returns the square reached by moving one step in the given direction,
// or false if that would leave the board.
func (s Square) Step(d Direction) (Square, bool) {
	rank, file := s.Rank()+d.DRank, s.File()+d.DFile
	if rank < 0 || rank > 7 || file < 0 || file > 7 {
		return 0, false
	}
	return Square(rank*8 + file), true
}

// String renders the square in algebraic notation, e.g. "e4".
func (s Square) String() string {
	if s < 0 || s > 63 {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// Bitboard is a 64-bit occupancy set, one bit per square.
type Bitboard uint64

// File bitboard masks, a (file 0) through h (file 7).
const (
	FileA Bitboard = 0x0101010101010101 << iota
	FileB
	FileC
	FileD
	FileE
	FileF
	FileG
	FileH
)

// Rank bitboard masks, rank 1 (index 0) through rank 8 (index 7).
const (
	Rank1 Bitboard = 0xFF << (8 * iota)
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
)

const (
	NotFileA Bitboard = ^FileA
	NotFileH Bitboard = ^FileH
	NotFileAB Bitboard = ^(FileA | FileB)
	NotFileGH Bitboard = ^(FileG | FileH)
	NotRank1 Bitboard = ^Rank1
	NotRank8 Bitboard = ^Rank8
)

// Files indexed 0 (a) through 7 (h).
var Files = [8]Bitboard{FileA, FileB, FileC, FileD, FileE, FileF, FileG, FileH}

// Ranks indexed 0 (rank 1) through 7 (rank 8).
var Ranks = [8]Bitboard{Rank1, Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8}

// Diagonals[d] is the bitboard of the diagonal with file-rank == d+7 (d in 0..14).
var Diagonals [15]Bitboard

// AntiDiagonals[d] is the bitboard of the anti-diagonal with file+rank == d (d in 0..14).
var AntiDiagonals [15]Bitboard

func init() {
	for sq := Square(0); sq < 64; sq++ {
		f, r := sq.File(), sq.Rank()
		Diagonals[f-r+7] |= sq.Bitboard()
		AntiDiagonals[f+r] |= sq.Bitboard()
	}
}

// Set returns the bitboard with sq set.
func (b Bitboard) Set(sq Square) Bitboard { return b | sq.Bitboard() }

// Clear returns the bitboard with sq cleared.
func (b Bitboard) Clear(sq Square) Bitboard { return b &^ sq.Bitboard() }

// Has reports whether sq is set in b.
func (b Bitboard) Has(sq Square) bool { return b&sq.Bitboard() != 0 }

// Popcount returns the number of set bits.
func (b Bitboard) Popcount() int { return bits.OnesCount64(uint64(b)) }

// LSB returns the lowest-index set square, or NoSquare if b is empty.
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB clears and returns the lowest-index set square of *b.
func PopLSB(b *Bitboard) Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// Iter yields each set square in ascending index order. Usable as:
//
//	for sq := range bb.Iter() { ... }
func (b Bitboard) Iter() func(yield func(Square) bool) {
	return func(yield func(Square) bool) {
		bb := b
		for bb != 0 {
			sq := PopLSB(&bb)
			if !yield(sq) {
				return
			}
		}
	}
}

// ShiftNorth/ShiftSouth/... shift the whole set one step in a direction,
// clearing squares that would wrap around a board edge.
func (b Bitboard) ShiftNorth() Bitboard { return b << 8 }
func (b Bitboard) ShiftSouth() Bitboard { return b >> 8 }
func (b Bitboard) ShiftEast() Bitboard  { return (b & NotFileH) << 1 }
func (b Bitboard) ShiftWest() Bitboard  { return (b & NotFileA) >> 1 }
func (b Bitboard) ShiftNorthEast() Bitboard { return (b & NotFileH) << 9 }
func (b Bitboard) ShiftNorthWest() Bitboard { return (b & NotFileA) << 7 }
func (b Bitboard) ShiftSouthEast() Bitboard { return (b & NotFileH) >> 7 }
func (b Bitboard) ShiftSouthWest() Bitboard { return (b & NotFileA) >> 9 }

// Color is one of White or Black.
type Color int8

const (
	White Color = iota
	Black
)

// Other returns the opposing color.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "w"
	}
	return "b"
}

// PieceKind is a chess piece type, independent of color.
type PieceKind int8

const (
	Pawn PieceKind = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoKind = -1
)

// Piece is a colored piece, packed as kind*2 + color so that White/Black
// pieces of the same kind are adjacent indices into a 12-entry bitboard array —
// this matches the teacher's own Piece numbering convention.
type Piece int8

const NoPiece Piece = -1

func MakePiece(k PieceKind, c Color) Piece { return Piece(k)*2 + Piece(c) }
func (p Piece) Kind() PieceKind            { return PieceKind(p / 2) }
func (p Piece) Color() Color               { return Color(p % 2) }

const (
	WPawn Piece = iota
	BPawn
	WKnight
	BKnight
	WBishop
	BBishop
	WRook
	BRook
	WQueen
	BQueen
	WKing
	BKing
)

var pieceSymbols = [12]byte{'P', 'p', 'N', 'n', 'B', 'b', 'R', 'r', 'Q', 'q', 'K', 'k'}

// Symbol returns the FEN piece letter for p (uppercase for White).
func (p Piece) Symbol() byte {
	if p == NoPiece {
		return '-'
	}
	return pieceSymbols[p]
}

// CastlingRights is a 4-bit mask of {WK, WQ, BK, BQ} castling availability.
type CastlingRights uint8

const (
	WhiteKingside CastlingRights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside
)

// Has reports whether the given right is present.
func (c CastlingRights) Has(right CastlingRights) bool { return c&right != 0 }

// MoveKind distinguishes the four move shapes.
type MoveKind uint16

const (
	Regular MoveKind = iota
	Castling
	Promotion
	EnPassant
)

// PromotionKind distinguishes the four possible promotion pieces; values chosen
// so PromotionKind+Knight (see position package) recovers a PieceKind.
type PromotionKind uint16

const (
	PromoKnight PromotionKind = iota
	PromoBishop
	PromoRook
	PromoQueen
)

func (pk PromotionKind) Kind() PieceKind { return PieceKind(pk) + Knight }

// Move packs a chess move into 16 bits:
//
//	0-5:   to square
//	6-11:  from square
//	12-13: promotion piece (see PromotionKind)
//	14-15: move kind (see MoveKind)
type Move uint16

// NullMove is the distinguished null move used for null-move pruning: from==to,
// kind==Regular. It is never applied to the board.
const NullMove Move = 0

// NewMove builds a non-promotion move of the given kind.
func NewMove(from, to Square, kind MoveKind) Move {
	return Move(to) | Move(from)<<6 | Move(PromoQueen)<<12 | Move(kind)<<14
}

// NewPromotionMove builds a promotion move.
func NewPromotionMove(from, to Square, promo PromotionKind) Move {
	return Move(to) | Move(from)<<6 | Move(promo)<<12 | Move(Promotion)<<14
}

func (m Move) To() Square             { return Square(m & 0x3F) }
func (m Move) From() Square           { return Square((m >> 6) & 0x3F) }
func (m Move) Promotion() PromotionKind { return PromotionKind((m >> 12) & 0x3) }
func (m Move) Kind() MoveKind         { return MoveKind((m >> 14) & 0x3) }
func (m Move) IsNull() bool           { return m.From() == m.To() && m.Kind() == Regular }

// String renders the move in long-algebraic UCI form, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.Kind() == Promotion {
		s += string("nbrq"[m.Promotion()])
	}
	return s
}

// MoveList is a fixed-capacity move buffer, avoiding per-position allocation.
// 218 is the proven maximum number of legal moves in any reachable position.
type MoveList struct {
	Moves [218]Move
	Len   int
}

func (l *MoveList) Push(m Move) {
	l.Moves[l.Len] = m
	l.Len++
}

func (l *MoveList) Slice() []Move { return l.Moves[:l.Len] }

// Contains reports whether m is present in the list, used to validate a TT
// move against freshly generated legal moves before trusting it.
func (l *MoveList) Contains(m Move) bool {
	for i := 0; i < l.Len; i++ {
		if l.Moves[i] == m {
			return true
		}
	}
	return false
}
