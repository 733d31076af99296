package position

import (
	"fmt"
	"strconv"
	"strings"

	"kingly/board"
	"kingly/tables"
)

// ErrInvalidFEN is returned by ParseFEN/SetFEN when the input fails
// validation; Reason describes which field and why.
type ErrInvalidFEN struct {
	Reason string
}

func (e *ErrInvalidFEN) Error() string { return "position: invalid FEN: " + e.Reason }

func invalidFEN(format string, args ...any) error {
	return &ErrInvalidFEN{Reason: fmt.Sprintf(format, args...)}
}

// StartposFEN is the standard starting position.
const StartposFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds a new Position from a FEN string.
func ParseFEN(t *tables.Tables, fen string) (*Position, error) {
	p := New(t)
	if err := p.SetFEN(fen); err != nil {
		return nil, err
	}
	return p, nil
}

// SetFEN resets the position to the given FEN, preserving the underlying
// Tables pointer and the repetitions map semantics (a fresh map is used, as a
// reset position has no history behind it). On validation failure the
// position is left unchanged.
func (p *Position) SetFEN(fen string) error {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return invalidFEN("expected 6 fields, got %d", len(fields))
	}

	var bitboards [12]board.Bitboard
	var occ [2]board.Bitboard
	var sqBoard [64]board.Piece
	for i := range sqBoard {
		sqBoard[i] = board.NoPiece
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return invalidFEN("placement: expected 8 ranks, got %d", len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, ch := range rankStr {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			pc, ok := pieceFromSymbol(byte(ch))
			if !ok {
				return invalidFEN("placement: unrecognized piece %q", ch)
			}
			if file > 7 {
				return invalidFEN("placement: rank %d overflows 8 files", i)
			}
			sq := board.Square(rank*8 + file)
			bitboards[pc] = bitboards[pc].Set(sq)
			occ[pc.Color()] = occ[pc.Color()].Set(sq)
			sqBoard[sq] = pc
			file++
		}
		if file != 8 {
			return invalidFEN("placement: rank %d has %d files, want 8", i, file)
		}
	}

	if bitboards[board.WKing].Popcount() != 1 || bitboards[board.BKing].Popcount() != 1 {
		return invalidFEN("placement: exactly one king per color required")
	}

	var toMove board.Color
	switch fields[1] {
	case "w":
		toMove = board.White
	case "b":
		toMove = board.Black
	default:
		return invalidFEN("active color: expected 'w' or 'b', got %q", fields[1])
	}

	castling, err := parseCastling(fields[2])
	if err != nil {
		return err
	}

	epSquare, err := parseEnPassant(fields[3])
	if err != nil {
		return err
	}

	plyClock, err := parseNonNegativeInt("halfmove clock", fields[4])
	if err != nil {
		return err
	}
	moveNumber, err := parseNonNegativeInt("fullmove number", fields[5])
	if err != nil {
		return err
	}

	p.bitboards = bitboards
	p.occupancy = occ
	p.board = sqBoard
	p.toMove = toMove
	p.castling = castling
	p.epSquare = epSquare
	p.plyClock = plyClock
	p.moveNumber = moveNumber
	p.history = p.history[:0]
	p.repetitions = make(map[uint64]int)
	p.zobrist = p.recomputeZobrist()
	p.repetitions[p.zobrist] = 1

	return nil
}

func pieceFromSymbol(ch byte) (board.Piece, bool) {
	switch ch {
	case 'P':
		return board.WPawn, true
	case 'p':
		return board.BPawn, true
	case 'N':
		return board.WKnight, true
	case 'n':
		return board.BKnight, true
	case 'B':
		return board.WBishop, true
	case 'b':
		return board.BBishop, true
	case 'R':
		return board.WRook, true
	case 'r':
		return board.BRook, true
	case 'Q':
		return board.WQueen, true
	case 'q':
		return board.BQueen, true
	case 'K':
		return board.WKing, true
	case 'k':
		return board.BKing, true
	}
	return 0, false
}

func parseCastling(s string) (board.CastlingRights, error) {
	if s == "-" {
		return 0, nil
	}
	var c board.CastlingRights
	seen := map[byte]bool{}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if seen[ch] {
			return 0, invalidFEN("castling: repeated flag %q", ch)
		}
		seen[ch] = true
		switch ch {
		case 'K':
			c |= board.WhiteKingside
		case 'Q':
			c |= board.WhiteQueenside
		case 'k':
			c |= board.BlackKingside
		case 'q':
			c |= board.BlackQueenside
		default:
			return 0, invalidFEN("castling: unrecognized flag %q", ch)
		}
	}
	return c, nil
}

func parseEnPassant(s string) (board.Square, error) {
	if s == "-" {
		return board.NoSquare, nil
	}
	if len(s) != 2 {
		return board.NoSquare, invalidFEN("en-passant: malformed square %q", s)
	}
	file := s[0]
	rank := s[1]
	if file < 'a' || file > 'h' {
		return board.NoSquare, invalidFEN("en-passant: bad file in %q", s)
	}
	if rank != '3' && rank != '6' {
		return board.NoSquare, invalidFEN("en-passant: rank must be 3 or 6, got %q", s)
	}
	sq := board.Square(int(rank-'1')*8 + int(file-'a'))
	return sq, nil
}

func parseNonNegativeInt(field, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, invalidFEN("%s: expected a non-negative integer, got %q", field, s)
	}
	return n, nil
}

// FEN renders the position as a canonical FEN string.
func (p *Position) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := board.Square(rank*8 + file)
			pc := p.board[sq]
			if pc == board.NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pc.Symbol())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	sb.WriteString(p.toMove.String())

	sb.WriteByte(' ')
	if p.castling == 0 {
		sb.WriteByte('-')
	} else {
		if p.castling.Has(board.WhiteKingside) {
			sb.WriteByte('K')
		}
		if p.castling.Has(board.WhiteQueenside) {
			sb.WriteByte('Q')
		}
		if p.castling.Has(board.BlackKingside) {
			sb.WriteByte('k')
		}
		if p.castling.Has(board.BlackQueenside) {
			sb.WriteByte('q')
		}
	}

	sb.WriteByte(' ')
	if p.epSquare == board.NoSquare {
		sb.WriteByte('-')
	} else {
		sb.WriteString(p.epSquare.String())
	}

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.plyClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.moveNumber))

	return sb.String()
}
