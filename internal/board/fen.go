package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFEN is wrapped by every error ParseFEN returns.
var ErrInvalidFEN = errors.New("invalid FEN")

func fenError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFEN, fmt.Sprintf(format, args...))
}

// ParseFEN parses a Forsyth-Edwards Notation string into a position. All
// six fields are required; the shortened forms some interfaces accept are
// rejected.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return nil, fenError("want 6 fields, got %d", len(fields))
	}

	p := &Position{EnPassant: NoSquare}
	p.KingSquare[White], p.KingSquare[Black] = NoSquare, NoSquare

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fenError("want 8 ranks, got %d", len(ranks))
	}
	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			piece := PieceFromChar(c)
			if piece == NoPiece {
				return nil, fenError("bad piece character %q", c)
			}
			if file > 7 {
				return nil, fenError("rank %d overflows", rank+1)
			}
			p.putPiece(piece.Type(), piece.Color(), SquareAt(file, rank))
			file++
		}
		if file != 8 {
			return nil, fenError("rank %d has %d squares", rank+1, file)
		}
	}
	if p.Pieces[White][King].Count() != 1 || p.Pieces[Black][King].Count() != 1 {
		return nil, fenError("each side needs exactly one king")
	}

	switch fields[1] {
	case "w":
		p.SideToMove = White
	case "b":
		p.SideToMove = Black
	default:
		return nil, fenError("bad side to move %q", fields[1])
	}

	if fields[2] != "-" {
		for i := 0; i < len(fields[2]); i++ {
			switch fields[2][i] {
			case 'K':
				p.Castling |= WhiteKingside
			case 'Q':
				p.Castling |= WhiteQueenside
			case 'k':
				p.Castling |= BlackKingside
			case 'q':
				p.Castling |= BlackQueenside
			default:
				return nil, fenError("bad castling character %q", fields[2][i])
			}
		}
	}

	// Drop rights whose king or rook is not on its home square.
	if p.PieceAt(E1) != WhiteKing {
		p.Castling &^= WhiteKingside | WhiteQueenside
	}
	if p.PieceAt(H1) != WhiteRook {
		p.Castling &^= WhiteKingside
	}
	if p.PieceAt(A1) != WhiteRook {
		p.Castling &^= WhiteQueenside
	}
	if p.PieceAt(E8) != BlackKing {
		p.Castling &^= BlackKingside | BlackQueenside
	}
	if p.PieceAt(H8) != BlackRook {
		p.Castling &^= BlackKingside
	}
	if p.PieceAt(A8) != BlackRook {
		p.Castling &^= BlackQueenside
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fenError("bad en passant square %q", fields[3])
		}
		want := 5
		if p.SideToMove == Black {
			want = 2
		}
		if sq.Rank() != want {
			return nil, fenError("en passant square %s on wrong rank", sq)
		}
		p.EnPassant = sq
	}

	halfmove, err := strconv.Atoi(fields[4])
	if err != nil || halfmove < 0 {
		return nil, fenError("bad halfmove clock %q", fields[4])
	}
	p.HalfMoveClock = halfmove

	fullmove, err := strconv.Atoi(fields[5])
	if err != nil || fullmove < 1 {
		return nil, fenError("bad fullmove number %q", fields[5])
	}
	p.FullMoveNumber = fullmove

	if p.KingAttacked(p.SideToMove.Opponent()) {
		return nil, fenError("side not to move is in check")
	}

	p.Hash = p.ComputeHash()
	return p, nil
}

// FEN serializes the position. ParseFEN(p.FEN()) reproduces p exactly.
func (p *Position) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(SquareAt(file, rank))
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	side := "w"
	if p.SideToMove == Black {
		side = "b"
	}
	return fmt.Sprintf("%s %s %s %s %d %d",
		sb.String(), side, p.Castling, p.EnPassant, p.HalfMoveClock, p.FullMoveNumber)
}
