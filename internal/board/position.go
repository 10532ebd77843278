package board

import (
	"fmt"
	"strings"
)

// CastlingRights is a bitset of the four castling permissions.
type CastlingRights uint8

const (
	WhiteKingside CastlingRights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside

	AllCastlingRights = WhiteKingside | WhiteQueenside | BlackKingside | BlackQueenside
	NoCastlingRights  CastlingRights = 0
)

func (cr CastlingRights) String() string {
	if cr == NoCastlingRights {
		return "-"
	}
	var sb strings.Builder
	if cr&WhiteKingside != 0 {
		sb.WriteByte('K')
	}
	if cr&WhiteQueenside != 0 {
		sb.WriteByte('Q')
	}
	if cr&BlackKingside != 0 {
		sb.WriteByte('k')
	}
	if cr&BlackQueenside != 0 {
		sb.WriteByte('q')
	}
	return sb.String()
}

// castlingRightsMask[sq] holds the rights that survive a piece moving from
// or to sq. Moving the king or a rook, or capturing a rook on its home
// square, clears the matching rights.
var castlingRightsMask = func() [64]CastlingRights {
	var m [64]CastlingRights
	for sq := range m {
		m[sq] = AllCastlingRights
	}
	m[A1] &^= WhiteQueenside
	m[E1] &^= WhiteKingside | WhiteQueenside
	m[H1] &^= WhiteKingside
	m[A8] &^= BlackQueenside
	m[E8] &^= BlackKingside | BlackQueenside
	m[H8] &^= BlackKingside
	return m
}()

// Position is a complete chess position. It is a plain value: copying the
// struct copies the position.
type Position struct {
	Pieces   [2][6]Bitboard // per color, per piece type
	Occupied [2]Bitboard    // per color union
	All      Bitboard       // both colors

	SideToMove     Color
	Castling       CastlingRights
	EnPassant      Square // target square, NoSquare when unavailable
	HalfMoveClock  int
	FullMoveNumber int

	Hash       uint64
	KingSquare [2]Square
}

// Undo is the information needed to take back one move. It is a full
// snapshot of the prior position, so restoring it cannot drift from the
// incremental state.
type Undo struct {
	prev Position
}

// StartingFEN is the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	p, err := ParseFEN(StartingFEN)
	if err != nil {
		panic(err) // the constant is well formed
	}
	return p
}

// Copy returns an independent copy of the position.
func (p *Position) Copy() *Position {
	q := *p
	return &q
}

// PieceAt returns the piece on sq, NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	bb := Bit(sq)
	if p.All&bb == 0 {
		return NoPiece
	}
	c := White
	if p.Occupied[Black]&bb != 0 {
		c = Black
	}
	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return MakePiece(pt, c)
		}
	}
	return NoPiece
}

func (p *Position) putPiece(pt PieceType, c Color, sq Square) {
	bb := Bit(sq)
	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.All |= bb
	p.Hash ^= zobristPiece[c][pt][sq]
	if pt == King {
		p.KingSquare[c] = sq
	}
}

func (p *Position) removePiece(pt PieceType, c Color, sq Square) {
	bb := Bit(sq)
	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.All &^= bb
	p.Hash ^= zobristPiece[c][pt][sq]
}

func (p *Position) movePiece(pt PieceType, c Color, from, to Square) {
	bb := Bit(from) | Bit(to)
	p.Pieces[c][pt] ^= bb
	p.Occupied[c] ^= bb
	p.All ^= bb
	p.Hash ^= zobristPiece[c][pt][from] ^ zobristPiece[c][pt][to]
	if pt == King {
		p.KingSquare[c] = to
	}
}

func (p *Position) setEnPassant(sq Square) {
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = sq
	if sq != NoSquare {
		p.Hash ^= zobristEnPassant[sq.File()]
	}
}

func (p *Position) setCastling(cr CastlingRights) {
	p.Hash ^= zobristCastling[p.Castling] ^ zobristCastling[cr]
	p.Castling = cr
}

// MakeMove applies m unconditionally and returns the undo token. The move
// must be pseudo-legal; callers filter for legality afterwards by checking
// whether the mover's king is attacked.
func (p *Position) MakeMove(m Move) Undo {
	u := Undo{prev: *p}

	us := p.SideToMove
	them := us.Opponent()
	from, to := m.From(), m.To()
	pt := p.PieceAt(from).Type()

	p.HalfMoveClock++
	if us == Black {
		p.FullMoveNumber++
	}

	switch m.Kind() {
	case Quiet:
		p.movePiece(pt, us, from, to)
	case DoublePawnPush:
		p.movePiece(Pawn, us, from, to)
	case CastleKingside:
		p.movePiece(King, us, from, to)
		p.movePiece(Rook, us, SquareAt(7, from.Rank()), SquareAt(5, from.Rank()))
	case CastleQueenside:
		p.movePiece(King, us, from, to)
		p.movePiece(Rook, us, SquareAt(0, from.Rank()), SquareAt(3, from.Rank()))
	case Capture:
		p.removePiece(p.PieceAt(to).Type(), them, to)
		p.movePiece(pt, us, from, to)
	case EnPassant:
		captured := SquareAt(to.File(), from.Rank())
		p.removePiece(Pawn, them, captured)
		p.movePiece(Pawn, us, from, to)
	default: // promotions
		if m.Kind()&Capture != 0 {
			p.removePiece(p.PieceAt(to).Type(), them, to)
		}
		p.removePiece(Pawn, us, from)
		p.putPiece(m.Promotion(), us, to)
	}

	if pt == Pawn || m.IsCapture() {
		p.HalfMoveClock = 0
	}

	if m.Kind() == DoublePawnPush {
		p.setEnPassant(SquareAt(from.File(), (from.Rank()+to.Rank())/2))
	} else {
		p.setEnPassant(NoSquare)
	}

	p.setCastling(p.Castling & castlingRightsMask[from] & castlingRightsMask[to])

	p.SideToMove = them
	p.Hash ^= zobristSide

	return u
}

// UnmakeMove restores the position saved in u.
func (p *Position) UnmakeMove(u *Undo) {
	*p = u.prev
}

// MakeNullMove passes the turn without moving a piece. Used by null-move
// pruning; not a legal chess move.
func (p *Position) MakeNullMove() Undo {
	u := Undo{prev: *p}
	p.setEnPassant(NoSquare)
	p.SideToMove = p.SideToMove.Opponent()
	p.Hash ^= zobristSide
	return u
}

// UnmakeNullMove restores the position saved in u.
func (p *Position) UnmakeNullMove(u *Undo) {
	*p = u.prev
}

// KingAttacked reports whether c's king is attacked by the other side.
func (p *Position) KingAttacked(c Color) bool {
	return p.IsAttacked(p.KingSquare[c], c.Opponent())
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.KingAttacked(p.SideToMove)
}

// HasNonPawnMaterial reports whether the side to move has any piece besides
// pawns and the king. Null-move pruning is unsound without it.
func (p *Position) HasNonPawnMaterial() bool {
	c := p.SideToMove
	return p.Pieces[c][Knight]|p.Pieces[c][Bishop]|p.Pieces[c][Rook]|p.Pieces[c][Queen] != 0
}

// InsufficientMaterial reports whether neither side can possibly deliver
// mate: bare kings, king and minor versus king, or same-colored bishops
// only.
func (p *Position) InsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 {
		return false
	}
	if p.Pieces[White][Rook]|p.Pieces[Black][Rook]|p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}
	knights := p.Pieces[White][Knight] | p.Pieces[Black][Knight]
	bishops := p.Pieces[White][Bishop] | p.Pieces[Black][Bishop]
	minors := knights.Count() + bishops.Count()
	if minors <= 1 {
		return true
	}
	if knights != 0 {
		return false
	}
	// Bishops only: drawn when they all stand on one square color.
	const darkSquares Bitboard = 0xAA55AA55AA55AA55
	return bishops&darkSquares == 0 || bishops&^darkSquares == 0
}

// Validate checks structural invariants and returns the first violation.
func (p *Position) Validate() error {
	if p.Pieces[White][King].Count() != 1 || p.Pieces[Black][King].Count() != 1 {
		return fmt.Errorf("position must have exactly one king per side")
	}
	if p.Occupied[White]&p.Occupied[Black] != 0 {
		return fmt.Errorf("white and black occupancy overlap")
	}
	if p.Occupied[White]|p.Occupied[Black] != p.All {
		return fmt.Errorf("occupancy union mismatch")
	}
	for c := White; c <= Black; c++ {
		var union Bitboard
		for pt := Pawn; pt <= King; pt++ {
			if union&p.Pieces[c][pt] != 0 {
				return fmt.Errorf("%s piece bitboards overlap", c)
			}
			union |= p.Pieces[c][pt]
		}
		if union != p.Occupied[c] {
			return fmt.Errorf("%s occupancy mismatch", c)
		}
		if p.KingSquare[c] != p.Pieces[c][King].First() {
			return fmt.Errorf("%s king square out of sync", c)
		}
	}
	if p.EnPassant != NoSquare {
		want := 5
		if p.SideToMove == Black {
			want = 2
		}
		if p.EnPassant.Rank() != want {
			return fmt.Errorf("en passant square %s on wrong rank", p.EnPassant)
		}
	}
	if p.Hash != p.ComputeHash() {
		return fmt.Errorf("incremental hash out of sync")
	}
	return nil
}

// String renders the position as an ASCII board with the FEN below it.
func (p *Position) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteString(" +---+---+---+---+---+---+---+---+\n")
		for file := 0; file < 8; file++ {
			sb.WriteString(" | ")
			sb.WriteString(p.PieceAt(SquareAt(file, rank)).String())
		}
		fmt.Fprintf(&sb, " | %d\n", rank+1)
	}
	sb.WriteString(" +---+---+---+---+---+---+---+---+\n")
	sb.WriteString("   a   b   c   d   e   f   g   h\n\n")
	sb.WriteString("FEN: " + p.FEN() + "\n")
	fmt.Fprintf(&sb, "Key: %016X\n", p.Hash)
	return sb.String()
}
