package board

// Move packs a chess move into 16 bits: from in bits 0-5, to in bits 6-11,
// and a move kind nibble in bits 12-15. Promotion kinds encode the promoted
// piece in their low two bits so the piece type is recoverable without a
// table lookup.
type Move uint16

// MoveKind classifies a move. Bit 2 marks captures, bit 3 promotions.
type MoveKind uint8

const (
	Quiet MoveKind = iota
	DoublePawnPush
	CastleKingside
	CastleQueenside
	Capture
	EnPassant
	_
	_
	PromoKnight
	PromoBishop
	PromoRook
	PromoQueen
	PromoCaptureKnight
	PromoCaptureBishop
	PromoCaptureRook
	PromoCaptureQueen
)

// NoMove is the zero Move. It is never a legal move (from == to == a1).
const NoMove Move = 0

// NewMove builds a move from its components.
func NewMove(from, to Square, kind MoveKind) Move {
	return Move(from) | Move(to)<<6 | Move(kind)<<12
}

// NewPromotion builds a promotion move to the given piece type.
func NewPromotion(from, to Square, promo PieceType, capture bool) Move {
	kind := PromoKnight + MoveKind(promo-Knight)
	if capture {
		kind += PromoCaptureKnight - PromoKnight
	}
	return NewMove(from, to, kind)
}

// From returns the origin square.
func (m Move) From() Square { return Square(m & 0x3F) }

// To returns the destination square.
func (m Move) To() Square { return Square(m >> 6 & 0x3F) }

// Kind returns the move kind nibble.
func (m Move) Kind() MoveKind { return MoveKind(m >> 12) }

// IsCapture reports whether the move captures a piece, including en passant.
func (m Move) IsCapture() bool { return m.Kind()&Capture != 0 }

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool { return m.Kind()&PromoKnight != 0 }

// IsCastle reports whether the move is a castling move.
func (m Move) IsCastle() bool {
	k := m.Kind()
	return k == CastleKingside || k == CastleQueenside
}

// Promotion returns the promoted piece type, NoPieceType for non-promotions.
func (m Move) Promotion() PieceType {
	if !m.IsPromotion() {
		return NoPieceType
	}
	return Knight + PieceType(m.Kind()&3)
}

// String renders the move in UCI long algebraic notation, e.g. "e2e4" or
// "e7e8q". NoMove renders as "0000".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(pieceTypeChars[m.Promotion()])
	}
	return s
}

// MoveList is a fixed-capacity move buffer. 256 comfortably exceeds the
// maximum number of moves in any reachable position.
type MoveList struct {
	moves [256]Move
	n     int
}

// Add appends a move to the list.
func (l *MoveList) Add(m Move) {
	l.moves[l.n] = m
	l.n++
}

// Len returns the number of moves in the list.
func (l *MoveList) Len() int { return l.n }

// Get returns the move at index i.
func (l *MoveList) Get(i int) Move { return l.moves[i] }

// Set replaces the move at index i.
func (l *MoveList) Set(i int, m Move) { l.moves[i] = m }

// Swap exchanges the moves at indices i and j.
func (l *MoveList) Swap(i, j int) {
	l.moves[i], l.moves[j] = l.moves[j], l.moves[i]
}

// Truncate shortens the list to n moves.
func (l *MoveList) Truncate(n int) { l.n = n }

// Contains reports whether m is in the list.
func (l *MoveList) Contains(m Move) bool {
	for i := 0; i < l.n; i++ {
		if l.moves[i] == m {
			return true
		}
	}
	return false
}
