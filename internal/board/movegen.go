package board

import (
	"errors"
	"fmt"
)

// Move generation. Pseudo-legal moves obey piece movement and occupancy but
// may leave the mover's own king attacked; LegalMoves filters those out by
// playing each move and testing the king.

// ErrIllegalMove is wrapped by errors for moves that are not legal in the
// position they were applied to.
var ErrIllegalMove = errors.New("illegal move")

// PseudoLegalMoves appends every pseudo-legal move for the side to move.
func (p *Position) PseudoLegalMoves(list *MoveList) {
	p.generatePawnMoves(list, false)
	p.generatePieceMoves(list, ^p.Occupied[p.SideToMove])
	p.generateCastling(list)
}

// PseudoLegalCaptures appends captures and queen promotions only, the move
// set searched by quiescence.
func (p *Position) PseudoLegalCaptures(list *MoveList) {
	p.generatePawnMoves(list, true)
	p.generatePieceMoves(list, p.Occupied[p.SideToMove.Opponent()])
}

func (p *Position) generatePawnMoves(list *MoveList, capturesOnly bool) {
	us := p.SideToMove
	them := us.Opponent()
	pawns := p.Pieces[us][Pawn]
	enemies := p.Occupied[them]

	var up, upLeft, upRight func(Bitboard) Bitboard
	var promoRank, doubleRank Bitboard
	var forward int
	if us == White {
		up, upLeft, upRight = Bitboard.North, Bitboard.NorthWest, Bitboard.NorthEast
		promoRank, doubleRank = Rank8, Rank3
		forward = 8
	} else {
		up, upLeft, upRight = Bitboard.South, Bitboard.SouthEast, Bitboard.SouthWest
		promoRank, doubleRank = Rank1, Rank6
		forward = -8
	}

	addPromotions := func(from, to Square, capture bool) {
		list.Add(NewPromotion(from, to, Queen, capture))
		if capturesOnly {
			return
		}
		list.Add(NewPromotion(from, to, Knight, capture))
		list.Add(NewPromotion(from, to, Rook, capture))
		list.Add(NewPromotion(from, to, Bishop, capture))
	}

	if !capturesOnly {
		single := up(pawns) &^ p.All
		double := up(single&doubleRank) &^ p.All
		for bb := single &^ promoRank; bb != 0; {
			to := bb.PopFirst()
			list.Add(NewMove(Square(int(to)-forward), to, Quiet))
		}
		for bb := double; bb != 0; {
			to := bb.PopFirst()
			list.Add(NewMove(Square(int(to)-2*forward), to, DoublePawnPush))
		}
	}

	// Push promotions are generated even in captures-only mode; a new queen
	// changes material as much as any capture.
	for bb := up(pawns) &^ p.All & promoRank; bb != 0; {
		to := bb.PopFirst()
		addPromotions(Square(int(to)-forward), to, false)
	}

	left := upLeft(pawns) & enemies
	right := upRight(pawns) & enemies
	leftBack, rightBack := forward-1, forward+1
	if us == Black {
		leftBack, rightBack = forward+1, forward-1
	}
	for bb := left &^ promoRank; bb != 0; {
		to := bb.PopFirst()
		list.Add(NewMove(Square(int(to)-leftBack), to, Capture))
	}
	for bb := right &^ promoRank; bb != 0; {
		to := bb.PopFirst()
		list.Add(NewMove(Square(int(to)-rightBack), to, Capture))
	}
	for bb := left & promoRank; bb != 0; {
		to := bb.PopFirst()
		addPromotions(Square(int(to)-leftBack), to, true)
	}
	for bb := right & promoRank; bb != 0; {
		to := bb.PopFirst()
		addPromotions(Square(int(to)-rightBack), to, true)
	}

	if p.EnPassant != NoSquare {
		for bb := pawnAttacks[them][p.EnPassant] & pawns; bb != 0; {
			list.Add(NewMove(bb.PopFirst(), p.EnPassant, EnPassant))
		}
	}
}

// generatePieceMoves emits knight, bishop, rook, queen, and king moves whose
// destinations fall inside targets.
func (p *Position) generatePieceMoves(list *MoveList, targets Bitboard) {
	us := p.SideToMove
	enemies := p.Occupied[us.Opponent()]

	emit := func(from Square, attacks Bitboard) {
		for bb := attacks & targets; bb != 0; {
			to := bb.PopFirst()
			kind := Quiet
			if enemies.Has(to) {
				kind = Capture
			}
			list.Add(NewMove(from, to, kind))
		}
	}

	for bb := p.Pieces[us][Knight]; bb != 0; {
		from := bb.PopFirst()
		emit(from, knightAttacks[from])
	}
	for bb := p.Pieces[us][Bishop]; bb != 0; {
		from := bb.PopFirst()
		emit(from, bishopLookup(from, p.All))
	}
	for bb := p.Pieces[us][Rook]; bb != 0; {
		from := bb.PopFirst()
		emit(from, rookLookup(from, p.All))
	}
	for bb := p.Pieces[us][Queen]; bb != 0; {
		from := bb.PopFirst()
		emit(from, bishopLookup(from, p.All)|rookLookup(from, p.All))
	}
	emit(p.KingSquare[us], kingAttacks[p.KingSquare[us]])
}

func (p *Position) generateCastling(list *MoveList) {
	us := p.SideToMove
	them := us.Opponent()
	king := p.KingSquare[us]

	kingside, queenside := WhiteKingside, WhiteQueenside
	if us == Black {
		kingside, queenside = BlackKingside, BlackQueenside
	}

	if p.Castling&kingside != 0 {
		f, g := SquareAt(5, king.Rank()), SquareAt(6, king.Rank())
		if p.All&(Bit(f)|Bit(g)) == 0 &&
			!p.IsAttacked(king, them) && !p.IsAttacked(f, them) && !p.IsAttacked(g, them) {
			list.Add(NewMove(king, g, CastleKingside))
		}
	}
	if p.Castling&queenside != 0 {
		b, c, d := SquareAt(1, king.Rank()), SquareAt(2, king.Rank()), SquareAt(3, king.Rank())
		if p.All&(Bit(b)|Bit(c)|Bit(d)) == 0 &&
			!p.IsAttacked(king, them) && !p.IsAttacked(d, them) && !p.IsAttacked(c, them) {
			list.Add(NewMove(king, c, CastleQueenside))
		}
	}
}

// LegalMoves appends every legal move for the side to move.
func (p *Position) LegalMoves(list *MoveList) {
	var pseudo MoveList
	p.PseudoLegalMoves(&pseudo)
	us := p.SideToMove
	for i := 0; i < pseudo.Len(); i++ {
		m := pseudo.Get(i)
		u := p.MakeMove(m)
		if !p.KingAttacked(us) {
			list.Add(m)
		}
		p.UnmakeMove(&u)
	}
}

// IsLegal reports whether m is a pseudo-legal move that leaves the mover's
// king safe.
func (p *Position) IsLegal(m Move) bool {
	var pseudo MoveList
	p.PseudoLegalMoves(&pseudo)
	if !pseudo.Contains(m) {
		return false
	}
	us := p.SideToMove
	u := p.MakeMove(m)
	ok := !p.KingAttacked(us)
	p.UnmakeMove(&u)
	return ok
}

// ParseMove resolves UCI long algebraic notation ("e2e4", "e7e8q") against
// the legal moves of p. The returned error wraps ErrIllegalMove when the
// text matches no legal move.
func (p *Position) ParseMove(uci string) (Move, error) {
	var list MoveList
	p.LegalMoves(&list)
	for i := 0; i < list.Len(); i++ {
		if list.Get(i).String() == uci {
			return list.Get(i), nil
		}
	}
	return NoMove, fmt.Errorf("%w: %q in %s", ErrIllegalMove, uci, p.FEN())
}

// HasLegalMoves reports whether the side to move has at least one legal
// move, without materializing the full list.
func (p *Position) HasLegalMoves() bool {
	var pseudo MoveList
	p.PseudoLegalMoves(&pseudo)
	us := p.SideToMove
	for i := 0; i < pseudo.Len(); i++ {
		u := p.MakeMove(pseudo.Get(i))
		ok := !p.KingAttacked(us)
		p.UnmakeMove(&u)
		if ok {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is checkmated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate reports whether the side to move is stalemated.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// Perft counts leaf nodes of the legal move tree to the given depth. It is
// the ground truth the move generator is validated against.
func (p *Position) Perft(depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	var list MoveList
	p.LegalMoves(&list)
	if depth == 1 {
		return uint64(list.Len())
	}
	var nodes uint64
	for i := 0; i < list.Len(); i++ {
		u := p.MakeMove(list.Get(i))
		nodes += p.Perft(depth - 1)
		p.UnmakeMove(&u)
	}
	return nodes
}

// PerftDivide returns the per-move leaf counts at the root, matching the
// "divide" output chess tools print for debugging.
func (p *Position) PerftDivide(depth int) map[Move]uint64 {
	counts := make(map[Move]uint64)
	var list MoveList
	p.LegalMoves(&list)
	for i := 0; i < list.Len(); i++ {
		m := list.Get(i)
		u := p.MakeMove(m)
		counts[m] = p.Perft(depth - 1)
		p.UnmakeMove(&u)
	}
	return counts
}
