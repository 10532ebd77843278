package board

// Precomputed attack tables for the non-sliding pieces, plus the
// between/line tables used by pin and check logic.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard

	betweenBB [64][64]Bitboard // squares strictly between two aligned squares
	lineBB    [64][64]Bitboard // the full line through two aligned squares
)

func init() {
	initJumpTables()
	initRayTables()
	initMagicTables() // magic.go
}

var knightDeltas = [8][2]int{
	{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
}

var kingDeltas = [8][2]int{
	{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1},
}

func initJumpTables() {
	for sq := A1; sq <= H8; sq++ {
		f, r := sq.File(), sq.Rank()
		for _, d := range knightDeltas {
			if tf, tr := f+d[0], r+d[1]; tf >= 0 && tf < 8 && tr >= 0 && tr < 8 {
				knightAttacks[sq] |= Bit(SquareAt(tf, tr))
			}
		}
		for _, d := range kingDeltas {
			if tf, tr := f+d[0], r+d[1]; tf >= 0 && tf < 8 && tr >= 0 && tr < 8 {
				kingAttacks[sq] |= Bit(SquareAt(tf, tr))
			}
		}
		bb := Bit(sq)
		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()
	}
}

func initRayTables() {
	for a := A1; a <= H8; a++ {
		for b := A1; b <= H8; b++ {
			df := sign(b.File() - a.File())
			dr := sign(b.Rank() - a.Rank())
			if a == b || (df != 0 && dr != 0 && abs(b.File()-a.File()) != abs(b.Rank()-a.Rank())) {
				continue // not on a shared rank, file, or diagonal
			}

			for f, r := a.File()+df, a.Rank()+dr; ; f, r = f+df, r+dr {
				sq := SquareAt(f, r)
				if sq == b {
					break
				}
				betweenBB[a][b] |= Bit(sq)
			}

			// Walk outward in both directions to build the full line.
			for f, r := a.File(), a.Rank(); f >= 0 && f < 8 && r >= 0 && r < 8; f, r = f+df, r+dr {
				lineBB[a][b] |= Bit(SquareAt(f, r))
			}
			for f, r := a.File()-df, a.Rank()-dr; f >= 0 && f < 8 && r >= 0 && r < 8; f, r = f-df, r-dr {
				lineBB[a][b] |= Bit(SquareAt(f, r))
			}
		}
	}
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// KnightAttacks returns the knight attack set from sq.
func KnightAttacks(sq Square) Bitboard { return knightAttacks[sq] }

// KingAttacks returns the king attack set from sq.
func KingAttacks(sq Square) Bitboard { return kingAttacks[sq] }

// PawnAttacks returns the squares a pawn of color c on sq attacks.
func PawnAttacks(sq Square, c Color) Bitboard { return pawnAttacks[c][sq] }

// BishopAttacks returns bishop attacks from sq given board occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return bishopLookup(sq, occupied)
}

// RookAttacks returns rook attacks from sq given board occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return rookLookup(sq, occupied)
}

// QueenAttacks returns queen attacks from sq given board occupancy.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return bishopLookup(sq, occupied) | rookLookup(sq, occupied)
}

// Between returns the squares strictly between two aligned squares,
// empty when they do not share a rank, file, or diagonal.
func Between(a, b Square) Bitboard { return betweenBB[a][b] }

// Aligned reports whether c lies on the line through a and b.
func Aligned(a, b, c Square) bool { return lineBB[a][b].Has(c) }

// AttackersOf returns the pieces of color c attacking sq under the given
// occupancy. Passing an occupancy other than p.All lets callers x-ray
// through removed pieces (for example the moving king).
func (p *Position) AttackersOf(sq Square, c Color, occupied Bitboard) Bitboard {
	return (pawnAttacks[c.Opponent()][sq] & p.Pieces[c][Pawn]) |
		(knightAttacks[sq] & p.Pieces[c][Knight]) |
		(kingAttacks[sq] & p.Pieces[c][King]) |
		(bishopLookup(sq, occupied) & (p.Pieces[c][Bishop] | p.Pieces[c][Queen])) |
		(rookLookup(sq, occupied) & (p.Pieces[c][Rook] | p.Pieces[c][Queen]))
}

// IsAttacked reports whether sq is attacked by any piece of color c.
func (p *Position) IsAttacked(sq Square, c Color) bool {
	return p.AttackersOf(sq, c, p.All) != 0
}
