package board

// Zobrist hashing keys. Generated deterministically at init so hashes are
// stable across runs, which keeps persisted transposition entries valid.
var (
	zobristPiece     [2][6][64]uint64
	zobristCastling  [16]uint64
	zobristEnPassant [8]uint64
	zobristSide      uint64
)

func init() {
	rng := xorshiftState(0x9E3779B97F4A7C15)
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for i := range zobristCastling {
		zobristCastling[i] = rng.next()
	}
	for i := range zobristEnPassant {
		zobristEnPassant[i] = rng.next()
	}
	zobristSide = rng.next()
}

// xorshiftState is an xorshift64* generator. Quality is more than enough
// for hash keys and the fixed seed keeps them reproducible.
type xorshiftState uint64

func (s *xorshiftState) next() uint64 {
	x := uint64(*s)
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	*s = xorshiftState(x)
	return x * 0x2545F4914F6CDD1D
}

// ComputeHash recalculates the Zobrist hash from scratch. MakeMove keeps
// Hash updated incrementally; this is the reference for tests and FEN
// parsing.
func (p *Position) ComputeHash() uint64 {
	var h uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for bb := p.Pieces[c][pt]; bb != 0; {
				h ^= zobristPiece[c][pt][bb.PopFirst()]
			}
		}
	}
	h ^= zobristCastling[p.Castling]
	if p.EnPassant != NoSquare {
		h ^= zobristEnPassant[p.EnPassant.File()]
	}
	if p.SideToMove == Black {
		h ^= zobristSide
	}
	return h
}
