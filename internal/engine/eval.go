package engine

import "github.com/marlinchess/marlin/internal/board"

// Tapered evaluation: every term is scored for the middlegame and the
// endgame, and the two are blended by the amount of non-pawn material left
// on the board. The result is in centipawns from the side to move's
// perspective, as negamax requires.

type score struct{ mg, eg int }

func (s score) add(o score) score { return score{s.mg + o.mg, s.eg + o.eg} }
func (s score) sub(o score) score { return score{s.mg - o.mg, s.eg - o.eg} }
func (s score) scale(n int) score { return score{s.mg * n, s.eg * n} }

var pieceValues = [6]score{
	{82, 94},    // pawn
	{337, 281},  // knight
	{365, 297},  // bishop
	{477, 512},  // rook
	{1025, 936}, // queen
	{0, 0},      // king
}

// Phase weights per piece type; the total for the starting position is 24.
var phaseWeights = [6]int{0, 1, 1, 2, 4, 0}

const totalPhase = 24

// Piece-square tables from white's perspective, A1 first. Black mirrors via
// Square.Flip.
var pstMG = [6][64]int{
	{ // pawn
		0, 0, 0, 0, 0, 0, 0, 0,
		-35, -1, -20, -23, -15, 24, 38, -22,
		-26, -4, -4, -10, 3, 3, 33, -12,
		-27, -2, -5, 12, 17, 6, 10, -25,
		-14, 13, 6, 21, 23, 12, 17, -23,
		-6, 7, 26, 31, 65, 56, 25, -20,
		98, 134, 61, 95, 68, 126, 34, -11,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	{ // knight
		-105, -21, -58, -33, -17, -28, -19, -23,
		-29, -53, -12, -3, -1, 18, -14, -19,
		-23, -9, 12, 10, 19, 17, 25, -16,
		-13, 4, 16, 13, 28, 19, 21, -8,
		-9, 17, 19, 53, 37, 69, 18, 22,
		-47, 60, 37, 65, 84, 129, 73, 44,
		-73, -41, 72, 36, 23, 62, 7, -17,
		-167, -89, -34, -49, 61, -97, -15, -107,
	},
	{ // bishop
		-33, -3, -14, -21, -13, -12, -39, -21,
		4, 15, 16, 0, 7, 21, 33, 1,
		0, 15, 15, 15, 14, 27, 18, 10,
		-6, 13, 13, 26, 34, 12, 10, 4,
		-4, 5, 19, 50, 37, 37, 7, -2,
		-16, 37, 43, 40, 35, 50, 37, -2,
		-26, 16, -18, -13, 30, 59, 18, -47,
		-29, 4, -82, -37, -25, -42, 7, -8,
	},
	{ // rook
		-19, -13, 1, 17, 16, 7, -37, -26,
		-44, -16, -20, -9, -1, 11, -6, -71,
		-45, -25, -16, -17, 3, 0, -5, -33,
		-36, -26, -12, -1, 9, -7, 6, -23,
		-24, -11, 7, 26, 24, 35, -8, -20,
		-5, 19, 26, 36, 17, 45, 61, 16,
		27, 32, 58, 62, 80, 67, 26, 44,
		32, 42, 32, 51, 63, 9, 31, 43,
	},
	{ // queen
		-1, -18, -9, 10, -15, -25, -31, -50,
		-35, -8, 11, 2, 8, 15, -3, 1,
		-14, 2, -11, -2, -5, 2, 14, 5,
		-9, -26, -9, -10, -2, -4, 3, -3,
		-27, -27, -16, -16, -1, 17, -2, 1,
		-13, -17, 7, 8, 29, 56, 47, 57,
		-24, -39, -5, 1, -16, 57, 28, 54,
		-28, 0, 29, 12, 59, 44, 43, 45,
	},
	{ // king
		-15, 36, 12, -54, 8, -28, 24, 14,
		1, 7, -8, -64, -43, -16, 9, 8,
		-14, -14, -22, -46, -44, -30, -15, -27,
		-49, -1, -27, -39, -46, -44, -33, -51,
		-17, -20, -12, -27, -30, -25, -14, -36,
		-9, 24, 2, -16, -20, 6, 22, -22,
		29, -1, -20, -7, -8, -4, -38, -29,
		-65, 23, 16, -15, -56, -34, 2, 13,
	},
}

var pstEG = [6][64]int{
	{ // pawn
		0, 0, 0, 0, 0, 0, 0, 0,
		13, 8, 8, 10, 13, 0, 2, -7,
		4, 7, -6, 1, 0, -5, -1, -8,
		13, 9, -3, -7, -7, -8, 3, -1,
		32, 24, 13, 5, -2, 4, 17, 17,
		94, 100, 85, 67, 56, 53, 82, 84,
		178, 173, 158, 134, 147, 132, 165, 187,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	{ // knight
		-29, -51, -23, -15, -22, -18, -50, -64,
		-42, -20, -10, -5, -2, -20, -23, -44,
		-23, -3, -1, 15, 10, -3, -20, -22,
		-18, -6, 16, 25, 16, 17, 4, -18,
		-17, 3, 22, 22, 22, 11, 8, -18,
		-24, -20, 10, 9, -1, -9, -19, -41,
		-25, -8, -25, -2, -9, -25, -24, -52,
		-58, -38, -13, -28, -31, -27, -63, -99,
	},
	{ // bishop
		-23, -9, -23, -5, -9, -16, -5, -17,
		-14, -18, -7, -1, 4, -9, -15, -27,
		-12, -3, 8, 10, 13, 3, -7, -15,
		-6, 3, 13, 19, 7, 10, -3, -9,
		-3, 9, 12, 9, 14, 10, 3, 2,
		2, -8, 0, -1, -2, 6, 0, 4,
		-8, -4, 7, -12, -3, -13, -4, -14,
		-14, -21, -11, -8, -7, -9, -17, -24,
	},
	{ // rook
		-9, 2, 3, -1, -5, -13, 4, -20,
		-6, -6, 0, 2, -9, -9, -11, -3,
		-4, 0, -5, -1, -7, -12, -8, -16,
		3, 5, 8, 4, -5, -6, -8, -11,
		4, 3, 13, 1, 2, 1, -1, 2,
		7, 7, 7, 5, 4, -3, -5, -3,
		11, 13, 13, 11, -3, 3, 8, 3,
		13, 10, 18, 15, 12, 12, 8, 5,
	},
	{ // queen
		-33, -28, -22, -43, -5, -32, -20, -41,
		-22, -23, -30, -16, -16, -23, -36, -32,
		-16, -27, 15, 6, 9, 17, 10, 5,
		-18, 28, 19, 47, 31, 34, 39, 23,
		3, 22, 24, 45, 57, 40, 57, 36,
		-20, 6, 9, 49, 47, 35, 19, 9,
		-17, 20, 32, 41, 58, 25, 30, 0,
		-9, 22, 22, 27, 27, 19, 10, 20,
	},
	{ // king
		-53, -34, -21, -11, -28, -14, -24, -43,
		-27, -11, 4, 13, 14, 4, -5, -17,
		-19, -3, 11, 21, 23, 16, 7, -9,
		-18, -4, 21, 24, 27, 23, 9, -11,
		-8, 22, 24, 27, 26, 33, 26, 3,
		10, 17, 23, 15, 20, 45, 44, 13,
		-12, 17, 14, 17, 17, 38, 23, 11,
		-74, -35, -18, -18, -11, 15, 4, -17,
	},
}

const (
	bishopPairBonus   = 30
	rookOpenFile      = 25
	rookSemiOpenFile  = 12
	doubledPawn       = 12
	isolatedPawn      = 14
	tempoBonus        = 10
	kingShieldMissing = 10
)

var passedPawnBonus = [8]score{
	{0, 0}, {5, 10}, {10, 20}, {20, 35}, {35, 60}, {60, 100}, {100, 160}, {0, 0},
}

var mobilityWeight = [6]score{
	{0, 0}, {4, 4}, {3, 3}, {2, 4}, {1, 2}, {0, 0},
}

// Evaluate scores the position in centipawns from the side to move's
// perspective. It is a pure function of the position.
func Evaluate(p *board.Position) int {
	var total score
	phase := 0

	for c := board.White; c <= board.Black; c++ {
		side := evaluateSide(p, c)
		if c == board.White {
			total = total.add(side)
		} else {
			total = total.sub(side)
		}
		for pt := board.Knight; pt <= board.Queen; pt++ {
			phase += phaseWeights[pt] * p.Pieces[c][pt].Count()
		}
	}

	if phase > totalPhase {
		phase = totalPhase
	}
	blended := (total.mg*phase + total.eg*(totalPhase-phase)) / totalPhase

	if p.SideToMove == board.Black {
		blended = -blended
	}
	return blended + tempoBonus
}

func evaluateSide(p *board.Position, c board.Color) score {
	var s score
	them := c.Opponent()
	ourPawns := p.Pieces[c][board.Pawn]
	theirPawns := p.Pieces[them][board.Pawn]

	for pt := board.Pawn; pt <= board.King; pt++ {
		for bb := p.Pieces[c][pt]; bb != 0; {
			sq := bb.PopFirst()
			psq := sq
			if c == board.Black {
				psq = sq.Flip()
			}
			s = s.add(pieceValues[pt])
			s = s.add(score{pstMG[pt][psq], pstEG[pt][psq]})

			switch pt {
			case board.Knight:
				mob := (board.KnightAttacks(sq) &^ p.Occupied[c]).Count()
				s = s.add(mobilityWeight[pt].scale(mob))
			case board.Bishop:
				mob := (board.BishopAttacks(sq, p.All) &^ p.Occupied[c]).Count()
				s = s.add(mobilityWeight[pt].scale(mob))
			case board.Rook:
				mob := (board.RookAttacks(sq, p.All) &^ p.Occupied[c]).Count()
				s = s.add(mobilityWeight[pt].scale(mob))
				file := board.FileMask(sq.File())
				if file&ourPawns == 0 {
					if file&theirPawns == 0 {
						s.mg += rookOpenFile
						s.eg += rookOpenFile / 2
					} else {
						s.mg += rookSemiOpenFile
						s.eg += rookSemiOpenFile / 2
					}
				}
			case board.Queen:
				mob := (board.QueenAttacks(sq, p.All) &^ p.Occupied[c]).Count()
				s = s.add(mobilityWeight[pt].scale(mob))
			case board.Pawn:
				s = s.add(pawnTerms(sq, c, ourPawns, theirPawns))
			}
		}
	}

	if p.Pieces[c][board.Bishop].Count() >= 2 {
		s.mg += bishopPairBonus
		s.eg += bishopPairBonus
	}

	s = s.add(kingSafety(p, c))
	return s
}

func pawnTerms(sq board.Square, c board.Color, ours, theirs board.Bitboard) score {
	var s score
	file := board.FileMask(sq.File())

	if (file & ours).Count() > 1 {
		// Charged once per pawn, so a doubled pair pays the penalty twice.
		s.mg -= doubledPawn / 2
		s.eg -= doubledPawn
	}

	neighbors := file.East() | file.West()
	if neighbors&ours == 0 {
		s.mg -= isolatedPawn
		s.eg -= isolatedPawn
	}

	if isPassed(sq, c, theirs) {
		s = s.add(passedPawnBonus[sq.RelativeRank(c)])
	}
	return s
}

// isPassed reports whether no enemy pawn stands on this file or an adjacent
// file ahead of the pawn.
func isPassed(sq board.Square, c board.Color, theirs board.Bitboard) bool {
	file := board.FileMask(sq.File())
	span := file | file.East() | file.West()
	if c == board.White {
		for r := sq.Rank() + 1; r < 8; r++ {
			if span&board.RankMask(r)&theirs != 0 {
				return false
			}
		}
	} else {
		for r := sq.Rank() - 1; r >= 0; r-- {
			if span&board.RankMask(r)&theirs != 0 {
				return false
			}
		}
	}
	return true
}

// kingSafety charges for missing pawn shelter in front of the king. Only a
// middlegame term; an exposed king matters little with queens off.
func kingSafety(p *board.Position, c board.Color) score {
	king := p.KingSquare[c]
	shield := board.KingAttacks(king)
	if c == board.White {
		shield &= board.Bit(king).North() | board.Bit(king).NorthEast() | board.Bit(king).NorthWest()
	} else {
		shield &= board.Bit(king).South() | board.Bit(king).SouthEast() | board.Bit(king).SouthWest()
	}
	missing := shield.Count() - (shield & p.Pieces[c][board.Pawn]).Count()
	return score{mg: -missing * kingShieldMissing}
}
