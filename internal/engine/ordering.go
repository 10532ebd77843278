package engine

import "github.com/marlinchess/marlin/internal/board"

// Move ordering. Good ordering is what makes alpha-beta cut: the hash move
// first, then captures by most-valuable-victim least-valuable-attacker,
// then killers, then quiets by history score.

const (
	scoreHashMove  = 1 << 22
	scoreCapture   = 1 << 20
	scoreKiller1   = 1<<20 - 1
	scoreKiller2   = 1<<20 - 2
	scorePromotion = 1 << 19
)

// mvvLVA[victim][attacker], victims indexed Pawn..Queen.
var mvvLVA = func() [6][6]int {
	var t [6][6]int
	values := [6]int{1, 2, 3, 4, 5, 6}
	for victim := board.Pawn; victim <= board.Queen; victim++ {
		for attacker := board.Pawn; attacker <= board.King; attacker++ {
			t[victim][attacker] = values[victim]*16 - values[attacker]
		}
	}
	return t
}()

type killerTable [MaxPly][2]board.Move

func (k *killerTable) add(ply int, m board.Move) {
	if k[ply][0] != m {
		k[ply][1] = k[ply][0]
		k[ply][0] = m
	}
}

func (k *killerTable) clear() {
	*k = killerTable{}
}

// historyTable accumulates depth-squared bonuses for quiet moves that cause
// beta cutoffs, indexed by color, from, and to.
type historyTable [2][64][64]int

func (h *historyTable) add(c board.Color, m board.Move, depth int) {
	v := &h[c][m.From()][m.To()]
	*v += depth * depth
	if *v >= scorePromotion {
		// Halve everything rather than clip, preserving relative order.
		for from := 0; from < 64; from++ {
			for to := 0; to < 64; to++ {
				h[c][from][to] /= 2
			}
		}
	}
}

func (h *historyTable) get(c board.Color, m board.Move) int {
	return h[c][m.From()][m.To()]
}

func (h *historyTable) clear() {
	*h = historyTable{}
}

// scoreMoves assigns an ordering score to each move in list. Scores are
// kept in a parallel slice consumed by pickMove.
func (s *searcher) scoreMoves(p *board.Position, list *board.MoveList, scores []int, hashMove board.Move, ply int) {
	for i := 0; i < list.Len(); i++ {
		m := list.Get(i)
		switch {
		case m == hashMove:
			scores[i] = scoreHashMove
		case m.Kind() == board.EnPassant:
			scores[i] = scoreCapture + mvvLVA[board.Pawn][board.Pawn]
		case m.IsCapture():
			victim := p.PieceAt(m.To()).Type()
			attacker := p.PieceAt(m.From()).Type()
			scores[i] = scoreCapture + mvvLVA[victim][attacker]
			if m.IsPromotion() {
				scores[i] += int(m.Promotion())
			}
		case m.IsPromotion():
			scores[i] = scorePromotion + int(m.Promotion())
		case m == s.killers[ply][0]:
			scores[i] = scoreKiller1
		case m == s.killers[ply][1]:
			scores[i] = scoreKiller2
		default:
			scores[i] = s.history.get(p.SideToMove, m)
		}
	}
}

// pickMove selection-sorts the best remaining move to position i and
// returns it. Cheaper than a full sort when a cutoff ends iteration early.
func pickMove(list *board.MoveList, scores []int, i int) board.Move {
	best := i
	for j := i + 1; j < list.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != i {
		list.Swap(i, best)
		scores[i], scores[best] = scores[best], scores[i]
	}
	return list.Get(i)
}
