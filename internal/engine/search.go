package engine

import (
	"sync/atomic"
	"time"

	"github.com/marlinchess/marlin/internal/board"
)

const (
	// Infinity bounds every score the search can produce.
	Infinity = 30000
	// MateScore minus the ply distance encodes "mate in N plies". Scores at
	// or beyond MateInMaxPly are mate scores.
	MateScore    = 29000
	MateInMaxPly = MateScore - MaxPly
	DrawScore    = 0
	// MaxPly caps the search stack depth, extensions included.
	MaxPly = 128

	// stopCheckInterval is how many nodes pass between polls of the stop
	// flag and the deadline. Small enough to keep stop latency well under
	// any interactive threshold.
	stopCheckInterval = 2048

	nullMoveReduction = 2
	deltaMargin       = 200
)

// Features toggles the search refinements independently. AlphaBeta in
// particular only changes how many nodes a fixed-depth search visits, never
// its score or move; tests rely on that equivalence.
type Features struct {
	AlphaBeta      bool // beta cutoffs and window narrowing
	TTable         bool // transposition table probes and stores
	Ordering       bool // hash move, MVV-LVA, killers, history
	Quiescence     bool // capture search at the horizon
	NullMove       bool // null-move pruning
	CheckExtension bool // extend when in check
}

// AllFeatures returns the default configuration with everything on.
func AllFeatures() Features {
	return Features{
		AlphaBeta:      true,
		TTable:         true,
		Ordering:       true,
		Quiescence:     true,
		NullMove:       true,
		CheckExtension: true,
	}
}

// pvTable is a triangular principal variation table.
type pvTable struct {
	length [MaxPly + 1]int
	moves  [MaxPly + 1][MaxPly + 1]board.Move
}

func (pv *pvTable) reset(ply int) {
	pv.length[ply] = 0
}

// record sets m as the move at ply and pulls up the child PV below it.
func (pv *pvTable) record(ply int, m board.Move) {
	pv.moves[ply][0] = m
	copy(pv.moves[ply][1:], pv.moves[ply+1][:pv.length[ply+1]])
	pv.length[ply] = pv.length[ply+1] + 1
}

func (pv *pvTable) line() []board.Move {
	return pv.moves[0][:pv.length[0]]
}

// searcher holds the per-search state. One searcher runs one search; the
// Engine creates a fresh one per go command over shared tables.
type searcher struct {
	pos      *board.Position
	tt       *TranspositionTable
	features Features

	stop      *atomic.Bool
	deadline  time.Time
	nodeLimit uint64

	nodes    uint64
	seldepth int
	aborted  bool

	killers killerTable
	history historyTable
	pv      pvTable

	// hashes holds the Zobrist keys of every position on the current line,
	// game history included, for repetition detection.
	hashes []uint64
}

// checkAbort polls the cooperative stop conditions. Called every
// stopCheckInterval nodes so a stop request is honored promptly.
func (s *searcher) checkAbort() {
	if s.stop != nil && s.stop.Load() {
		s.aborted = true
	}
	if s.nodeLimit > 0 && s.nodes >= s.nodeLimit {
		s.aborted = true
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.aborted = true
	}
}

func (s *searcher) countNode() {
	s.nodes++
	if s.nodes%stopCheckInterval == 0 {
		s.checkAbort()
	}
}

// isRepetition reports whether the current position occurred before on the
// line being searched or in the game history. A single prior occurrence is
// scored as a draw; waiting for the third repetition only delays the
// inevitable.
func (s *searcher) isRepetition() bool {
	h := s.pos.Hash
	// The last entry is the current position itself.
	for i := len(s.hashes) - 2; i >= 0; i-- {
		if s.hashes[i] == h {
			return true
		}
	}
	return false
}

func (s *searcher) isDraw() bool {
	return s.pos.HalfMoveClock >= 100 || s.pos.InsufficientMaterial() || s.isRepetition()
}

// search runs a fixed-depth search from the root and returns the best move
// and its score. The PV and node counters are left populated for the
// caller to report.
func (s *searcher) search(depth int) (board.Move, int) {
	alpha, beta := -Infinity, Infinity

	var list board.MoveList
	s.pos.LegalMoves(&list)
	if list.Len() == 0 {
		return board.NoMove, terminalScore(s.pos, 0)
	}

	scores := make([]int, list.Len())
	hashMove := board.NoMove
	if s.features.TTable {
		if e, ok := s.tt.Probe(s.pos.Hash); ok {
			hashMove = e.Move
		}
	}
	if s.features.Ordering {
		s.scoreMoves(s.pos, &list, scores, hashMove, 0)
	}

	best := board.NoMove
	bestScore := -Infinity
	for i := 0; i < list.Len(); i++ {
		m := list.Get(i)
		if s.features.Ordering {
			m = pickMove(&list, scores, i)
		}

		u := s.pos.MakeMove(m)
		s.hashes = append(s.hashes, s.pos.Hash)
		score := -s.negamax(depth-1, 1, -beta, -alpha)
		s.hashes = s.hashes[:len(s.hashes)-1]
		s.pos.UnmakeMove(&u)

		if s.aborted {
			break
		}
		if score > bestScore {
			bestScore = score
			best = m
			s.pv.record(0, m)
			if s.features.AlphaBeta && score > alpha {
				alpha = score
			}
		}
	}

	if best == board.NoMove {
		// Aborted before the first move finished; fall back to any legal
		// move so the caller always has something to play.
		best = list.Get(0)
		bestScore = 0
	}

	if s.features.TTable && !s.aborted {
		s.tt.Store(s.pos.Hash, best, scoreToTT(bestScore, 0), int8(depth), BoundExact)
	}
	return best, bestScore
}

func (s *searcher) negamax(depth, ply, alpha, beta int) int {
	s.countNode()
	if s.aborted {
		return 0
	}
	if ply > s.seldepth {
		s.seldepth = ply
	}
	s.pv.reset(ply)

	if s.isDraw() {
		return DrawScore
	}
	if ply >= MaxPly {
		return Evaluate(s.pos)
	}

	// Mate distance pruning: even an immediate mate here cannot beat a
	// shorter mate already found closer to the root.
	if s.features.AlphaBeta {
		if a := -MateScore + ply; a > alpha {
			alpha = a
		}
		if b := MateScore - ply; b < beta {
			beta = b
		}
		if alpha >= beta {
			return alpha
		}
	}

	inCheck := s.pos.InCheck()
	if inCheck && s.features.CheckExtension {
		depth++
	}

	if depth <= 0 {
		if s.features.Quiescence {
			return s.quiescence(ply, alpha, beta)
		}
		return Evaluate(s.pos)
	}

	hashMove := board.NoMove
	if s.features.TTable {
		if e, ok := s.tt.Probe(s.pos.Hash); ok {
			hashMove = e.Move
			if int(e.Depth) >= depth && s.features.AlphaBeta {
				score := scoreFromTT(e.Score, ply)
				switch e.Bound {
				case BoundExact:
					return score
				case BoundLower:
					if score >= beta {
						return score
					}
				case BoundUpper:
					if score <= alpha {
						return score
					}
				}
			}
		}
	}

	if s.features.NullMove && s.features.AlphaBeta && !inCheck &&
		depth > nullMoveReduction && s.pos.HasNonPawnMaterial() {
		u := s.pos.MakeNullMove()
		s.hashes = append(s.hashes, s.pos.Hash)
		score := -s.negamax(depth-1-nullMoveReduction, ply+1, -beta, -beta+1)
		s.hashes = s.hashes[:len(s.hashes)-1]
		s.pos.UnmakeNullMove(&u)
		if s.aborted {
			return 0
		}
		if score >= beta && score < MateInMaxPly {
			return beta
		}
	}

	var list board.MoveList
	s.pos.PseudoLegalMoves(&list)
	var scores []int
	if s.features.Ordering {
		scores = make([]int, list.Len())
		s.scoreMoves(s.pos, &list, scores, hashMove, ply)
	}

	us := s.pos.SideToMove
	bound := BoundUpper
	bestScore := -Infinity
	bestMove := board.NoMove
	moved := 0

	for i := 0; i < list.Len(); i++ {
		m := list.Get(i)
		if s.features.Ordering {
			m = pickMove(&list, scores, i)
		}

		u := s.pos.MakeMove(m)
		if s.pos.KingAttacked(us) {
			s.pos.UnmakeMove(&u)
			continue
		}
		moved++
		s.hashes = append(s.hashes, s.pos.Hash)
		score := -s.negamax(depth-1, ply+1, -beta, -alpha)
		s.hashes = s.hashes[:len(s.hashes)-1]
		s.pos.UnmakeMove(&u)

		if s.aborted {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				bound = BoundExact
				s.pv.record(ply, m)
				if s.features.AlphaBeta {
					alpha = score
					if alpha >= beta {
						bound = BoundLower
						if !m.IsCapture() && !m.IsPromotion() {
							s.killers.add(ply, m)
							s.history.add(us, m, depth)
						}
						break
					}
				}
			}
		}
	}

	if moved == 0 {
		return terminalScore(s.pos, ply)
	}

	if s.features.TTable {
		s.tt.Store(s.pos.Hash, bestMove, scoreToTT(bestScore, ply), int8(depth), bound)
	}
	return bestScore
}

// quiescence searches captures and queen promotions until the position is
// quiet, so the horizon evaluation never lands mid-exchange.
func (s *searcher) quiescence(ply, alpha, beta int) int {
	s.countNode()
	if s.aborted {
		return 0
	}
	if ply > s.seldepth {
		s.seldepth = ply
	}

	standPat := Evaluate(s.pos)
	if ply >= MaxPly {
		return standPat
	}
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}

	var list board.MoveList
	s.pos.PseudoLegalCaptures(&list)
	var scores []int
	if s.features.Ordering {
		scores = make([]int, list.Len())
		s.scoreMoves(s.pos, &list, scores, board.NoMove, ply)
	}

	us := s.pos.SideToMove
	best := standPat
	for i := 0; i < list.Len(); i++ {
		m := list.Get(i)
		if s.features.Ordering {
			m = pickMove(&list, scores, i)
		}

		// Delta pruning: a capture that cannot lift the stand-pat score
		// past alpha even with a generous margin is not worth playing out.
		if s.features.AlphaBeta && !m.IsPromotion() {
			victim := board.Pawn
			if m.Kind() != board.EnPassant {
				victim = s.pos.PieceAt(m.To()).Type()
			}
			if standPat+pieceValues[victim].mg+deltaMargin <= alpha {
				continue
			}
		}

		u := s.pos.MakeMove(m)
		if s.pos.KingAttacked(us) {
			s.pos.UnmakeMove(&u)
			continue
		}
		score := -s.quiescence(ply+1, -beta, -alpha)
		s.pos.UnmakeMove(&u)

		if s.aborted {
			return 0
		}
		if score > best {
			best = score
			if score > alpha {
				alpha = score
				if alpha >= beta {
					break
				}
			}
		}
	}
	return best
}

// terminalScore scores a position with no legal moves: mate from the moving
// side's perspective, adjusted so nearer mates score higher, or stalemate.
func terminalScore(p *board.Position, ply int) int {
	if p.InCheck() {
		return -MateScore + ply
	}
	return DrawScore
}
