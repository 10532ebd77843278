package engine

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/marlinchess/marlin/internal/board"
)

// SearchLimits bounds one search. Zero values mean unlimited; Infinite
// overrides everything and runs until Stop.
type SearchLimits struct {
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	WhiteTime time.Duration
	BlackTime time.Duration
	WhiteInc  time.Duration
	BlackInc  time.Duration
	MovesToGo int
	Infinite  bool
}

// Info is a per-iteration progress report passed to the OnInfo callback.
type Info struct {
	Depth    int
	SelDepth int
	Score    int
	Mate     int // mate distance in moves, 0 when Score is centipawns
	Nodes    uint64
	NPS      uint64
	Time     time.Duration
	HashFull int
	PV       []board.Move
}

// Result is the outcome of a completed search.
type Result struct {
	BestMove board.Move
	Score    int
	Depth    int
	Nodes    uint64
}

// Config holds engine settings that survive across searches.
type Config struct {
	HashMB       int
	DefaultDepth int
	Features     Features
	Logger       zerolog.Logger
}

// DefaultConfig returns the settings a new engine starts with.
func DefaultConfig() Config {
	return Config{
		HashMB:       64,
		DefaultDepth: 64,
		Features:     AllFeatures(),
		Logger:       zerolog.Nop(),
	}
}

// Engine is one engine session: a position, its game history, the shared
// transposition table, and settings. It is not safe for concurrent use
// except for Stop, which may be called from any goroutine while Search
// runs.
type Engine struct {
	pos     *board.Position
	history []uint64 // hashes of prior game positions, for repetition
	tt      *TranspositionTable
	cfg     Config
	log     zerolog.Logger

	stop      atomic.Bool
	searching atomic.Bool

	// Cumulative session counters, exported for persistence.
	TotalNodes    uint64
	TotalSearches uint64
	DeepestDepth  int

	// OnInfo, when set, receives a report after each completed iteration.
	OnInfo func(Info)
}

// New creates an engine at the starting position.
func New(cfg Config) *Engine {
	if cfg.HashMB < 1 {
		cfg.HashMB = 1
	}
	if cfg.DefaultDepth < 1 {
		cfg.DefaultDepth = 64
	}
	e := &Engine{
		pos: board.NewPosition(),
		tt:  NewTranspositionTable(cfg.HashMB),
		cfg: cfg,
		log: cfg.Logger,
	}
	e.history = append(e.history, e.pos.Hash)
	return e
}

// Position returns the current position. Callers must not mutate it while
// a search runs.
func (e *Engine) Position() *board.Position { return e.pos }

// SetPosition replaces the position and resets the game history to the
// given position as its first entry.
func (e *Engine) SetPosition(p *board.Position) {
	e.pos = p.Copy()
	e.history = e.history[:0]
	e.history = append(e.history, e.pos.Hash)
}

// PlayMove applies a legal move to the current position and extends the
// game history. It returns false if the move is not legal.
func (e *Engine) PlayMove(m board.Move) bool {
	if !e.pos.IsLegal(m) {
		return false
	}
	e.pos.MakeMove(m)
	e.history = append(e.history, e.pos.Hash)
	return true
}

// ParseMove resolves a UCI move string against the current position's legal
// moves, returning NoMove when it matches none.
func (e *Engine) ParseMove(uci string) board.Move {
	m, err := e.pos.ParseMove(uci)
	if err != nil {
		return board.NoMove
	}
	return m
}

// NewGame clears state carried between games: the transposition table and
// the game history.
func (e *Engine) NewGame() {
	e.tt.Clear()
	e.pos = board.NewPosition()
	e.history = e.history[:0]
	e.history = append(e.history, e.pos.Hash)
}

// ResizeHash replaces the transposition table with one of sizeMB megabytes.
func (e *Engine) ResizeHash(sizeMB int) {
	if sizeMB < 1 {
		sizeMB = 1
	}
	e.cfg.HashMB = sizeMB
	e.tt = NewTranspositionTable(sizeMB)
}

// SetFeatures reconfigures the search refinements.
func (e *Engine) SetFeatures(f Features) { e.cfg.Features = f }

// Features returns the current search configuration.
func (e *Engine) Features() Features { return e.cfg.Features }

// HashSnapshot serializes the transposition table for persistence.
func (e *Engine) HashSnapshot() []uint64 { return e.tt.Snapshot() }

// RestoreHash loads a snapshot produced by HashSnapshot.
func (e *Engine) RestoreHash(words []uint64) { e.tt.Restore(words) }

// Stop requests cooperative cancellation of the running search. The search
// returns the best move from the deepest fully completed iteration.
func (e *Engine) Stop() { e.stop.Store(true) }

// Searching reports whether a search is in progress.
func (e *Engine) Searching() bool { return e.searching.Load() }

// Search runs iterative deepening under the given limits and returns the
// best move found. It blocks until the search finishes or Stop is called.
func (e *Engine) Search(limits SearchLimits) Result {
	e.stop.Store(false)
	e.searching.Store(true)
	return e.run(limits)
}

// StartSearch claims the search state synchronously and runs the search on
// a new goroutine, delivering the result on the returned channel. A Stop
// issued any time after StartSearch returns is guaranteed to land; with
// Search on a caller goroutine the flag reset could race with it.
func (e *Engine) StartSearch(limits SearchLimits) <-chan Result {
	e.stop.Store(false)
	e.searching.Store(true)
	ch := make(chan Result, 1)
	go func() { ch <- e.run(limits) }()
	return ch
}

func (e *Engine) run(limits SearchLimits) Result {
	defer e.searching.Store(false)

	e.tt.NewSearch()

	maxDepth := limits.Depth
	if maxDepth <= 0 || limits.Infinite {
		maxDepth = e.cfg.DefaultDepth
	}
	if maxDepth > MaxPly {
		maxDepth = MaxPly
	}

	deadline, softBudget := e.deadlines(limits)

	s := &searcher{
		pos:       e.pos,
		tt:        e.tt,
		features:  e.cfg.Features,
		stop:      &e.stop,
		deadline:  deadline,
		nodeLimit: limits.Nodes,
		hashes:    append([]uint64(nil), e.history...),
	}

	start := time.Now()
	var result Result

	for depth := 1; depth <= maxDepth; depth++ {
		move, score := s.search(depth)
		if s.aborted && depth > 1 {
			break // keep the last completed iteration
		}
		result = Result{BestMove: move, Score: score, Depth: depth, Nodes: s.nodes}

		elapsed := time.Since(start)
		e.report(depth, s, score, elapsed)
		if s.aborted {
			break
		}
		if score >= MateInMaxPly || score <= -MateInMaxPly {
			break // mate found, deeper search cannot improve it
		}
		// Starting another iteration rarely pays once the soft budget is
		// spent; the next one would likely be cut off mid-way.
		if softBudget > 0 && elapsed >= softBudget {
			break
		}
	}

	e.TotalSearches++
	e.TotalNodes += s.nodes
	if result.Depth > e.DeepestDepth {
		e.DeepestDepth = result.Depth
	}
	e.log.Debug().
		Int("depth", result.Depth).
		Int("score", result.Score).
		Uint64("nodes", s.nodes).
		Str("bestmove", result.BestMove.String()).
		Msg("search finished")
	return result
}

func (e *Engine) deadlines(limits SearchLimits) (deadline time.Time, soft time.Duration) {
	if limits.Infinite {
		return time.Time{}, 0
	}
	if limits.MoveTime > 0 {
		return time.Now().Add(limits.MoveTime - moveOverhead), 0
	}

	remaining, inc := limits.WhiteTime, limits.WhiteInc
	if e.pos.SideToMove == board.Black {
		remaining, inc = limits.BlackTime, limits.BlackInc
	}
	if remaining <= 0 {
		return time.Time{}, 0
	}
	optimum, maximum := allocateTime(remaining, inc, limits.MovesToGo)
	return time.Now().Add(maximum), optimum
}

func (e *Engine) report(depth int, s *searcher, score int, elapsed time.Duration) {
	if e.OnInfo == nil {
		return
	}
	info := Info{
		Depth:    depth,
		SelDepth: s.seldepth,
		Score:    score,
		Nodes:    s.nodes,
		Time:     elapsed,
		HashFull: e.tt.HashFull(),
		PV:       append([]board.Move(nil), s.pv.line()...),
	}
	if elapsed > 0 {
		info.NPS = uint64(float64(s.nodes) / elapsed.Seconds())
	}
	if score >= MateInMaxPly {
		info.Mate = (MateScore - score + 1) / 2
	} else if score <= -MateInMaxPly {
		info.Mate = -(MateScore + score + 1) / 2
	}
	e.OnInfo(info)
}

// Perft counts leaf nodes from the current position, the correctness oracle
// for the move generator.
func (e *Engine) Perft(depth int) uint64 {
	return e.pos.Perft(depth)
}
