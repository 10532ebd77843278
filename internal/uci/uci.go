// Package uci speaks the Universal Chess Interface over a reader/writer
// pair. The driver owns an engine session and serializes all protocol
// output; searches run on their own goroutine so stop and isready stay
// responsive.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/marlinchess/marlin/internal/board"
	"github.com/marlinchess/marlin/internal/engine"
	"github.com/marlinchess/marlin/internal/storage"
)

const (
	engineName   = "Marlin"
	engineAuthor = "the Marlin authors"

	minHashMB = 1
	maxHashMB = 4096
)

// Driver runs the UCI session.
type Driver struct {
	eng   *engine.Engine
	store *storage.Store // nil when persistence is off
	log   zerolog.Logger

	in  *bufio.Scanner
	out io.Writer
	mu  sync.Mutex // guards out

	opts       storage.Options
	searchDone chan struct{} // closed when the active search goroutine exits
}

// New builds a driver over the given streams. store may be nil.
func New(eng *engine.Engine, store *storage.Store, in io.Reader, out io.Writer, log zerolog.Logger) *Driver {
	d := &Driver{
		eng:   eng,
		store: store,
		log:   log,
		in:    bufio.NewScanner(in),
		out:   out,
		opts:  storage.DefaultOptions(),
	}
	d.eng.OnInfo = d.sendInfo
	return d
}

// SetOptions seeds the driver with persisted options, before Run.
func (d *Driver) SetOptions(opts storage.Options) {
	d.opts = opts
}

// Options returns the current option values, for persisting on exit.
func (d *Driver) Options() storage.Options { return d.opts }

// Run processes commands until quit or EOF. It returns the first write
// error, if any command output failed.
func (d *Driver) Run() error {
	for d.in.Scan() {
		line := strings.TrimSpace(d.in.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "uci":
			d.cmdUCI()
		case "isready":
			d.send("readyok")
		case "ucinewgame":
			d.waitSearch()
			d.eng.NewGame()
		case "position":
			d.waitSearch()
			d.cmdPosition(args)
		case "go":
			d.cmdGo(args)
		case "stop":
			d.eng.Stop()
		case "quit":
			d.eng.Stop()
			d.waitSearch()
			return nil
		case "setoption":
			d.waitSearch()
			d.cmdSetOption(args)
		case "d":
			d.send("%s", d.eng.Position().String())
		case "perft":
			d.cmdPerft(args)
		default:
			d.log.Debug().Str("command", cmd).Msg("unknown command ignored")
		}
	}
	d.eng.Stop()
	d.waitSearch()
	return d.in.Err()
}

func (d *Driver) send(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, format+"\n", args...)
}

func (d *Driver) cmdUCI() {
	d.send("id name %s", engineName)
	d.send("id author %s", engineAuthor)
	d.send("option name Hash type spin default %d min %d max %d",
		storage.DefaultOptions().HashMB, minHashMB, maxHashMB)
	d.send("option name PersistHash type check default false")
	d.send("option name Clear Hash type button")
	d.send("uciok")
}

// cmdPosition parses "position [startpos | fen <6 fields>] [moves m1 m2
// ...]". The move list is replayed on a scratch engine state and committed
// only if every move is legal, so a bad move leaves the session position
// untouched.
func (d *Driver) cmdPosition(args []string) {
	var pos *board.Position
	var movesAt int

	switch {
	case len(args) >= 1 && args[0] == "startpos":
		pos = board.NewPosition()
		movesAt = 1
	case len(args) >= 7 && args[0] == "fen":
		fen := strings.Join(args[1:7], " ")
		p, err := board.ParseFEN(fen)
		if err != nil {
			d.log.Error().Err(err).Str("fen", fen).Msg("position rejected")
			return
		}
		pos = p
		movesAt = 7
	default:
		d.log.Error().Strs("args", args).Msg("malformed position command")
		return
	}

	var moves []string
	if movesAt < len(args) && args[movesAt] == "moves" {
		moves = args[movesAt+1:]
	} else if movesAt < len(args) {
		d.log.Error().Strs("args", args).Msg("malformed position command")
		return
	}

	scratch := pos.Copy()
	for _, uci := range moves {
		m, err := scratch.ParseMove(uci)
		if err != nil {
			d.log.Error().Err(err).Msg("position command rejected, position unchanged")
			return
		}
		scratch.MakeMove(m)
	}

	// Replay validated: apply to the real session.
	d.eng.SetPosition(pos)
	for _, uci := range moves {
		d.eng.PlayMove(d.eng.ParseMove(uci))
	}
}

func (d *Driver) cmdGo(args []string) {
	if d.eng.Searching() {
		return // one search at a time
	}

	var limits engine.SearchLimits
	for i := 0; i < len(args); i++ {
		intArg := func() int {
			if i+1 >= len(args) {
				return 0
			}
			i++
			n, _ := strconv.Atoi(args[i])
			return n
		}
		switch args[i] {
		case "depth":
			limits.Depth = intArg()
		case "nodes":
			limits.Nodes = uint64(intArg())
		case "movetime":
			limits.MoveTime = time.Duration(intArg()) * time.Millisecond
		case "wtime":
			limits.WhiteTime = time.Duration(intArg()) * time.Millisecond
		case "btime":
			limits.BlackTime = time.Duration(intArg()) * time.Millisecond
		case "winc":
			limits.WhiteInc = time.Duration(intArg()) * time.Millisecond
		case "binc":
			limits.BlackInc = time.Duration(intArg()) * time.Millisecond
		case "movestogo":
			limits.MovesToGo = intArg()
		case "infinite":
			limits.Infinite = true
		case "perft":
			d.runPerft(intArg())
			return
		}
	}

	results := d.eng.StartSearch(limits)
	done := make(chan struct{})
	d.searchDone = done
	go func() {
		defer close(done)
		res := <-results
		d.send("bestmove %s", res.BestMove)
	}()
}

func (d *Driver) cmdPerft(args []string) {
	depth := 1
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			depth = n
		}
	}
	d.runPerft(depth)
}

func (d *Driver) runPerft(depth int) {
	if depth < 1 {
		depth = 1
	}
	start := time.Now()
	counts := d.eng.Position().PerftDivide(depth)

	var total uint64
	lines := make([]string, 0, len(counts))
	for m, n := range counts {
		lines = append(lines, fmt.Sprintf("%s: %d", m, n))
		total += n
	}
	// Map order is random; sort for stable output.
	for i := 1; i < len(lines); i++ {
		for j := i; j > 0 && lines[j] < lines[j-1]; j-- {
			lines[j], lines[j-1] = lines[j-1], lines[j]
		}
	}
	for _, l := range lines {
		d.send("%s", l)
	}
	elapsed := time.Since(start)
	d.send("")
	d.send("Nodes searched: %d", total)
	d.log.Info().Int("depth", depth).Uint64("nodes", total).Dur("elapsed", elapsed).Msg("perft")
}

func (d *Driver) cmdSetOption(args []string) {
	name, value := parseSetOption(args)
	switch strings.ToLower(name) {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil || mb < minHashMB || mb > maxHashMB {
			d.log.Error().Str("value", value).Msg("bad Hash value")
			return
		}
		d.eng.ResizeHash(mb)
		d.opts.HashMB = mb
	case "persisthash":
		d.opts.PersistHash = strings.EqualFold(value, "true")
	case "clear hash":
		d.eng.NewGame()
	default:
		d.log.Debug().Str("name", name).Msg("unknown option ignored")
	}
	if d.store != nil {
		if err := d.store.SaveOptions(d.opts); err != nil {
			d.log.Error().Err(err).Msg("persist options")
		}
	}
}

// parseSetOption splits "name <words> value <words>". Option names may
// contain spaces, so everything between the keywords belongs to the name.
func parseSetOption(args []string) (name, value string) {
	var nameParts, valueParts []string
	target := &nameParts
	for _, a := range args {
		switch a {
		case "name":
			target = &nameParts
		case "value":
			target = &valueParts
		default:
			*target = append(*target, a)
		}
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " ")
}

func (d *Driver) sendInfo(info engine.Info) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d seldepth %d", info.Depth, info.SelDepth)
	if info.Mate != 0 {
		fmt.Fprintf(&sb, " score mate %d", info.Mate)
	} else {
		fmt.Fprintf(&sb, " score cp %d", info.Score)
	}
	fmt.Fprintf(&sb, " nodes %d nps %d hashfull %d time %d",
		info.Nodes, info.NPS, info.HashFull, info.Time.Milliseconds())
	if len(info.PV) > 0 {
		sb.WriteString(" pv")
		for _, m := range info.PV {
			sb.WriteByte(' ')
			sb.WriteString(m.String())
		}
	}
	d.send("%s", sb.String())
}

// waitSearch blocks until the active search goroutine, if any, has exited.
func (d *Driver) waitSearch() {
	if d.searchDone != nil {
		d.eng.Stop()
		<-d.searchDone
		d.searchDone = nil
	}
}
