// Package engine implements position evaluation and alpha-beta search with
// a transposition table, iterative deepening, and UCI-style time control.
package engine

import (
	"sync/atomic"

	"github.com/marlinchess/marlin/internal/board"
)

// Bound classifies a transposition table score relative to the search
// window that produced it.
type Bound uint8

const (
	BoundNone  Bound = iota
	BoundExact       // score is the true value
	BoundLower       // score is a lower bound (fail high)
	BoundUpper       // score is an upper bound (fail low)
)

// ttEntry is the unpacked form of one table slot.
type ttEntry struct {
	Move  board.Move
	Score int16
	Depth int8
	Bound Bound
	Gen   uint8
}

// TranspositionTable is a fixed-size hash table shared by all plies of a
// search. Slots are a pair of uint64s, key and data, written without locks:
// the stored key is the position key XORed with the data word, so a torn
// write makes the entry fail its probe instead of returning garbage.
type TranspositionTable struct {
	keys []atomic.Uint64
	data []atomic.Uint64
	mask uint64
	gen  atomic.Uint32
}

const ttBytesPerEntry = 16

// NewTranspositionTable allocates a table of about sizeMB megabytes,
// rounded down to a power-of-two entry count.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	if sizeMB < 1 {
		sizeMB = 1
	}
	entries := uint64(sizeMB) * 1024 * 1024 / ttBytesPerEntry
	n := uint64(1)
	for n*2 <= entries {
		n *= 2
	}
	return &TranspositionTable{
		keys: make([]atomic.Uint64, n),
		data: make([]atomic.Uint64, n),
		mask: n - 1,
	}
}

// Clear empties the table.
func (tt *TranspositionTable) Clear() {
	for i := range tt.keys {
		tt.keys[i].Store(0)
		tt.data[i].Store(0)
	}
	tt.gen.Store(0)
}

// NewSearch advances the generation counter. Entries from earlier searches
// stay probeable but lose replacement priority.
func (tt *TranspositionTable) NewSearch() {
	tt.gen.Add(1)
}

// Len returns the number of slots.
func (tt *TranspositionTable) Len() int { return len(tt.keys) }

func packEntry(e ttEntry) uint64 {
	return uint64(e.Move) |
		uint64(uint16(e.Score))<<16 |
		uint64(uint8(e.Depth))<<32 |
		uint64(e.Bound)<<40 |
		uint64(e.Gen)<<48
}

func unpackEntry(d uint64) ttEntry {
	return ttEntry{
		Move:  board.Move(d),
		Score: int16(d >> 16),
		Depth: int8(d >> 32),
		Bound: Bound(d >> 40 & 0xFF),
		Gen:   uint8(d >> 48),
	}
}

// Probe looks up key and reports whether a matching entry was found.
func (tt *TranspositionTable) Probe(key uint64) (ttEntry, bool) {
	i := key & tt.mask
	d := tt.data[i].Load()
	if tt.keys[i].Load()^d != key {
		return ttEntry{}, false
	}
	return unpackEntry(d), true
}

// Store records a search result for key. An existing entry is kept when it
// is from the current generation and deeper than the new one, unless the
// new entry carries an exact score.
func (tt *TranspositionTable) Store(key uint64, move board.Move, score int16, depth int8, bound Bound) {
	i := key & tt.mask
	gen := uint8(tt.gen.Load())

	if old := tt.data[i].Load(); tt.keys[i].Load()^old == key {
		prev := unpackEntry(old)
		if prev.Gen == gen && prev.Depth > depth && bound != BoundExact {
			return
		}
		if move == board.NoMove {
			move = prev.Move // keep the old best move on move-less stores
		}
	}

	d := packEntry(ttEntry{Move: move, Score: score, Depth: depth, Bound: bound, Gen: gen})
	tt.keys[i].Store(key ^ d)
	tt.data[i].Store(d)
}

// HashFull estimates table occupancy in permille, sampling the first
// thousand slots the way UCI "hashfull" reporting expects.
func (tt *TranspositionTable) HashFull() int {
	gen := uint8(tt.gen.Load())
	n := 1000
	if len(tt.data) < n {
		n = len(tt.data)
	}
	used := 0
	for i := 0; i < n; i++ {
		d := tt.data[i].Load()
		if d != 0 && unpackEntry(d).Gen == gen {
			used++
		}
	}
	return used * 1000 / n
}

// Snapshot serializes every occupied slot as interleaved key/data words for
// persistence. The result is valid input for Restore on a table of any
// size.
func (tt *TranspositionTable) Snapshot() []uint64 {
	out := make([]uint64, 0, 4096)
	for i := range tt.data {
		d := tt.data[i].Load()
		if d == 0 {
			continue
		}
		k := tt.keys[i].Load() ^ d
		out = append(out, k, d)
	}
	return out
}

// Restore loads entries produced by Snapshot, rehashing each into this
// table's slots.
func (tt *TranspositionTable) Restore(words []uint64) {
	for i := 0; i+1 < len(words); i += 2 {
		key, d := words[i], words[i+1]
		e := unpackEntry(d)
		tt.Store(key, e.Move, e.Score, e.Depth, e.Bound)
	}
}

// Mate scores are stored relative to the probing node, not the root, so a
// mate found at one ply stays correct when the entry is hit at another.

// scoreToTT converts a root-relative score for storage at the given ply.
func scoreToTT(score, ply int) int16 {
	if score >= MateInMaxPly {
		return int16(score + ply)
	}
	if score <= -MateInMaxPly {
		return int16(score - ply)
	}
	return int16(score)
}

// scoreFromTT converts a stored score back to root-relative at the given
// ply.
func scoreFromTT(score int16, ply int) int {
	s := int(score)
	if s >= MateInMaxPly {
		return s - ply
	}
	if s <= -MateInMaxPly {
		return s + ply
	}
	return s
}
