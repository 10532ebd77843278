package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a 64-bit set of squares, one bit per square in the same
// little-endian rank-file mapping as Square.
type Bitboard uint64

// File masks.
const (
	FileA Bitboard = 0x0101010101010101 << iota
	FileB
	FileC
	FileD
	FileE
	FileF
	FileG
	FileH
)

// Rank masks.
const (
	Rank1 Bitboard = 0xFF << (8 * iota)
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
)

var (
	fileMasks = [8]Bitboard{FileA, FileB, FileC, FileD, FileE, FileF, FileG, FileH}
	rankMasks = [8]Bitboard{Rank1, Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8}
)

// FileMask returns the mask of the given file (0-7).
func FileMask(file int) Bitboard { return fileMasks[file] }

// RankMask returns the mask of the given rank (0-7).
func RankMask(rank int) Bitboard { return rankMasks[rank] }

// Bit returns a bitboard with only sq set.
func Bit(sq Square) Bitboard { return 1 << sq }

// Has reports whether sq is in the set.
func (b Bitboard) Has(sq Square) bool { return b&Bit(sq) != 0 }

// Count returns the number of squares in the set.
func (b Bitboard) Count() int { return bits.OnesCount64(uint64(b)) }

// First returns the lowest square in the set, NoSquare if empty.
func (b Bitboard) First() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopFirst removes and returns the lowest square in the set.
func (b *Bitboard) PopFirst() Square {
	sq := b.First()
	*b &= *b - 1
	return sq
}

// Single-step shifts. East/west shifts mask off wraparound files.

func (b Bitboard) North() Bitboard     { return b << 8 }
func (b Bitboard) South() Bitboard     { return b >> 8 }
func (b Bitboard) East() Bitboard      { return (b &^ FileH) << 1 }
func (b Bitboard) West() Bitboard      { return (b &^ FileA) >> 1 }
func (b Bitboard) NorthEast() Bitboard { return (b &^ FileH) << 9 }
func (b Bitboard) NorthWest() Bitboard { return (b &^ FileA) << 7 }
func (b Bitboard) SouthEast() Bitboard { return (b &^ FileH) >> 7 }
func (b Bitboard) SouthWest() Bitboard { return (b &^ FileA) >> 9 }

// FileFill extends the set to every square north and south of a member,
// inclusive. Used for file-based pawn structure tests.
func (b Bitboard) FileFill() Bitboard {
	b |= b<<8 | b>>8
	b |= b<<16 | b>>16
	b |= b<<32 | b>>32
	return b
}

// String renders the set as an 8x8 grid, rank 8 first.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			if b.Has(SquareAt(file, rank)) {
				sb.WriteString("X ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
