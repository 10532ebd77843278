package board

import "testing"

// Known-good perft counts. Any divergence points at a move generation bug,
// which divide output (PerftDivide) localizes to a root move.
var perftCases = []struct {
	name  string
	fen   string
	depth int
	nodes uint64
}{
	{"startpos d1", StartingFEN, 1, 20},
	{"startpos d2", StartingFEN, 2, 400},
	{"startpos d3", StartingFEN, 3, 8902},
	{"startpos d4", StartingFEN, 4, 197281},
	{"kiwipete d1", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 1, 48},
	{"kiwipete d2", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, 2039},
	{"kiwipete d3", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 3, 97862},
	{"endgame d1", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 1, 14},
	{"endgame d2", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 2, 191},
	{"endgame d3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 3, 2812},
	{"endgame d4", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 4, 43238},
	{"ep pin d1", "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1", 1, 6},
	{"ep pin d2", "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1", 2, 94},
	{"promotions d1", "n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1", 1, 24},
	{"promotions d2", "n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1", 2, 496},
	{"promotions d3", "n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1", 3, 9483},
	{"castling d1", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", 1, 26},
	{"castling d2", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", 2, 568},
}

func TestPerft(t *testing.T) {
	for _, tc := range perftCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			before := *p
			if got := p.Perft(tc.depth); got != tc.nodes {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.nodes)
			}
			if *p != before {
				t.Error("position mutated by perft")
			}
		})
	}
}

func TestPerftDivideSumsToTotal(t *testing.T) {
	p := NewPosition()
	counts := p.PerftDivide(3)
	var sum uint64
	for _, n := range counts {
		sum += n
	}
	if sum != 8902 {
		t.Errorf("divide sum = %d, want 8902", sum)
	}
	if len(counts) != 20 {
		t.Errorf("root moves = %d, want 20", len(counts))
	}
}

func BenchmarkPerftStartpos(b *testing.B) {
	p := NewPosition()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if p.Perft(4) != 197281 {
			b.Fatal("wrong node count")
		}
	}
}
