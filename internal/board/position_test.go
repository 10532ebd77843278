package board

import "testing"

func TestMakeUnmakeRestoresPosition(t *testing.T) {
	fens := []string{
		StartingFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
	}
	for _, fen := range fens {
		p := mustParse(t, fen)
		before := *p
		var list MoveList
		p.PseudoLegalMoves(&list)
		for i := 0; i < list.Len(); i++ {
			m := list.Get(i)
			u := p.MakeMove(m)
			p.UnmakeMove(&u)
			if *p != before {
				t.Fatalf("%s: position not restored after %s", fen, m)
			}
		}
	}
}

func TestIncrementalHashMatchesRecompute(t *testing.T) {
	p := mustParse(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")

	// Walk a few plies of the legal tree, checking the incremental hash at
	// every node against a full recompute.
	var walk func(depth int)
	var nodes int
	walk = func(depth int) {
		if p.Hash != p.ComputeHash() {
			t.Fatalf("hash drift at node %d:\n%s", nodes, p)
		}
		nodes++
		if depth == 0 {
			return
		}
		var list MoveList
		p.LegalMoves(&list)
		for i := 0; i < list.Len(); i++ {
			u := p.MakeMove(list.Get(i))
			walk(depth - 1)
			p.UnmakeMove(&u)
		}
	}
	walk(2)
}

func TestHashDistinguishesStateFields(t *testing.T) {
	a := mustParse(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	b := mustParse(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	if a.Hash == b.Hash {
		t.Error("en passant availability not hashed")
	}

	c := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	d := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w - - 0 1")
	if c.Hash == d.Hash {
		t.Error("castling rights not hashed")
	}

	e := mustParse(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	f := mustParse(t, "4k3/8/8/8/8/8/8/4K3 b - - 0 1")
	if e.Hash == f.Hash {
		t.Error("side to move not hashed")
	}
}

func TestNullMove(t *testing.T) {
	p := mustParse(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	before := *p
	u := p.MakeNullMove()
	if p.SideToMove != White {
		t.Error("null move did not flip side to move")
	}
	if p.EnPassant != NoSquare {
		t.Error("null move did not clear en passant")
	}
	if p.Hash != p.ComputeHash() {
		t.Error("hash drift after null move")
	}
	p.UnmakeNullMove(&u)
	if *p != before {
		t.Error("position not restored after null move")
	}
}

func TestInsufficientMaterial(t *testing.T) {
	cases := []struct {
		fen  string
		want bool
	}{
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/4KN2 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/4KB2 w - - 0 1", true},
		{"4kb2/8/8/8/8/8/8/4KB2 w - - 0 1", false}, // opposite-colored bishops
		{"b1b1k3/8/8/8/8/8/8/4K3 w - - 0 1", true}, // same-colored bishops
		{"4k3/8/8/8/8/8/8/3QK3 w - - 0 1", false},
		{"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", false},
		{"4k3/8/8/8/8/8/8/3NKN2 w - - 0 1", false}, // two knights can mate a helper
	}
	for _, tc := range cases {
		p := mustParse(t, tc.fen)
		if got := p.InsufficientMaterial(); got != tc.want {
			t.Errorf("%s: InsufficientMaterial = %v, want %v", tc.fen, got, tc.want)
		}
	}
}

func TestMoveEncoding(t *testing.T) {
	m := NewMove(E2, E4, DoublePawnPush)
	if m.From() != E2 || m.To() != E4 || m.Kind() != DoublePawnPush {
		t.Errorf("round trip failed: %s from=%s to=%s kind=%d", m, m.From(), m.To(), m.Kind())
	}
	if m.String() != "e2e4" {
		t.Errorf("String = %q, want e2e4", m.String())
	}

	promo := NewPromotion(B7, A8, Queen, true)
	if !promo.IsPromotion() || !promo.IsCapture() || promo.Promotion() != Queen {
		t.Errorf("promotion capture flags wrong: %s", promo)
	}
	if promo.String() != "b7a8q" {
		t.Errorf("String = %q, want b7a8q", promo.String())
	}

	under := NewPromotion(B7, B8, Knight, false)
	if under.Promotion() != Knight || under.IsCapture() {
		t.Errorf("underpromotion flags wrong: %s", under)
	}

	castle := NewMove(E1, G1, CastleKingside)
	if !castle.IsCastle() || castle.IsCapture() || castle.IsPromotion() {
		t.Errorf("castle flags wrong: %s", castle)
	}
	if NoMove.String() != "0000" {
		t.Errorf("NoMove string = %q", NoMove.String())
	}
}
