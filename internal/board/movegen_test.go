package board

import (
	"errors"
	"testing"
)

func mustParse(t *testing.T, fen string) *Position {
	t.Helper()
	p, err := ParseFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCheckmateVsStalemate(t *testing.T) {
	cases := []struct {
		name      string
		fen       string
		checkmate bool
		stalemate bool
	}{
		{"back rank threat only", "6k1/5ppp/8/8/8/8/8/4R1K1 b - - 0 1", false, false},
		{"fools mate", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", true, false},
		{"smothered mate", "6rk/5Npp/8/8/8/8/8/6K1 b - - 0 1", true, false},
		{"corner stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", false, true},
		{"pawn stalemate", "k7/P7/K7/8/8/8/8/8 b - - 0 1", false, true},
		{"in check with escape", "rnbqkbnr/ppppp1pp/5p2/7Q/8/4P3/PPPP1PPP/RNB1KBNR b KQkq - 1 2", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := mustParse(t, tc.fen)
			if got := p.IsCheckmate(); got != tc.checkmate {
				t.Errorf("IsCheckmate = %v, want %v", got, tc.checkmate)
			}
			if got := p.IsStalemate(); got != tc.stalemate {
				t.Errorf("IsStalemate = %v, want %v", got, tc.stalemate)
			}
		})
	}
}

func TestCastlingGeneration(t *testing.T) {
	wk := NewMove(E1, G1, CastleKingside)
	wq := NewMove(E1, C1, CastleQueenside)

	legal := func(fen string) (kingside, queenside bool) {
		p, err := ParseFEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		var list MoveList
		p.LegalMoves(&list)
		return list.Contains(wk), list.Contains(wq)
	}

	if k, q := legal("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1"); !k || !q {
		t.Errorf("open board: kingside=%v queenside=%v, want both", k, q)
	}
	// Rook attacks f1: castling through an attacked square is illegal,
	// queenside is unaffected.
	if k, q := legal("r3k2r/8/8/8/8/8/5r2/R3K2R w KQq - 0 1"); k || !q {
		t.Errorf("f1 attacked: kingside=%v queenside=%v, want only queenside", k, q)
	}
	// King in check may not castle at all.
	if k, q := legal("r3k2r/8/8/8/8/8/4r3/R3K2R w KQq - 0 1"); k || q {
		t.Errorf("in check: kingside=%v queenside=%v, want neither", k, q)
	}
	// Queenside b1 may be attacked, only c1 and d1 matter for the king.
	if _, q := legal("r3k2r/8/8/8/8/8/1r6/R3K2R w KQq - 0 1"); !q {
		t.Error("b1 attacked should not block queenside castling")
	}
	// Blocked by own piece.
	if k, _ := legal("r3k2r/8/8/8/8/8/8/R3KB1R w KQkq - 0 1"); k {
		t.Error("kingside castling generated through occupied f1")
	}
}

func TestCastlingRightsNeverReturn(t *testing.T) {
	p := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")

	// Shuffle the white king out and back. The rights must stay gone.
	moves := []Move{
		NewMove(E1, E2, Quiet),
		NewMove(E8, D8, Quiet),
		NewMove(E2, E1, Quiet),
		NewMove(D8, E8, Quiet),
	}
	for _, m := range moves {
		if !p.IsLegal(m) {
			t.Fatalf("%s unexpectedly illegal", m)
		}
		p.MakeMove(m)
	}
	if p.Castling&(WhiteKingside|WhiteQueenside) != 0 {
		t.Errorf("white rights restored after king returned: %s", p.Castling)
	}
	if p.Castling&(BlackKingside|BlackQueenside) != 0 {
		t.Errorf("black rights restored after king returned: %s", p.Castling)
	}

	var list MoveList
	p.LegalMoves(&list)
	for i := 0; i < list.Len(); i++ {
		if list.Get(i).IsCastle() {
			t.Errorf("castling move %s generated without rights", list.Get(i))
		}
	}
}

func TestRookCaptureClearsRights(t *testing.T) {
	p := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	// Rxa8 removes black's queenside right even though black never moved.
	p.MakeMove(NewMove(A1, A8, Capture))
	if p.Castling&BlackQueenside != 0 {
		t.Errorf("black queenside right survived rook capture: %s", p.Castling)
	}
	if p.Castling&WhiteQueenside != 0 {
		t.Errorf("white queenside right survived rook leaving a1: %s", p.Castling)
	}
	if p.Castling&(WhiteKingside|BlackKingside) == 0 {
		t.Errorf("kingside rights lost: %s", p.Castling)
	}
}

func TestEnPassantOnlyImmediately(t *testing.T) {
	p := mustParse(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	p.MakeMove(NewMove(E2, E4, DoublePawnPush))
	if p.EnPassant != E3 {
		t.Fatalf("en passant square = %s, want e3", p.EnPassant)
	}
	p.MakeMove(NewMove(G8, F6, Quiet))
	if p.EnPassant != NoSquare {
		t.Errorf("en passant square persisted: %s", p.EnPassant)
	}
}

func TestEnPassantPinnedCapture(t *testing.T) {
	// Capturing d4 en passant would expose the black king on a4 to the
	// rook on h4 once both pawns leave the rank.
	p := mustParse(t, "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if p.IsLegal(NewMove(E4, D3, EnPassant)) {
		t.Error("en passant capture exposing the king was accepted")
	}
	var list MoveList
	p.LegalMoves(&list)
	if list.Len() != 6 {
		t.Errorf("legal moves = %d, want 6", list.Len())
	}
}

func TestParseMove(t *testing.T) {
	p := NewPosition()
	m, err := p.ParseMove("e2e4")
	if err != nil {
		t.Fatal(err)
	}
	if m.From() != E2 || m.To() != E4 || m.Kind() != DoublePawnPush {
		t.Errorf("parsed move %s has wrong components", m)
	}

	for _, bad := range []string{"e2e5", "e7e5", "0000", "e2", "a1a8q"} {
		if _, err := p.ParseMove(bad); !errors.Is(err, ErrIllegalMove) {
			t.Errorf("ParseMove(%q) error %v does not wrap ErrIllegalMove", bad, err)
		}
	}
}

func TestPseudoLegalCapturesSubset(t *testing.T) {
	p := mustParse(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	var caps, all MoveList
	p.PseudoLegalCaptures(&caps)
	p.PseudoLegalMoves(&all)
	for i := 0; i < caps.Len(); i++ {
		m := caps.Get(i)
		if !m.IsCapture() && !m.IsPromotion() {
			t.Errorf("%s is neither capture nor promotion", m)
		}
		if !all.Contains(m) {
			t.Errorf("%s missing from full move list", m)
		}
	}
}
