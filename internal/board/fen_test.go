package board

import (
	"errors"
	"testing"
)

func TestParseFENRoundTrip(t *testing.T) {
	fens := []string{
		StartingFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
		"4k3/8/8/8/8/8/8/4K2R w K - 13 37",
	}
	for _, fen := range fens {
		p, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := p.FEN(); got != fen {
			t.Errorf("round trip mismatch:\n in  %s\n out %s", fen, got)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("Validate(%q): %v", fen, err)
		}
	}
}

func TestParseFENRejectsMalformed(t *testing.T) {
	fens := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",          // missing fields
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -", // five fields
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",      // seven ranks
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/ppppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KXkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e3 0 1", // wrong ep rank
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 0",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1",
		"8/8/8/8/8/8/8/8 w - - 0 1",                                // no kings
		"kk6/8/8/8/8/8/8/K7 w - - 0 1",                             // two black kings
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNZ w KQkq - 0 1", // bad piece
	}
	for _, fen := range fens {
		if _, err := ParseFEN(fen); err == nil {
			t.Errorf("ParseFEN(%q) accepted malformed input", fen)
		} else if !errors.Is(err, ErrInvalidFEN) {
			t.Errorf("ParseFEN(%q) error %v does not wrap ErrInvalidFEN", fen, err)
		}
	}
}

func TestParseFENDropsInconsistentCastlingRights(t *testing.T) {
	// Kings and rooks off their home squares cannot retain rights.
	p, err := ParseFEN("rnbq1bnr/ppppkppp/8/4p3/8/5N2/PPPPPPPP/RNBQKB1R w KQkq - 2 3")
	if err != nil {
		t.Fatal(err)
	}
	if p.Castling&(BlackKingside|BlackQueenside) != 0 {
		t.Errorf("black rights retained with king off e8: %s", p.Castling)
	}
	if p.Castling&WhiteKingside == 0 || p.Castling&WhiteQueenside == 0 {
		t.Errorf("white rights lost: %s", p.Castling)
	}
}

func TestStartingPosition(t *testing.T) {
	p := NewPosition()
	if p.SideToMove != White {
		t.Errorf("side to move = %s, want white", p.SideToMove)
	}
	if p.Castling != AllCastlingRights {
		t.Errorf("castling = %s, want KQkq", p.Castling)
	}
	if p.EnPassant != NoSquare {
		t.Errorf("en passant = %s, want -", p.EnPassant)
	}
	if got := p.All.Count(); got != 32 {
		t.Errorf("piece count = %d, want 32", got)
	}
	if p.PieceAt(E1) != WhiteKing || p.PieceAt(D8) != BlackQueen {
		t.Error("pieces not on expected squares")
	}
	if p.Hash != p.ComputeHash() {
		t.Error("hash out of sync after parse")
	}
}
