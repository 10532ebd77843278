package uci

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/marlinchess/marlin/internal/engine"
)

// runSession feeds the driver a script and returns everything it wrote.
func runSession(t *testing.T, script string) string {
	t.Helper()
	eng := engine.New(engine.Config{HashMB: 8, Features: engine.AllFeatures(), Logger: zerolog.Nop()})
	var out bytes.Buffer
	d := New(eng, nil, strings.NewReader(script), &out, zerolog.Nop())
	if err := d.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestHandshake(t *testing.T) {
	out := runSession(t, "uci\nisready\nquit\n")
	for _, want := range []string{
		"id name Marlin",
		"option name Hash type spin",
		"option name PersistHash type check",
		"uciok",
		"readyok",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "uciok") > strings.Index(out, "readyok") {
		t.Error("uciok after readyok")
	}
}

func TestPositionAndDisplay(t *testing.T) {
	out := runSession(t, "position startpos moves e2e4 e7e5\nd\nquit\n")
	want := "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"
	if !strings.Contains(out, want) {
		t.Errorf("display missing FEN %q:\n%s", want, out)
	}
}

func TestPositionFEN(t *testing.T) {
	fen := "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"
	out := runSession(t, "position fen "+fen+"\nd\nquit\n")
	if !strings.Contains(out, fen) {
		t.Errorf("display missing FEN %q:\n%s", fen, out)
	}
}

func TestIllegalMoveLeavesPositionUnchanged(t *testing.T) {
	// e2e5 is illegal; the whole command must be rejected, leaving the
	// prior position (startpos after e2e4) in place.
	script := "position startpos moves e2e4\n" +
		"position startpos moves e2e5 e7e5\n" +
		"d\nquit\n"
	out := runSession(t, script)
	want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	if !strings.Contains(out, want) {
		t.Errorf("position changed by rejected command:\n%s", out)
	}
}

func TestGoDepthEmitsBestmoveAndInfo(t *testing.T) {
	out := runSession(t, "position startpos\ngo depth 3\nquit\n")
	if !strings.Contains(out, "bestmove ") {
		t.Fatalf("no bestmove emitted:\n%s", out)
	}
	if !strings.Contains(out, "info depth 1 ") {
		t.Errorf("no depth 1 info line:\n%s", out)
	}
	if !strings.Contains(out, " pv ") {
		t.Errorf("info lines carry no pv:\n%s", out)
	}
	if !strings.Contains(out, " nps ") || !strings.Contains(out, " hashfull ") {
		t.Errorf("info lines missing nps/hashfull:\n%s", out)
	}
}

func TestGoMateInOne(t *testing.T) {
	out := runSession(t,
		"position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1\ngo depth 4\nquit\n")
	if !strings.Contains(out, "bestmove a1a8") {
		t.Errorf("mate in one missed:\n%s", out)
	}
	if !strings.Contains(out, "score mate 1") {
		t.Errorf("mate score not reported:\n%s", out)
	}
}

func TestStopDuringInfiniteSearch(t *testing.T) {
	// quit stops the running search and must not hang. The scanner feeds
	// stop/quit immediately; the driver's stop path has to cut the search
	// short rather than wait for it.
	out := runSession(t, "position startpos\ngo infinite\nstop\nquit\n")
	if !strings.Contains(out, "bestmove ") {
		t.Errorf("stopped search emitted no bestmove:\n%s", out)
	}
}

func TestPerftCommand(t *testing.T) {
	out := runSession(t, "position startpos\nperft 3\nquit\n")
	if !strings.Contains(out, "Nodes searched: 8902") {
		t.Errorf("perft 3 total wrong:\n%s", out)
	}
	if !strings.Contains(out, "e2e4: 600") {
		t.Errorf("perft divide line for e2e4 missing:\n%s", out)
	}
}

func TestSetOptionHash(t *testing.T) {
	eng := engine.New(engine.Config{HashMB: 8, Features: engine.AllFeatures(), Logger: zerolog.Nop()})
	var out bytes.Buffer
	d := New(eng, nil, strings.NewReader("setoption name Hash value 16\nquit\n"), &out, zerolog.Nop())
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	if d.Options().HashMB != 16 {
		t.Errorf("HashMB = %d, want 16", d.Options().HashMB)
	}

	d = New(eng, nil, strings.NewReader("setoption name PersistHash value true\nquit\n"), &out, zerolog.Nop())
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	if !d.Options().PersistHash {
		t.Error("PersistHash not set")
	}
}

func TestUnknownCommandsIgnored(t *testing.T) {
	out := runSession(t, "xyzzy\nisready\nquit\n")
	if !strings.Contains(out, "readyok") {
		t.Errorf("driver died on unknown command:\n%s", out)
	}
}

func TestParseSetOption(t *testing.T) {
	name, value := parseSetOption(strings.Fields("name Clear Hash"))
	if name != "Clear Hash" || value != "" {
		t.Errorf("got name=%q value=%q", name, value)
	}
	name, value = parseSetOption(strings.Fields("name Hash value 128"))
	if name != "Hash" || value != "128" {
		t.Errorf("got name=%q value=%q", name, value)
	}
}
