package storage

import (
	"errors"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOptionsRoundTrip(t *testing.T) {
	s := openTestStore(t)

	// Fresh store yields defaults.
	opts, err := s.LoadOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts != DefaultOptions() {
		t.Errorf("fresh options = %+v, want defaults", opts)
	}

	want := Options{HashMB: 256, DefaultDepth: 12, PersistHash: true}
	if err := s.SaveOptions(want); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadOptions()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("options = %+v, want %+v", got, want)
	}
}

func TestLoadOptionsSanitizes(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveOptions(Options{HashMB: 0, DefaultDepth: -3}); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadOptions()
	if err != nil {
		t.Fatal(err)
	}
	if got.HashMB < 1 || got.DefaultDepth < 1 {
		t.Errorf("unsanitized options loaded: %+v", got)
	}
}

func TestStatsRoundTrip(t *testing.T) {
	s := openTestStore(t)

	st, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if st != (Stats{}) {
		t.Errorf("fresh stats = %+v, want zero", st)
	}

	want := Stats{Searches: 7, Nodes: 123456, DeepestDepth: 21, LastUsed: 1700000000}
	if err := s.SaveStats(want); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("stats = %+v, want %+v", got, want)
	}
}

func TestHashDumpRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.LoadHashDump(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("fresh dump load error = %v, want ErrNotFound", err)
	}

	words := make([]uint64, 4096)
	for i := range words {
		words[i] = uint64(i) * 0x9E3779B97F4A7C15
	}
	if err := s.SaveHashDump(words); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadHashDump()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(words) {
		t.Fatalf("dump length = %d, want %d", len(got), len(words))
	}
	for i := range words {
		if got[i] != words[i] {
			t.Fatalf("word %d = %#x, want %#x", i, got[i], words[i])
		}
	}

	if err := s.DeleteHashDump(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadHashDump(); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted dump load error = %v, want ErrNotFound", err)
	}
}
