// Package storage persists engine settings, session statistics, and the
// transposition table between runs, backed by a local Badger database.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
)

var (
	keyOptions  = []byte("options")
	keyStats    = []byte("stats")
	keyHashDump = []byte("hashdump")
)

// ErrNotFound is returned when a record has never been written.
var ErrNotFound = errors.New("storage: not found")

// Options are the user-visible settings restored at startup.
type Options struct {
	HashMB       int  `json:"hash_mb"`
	DefaultDepth int  `json:"default_depth"`
	PersistHash  bool `json:"persist_hash"`
}

// DefaultOptions returns the settings used before anything is persisted.
func DefaultOptions() Options {
	return Options{HashMB: 64, DefaultDepth: 64, PersistHash: false}
}

// Stats accumulate across sessions.
type Stats struct {
	Searches     uint64 `json:"searches"`
	Nodes        uint64 `json:"nodes"`
	DeepestDepth int    `json:"deepest_depth"`
	LastUsed     int64  `json:"last_used"` // unix seconds
}

// Store wraps the database handle.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the database at dir.
func Open(dir string, log zerolog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(badgerLogger{log}).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a database that lives only for the process, used by
// tests and the -nostore flag.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open in-memory: %w", err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) getJSON(key []byte, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

func (s *Store) putJSON(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// LoadOptions returns the persisted options, or defaults if none exist.
func (s *Store) LoadOptions() (Options, error) {
	opts := DefaultOptions()
	err := s.getJSON(keyOptions, &opts)
	if errors.Is(err, ErrNotFound) {
		return DefaultOptions(), nil
	}
	if err != nil {
		return DefaultOptions(), err
	}
	if opts.HashMB < 1 {
		opts.HashMB = 1
	}
	if opts.DefaultDepth < 1 {
		opts.DefaultDepth = 64
	}
	return opts, nil
}

// SaveOptions persists the options.
func (s *Store) SaveOptions(opts Options) error {
	return s.putJSON(keyOptions, opts)
}

// LoadStats returns the persisted statistics, zero if none exist.
func (s *Store) LoadStats() (Stats, error) {
	var st Stats
	err := s.getJSON(keyStats, &st)
	if errors.Is(err, ErrNotFound) {
		return Stats{}, nil
	}
	return st, err
}

// SaveStats persists the statistics.
func (s *Store) SaveStats(st Stats) error {
	return s.putJSON(keyStats, st)
}

// SaveHashDump stores a transposition table snapshot, zstd-compressed. The
// dump compresses well: entries are sparse bit patterns with long runs of
// similar bytes.
func (s *Store) SaveHashDump(words []uint64) error {
	raw := make([]byte, 8*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint64(raw[8*i:], w)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("storage: zstd writer: %w", err)
	}
	compressed := enc.EncodeAll(raw, nil)
	enc.Close()

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyHashDump, compressed)
	})
}

// LoadHashDump returns the stored snapshot, ErrNotFound if none exists.
func (s *Store) LoadHashDump() ([]uint64, error) {
	var compressed []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyHashDump)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		compressed, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("storage: zstd reader: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: decompress hash dump: %w", err)
	}
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("storage: hash dump length %d not word aligned", len(raw))
	}

	words := make([]uint64, len(raw)/8)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(raw[8*i:])
	}
	return words, nil
}

// DeleteHashDump removes a stored snapshot, for when persistence is turned
// off.
func (s *Store) DeleteHashDump() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(keyHashDump)
	})
}

// badgerLogger adapts zerolog to badger's Logger interface, keeping its
// chatter at debug level.
type badgerLogger struct {
	log zerolog.Logger
}

func (b badgerLogger) Errorf(f string, args ...any)   { b.log.Error().Msgf(trim(f), args...) }
func (b badgerLogger) Warningf(f string, args ...any) { b.log.Warn().Msgf(trim(f), args...) }
func (b badgerLogger) Infof(f string, args ...any)    { b.log.Debug().Msgf(trim(f), args...) }
func (b badgerLogger) Debugf(f string, args ...any)   { b.log.Debug().Msgf(trim(f), args...) }

func trim(f string) string {
	for len(f) > 0 && f[len(f)-1] == '\n' {
		f = f[:len(f)-1]
	}
	return f
}
