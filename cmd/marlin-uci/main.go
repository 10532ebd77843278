// Command marlin-uci runs the Marlin chess engine as a UCI server on
// standard input and output. Settings and the transposition table survive
// between runs in a local database unless -nostore is given.
package main

import (
	"errors"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/marlinchess/marlin/internal/engine"
	"github.com/marlinchess/marlin/internal/logx"
	"github.com/marlinchess/marlin/internal/storage"
	"github.com/marlinchess/marlin/internal/uci"
)

func main() {
	var (
		logLevel = flag.String("log", "info", "log level (trace, debug, info, warn, error)")
		logFile  = flag.String("logfile", "", "write logs to this file instead of stderr")
		dataDir  = flag.String("data", "", "database directory (default: per-user config dir)")
		hashMB   = flag.Int("hash", 0, "transposition table size in MB, overriding the stored option")
		noStore  = flag.Bool("nostore", false, "run without persisting options, stats, or hash")
	)
	flag.Parse()

	log := logx.Stderr(*logLevel)
	if *logFile != "" {
		fileLog, f, err := logx.File(*logFile, *logLevel)
		if err != nil {
			log.Fatal().Err(err).Str("path", *logFile).Msg("open log file")
		}
		defer f.Close()
		log = fileLog
	}

	var store *storage.Store
	if !*noStore {
		dir := *dataDir
		if dir == "" {
			d, err := storage.DefaultDir()
			if err != nil {
				log.Fatal().Err(err).Msg("resolve data directory")
			}
			dir = d
		}
		s, err := storage.Open(dir, log)
		if err != nil {
			log.Error().Err(err).Str("dir", dir).Msg("open store, continuing without persistence")
		} else {
			store = s
			defer store.Close()
		}
	}

	opts := storage.DefaultOptions()
	if store != nil {
		loaded, err := store.LoadOptions()
		if err != nil {
			log.Error().Err(err).Msg("load options, using defaults")
		} else {
			opts = loaded
		}
	}
	if *hashMB > 0 {
		opts.HashMB = *hashMB
	}

	eng := engine.New(engine.Config{
		HashMB:       opts.HashMB,
		DefaultDepth: opts.DefaultDepth,
		Features:     engine.AllFeatures(),
		Logger:       log,
	})

	if store != nil && opts.PersistHash {
		words, err := store.LoadHashDump()
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			log.Error().Err(err).Msg("load hash dump")
		default:
			eng.RestoreHash(words)
			log.Info().Int("entries", len(words)/2).Msg("transposition table restored")
		}
	}

	driver := uci.New(eng, store, os.Stdin, os.Stdout, log)
	driver.SetOptions(opts)

	if err := driver.Run(); err != nil {
		log.Error().Err(err).Msg("uci session ended with error")
	}

	if store != nil {
		saveSession(store, eng, driver, log)
	}
}

// saveSession persists the final option values, cumulative statistics, and
// the hash dump when enabled.
func saveSession(store *storage.Store, eng *engine.Engine, driver *uci.Driver, log zerolog.Logger) {
	opts := driver.Options()
	if err := store.SaveOptions(opts); err != nil {
		log.Error().Err(err).Msg("save options")
	}

	stats, err := store.LoadStats()
	if err != nil {
		log.Error().Err(err).Msg("load stats")
		stats = storage.Stats{}
	}
	stats.Searches += eng.TotalSearches
	stats.Nodes += eng.TotalNodes
	if eng.DeepestDepth > stats.DeepestDepth {
		stats.DeepestDepth = eng.DeepestDepth
	}
	stats.LastUsed = time.Now().Unix()
	if err := store.SaveStats(stats); err != nil {
		log.Error().Err(err).Msg("save stats")
	}

	if opts.PersistHash {
		if err := store.SaveHashDump(eng.HashSnapshot()); err != nil {
			log.Error().Err(err).Msg("save hash dump")
		}
	} else if err := store.DeleteHashDump(); err != nil {
		log.Error().Err(err).Msg("delete hash dump")
	}
}
