// Package logx configures the process-wide logger. UCI owns stdout, so all
// logging goes to stderr (or a file) where it cannot corrupt the protocol
// stream.
package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a console-format logger at the given level writing to w. An
// unknown level falls back to info.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// Stderr builds the default stderr logger.
func Stderr(level string) zerolog.Logger {
	return New(os.Stderr, level)
}

// File opens path for appending and builds a plain JSON logger on it. The
// caller closes the returned file.
func File(path, level string) (zerolog.Logger, *os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	lvl, perr := zerolog.ParseLevel(strings.ToLower(level))
	if perr != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(f).Level(lvl).With().Timestamp().Logger(), f, nil
}
