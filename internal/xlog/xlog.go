// Package xlog configures the package-level zerolog.Logger every core
// package logs through: a console writer when attached to a TTY, JSON
// lines otherwise, matching the teacher's cmd/risor root command's own
// isatty-gated output style.
package xlog

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// L is the process-wide logger. Its only writer in this module is
// DumpException, which logs unhandled exception dumps at Error with the
// coroutine id and error kind attached as fields; the runtime, request
// and renderer packages do not log through it.
var L zerolog.Logger

func init() {
	L = New(os.Stderr)
}

// New builds a logger writing to w, choosing a human-readable console
// writer when w is a TTY and plain JSON lines otherwise.
func New(w *os.File) zerolog.Logger {
	if isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()) {
		return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel adjusts the global logging threshold, e.g. from a --verbose
// CLI flag.
func SetLevel(level zerolog.Level) {
	L = L.Level(level)
}

// DumpException logs a coroutine's terminal unhandled exception as a
// structured diagnostic, per spec.md §7: "termination with a non-empty
// exception slot triggers a dump ... but does not abort the process".
func DumpException(coroutineID uint64, kind string, msg string) {
	L.Error().
		Uint64("coroutine_id", coroutineID).
		Str("kind", kind).
		Msg(msg)
}
