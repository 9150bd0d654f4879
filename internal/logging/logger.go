// Package logging builds the slog loggers the library and the CLI share.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text logger on Stderr, keeping Stdout free for the
// console transport. The "error" key is shortened to "err" so log lines
// stay uniform regardless of which layer attached the attribute.
func New(level slog.Level) *slog.Logger {
	return NewAt(os.Stderr, level)
}

// NewAt is New with an explicit sink, mainly for tests.
func NewAt(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a logger that discards everything. Library types default
// to it so logging stays opt-in.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
