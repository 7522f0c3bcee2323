// Package gridsquish compacts spreadsheet formula grids into an invertible
// run-length form and restores them.
package gridsquish

import (
	"io"
	"log/slog"

	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/formula"
)

// Options configures the codec.
type Options struct {
	// Tokenizer classifies formula text.
	// If nil, the efp-backed tokenizer is used.
	Tokenizer formula.Tokenizer
	// Logger receives debug and warning events.
	// If nil, events are discarded.
	Logger *slog.Logger
}

// DefaultOptions returns default codec options.
func DefaultOptions() Options {
	return Options{
		Tokenizer: formula.NewEFPTokenizer(),
	}
}

func (o Options) tokenizer() formula.Tokenizer {
	if o.Tokenizer != nil {
		return o.Tokenizer
	}
	return formula.NewEFPTokenizer()
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger.With(slog.String("component", "gridsquish"))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
