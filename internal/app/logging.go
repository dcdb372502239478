package app

import (
	"io"
	"log/slog"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/pkg/errors"

	"ising/internal/render"
	"ising/internal/sims/ising"
)

// NewLogger builds the tinted stderr logger used by every command. Colour is
// only enabled when w is a terminal.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, errors.Wrapf(ising.ErrInvalidConfig, "log level %q", level)
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: "15:04:05",
		NoColor:    !render.IsTerminal(w),
	})), nil
}
