package ising

import "github.com/pkg/errors"

var (
	// ErrInvalidConfig indicates parameters that were rejected before any
	// simulation work began. It is never retried.
	ErrInvalidConfig = errors.New("ising: invalid configuration")
	// ErrInsufficientSamples indicates a run that ended before two observations
	// were recorded, so variance and standard errors are undefined.
	ErrInsufficientSamples = errors.New("ising: fewer than 2 samples recorded")
)

func invalidf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidConfig, format, args...)
}
