package sweep

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrRunFailed marks a worker that terminated abnormally. The whole sweep
// is aborted when it occurs.
var ErrRunFailed = errors.New("sweep: worker run failed")

// RunError describes a failed worker run.
type RunError struct {
	KT       float64
	ExitCode int    // -1 when the worker did not exit normally
	Signal   string // set when the worker was killed by a signal
	Cause    error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("sweep: worker for kT=%g", e.KT)
	switch {
	case e.Signal != "":
		msg += " was killed by signal " + e.Signal
	case e.ExitCode > 0:
		msg += fmt.Sprintf(" exited with status %d", e.ExitCode)
	default:
		msg += " failed"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrRunFailed) hold for every RunError.
func (e *RunError) Is(target error) bool { return target == ErrRunFailed }

// Unwrap returns the underlying cause.
func (e *RunError) Unwrap() error { return e.Cause }
