package sweep

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/pkg/errors"

	"ising/internal/sims/ising"
)

// Subprocess runs each job in its own worker process. The worker receives
// Args followed by WorkerArgs and must print one record line on stdout.
type Subprocess struct {
	Spec RunSpec
	Path string
	Args []string
	// Env, when non-nil, replaces the worker environment.
	Env []string
	// Stderr receives the worker's diagnostics. Nil discards them.
	Stderr io.Writer
}

// NewSubprocess re-executes the running binary with the given leading
// arguments (typically the worker subcommand).
func NewSubprocess(spec RunSpec, args ...string) (*Subprocess, error) {
	path, err := os.Executable()
	if err != nil {
		return nil, errors.Wrap(err, "sweep: locating worker executable")
	}
	return &Subprocess{Spec: spec, Path: path, Args: args, Stderr: os.Stderr}, nil
}

// Execute starts a worker, waits for it, and decodes its record line. Any
// abnormal termination is reported as a *RunError.
func (s *Subprocess) Execute(ctx context.Context, job Job) (ising.Record, error) {
	args := append(append([]string(nil), s.Args...), WorkerArgs(s.Spec, job)...)
	cmd := exec.CommandContext(ctx, s.Path, args...)
	cmd.Env = s.Env
	cmd.Stderr = s.Stderr
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ising.Record{}, errors.Wrapf(ctxErr, "sweep: worker for kT=%g cancelled", job.KT)
		}
		return ising.Record{}, exitError(job.KT, err)
	}

	line := lastLine(stdout.String())
	rec, err := ising.ParseRecord(line, s.Spec.Params.J)
	if err != nil {
		return ising.Record{}, &RunError{KT: job.KT, Cause: err}
	}
	rec.KT = job.KT
	if rec.Degenerate() {
		return rec, errors.Wrapf(ising.ErrInsufficientSamples, "kT=%g after %d steps", job.KT, rec.Steps)
	}
	return rec, nil
}

func exitError(kT float64, err error) *RunError {
	re := &RunError{KT: kT, ExitCode: -1, Cause: err}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return re
	}
	re.ExitCode = exitErr.ExitCode()
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		re.Signal = ws.Signal().String()
	}
	return re
}

// lastLine returns the record line, which a worker prints after anything else.
func lastLine(out string) string {
	lines := strings.Split(out, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
