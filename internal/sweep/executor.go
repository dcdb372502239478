package sweep

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"ising/internal/sims/ising"
)

// Worker flag names shared by WorkerArgs and the worker command line.
const (
	FlagSize       = "size"
	FlagJ          = "coupling"
	FlagH          = "field"
	FlagKT         = "kt"
	FlagMode       = "mode"
	FlagIterations = "iterations"
	FlagWindow     = "window"
	FlagSeed       = "seed"
	FlagProgress   = "progress"
	FlagTPS        = "tps"
)

// RunSpec holds the parameters shared by every temperature point of a sweep.
// Params.KT and Options.Seed are overridden per job.
type RunSpec struct {
	Params  ising.Params
	Options ising.Options
}

// Job is one temperature point handed to an Executor.
type Job struct {
	ID    uuid.UUID
	Index int
	KT    float64
	Seed  int64
}

// Executor runs a single job and returns its record. A returned error wrapping
// ising.ErrInsufficientSamples still carries a usable record.
type Executor interface {
	Execute(ctx context.Context, job Job) (ising.Record, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, job Job) (ising.Record, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, job Job) (ising.Record, error) {
	return f(ctx, job)
}

// InProcess runs jobs on the calling goroutine.
type InProcess struct {
	Spec RunSpec
}

// Execute equilibrates a fresh lattice at the job's temperature.
func (e InProcess) Execute(ctx context.Context, job Job) (ising.Record, error) {
	params, opts := e.Spec.forJob(job)
	return ising.Equilibrate(ctx, params, opts)
}

func (s RunSpec) forJob(job Job) (ising.Params, ising.Options) {
	params := s.Params
	params.KT = job.KT
	opts := s.Options
	opts.Seed = job.Seed
	return params, opts
}

// WorkerArgs renders the command-line flags a worker process needs for job.
func WorkerArgs(spec RunSpec, job Job) []string {
	params, opts := spec.forJob(job)
	args := []string{
		longFlag(FlagSize, strconv.Itoa(params.Size)),
		longFlag(FlagJ, formatFloat(params.J)),
		longFlag(FlagH, formatFloat(params.MuH)),
		longFlag(FlagKT, formatFloat(params.KT)),
		longFlag(FlagMode, string(opts.Mode)),
		longFlag(FlagWindow, strconv.Itoa(opts.Window)),
		longFlag(FlagSeed, strconv.FormatInt(opts.Seed, 10)),
		// Frames would share stdout with the record line.
		longFlag(FlagProgress, ""),
		longFlag(FlagTPS, "0"),
	}
	if opts.Mode == ising.ModeManual {
		args = append(args, longFlag(FlagIterations, strconv.Itoa(opts.Iterations)))
	}
	return args
}

func longFlag(name, value string) string { return "--" + name + "=" + value }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
