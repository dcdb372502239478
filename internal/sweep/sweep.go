package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"ising/internal/core"
	"ising/internal/sims/ising"
)

// Sweep runs one equilibration per temperature point with at most Parallel
// runs in flight and gathers the records in temperature order.
type Sweep struct {
	Range    Range
	Parallel int
	// Seed is the base from which every point derives its own generator seed.
	Seed     int64
	Executor Executor
	Logger   *slog.Logger
}

// Run executes the sweep. The first failing run cancels the rest and its
// error is returned; no partial results are kept in that case.
func (s *Sweep) Run(ctx context.Context) (*Collector, error) {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	if s.Parallel < 1 {
		return nil, errors.Wrapf(ising.ErrInvalidConfig, "need at least 1 concurrent run, got %d", s.Parallel)
	}
	if s.Executor == nil {
		return nil, errors.New("sweep: no executor configured")
	}
	if err := s.Range.Validate(); err != nil {
		return nil, err
	}
	r, swapped := s.Range.Normalize()
	if swapped {
		log.Warn("swapping temperature bounds", "from", r.From, "to", r.To)
	}

	temps := r.Temperatures()
	collector := NewCollector(len(temps))
	log.Info("sweep starting", "points", len(temps), "from", r.From, "to", r.To, "parallel", s.Parallel)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Parallel)
	for i, kT := range temps {
		if gctx.Err() != nil {
			break
		}
		job := Job{ID: uuid.New(), Index: i, KT: kT, Seed: core.DeriveSeed(s.Seed, i)}
		// Go blocks while Parallel runs are in flight.
		g.Go(func() error {
			return s.runJob(gctx, log, collector, job)
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("sweep aborted", "err", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "sweep: cancelled")
	}

	collector.Sort()
	log.Info("sweep finished", "points", collector.Len(), "elapsed", time.Since(start).Round(time.Millisecond))
	return collector, nil
}

func (s *Sweep) runJob(ctx context.Context, log *slog.Logger, collector *Collector, job Job) error {
	log.Debug("run dispatched", "id", job.ID, "kT", job.KT, "seed", job.Seed)
	rec, err := s.Executor.Execute(ctx, job)
	if errors.Is(err, ising.ErrInsufficientSamples) {
		log.Warn("run ended with degenerate statistics", "kT", job.KT, "steps", rec.Steps)
		err = nil
	}
	if err != nil {
		return err
	}
	collector.Add(rec)
	log.Info("run complete", "id", job.ID, "kT", rec.KT, "M", rec.M, "E", rec.E, "steps", rec.Steps)
	return nil
}
