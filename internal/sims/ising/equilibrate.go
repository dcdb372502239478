package ising

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"ising/internal/core"
)

// Controller drives a lattice until it equilibrates (automatic mode) or a
// fixed step budget runs out (manual mode), sampling E and M into a trailing
// window along the way.
type Controller struct {
	opts    Options
	lattice *Lattice

	condition  float64
	stabilised int
	steps      int

	energy *window
	magnet *window
}

// NewController validates the run configuration and prepares a randomised lattice.
func NewController(p Params, opts Options) (*Controller, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	lattice, err := NewLattice(p, core.NewRNG(opts.Seed))
	if err != nil {
		return nil, err
	}
	lattice.Randomise()
	return &Controller{
		opts:      opts,
		lattice:   lattice,
		condition: QuietThreshold(p),
		energy:    newWindow(opts.Window),
		magnet:    newWindow(opts.Window),
	}, nil
}

// QuietThreshold is the squared spin-change below which a step counts as
// quiet: exp(-4J/kT)·size², clamped to at least 1.
func QuietThreshold(p Params) float64 {
	area := float64(p.Size * p.Size)
	var c float64
	switch {
	case p.KT > 0:
		c = math.Exp(-4*p.J/p.KT) * area
	case p.J < 0:
		c = math.Inf(1)
	}
	if math.IsNaN(c) || c < 1 {
		return 1
	}
	return c
}

// Lattice exposes the lattice being driven.
func (c *Controller) Lattice() *Lattice { return c.lattice }

// Done reports whether the stopping rule for the configured mode is met.
func (c *Controller) Done() bool {
	if c.opts.Mode == ModeManual {
		return c.steps >= c.opts.Iterations
	}
	return c.stabilised >= Patience
}

// Advance runs one lattice step, records observables, and updates the
// quiet-step streak. It returns the step's net spin change.
func (c *Controller) Advance() int {
	change := c.lattice.Step()
	c.steps++
	if float64(change)*float64(change) < c.condition {
		c.stabilised++
	} else {
		c.stabilised = 0
	}
	c.energy.add(c.lattice.E())
	c.magnet.add(c.lattice.M())
	return change
}

// Run steps the lattice until Done, then returns the run record. If fewer than
// two samples were taken the record carries NaN errors and the error wraps
// ErrInsufficientSamples.
func (c *Controller) Run(ctx context.Context) (Record, error) {
	log := c.opts.logger()
	p := c.lattice.Params()
	start := time.Now()
	log.Debug("run starting", "kT", p.KT, "size", p.Size, "mode", c.opts.Mode, "threshold", c.condition)

	if err := c.emitFrame(); err != nil {
		return Record{}, err
	}
	for !c.Done() {
		if err := ctx.Err(); err != nil {
			return Record{}, errors.Wrapf(err, "run at kT=%g interrupted after %d steps", p.KT, c.steps)
		}
		if c.opts.Frames != nil {
			if err := c.opts.Pace.Wait(ctx); err != nil {
				return Record{}, errors.Wrap(err, "pacing progress frames")
			}
		}
		c.Advance()
		if err := c.emitFrame(); err != nil {
			return Record{}, err
		}
	}

	rec, err := c.Record()
	log.Debug("run finished", "kT", p.KT, "steps", c.steps, "elapsed", time.Since(start))
	return rec, err
}

// Record summarises the samples gathered so far.
func (c *Controller) Record() (Record, error) {
	p := c.lattice.Params()
	rec := Record{KT: p.KT, Steps: c.steps}

	es := c.energy.samples()
	ms := c.magnet.samples()
	if len(es) < 2 {
		rec.E, rec.M = c.lattice.E(), c.lattice.M()
		rec.EErr, rec.MErr, rec.Variance = math.NaN(), math.NaN(), math.NaN()
		return rec, errors.Wrapf(ErrInsufficientSamples, "kT=%g after %d steps", p.KT, c.steps)
	}

	n := float64(len(es))
	var eVar, mVar float64
	rec.E, eVar = stat.MeanVariance(es, nil)
	rec.M, mVar = stat.MeanVariance(ms, nil)
	rec.EErr = math.Sqrt(eVar / n)
	rec.MErr = math.Sqrt(mVar / n)
	rec.Variance = eVar * float64(p.Size*p.Size)
	return rec, nil
}

func (c *Controller) emitFrame() error {
	if c.opts.Frames == nil {
		return nil
	}
	return errors.Wrap(c.opts.Frames.WriteFrame(c.lattice), "writing progress frame")
}

// Equilibrate runs a single temperature point to completion.
func Equilibrate(ctx context.Context, p Params, opts Options) (Record, error) {
	c, err := NewController(p, opts)
	if err != nil {
		return Record{}, err
	}
	return c.Run(ctx)
}

// window is a fixed-size ring of the most recent samples.
type window struct {
	vals  []float64
	next  int
	count int
}

func newWindow(n int) *window {
	return &window{vals: make([]float64, n)}
}

func (w *window) add(v float64) {
	w.vals[w.next] = v
	w.next = (w.next + 1) % len(w.vals)
	if w.count < len(w.vals) {
		w.count++
	}
}

// samples returns the valid samples; order is irrelevant to the statistics.
func (w *window) samples() []float64 {
	return w.vals[:w.count]
}
