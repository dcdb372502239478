package ising

import (
	"log/slog"
	"math"

	"ising/internal/core"
)

const (
	// DefaultSize is the side length of the lattice.
	DefaultSize = 100
	// DefaultJ is the nearest-neighbour coupling.
	DefaultJ = 1.0
	// DefaultMuH is the external field.
	DefaultMuH = 0.0
	// DefaultKT is the thermal energy used when none is given.
	DefaultKT = 2.0
	// DefaultWindow is the number of trailing samples used for statistics.
	DefaultWindow = 100
	// Patience is the number of consecutive quiet steps that ends an
	// automatic run.
	Patience = 5
)

// Params holds the physical parameters of a lattice.
type Params struct {
	Size int
	J    float64
	MuH  float64
	KT   float64
}

// DefaultParams returns the standard lattice parameters.
func DefaultParams() Params {
	return Params{Size: DefaultSize, J: DefaultJ, MuH: DefaultMuH, KT: DefaultKT}
}

// Validate rejects parameters no lattice can be built from.
func (p Params) Validate() error {
	if p.Size < 1 {
		return invalidf("lattice size %d is below 1", p.Size)
	}
	if p.KT < 0 || math.IsNaN(p.KT) || math.IsInf(p.KT, 0) {
		return invalidf("temperature %g is not a finite non-negative value", p.KT)
	}
	if math.IsNaN(p.J) || math.IsInf(p.J, 0) {
		return invalidf("coupling J=%g is not finite", p.J)
	}
	if math.IsNaN(p.MuH) || math.IsInf(p.MuH, 0) {
		return invalidf("field H=%g is not finite", p.MuH)
	}
	return nil
}

// Mode selects how an equilibration run decides to stop.
type Mode string

const (
	// ModeAuto stops once the spin-change signal has been quiet for Patience steps.
	ModeAuto Mode = "auto"
	// ModeManual stops after a fixed number of steps.
	ModeManual Mode = "manual"
)

// FrameSink receives a lattice snapshot after randomisation and after every step.
type FrameSink interface {
	WriteFrame(core.Snapshot) error
}

// Options controls a single equilibration run.
type Options struct {
	Mode       Mode
	Iterations int
	Window     int
	Seed       int64

	// Frames, when set, receives progress snapshots.
	Frames FrameSink
	// Pace throttles steps while frames are being written. Nil runs flat out.
	Pace *core.FixedStep
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// DefaultOptions returns automatic mode with the standard averaging window.
func DefaultOptions() Options {
	return Options{Mode: ModeAuto, Window: DefaultWindow}
}

// Validate rejects options that cannot produce a run record.
func (o Options) Validate() error {
	switch o.Mode {
	case ModeAuto:
	case ModeManual:
		if o.Iterations < 1 {
			return invalidf("manual mode needs at least 1 iteration, got %d", o.Iterations)
		}
	default:
		return invalidf("unknown mode %q", o.Mode)
	}
	if o.Window < 2 {
		return invalidf("averaging window %d is below 2", o.Window)
	}
	return nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
