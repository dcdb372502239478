package sweep

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"ising/internal/sims/ising"
)

// Range is an inclusive-start temperature sweep of Steps points.
type Range struct {
	From  float64
	To    float64
	Steps int
}

// Validate rejects ranges that cannot produce temperatures.
func (r Range) Validate() error {
	if r.Steps < 1 {
		return errors.Wrapf(ising.ErrInvalidConfig, "need at least 1 temperature step, got %d", r.Steps)
	}
	for _, t := range []float64{r.From, r.To} {
		if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			return errors.Wrapf(ising.ErrInvalidConfig, "temperature %g is not a finite non-negative value", t)
		}
	}
	return nil
}

// Normalize returns the range in ascending order and whether it was swapped.
func (r Range) Normalize() (Range, bool) {
	if r.From > r.To {
		r.From, r.To = r.To, r.From
		return r, true
	}
	return r, false
}

// Degenerate reports whether the range collapses to a single temperature.
func (r Range) Degenerate() bool { return r.From == r.To }

// Temperatures returns From + i·(To-From)/Steps for i in [0, Steps). A
// degenerate range yields exactly one value. The range must be normalised.
func (r Range) Temperatures() []float64 {
	if r.Degenerate() || r.Steps < 1 {
		return []float64{r.From}
	}
	span := make([]float64, r.Steps+1)
	floats.Span(span, r.From, r.To)
	return span[:r.Steps]
}
