package ising

import "ising/internal/core"

// Lattice is a square Ising spin lattice with periodic boundaries. It is not
// safe for concurrent use; each run owns its lattice exclusively.
type Lattice struct {
	params Params
	grid   *core.SpinGrid
	table  *AcceptanceTable
	rng    *core.RNG
}

// NewLattice builds a lattice with every spin up. Call Randomise to seed it.
func NewLattice(p Params, rng *core.RNG) (*Lattice, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = core.NewRNG(0)
	}
	return &Lattice{
		params: p,
		grid:   core.NewSpinGrid(p.Size),
		table:  NewAcceptanceTable(p.J, p.MuH, p.KT),
		rng:    rng,
	}, nil
}

// Params reports the lattice parameters.
func (l *Lattice) Params() Params { return l.params }

// Size returns the grid dimensions.
func (l *Lattice) Size() core.Size { return l.grid.Size() }

// Cells exposes the spins in row-major order.
func (l *Lattice) Cells() []int8 { return l.grid.Cells() }

// Randomise sets every spin to ±1 independently with probability ½.
func (l *Lattice) Randomise() {
	core.FillSpins(l.rng, l.grid.Cells())
}

// Step performs size² single-site Metropolis trials at uniformly random sites
// (repeats allowed) and returns the net change in total spin.
//
// Random sites rather than a full sweep keep the whole lattice from flipping
// in lock-step at high temperature.
func (l *Lattice) Step() int {
	n := l.grid.N
	cells := l.grid.Cells()
	change := 0
	for trial := n * n; trial > 0; trial-- {
		i := l.rng.IntN(n)
		j := l.rng.IntN(n)
		up := (i + n - 1) % n
		down := (i + 1) % n
		left := (j + n - 1) % n
		right := (j + 1) % n

		idx := i*n + j
		spin := cells[idx]
		sum := int(cells[down*n+j]) + int(cells[up*n+j]) + int(cells[i*n+right]) + int(cells[i*n+left])
		key := sum + 4
		if spin > 0 {
			key++
		}
		if l.rng.Float64() < l.table.Probability(key) {
			cells[idx] = -spin
			change -= 2 * int(spin)
		}
	}
	return change
}

// E returns the energy per site. Each bond is counted once by summing only the
// forward neighbours.
func (l *Lattice) E() float64 {
	g := l.grid
	j, muH := l.params.J, l.params.MuH
	total := 0.0
	for i := 0; i < g.N; i++ {
		for k := 0; k < g.N; k++ {
			s := float64(g.At(i, k))
			total -= j * s * float64(g.At(i+1, k)+g.At(i, k+1))
			total -= muH * s
		}
	}
	return total / float64(g.N*g.N)
}

// M returns the mean spin, in [-1, 1].
func (l *Lattice) M() float64 {
	return float64(l.grid.Sum()) / float64(l.grid.N*l.grid.N)
}
