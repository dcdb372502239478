package core

// SpinGrid stores a square grid of ±1 spins in row-major order.
type SpinGrid struct {
	N    int
	data []int8
}

// NewSpinGrid allocates an n×n grid with every spin up.
func NewSpinGrid(n int) *SpinGrid {
	if n <= 0 {
		n = 1
	}
	g := &SpinGrid{N: n, data: make([]int8, n*n)}
	g.Fill(1)
	return g
}

// Size reports the grid dimensions.
func (g *SpinGrid) Size() Size { return Size{W: g.N, H: g.N} }

// Cells exposes the backing slice so callers can read values directly.
func (g *SpinGrid) Cells() []int8 { return g.data }

// Index returns the linear slice index for row i, column j.
func (g *SpinGrid) Index(i, j int) int { return i*g.N + j }

// Wrap applies toroidal wrapping to the provided coordinates.
func (g *SpinGrid) Wrap(i, j int) (int, int) {
	i = (i%g.N + g.N) % g.N
	j = (j%g.N + g.N) % g.N
	return i, j
}

// At returns the spin at (i, j) with periodic boundaries.
func (g *SpinGrid) At(i, j int) int8 {
	i, j = g.Wrap(i, j)
	return g.data[g.Index(i, j)]
}

// Fill sets every cell to s, which must be +1 or -1.
func (g *SpinGrid) Fill(s int8) {
	if s >= 0 {
		s = 1
	} else {
		s = -1
	}
	for i := range g.data {
		g.data[i] = s
	}
}

// Sum returns the total spin of the grid.
func (g *SpinGrid) Sum() int {
	total := 0
	for _, s := range g.data {
		total += int(s)
	}
	return total
}
