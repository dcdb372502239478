package core

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// Area returns the number of cells.
func (s Size) Area() int { return s.W * s.H }

// Snapshot exposes a read-only view of a spin grid for renderers.
type Snapshot interface {
	Size() Size
	Cells() []int8
}
