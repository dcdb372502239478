package ising

import "math"

// numKeys covers 5 neighbour sums × 2 own-spin values.
const numKeys = 10

// AcceptanceTable caches the Metropolis flip probability for every local
// configuration. The key packs the site's own spin in bit 0 (1 = up) and the
// number of up neighbours, doubled, in bits 1-3, so key = sum(neighbours)+4+own.
type AcceptanceTable struct {
	p [numKeys]float64
}

// NewAcceptanceTable builds the table for one (J, muH, kT) triple.
func NewAcceptanceTable(j, muH, kT float64) *AcceptanceTable {
	t := &AcceptanceTable{}
	for key := 0; key < numKeys; key++ {
		t.p[key] = acceptance(DeltaE(j, muH, keySpin(key), keyNeighbourSum(key)), kT)
	}
	return t
}

// ConfigKey encodes a site's spin and its count of up neighbours (0-4).
func ConfigKey(spin int8, upNeighbours int) int {
	key := 2 * upNeighbours
	if spin > 0 {
		key++
	}
	return key
}

// Probability returns the flip probability for a configuration key.
func (t *AcceptanceTable) Probability(key int) float64 {
	return t.p[key]
}

// DeltaE is the energy change from flipping a site with the given spin whose
// four neighbours sum to neighbourSum.
func DeltaE(j, muH float64, spin int8, neighbourSum int) float64 {
	s := float64(spin)
	return 2*j*s*float64(neighbourSum) + 2*muH*s
}

func acceptance(dE, kT float64) float64 {
	if dE < 0 {
		return 1
	}
	if kT == 0 {
		return 0
	}
	return math.Exp(-dE / kT)
}

func keySpin(key int) int8 {
	if key&0x1 != 0 {
		return 1
	}
	return -1
}

func keyNeighbourSum(key int) int {
	return (key & 0xe) - 4
}
