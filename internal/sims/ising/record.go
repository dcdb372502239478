package ising

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Record summarises one completed temperature run. It is immutable once made.
type Record struct {
	KT       float64
	M        float64
	MErr     float64
	E        float64
	EErr     float64
	Variance float64 // energy variance per site: sample variance · size²
	Steps    int
}

// Degenerate reports whether the run ended with too few samples for
// standard errors to exist.
func (r Record) Degenerate() bool {
	return math.IsNaN(r.MErr) || math.IsNaN(r.EErr)
}

// ReducedTemperature returns kT/J, or kT itself when J is zero.
func ReducedTemperature(kT, j float64) float64 {
	if j == 0 {
		return kT
	}
	return kT / j
}

// FromReducedTemperature inverts ReducedTemperature.
func FromReducedTemperature(t, j float64) float64 {
	if j == 0 {
		return t
	}
	return t * j
}

const recordFields = 7

// FormatRecord renders the worker line:
//
//	kT/J meanM stderrM meanE stderrE perSiteEnergyVariance stepCount
func FormatRecord(r Record, j float64) string {
	var b strings.Builder
	for _, v := range []float64{ReducedTemperature(r.KT, j), r.M, r.MErr, r.E, r.EErr, r.Variance} {
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		b.WriteByte(' ')
	}
	b.WriteString(strconv.Itoa(r.Steps))
	return b.String()
}

// ParseRecord reads a line produced by FormatRecord.
func ParseRecord(line string, j float64) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) != recordFields {
		return Record{}, errors.Errorf("ising: record line has %d fields, want %d: %q", len(fields), recordFields, line)
	}
	var vals [recordFields - 1]float64
	for i := range vals {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return Record{}, errors.Wrapf(err, "ising: record field %d", i+1)
		}
		vals[i] = v
	}
	steps, err := strconv.Atoi(fields[recordFields-1])
	if err != nil {
		return Record{}, errors.Wrap(err, "ising: record step count")
	}
	return Record{
		KT:       FromReducedTemperature(vals[0], j),
		M:        vals[1],
		MErr:     vals[2],
		E:        vals[3],
		EErr:     vals[4],
		Variance: vals[5],
		Steps:    steps,
	}, nil
}
