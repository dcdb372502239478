package sweep

import (
	"bufio"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"

	"ising/internal/sims/ising"
)

// Row is one line of the sweep report.
type Row struct {
	T            float64 // kT/J
	AbsM         float64
	MErr         float64
	E            float64
	EErr         float64
	DEdT         float64 // discrete heat capacity, 0 for the first point
	HeatCapacity float64 // energy variance per site / T², 0 at T = 0
	Steps        int
}

// Rows derives report rows from records already sorted by temperature.
func Rows(records []ising.Record, j float64) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		t := ising.ReducedTemperature(rec.KT, j)
		row := Row{
			T:            t,
			AbsM:         math.Abs(rec.M),
			MErr:         rec.MErr,
			E:            rec.E,
			EErr:         rec.EErr,
			Steps:        rec.Steps,
		}
		if t != 0 {
			row.HeatCapacity = rec.Variance / (t * t)
		}
		if i > 0 {
			if dt := t - rows[i-1].T; dt != 0 {
				row.DEdT = (rec.E - rows[i-1].E) / dt
			}
		}
		rows[i] = row
	}
	return rows
}

// WriteReport writes the collected records, one whitespace-separated line per
// temperature:
//
//	kT/J |M| stderrM E stderrE dE/dkT variance/kT² steps
func WriteReport(w io.Writer, c *Collector, j float64) error {
	bw := bufio.NewWriter(w)
	var line []byte
	var err error
	c.Each(j, func(r Row) bool {
		line = appendRow(line[:0], r)
		_, err = bw.Write(line)
		return err == nil
	})
	if err != nil {
		return errors.Wrap(err, "sweep: writing report")
	}
	return errors.Wrap(bw.Flush(), "sweep: flushing report")
}

func appendRow(line []byte, r Row) []byte {
	for _, v := range []float64{r.T, r.AbsM, r.MErr, r.E, r.EErr, r.DEdT, r.HeatCapacity} {
		line = strconv.AppendFloat(line, v, 'g', -1, 64)
		line = append(line, ' ')
	}
	line = strconv.AppendInt(line, int64(r.Steps), 10)
	return append(line, '\n')
}
