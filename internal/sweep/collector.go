package sweep

import (
	"sort"
	"sync"

	"ising/internal/sims/ising"
)

// Collector buffers run records in completion order and reorders them by
// temperature once the sweep is over. Add is safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	records []ising.Record
}

// NewCollector returns an empty collector sized for n runs.
func NewCollector(n int) *Collector {
	return &Collector{records: make([]ising.Record, 0, n)}
}

// Add appends a completed record.
func (c *Collector) Add(rec ising.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
}

// Len reports how many records have been collected.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Sort orders the records by ascending temperature, keeping completion order
// among equal temperatures.
func (c *Collector) Sort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	sort.SliceStable(c.records, func(i, j int) bool {
		return c.records[i].KT < c.records[j].KT
	})
}

// Records returns a copy of the buffered records in their current order.
func (c *Collector) Records() []ising.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ising.Record(nil), c.records...)
}

// Each walks the records in order with the discrete energy derivative
// attached, stopping early if fn returns false. j converts temperatures to
// kT/J for reporting.
func (c *Collector) Each(j float64, fn func(Row) bool) {
	for _, row := range Rows(c.Records(), j) {
		if !fn(row) {
			return
		}
	}
}
