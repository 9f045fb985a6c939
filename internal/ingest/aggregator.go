package ingest

import "github.com/LUNARKN1GHT/NBA-Analytics/internal/table"

// Aggregator buffers many small per-item payloads so a fan-out operation
// lands in one bulk store write instead of one transaction per item. It
// does not deduplicate rows; identity-level dedup happened before any
// payload entered the buffer.
type Aggregator struct {
	parts []*table.Table
	rows  int
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Accept buffers a payload. Empty payloads are ignored.
func (a *Aggregator) Accept(t *table.Table) {
	if t.Empty() {
		return
	}
	a.parts = append(a.parts, t)
	a.rows += t.Len()
}

// Buffered returns how many payloads are waiting to be flushed.
func (a *Aggregator) Buffered() int { return len(a.parts) }

// Rows returns the total buffered row count.
func (a *Aggregator) Rows() int { return a.rows }

// Flush concatenates all buffered payloads preserving arrival order and
// clears the buffer. With nothing buffered it returns an empty table.
func (a *Aggregator) Flush() (*table.Table, error) {
	merged, err := table.Concat(a.parts...)
	if err != nil {
		return nil, err
	}
	a.parts = nil
	a.rows = 0
	return merged, nil
}
