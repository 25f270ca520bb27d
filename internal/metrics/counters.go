// Package metrics holds the engine's self-reported counters (spec §6),
// each a monotonic atomic snapshotted and reset per collection.
package metrics

import "go.uber.org/atomic"

// Counters is the fixed set of counters §6 names. All fields are
// accessed only through their atomic methods; the struct itself holds
// no other mutable state, so it is safe to share across every caller
// goroutine of the write and read paths.
type Counters struct {
	rowKeyIndexInserted     atomic.Int64
	nextRowKeyIndexInserted atomic.Int64
	rowKeySplitInserted     atomic.Int64
	readRowsExceeded        atomic.Int64
	filteredRowsExceeded    atomic.Int64
}

// NewCounters returns a zeroed counter set.
func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) IncRowKeyIndexInserted()    { c.rowKeyIndexInserted.Add(1) }
func (c *Counters) IncNextRowKeyIndexInserted() { c.nextRowKeyIndexInserted.Add(1) }
func (c *Counters) IncRowKeySplitInserted()     { c.rowKeySplitInserted.Add(1) }
func (c *Counters) IncReadRowsExceeded()        { c.readRowsExceeded.Add(1) }
func (c *Counters) IncFilteredRowsExceeded()    { c.filteredRowsExceeded.Add(1) }

// Snapshot is a point-in-time, named view of every counter. Field
// names match §6's emitted-metric names exactly.
type Snapshot struct {
	RowKeyIndexInserted     int64 `json:"kairosdb.inserted.row_key_index"`
	NextRowKeyIndexInserted int64 `json:"kairosdb.inserted.next_row_key_index"`
	RowKeySplitInserted     int64 `json:"kairosdb.inserted.row_key_split_index"`
	ReadRowsExceeded        int64 `json:"kairosdb.limits.read_rows_exceeded"`
	FilteredRowsExceeded    int64 `json:"kairosdb.limits.filtered_rows_exceeded"`
}

// SnapshotAndReset reads every counter and resets it to zero
// atomically per-field, matching "surfaced on demand... snapshotted
// and reset per collection" (§6).
func (c *Counters) SnapshotAndReset() Snapshot {
	return Snapshot{
		RowKeyIndexInserted:     c.rowKeyIndexInserted.Swap(0),
		NextRowKeyIndexInserted: c.nextRowKeyIndexInserted.Swap(0),
		RowKeySplitInserted:     c.rowKeySplitInserted.Swap(0),
		ReadRowsExceeded:        c.readRowsExceeded.Swap(0),
		FilteredRowsExceeded:    c.filteredRowsExceeded.Swap(0),
	}
}
