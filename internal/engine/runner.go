package engine

import (
	"context"
	"runtime"
	"sort"

	"go.uber.org/zap"

	"tscass/internal/codec"
	"tscass/internal/core"
)

// maxColumnOffset mirrors the column codec's 31 usable offset bits
// (§4.2): a batch's column bounds are clamped into this span.
const maxColumnOffset = int64(1) << 31

// batch is a run of candidate keys sharing (row_time, data_type); they
// share a single pair of column bounds for the range slice in step 3.
type batch struct {
	rowTime  int64
	dataType string
	keys     []core.RowKey
}

// buildBatches sorts candidates by RowKey.Less and groups adjacent
// runs of identical (row_time, data_type) into batches, so a shared
// column range is computed once per group rather than once per key
// (§4.7 step 2).
func buildBatches(keys []core.RowKey) []batch {
	if len(keys) == 0 {
		return nil
	}
	sorted := make([]core.RowKey, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	batches := make([]batch, 0, 1)
	cur := batch{rowTime: sorted[0].RowTime, dataType: sorted[0].DataType}
	for _, k := range sorted {
		if k.RowTime != cur.rowTime || k.DataType != cur.dataType {
			batches = append(batches, cur)
			cur = batch{rowTime: k.RowTime, dataType: k.DataType}
		}
		cur.keys = append(cur.keys, k)
	}
	batches = append(batches, cur)
	return batches
}

// RunQuery implements §4.7: resolve candidates via the planner, batch
// them, and stream decoded points to cb in batch order.
func (e *Engine) RunQuery(ctx context.Context, q core.Query, cb core.Callback) error {
	span := e.startSpan("run_query")
	defer finishSpan(span)

	candidates, plan, err := e.resolveCandidates(ctx, q)
	if err != nil {
		return err
	}
	if span != nil {
		span.SetTag("index", plan.index)
		span.SetTag("critical", plan.critical)
	}

	batches := buildBatches(candidates)
	if q.Order == core.OrderDesc {
		reverseBatches(batches)
	}

	return e.runBatches(ctx, q, batches, cb)
}

func reverseBatches(batches []batch) {
	for i, j := 0, len(batches)-1; i < j; i, j = i+1, j-1 {
		batches[i], batches[j] = batches[j], batches[i]
	}
}

func (e *Engine) runBatches(ctx context.Context, q core.Query, batches []batch, cb core.Callback) error {
	descending := q.Order == core.OrderDesc

	for _, b := range batches {
		if e.memoryExceeded() {
			return core.NewOutOfMemory("memory ceiling exceeded before batch")
		}

		valueCodec, err := codec.GetCodec(b.dataType)
		if err != nil {
			return core.NewDatastoreError("no codec registered for data type "+b.dataType, err)
		}

		lowerColumn, upperColumn, err := batchColumnBounds(b.rowTime, q.StartMs, q.EndMs)
		if err != nil {
			return err
		}

		for _, key := range b.keys {
			if e.memoryExceeded() {
				return core.NewOutOfMemory("memory ceiling exceeded mid-batch")
			}

			serialized, err := core.EncodeRowKey(key)
			if err != nil {
				return err
			}

			if err := cb.StartDataPointSet(key.DataType, key.Tags); err != nil {
				e.logger.Warn("callback start_data_point_set failed", zap.Error(err))
				continue
			}

			if err := e.streamKeyRange(ctx, serialized, lowerColumn, upperColumn, q.Limit, descending, b.rowTime, valueCodec, cb); err != nil {
				e.logger.Warn("callback add_data_point failed", zap.Error(err))
			}
		}
	}

	return cb.EndDataPoints()
}

func (e *Engine) streamKeyRange(ctx context.Context, serializedKey []byte, lowerColumn, upperColumn uint32, limit int, descending bool, rowTime int64, valueCodec codec.ValueCodec, cb core.Callback) error {
	return e.forEachColumn(ctx, serializedKey, lowerColumn, upperColumn, limit, descending, func(column, value []byte) error {
		ts, _ := core.DecodeColumn(rowTime, bytesToUint32(column))
		return cb.AddDataPoint(core.DataPoint{Timestamp: ts, Value: value, DataType: valueCodec.DataType()})
	})
}

// forEachColumn issues the range slice for a single row key and
// invokes fn for every returned (column, value) pair, stopping early
// if the memory monitor trips. Both the read path (decode-and-deliver)
// and the partial-delete path (issue a column delete) are built on
// this shared scan.
func (e *Engine) forEachColumn(ctx context.Context, serializedKey []byte, lowerColumn, upperColumn uint32, limit int, descending bool, fn func(column, value []byte) error) error {
	query := e.stmts.QueryDataRange(e.session, serializedKey, uint32ToBytes(lowerColumn), uint32ToBytes(upperColumn), limit, descending)
	iter := query.WithContext(ctx).Consistency(e.consistency.read).Iter()

	var column []byte
	var value []byte
	for iter.Scan(&column, &value) {
		if e.memoryExceeded() {
			_ = iter.Close()
			return core.NewOutOfMemory("memory ceiling exceeded while streaming")
		}

		columnCopy := make([]byte, len(column))
		copy(columnCopy, column)
		valueCopy := make([]byte, len(value))
		copy(valueCopy, value)

		if err := fn(columnCopy, valueCopy); err != nil {
			e.logger.Warn("row scan callback failed", zap.Error(err))
		}
	}
	return iter.Close()
}

// memoryExceeded is the runner's sampling check between keys and
// between batches (§4.7, §5). A zero ceiling disables the monitor.
func (e *Engine) memoryExceeded() bool {
	if e.memoryCeilingBytes <= 0 {
		return false
	}
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc > e.memoryCeilingBytes
}

// batchColumnBounds computes the lower/upper column names for a range
// slice over a batch's shared row_time, clamping the query's
// millisecond range into the codec's representable offset span.
func batchColumnBounds(rowTime, startMs, endMs int64) (lower, upper uint32, err error) {
	lowerTs := startMs
	if lowerTs < rowTime {
		lowerTs = rowTime
	}
	upperTs := endMs
	if upperTs > rowTime+maxColumnOffset-1 {
		upperTs = rowTime + maxColumnOffset - 1
	}

	lower, err = core.EncodeColumn(rowTime, lowerTs, true)
	if err != nil {
		return 0, 0, err
	}
	upper, err = core.EncodeColumn(rowTime, upperTs, false)
	if err != nil {
		return 0, 0, err
	}
	return lower, upper, nil
}

func bytesToUint32(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}
