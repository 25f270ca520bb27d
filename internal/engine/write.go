package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tscass/internal/codec"
	"tscass/internal/core"
)

// PutRequest is the input to PutDataPoint (spec §4.4).
type PutRequest struct {
	MetricName string
	Tags       core.Tags
	Timestamp  int64
	Value      any
	DataType   string
	TTLSeconds int64
}

// PutDataPoint executes the write path: cache-gated reverse-index
// writes, string-index registration, optional next-bucket warm-up, and
// the data-point insert itself. Every Cassandra write is dispatched
// fire-and-forget on its own goroutine (§4.4, §5) against a context
// detached from ctx's cancellation, so a caller that returns (and
// cancels its request context) the instant PutDataPoint returns does
// not abort writes still in flight. Ordering between the data-point
// insert and its index inserts is therefore not guaranteed; only a
// synchronous binding/encoding failure surfaces as an error here.
func (e *Engine) PutDataPoint(ctx context.Context, req PutRequest) error {
	ttl := req.TTLSeconds
	if ttl == 0 {
		ttl = e.cfg.DatapointTTLSeconds
	}
	var indexTTL int64
	if ttl > 0 {
		indexTTL = ttl + e.cfg.RowWidthWriteMs/1000
	}

	rowTime := core.FloorToWidth(req.Timestamp, e.cfg.RowWidthWriteMs)
	rowKey := core.RowKey{
		MetricName: req.MetricName,
		RowTime:    rowTime,
		DataType:   req.DataType,
		Tags:       req.Tags,
	}
	serialized, err := core.EncodeRowKey(rowKey)
	if err != nil {
		return err
	}

	bg := context.WithoutCancel(ctx)

	if !e.caches.RowKeys.IsKnown(string(serialized)) {
		go e.writeIndexEntries(bg, req.MetricName, req.Tags, serialized, rowTime, indexTTL)
	}

	if e.cfg.WarmingUp.Enabled {
		go e.maybeWarmUpNextBucket(bg, req, rowTime, indexTTL)
	}

	valueCodec, err := codec.GetCodec(req.DataType)
	if err != nil {
		return core.NewDatastoreError("no codec registered for data type", err)
	}
	isLongLegacy := valueCodec.IsLongLegacy()

	column, err := core.EncodeColumn(rowTime, req.Timestamp, isLongLegacy)
	if err != nil {
		return err
	}
	encodedValue, err := valueCodec.Encode(req.Value)
	if err != nil {
		return core.NewDatastoreError("failed to encode data point value", err)
	}

	go func() {
		query := e.stmts.InsertDataPoint(e.session, serialized, uint32ToBytes(column), encodedValue, ttl)
		query = query.WithContext(bg).Consistency(e.consistency.dataWrite)
		if err := query.Exec(); err != nil {
			e.logger.Warn("async data point write failed",
				zap.String("metric", req.MetricName),
				zap.Int64("row_time", rowTime),
				zap.Error(err))
		}
	}()

	return nil
}

// writeIndexEntries performs step 3 of §4.4: the global index insert,
// the per-tag split index inserts, and the metric-name/tag-name string
// index registrations, each gated by its own known-key cache. The row
// key is marked known only after its global and split index writes
// have all returned without error. Runs on its own goroutine,
// dispatched by PutDataPoint.
func (e *Engine) writeIndexEntries(ctx context.Context, metricName string, tags core.Tags, serialized []byte, rowTime, indexTTL int64) {
	metricBytes := []byte(metricName)
	indexed := true

	q := e.stmts.InsertGlobalIndex(e.session, metricBytes, serialized, rowTime, indexTTL)
	if err := q.WithContext(ctx).Consistency(e.consistency.metaWrite).Exec(); err != nil {
		e.logger.Warn("async global index write failed", zap.String("metric", metricName), zap.Error(err))
		indexed = false
	} else {
		e.counters.IncRowKeyIndexInserted()
	}

	for _, tagName := range e.policy.IndexableTags(metricName) {
		tagValue, ok := tags[tagName]
		if !ok || tagValue == "" {
			continue
		}
		q := e.stmts.InsertSplitIndex(e.session, metricName, tagName, tagValue, serialized, rowTime, indexTTL)
		if err := q.WithContext(ctx).Consistency(e.consistency.metaWrite).Exec(); err != nil {
			e.logger.Warn("async split index write failed",
				zap.String("metric", metricName), zap.String("tag", tagName), zap.Error(err))
			indexed = false
			continue
		}
		e.counters.IncRowKeySplitInserted()
	}

	if indexed {
		e.caches.RowKeys.Insert(string(serialized))
	}

	if !e.caches.MetricNames.IsKnown(metricName) {
		q := e.stmts.InsertString(e.session, []byte("metric_names"), metricName, e.cfg.DatapointTTLSeconds)
		if err := q.WithContext(ctx).Consistency(e.consistency.metaWrite).Exec(); err != nil {
			e.logger.Warn("async metric-name string index write failed", zap.String("metric", metricName), zap.Error(err))
		} else {
			e.caches.MetricNames.Insert(metricName)
		}
	}

	for tagName := range tags {
		if e.caches.TagNames.IsKnown(tagName) {
			continue
		}
		q := e.stmts.InsertString(e.session, []byte("tag_names"), tagName, e.cfg.DatapointTTLSeconds)
		if err := q.WithContext(ctx).Consistency(e.consistency.metaWrite).Exec(); err != nil {
			e.logger.Warn("async tag-name string index write failed", zap.String("tag", tagName), zap.Error(err))
			continue
		}
		e.caches.TagNames.Insert(tagName)
	}
}

// maybeWarmUpNextBucket implements §4.4 step 4: pre-create the next
// bucket's index entries when the warm-up predicate fires. Runs on its
// own goroutine, dispatched by PutDataPoint.
func (e *Engine) maybeWarmUpNextBucket(ctx context.Context, req PutRequest, rowTime, indexTTL int64) {
	nextRowTime := core.FloorToWidth(req.Timestamp+e.cfg.RowWidthWriteMs, e.cfg.RowWidthWriteMs)
	nextKey := core.RowKey{
		MetricName: req.MetricName,
		RowTime:    nextRowTime,
		DataType:   req.DataType,
		Tags:       req.Tags,
	}
	serializedNext, err := core.EncodeRowKey(nextKey)
	if err != nil {
		return
	}
	if e.caches.RowKeys.IsKnown(string(serializedNext)) {
		return
	}

	cfg := warmUpConfig{
		enabled:         e.cfg.WarmingUp.Enabled,
		heatingInterval: time.Duration(e.cfg.WarmingUp.HeatingIntervalMinutes) * time.Minute,
		rowInterval:     time.Duration(e.cfg.WarmingUp.RowIntervalMinutes) * time.Minute,
	}
	if !shouldWarmUp(cfg, serializedNext, time.Now(), nextRowTime) {
		return
	}

	metricBytes := []byte(req.MetricName)
	q := e.stmts.InsertGlobalIndex(e.session, metricBytes, serializedNext, nextRowTime, indexTTL)
	if err := q.WithContext(ctx).Consistency(e.consistency.metaWrite).Exec(); err != nil {
		e.logger.Warn("async warm-up index write failed", zap.String("metric", req.MetricName), zap.Error(err))
		return
	}
	e.counters.IncNextRowKeyIndexInserted()
	e.caches.RowKeys.Insert(string(serializedNext))

	for _, tagName := range e.policy.IndexableTags(req.MetricName) {
		tagValue, ok := req.Tags[tagName]
		if !ok || tagValue == "" {
			continue
		}
		q := e.stmts.InsertSplitIndex(e.session, req.MetricName, tagName, tagValue, serializedNext, nextRowTime, indexTTL)
		if err := q.WithContext(ctx).Consistency(e.consistency.metaWrite).Exec(); err != nil {
			e.logger.Warn("async warm-up split index write failed",
				zap.String("metric", req.MetricName), zap.String("tag", tagName), zap.Error(err))
		}
	}
}

func uint32ToBytes(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}
