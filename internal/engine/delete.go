package engine

import (
	"context"

	"go.uber.org/zap"

	"tscass/internal/core"
)

// Delete implements §4.8: candidates fully covered by the query range
// are removed outright (data partition plus their index entries);
// partially covered rows are re-run through the same batching/column
// logic the runner uses, deleting one column at a time instead of
// decoding it. string_index entries are never touched here — see
// DESIGN.md's resolution of the corresponding open question.
func (e *Engine) Delete(ctx context.Context, q core.Query) error {
	span := e.startSpan("delete")
	defer finishSpan(span)

	candidates, _, err := e.resolveCandidates(ctx, q)
	if err != nil {
		return err
	}

	full, partial := partitionByCoverage(candidates, q, e.cfg.RowWidthReadMs)

	for _, key := range full {
		if err := e.deleteFullRow(ctx, key); err != nil {
			return err
		}
	}

	return e.deletePartialRows(ctx, q, partial)
}

// partitionByCoverage splits candidates into full-row deletes (the
// query range fully covers the row's bucket) and partial-row deletes,
// per §4.8's coverage test.
func partitionByCoverage(candidates []core.RowKey, q core.Query, readWidth int64) (full, partial []core.RowKey) {
	for _, key := range candidates {
		if q.StartMs <= key.RowTime && q.EndMs >= key.RowTime+readWidth-1 {
			full = append(full, key)
		} else {
			partial = append(partial, key)
		}
	}
	return full, partial
}

func (e *Engine) deleteFullRow(ctx context.Context, key core.RowKey) error {
	serialized, err := core.EncodeRowKey(key)
	if err != nil {
		return err
	}

	dataQuery := e.stmts.DeletePartition(e.session, "data_points", serialized)
	if err := dataQuery.WithContext(ctx).Consistency(e.consistency.dataWrite).Exec(); err != nil {
		e.logger.Warn("full row data delete failed", zap.String("metric", key.MetricName), zap.Error(err))
	}

	metricBytes := []byte(key.MetricName)
	globalQuery := e.stmts.DeleteGlobalIndexEntry(e.session, metricBytes, serialized, key.RowTime)
	if err := globalQuery.WithContext(ctx).Consistency(e.consistency.metaWrite).Exec(); err != nil {
		e.logger.Warn("full row global index delete failed", zap.String("metric", key.MetricName), zap.Error(err))
	}

	for _, tagName := range e.policy.IndexableTags(key.MetricName) {
		tagValue, ok := key.Tags[tagName]
		if !ok || tagValue == "" {
			continue
		}
		splitQuery := e.stmts.DeleteSplitIndexEntry(e.session, key.MetricName, tagName, tagValue, serialized, key.RowTime)
		if err := splitQuery.WithContext(ctx).Consistency(e.consistency.metaWrite).Exec(); err != nil {
			e.logger.Warn("full row split index delete failed",
				zap.String("metric", key.MetricName), zap.String("tag", tagName), zap.Error(err))
		}
	}

	return nil
}

func (e *Engine) deletePartialRows(ctx context.Context, q core.Query, partial []core.RowKey) error {
	for _, b := range buildBatches(partial) {
		lowerColumn, upperColumn, err := batchColumnBounds(b.rowTime, q.StartMs, q.EndMs)
		if err != nil {
			return err
		}

		for _, key := range b.keys {
			serialized, err := core.EncodeRowKey(key)
			if err != nil {
				return err
			}

			err = e.forEachColumn(ctx, serialized, lowerColumn, upperColumn, q.Limit, q.Order == core.OrderDesc, func(column, _ []byte) error {
				delQuery := e.stmts.DeleteColumn(e.session, serialized, column)
				return delQuery.WithContext(ctx).Consistency(e.consistency.dataWrite).Exec()
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
