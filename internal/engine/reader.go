package engine

import (
	"context"

	"tscass/internal/core"
)

// indexRow is a single row returned from the global or split index:
// the serialized candidate row key. The bucket timestamp itself is not
// needed downstream since it is recoverable from the decoded key.
type indexRow struct {
	serialized []byte
}

func (e *Engine) queryGlobalIndexBucket(ctx context.Context, metricName string, bucket int64, limit int) ([]indexRow, error) {
	iter := e.stmts.QueryGlobalIndex(e.session, []byte(metricName), bucket, limit).
		WithContext(ctx).Consistency(e.consistency.read).Iter()
	rows, err := scanIndexRows(iter)
	if err != nil {
		return nil, core.NewDatastoreError("global index query failed", err)
	}
	return rows, nil
}

func (e *Engine) querySplitIndexBucket(ctx context.Context, metricName, tagName, tagValue string, bucket int64, limit int) ([]indexRow, error) {
	iter := e.stmts.QuerySplitIndex(e.session, metricName, tagName, tagValue, bucket, limit).
		WithContext(ctx).Consistency(e.consistency.read).Iter()
	rows, err := scanIndexRows(iter)
	if err != nil {
		return nil, core.NewDatastoreError("split index query failed", err)
	}
	return rows, nil
}

// indexIter is the subset of *gocql.Iter scanIndexRows needs; letting
// tests substitute a fake iterator without a live session.
type indexIter interface {
	Scan(dest ...any) bool
	Close() error
}

func scanIndexRows(iter indexIter) ([]indexRow, error) {
	var rows []indexRow
	var column []byte
	var timeBucket int64
	for iter.Scan(&column, &timeBucket) {
		buf := make([]byte, len(column))
		copy(buf, column)
		rows = append(rows, indexRow{serialized: buf})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return rows, nil
}
