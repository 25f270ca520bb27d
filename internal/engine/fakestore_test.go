package engine

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/gocql/gocql"

	"tscass/internal/store"
)

// fakeSession is an in-memory stand-in for store.Session, grounded on
// reader.go's/cql.go's seam: it lets PutDataPoint/RunQuery/Delete run
// against synthetic state instead of a live cluster. Table routing is
// done by matching the CQL text for the table name each statement in
// statements.go embeds; the statement shapes themselves are not
// reinterpreted, only recorded.
type fakeSession struct {
	mu sync.Mutex

	dataPoints  map[string]map[string][]byte // row key -> column -> value
	globalIndex map[string][]fakeIndexEntry  // metric name -> entries
	splitIndex  map[string][]fakeIndexEntry  // metric|tag|value -> entries
	strings     map[string]map[string]bool   // scope -> set of values
}

type fakeIndexEntry struct {
	bucket int64
	column []byte
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		dataPoints:  map[string]map[string][]byte{},
		globalIndex: map[string][]fakeIndexEntry{},
		splitIndex:  map[string][]fakeIndexEntry{},
		strings:     map[string]map[string]bool{},
	}
}

func (f *fakeSession) Query(stmt string, values ...any) store.Query {
	return &fakeQuery{session: f, stmt: stmt, values: values}
}

type fakeQuery struct {
	session *fakeSession
	stmt    string
	values  []any
}

func (q *fakeQuery) WithContext(context.Context) store.Query   { return q }
func (q *fakeQuery) Consistency(gocql.Consistency) store.Query { return q }

func (q *fakeQuery) Exec() error {
	q.session.mu.Lock()
	defer q.session.mu.Unlock()

	switch {
	case strings.HasPrefix(q.stmt, "INSERT") && strings.Contains(q.stmt, "data_points"):
		key := string(q.values[0].([]byte))
		column := string(q.values[1].([]byte))
		value := q.values[2].([]byte)
		if q.session.dataPoints[key] == nil {
			q.session.dataPoints[key] = map[string][]byte{}
		}
		q.session.dataPoints[key][column] = append([]byte(nil), value...)

	case strings.HasPrefix(q.stmt, "INSERT") && strings.Contains(q.stmt, "row_time_key_split_index"):
		metric := q.values[0].(string)
		tag := q.values[1].(string)
		tagValue := q.values[2].(string)
		column := q.values[3].([]byte)
		bucket := q.values[4].(int64)
		k := metric + "|" + tag + "|" + tagValue
		q.session.splitIndex[k] = append(q.session.splitIndex[k], fakeIndexEntry{bucket: bucket, column: append([]byte(nil), column...)})

	case strings.HasPrefix(q.stmt, "INSERT") && strings.Contains(q.stmt, "row_time_key_index"):
		metric := string(q.values[0].([]byte))
		column := q.values[1].([]byte)
		bucket := q.values[2].(int64)
		q.session.globalIndex[metric] = append(q.session.globalIndex[metric], fakeIndexEntry{bucket: bucket, column: append([]byte(nil), column...)})

	case strings.HasPrefix(q.stmt, "INSERT") && strings.Contains(q.stmt, "string_index"):
		scope := string(q.values[0].([]byte))
		value := q.values[1].(string)
		if q.session.strings[scope] == nil {
			q.session.strings[scope] = map[string]bool{}
		}
		q.session.strings[scope][value] = true

	case strings.HasPrefix(q.stmt, "DELETE") && strings.Contains(q.stmt, "row_time_key_split_index"):
		metric := q.values[0].(string)
		tag := q.values[1].(string)
		tagValue := q.values[2].(string)
		bucket := q.values[3].(int64)
		column := q.values[4].([]byte)
		k := metric + "|" + tag + "|" + tagValue
		q.session.splitIndex[k] = removeIndexEntry(q.session.splitIndex[k], bucket, column)

	case strings.HasPrefix(q.stmt, "DELETE") && strings.Contains(q.stmt, "row_time_key_index"):
		metric := string(q.values[0].([]byte))
		bucket := q.values[1].(int64)
		column := q.values[2].([]byte)
		q.session.globalIndex[metric] = removeIndexEntry(q.session.globalIndex[metric], bucket, column)

	case strings.HasPrefix(q.stmt, "DELETE") && strings.Contains(q.stmt, "data_points") && len(q.values) == 2:
		key := string(q.values[0].([]byte))
		column := string(q.values[1].([]byte))
		delete(q.session.dataPoints[key], column)

	case strings.HasPrefix(q.stmt, "DELETE") && strings.Contains(q.stmt, "data_points"):
		key := string(q.values[0].([]byte))
		delete(q.session.dataPoints, key)
	}

	return nil
}

func removeIndexEntry(entries []fakeIndexEntry, bucket int64, column []byte) []fakeIndexEntry {
	kept := entries[:0]
	for _, e := range entries {
		if e.bucket == bucket && bytes.Equal(e.column, column) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func (q *fakeQuery) Iter() store.Iter {
	q.session.mu.Lock()
	defer q.session.mu.Unlock()

	switch {
	case strings.HasPrefix(q.stmt, "SELECT") && strings.Contains(q.stmt, "data_points"):
		key := string(q.values[0].([]byte))
		lower := q.values[1].([]byte)
		upper := q.values[2].([]byte)
		limit := q.values[3].(int)
		descending := strings.Contains(q.stmt, "DESC")

		var rows [][]any
		for column, value := range q.session.dataPoints[key] {
			c := []byte(column)
			if bytes.Compare(c, lower) < 0 || bytes.Compare(c, upper) > 0 {
				continue
			}
			rows = append(rows, []any{c, value})
		}
		sort.Slice(rows, func(i, j int) bool {
			ci, cj := rows[i][0].([]byte), rows[j][0].([]byte)
			if descending {
				return bytes.Compare(ci, cj) > 0
			}
			return bytes.Compare(ci, cj) < 0
		})
		if limit > 0 && len(rows) > limit {
			rows = rows[:limit]
		}
		return &fakeIter{rows: rows}

	case strings.HasPrefix(q.stmt, "SELECT") && strings.Contains(q.stmt, "row_time_key_split_index"):
		metric := q.values[0].(string)
		tag := q.values[1].(string)
		tagValue := q.values[2].(string)
		bucket := q.values[3].(int64)
		k := metric + "|" + tag + "|" + tagValue

		var rows [][]any
		for _, e := range q.session.splitIndex[k] {
			if e.bucket != bucket {
				continue
			}
			rows = append(rows, []any{e.column, e.bucket})
		}
		return &fakeIter{rows: rows}

	case strings.HasPrefix(q.stmt, "SELECT") && strings.Contains(q.stmt, "row_time_key_index"):
		metric := string(q.values[0].([]byte))
		bucket := q.values[1].(int64)

		var rows [][]any
		for _, e := range q.session.globalIndex[metric] {
			if e.bucket != bucket {
				continue
			}
			rows = append(rows, []any{e.column, e.bucket})
		}
		return &fakeIter{rows: rows}

	case strings.HasPrefix(q.stmt, "SELECT") && strings.Contains(q.stmt, "string_index"):
		scope := string(q.values[0].([]byte))
		var rows [][]any
		for v := range q.session.strings[scope] {
			rows = append(rows, []any{v})
		}
		return &fakeIter{rows: rows}
	}

	return &fakeIter{}
}

type fakeIter struct {
	rows [][]any
	pos  int
}

func (it *fakeIter) Scan(dest ...any) bool {
	if it.pos >= len(it.rows) {
		return false
	}
	row := it.rows[it.pos]
	it.pos++
	for i, d := range dest {
		if i >= len(row) {
			continue
		}
		switch p := d.(type) {
		case *[]byte:
			if v, ok := row[i].([]byte); ok {
				*p = append([]byte(nil), v...)
			}
		case *int64:
			if v, ok := row[i].(int64); ok {
				*p = v
			}
		case *string:
			if v, ok := row[i].(string); ok {
				*p = v
			}
		}
	}
	return true
}

func (it *fakeIter) Close() error { return nil }
