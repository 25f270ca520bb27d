// Package store wraps the Cassandra session and the statement shapes
// the engine issues against it: eight insert/query statements in the
// parameter order §6 specifies, plus the four deletes of the delete
// path.
package store

// Statements holds the query strings for every operation the engine
// issues. They are built once against a keyspace and bound per call
// with session.Query(...).Consistency(...).
type Statements struct {
	keyspace string
}

// NewStatements builds the statement set for keyspace.
func NewStatements(keyspace string) *Statements {
	return &Statements{keyspace: keyspace}
}

// InsertDataPoint: (key, column, value, ttl).
func (s *Statements) InsertDataPoint(session Session, key, column, value []byte, ttlSeconds int64) Query {
	return session.Query(
		`INSERT INTO `+s.keyspace+`.data_points (key, column1, value) VALUES (?, ?, ?) USING TTL ?`,
		key, column, value, ttlSeconds,
	)
}

// InsertGlobalIndex: (metric_bytes, serialized_key, row_time, ttl).
func (s *Statements) InsertGlobalIndex(session Session, metricBytes, serializedKey []byte, rowTime, ttlSeconds int64) Query {
	return session.Query(
		`INSERT INTO `+s.keyspace+`.row_time_key_index (key, column1, time_bucket) VALUES (?, ?, ?) USING TTL ?`,
		metricBytes, serializedKey, rowTime, ttlSeconds,
	)
}

// InsertSplitIndex: (metric_name, tag_name, tag_value, serialized_key, row_time, ttl).
func (s *Statements) InsertSplitIndex(session Session, metricName, tagName, tagValue string, serializedKey []byte, rowTime, ttlSeconds int64) Query {
	return session.Query(
		`INSERT INTO `+s.keyspace+`.row_time_key_split_index (metric_name, tag_name, tag_value, column1, time_bucket) VALUES (?, ?, ?, ?, ?) USING TTL ?`,
		metricName, tagName, tagValue, serializedKey, rowTime, ttlSeconds,
	)
}

// InsertString: (scope_bytes, value_string, default_ttl).
func (s *Statements) InsertString(session Session, scopeBytes []byte, value string, ttlSeconds int64) Query {
	return session.Query(
		`INSERT INTO `+s.keyspace+`.string_index (key, column1, value) VALUES (?, ?, ?) USING TTL ?`,
		scopeBytes, value, []byte{0x00}, ttlSeconds,
	)
}

// QueryStrings: (scope_bytes).
func (s *Statements) QueryStrings(session Session, scopeBytes []byte) Query {
	return session.Query(
		`SELECT column1 FROM `+s.keyspace+`.string_index WHERE key = ?`,
		scopeBytes,
	)
}

// QueryGlobalIndex: (metric_bytes, bucket, limit).
func (s *Statements) QueryGlobalIndex(session Session, metricBytes []byte, bucket int64, limit int) Query {
	return session.Query(
		`SELECT column1, time_bucket FROM `+s.keyspace+`.row_time_key_index WHERE key = ? AND time_bucket = ? LIMIT ?`,
		metricBytes, bucket, limit,
	)
}

// QuerySplitIndex: (metric_name, tag_name, tag_value, bucket, limit).
func (s *Statements) QuerySplitIndex(session Session, metricName, tagName, tagValue string, bucket int64, limit int) Query {
	return session.Query(
		`SELECT column1, time_bucket FROM `+s.keyspace+`.row_time_key_split_index WHERE metric_name = ? AND tag_name = ? AND tag_value = ? AND time_bucket = ? LIMIT ?`,
		metricName, tagName, tagValue, bucket, limit,
	)
}

// QueryDataRange: (key, column_lower, column_upper) ordered ASC or DESC.
func (s *Statements) QueryDataRange(session Session, key, columnLower, columnUpper []byte, limit int, descending bool) Query {
	order := "ASC"
	if descending {
		order = "DESC"
	}
	return session.Query(
		`SELECT column1, value FROM `+s.keyspace+`.data_points WHERE key = ? AND column1 >= ? AND column1 <= ? ORDER BY column1 `+order+` LIMIT ?`,
		key, columnLower, columnUpper, limit,
	)
}

// DeletePartition issues a full-partition delete of key from table.
func (s *Statements) DeletePartition(session Session, table string, key []byte) Query {
	return session.Query(
		`DELETE FROM `+s.keyspace+`.`+table+` WHERE key = ?`,
		key,
	)
}

// DeleteColumn deletes a single column within a partition, used by the
// partial-row delete path (§4.8).
func (s *Statements) DeleteColumn(session Session, key, column []byte) Query {
	return session.Query(
		`DELETE FROM `+s.keyspace+`.data_points WHERE key = ? AND column1 = ?`,
		key, column,
	)
}

// DeleteGlobalIndexEntry removes a single row key's entry from the
// global index without touching other row keys sharing the same
// metric partition (full-row delete, §4.8). time_bucket is part of the
// clustering key, so it must be restricted alongside column1.
func (s *Statements) DeleteGlobalIndexEntry(session Session, metricBytes, serializedKey []byte, bucket int64) Query {
	return session.Query(
		`DELETE FROM `+s.keyspace+`.row_time_key_index WHERE key = ? AND time_bucket = ? AND column1 = ?`,
		metricBytes, bucket, serializedKey,
	)
}

// DeleteSplitIndexEntry removes a single row key's entry from one
// (metric_name, tag_name, tag_value) partition of the split index.
func (s *Statements) DeleteSplitIndexEntry(session Session, metricName, tagName, tagValue string, serializedKey []byte, bucket int64) Query {
	return session.Query(
		`DELETE FROM `+s.keyspace+`.row_time_key_split_index WHERE metric_name = ? AND tag_name = ? AND tag_value = ? AND time_bucket = ? AND column1 = ?`,
		metricName, tagName, tagValue, bucket, serializedKey,
	)
}
