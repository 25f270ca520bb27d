package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDDLStatementsContainsAllFourTables(t *testing.T) {
	stmts := DDLStatements("tscass_test")
	joined := strings.Join(stmts, "\n")

	assert.Contains(t, joined, "CREATE KEYSPACE IF NOT EXISTS tscass_test")
	assert.Contains(t, joined, "tscass_test.data_points")
	assert.Contains(t, joined, "tscass_test.row_time_key_index")
	assert.Contains(t, joined, "tscass_test.row_time_key_split_index")
	assert.Contains(t, joined, "tscass_test.string_index")
	assert.Len(t, stmts, 5)
}

func TestDataPointsTableClusteringOrderDescending(t *testing.T) {
	stmts := DDLStatements("ks")
	var dataPointsDDL string
	for _, s := range stmts {
		if strings.Contains(s, "ks.data_points") {
			dataPointsDDL = s
		}
	}
	assert.Contains(t, dataPointsDDL, "CLUSTERING ORDER BY (column1 DESC)")
}

func TestSplitIndexPartitionedByMetricTagValue(t *testing.T) {
	stmts := DDLStatements("ks")
	var splitDDL string
	for _, s := range stmts {
		if strings.Contains(s, "row_time_key_split_index") {
			splitDDL = s
		}
	}
	assert.Contains(t, splitDDL, "PRIMARY KEY ((metric_name, tag_name, tag_value), time_bucket, column1)")
}
