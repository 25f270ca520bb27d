package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tscass/internal/core"
)

func TestPartitionByCoverageFullyCoveredRow(t *testing.T) {
	readWidth := int64(3_600_000)
	key := core.RowKey{MetricName: "m", RowTime: 0, DataType: "double"}
	q := core.Query{StartMs: 0, EndMs: readWidth - 1}

	full, partial := partitionByCoverage([]core.RowKey{key}, q, readWidth)
	assert.Equal(t, []core.RowKey{key}, full)
	assert.Empty(t, partial)
}

func TestPartitionByCoveragePartiallyCoveredRow(t *testing.T) {
	readWidth := int64(3_600_000)
	key := core.RowKey{MetricName: "m", RowTime: 0, DataType: "double"}
	q := core.Query{StartMs: 1000, EndMs: readWidth - 1}

	full, partial := partitionByCoverage([]core.RowKey{key}, q, readWidth)
	assert.Empty(t, full)
	assert.Equal(t, []core.RowKey{key}, partial)
}

func TestPartitionByCoverageEndBeforeRowEndIsPartial(t *testing.T) {
	readWidth := int64(3_600_000)
	key := core.RowKey{MetricName: "m", RowTime: 0, DataType: "double"}
	q := core.Query{StartMs: 0, EndMs: readWidth - 2}

	full, partial := partitionByCoverage([]core.RowKey{key}, q, readWidth)
	assert.Empty(t, full)
	assert.Equal(t, []core.RowKey{key}, partial)
}

func TestPartitionByCoverageMixedCandidates(t *testing.T) {
	readWidth := int64(100)
	covered := core.RowKey{MetricName: "m", RowTime: 0, DataType: "double"}
	notCovered := core.RowKey{MetricName: "m", RowTime: 200, DataType: "double"}
	q := core.Query{StartMs: 0, EndMs: 99}

	full, partial := partitionByCoverage([]core.RowKey{covered, notCovered}, q, readWidth)
	assert.Equal(t, []core.RowKey{covered}, full)
	assert.Equal(t, []core.RowKey{notCovered}, partial)
}
