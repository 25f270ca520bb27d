package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tscass/internal/cache"
	"tscass/internal/config"
	"tscass/internal/core"
	"tscass/internal/metrics"
	"tscass/internal/store"
	"tscass/internal/tagindex"
)

// recordingCallback captures a RunQuery invocation's delivered series
// and points for assertions.
type recordingCallback struct {
	dataType string
	tags     core.Tags
	points   []core.DataPoint
}

func (c *recordingCallback) StartDataPointSet(dataType string, tags core.Tags) error {
	c.dataType = dataType
	c.tags = tags
	return nil
}

func (c *recordingCallback) AddDataPoint(dp core.DataPoint) error {
	c.points = append(c.points, dp)
	return nil
}

func (c *recordingCallback) EndDataPoints() error { return nil }

func newTestEngine(t *testing.T, session *fakeSession) *Engine {
	t.Helper()

	cfg := config.Default()
	cfg.Cassandra.Keyspace = "tscass_test"
	cfg.IndexTagList = "host"
	cfg.WarmingUp.Enabled = false

	noopCaches := cache.NewNoopCaches()

	e := &Engine{
		session:  session,
		stmts:    store.NewStatements(cfg.Cassandra.Keyspace),
		caches:   noopCaches,
		counters: metrics.NewCounters(),
		policy:   tagindex.NewPolicy(tagindex.ParseGlobalList(cfg.IndexTagList), tagindex.ParseOverrideMap(cfg.MetricIndexTagList)),
		logger:   zap.NewNop(),
		cfg:      cfg,
		consistency: newConsistencyPolicy(
			cfg.DataWriteLevelDatapoint, cfg.DataWriteLevelMeta, cfg.DataReadLevel),
	}
	return e
}

// waitForGlobalIndex polls the fake session until the given metric's
// global index has at least n entries, or the deadline passes. The
// write path dispatches index writes on their own goroutine (§4.4), so
// a test exercising it end-to-end has no synchronous completion signal
// to block on.
func waitForGlobalIndex(t *testing.T, session *fakeSession, metric string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		session.mu.Lock()
		got := len(session.globalIndex[metric])
		session.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d global index entries for %q", n, metric)
}

func TestPutDataPointThenRunQueryRoundTrips(t *testing.T) {
	session := newFakeSession()
	e := newTestEngine(t, session)
	ctx := context.Background()

	req := PutRequest{
		MetricName: "cpu.usage",
		Tags:       core.Tags{"host": "a"},
		Timestamp:  1_700_000_000_000,
		Value:      42.5,
		DataType:   "double",
	}
	require.NoError(t, e.PutDataPoint(ctx, req))

	waitForGlobalIndex(t, session, "cpu.usage", 1)

	q := core.Query{
		MetricName: "cpu.usage",
		StartMs:    1_699_999_000_000,
		EndMs:      1_700_001_000_000,
		Limit:      10,
		Order:      core.OrderAsc,
	}
	cb := &recordingCallback{}
	require.NoError(t, e.RunQuery(ctx, q, cb))

	require.Len(t, cb.points, 1)
	assert.Equal(t, int64(1_700_000_000_000), cb.points[0].Timestamp)
	assert.Equal(t, "double", cb.dataType)
	assert.Equal(t, core.Tags{"host": "a"}, cb.tags)
}

func TestPutDataPointThenDeleteRemovesFullRow(t *testing.T) {
	session := newFakeSession()
	e := newTestEngine(t, session)
	ctx := context.Background()

	req := PutRequest{
		MetricName: "cpu.usage",
		Tags:       core.Tags{"host": "a"},
		Timestamp:  1_700_000_000_000,
		Value:      7.0,
		DataType:   "double",
	}
	require.NoError(t, e.PutDataPoint(ctx, req))
	waitForGlobalIndex(t, session, "cpu.usage", 1)

	q := core.Query{
		MetricName: "cpu.usage",
		StartMs:    1_700_000_000_000 - e.cfg.RowWidthWriteMs,
		EndMs:      1_700_000_000_000 + e.cfg.RowWidthWriteMs,
		Limit:      10,
		Order:      core.OrderAsc,
	}
	require.NoError(t, e.Delete(ctx, q))

	cb := &recordingCallback{}
	require.NoError(t, e.RunQuery(ctx, q, cb))
	assert.Empty(t, cb.points)
}
