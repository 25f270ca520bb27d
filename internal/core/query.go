package core

// Order selects ascending or descending timestamp order for a query.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// RowKeyProvider is the narrow capability a query plugin advertises
// when it wants to supply candidate row keys directly, bypassing the
// built-in planner (§4.6, §9 — replaces the teacher corpus's
// open-type-check-against-a-concrete-plugin-type idiom with a small
// interface).
type RowKeyProvider interface {
	CandidateKeys(q Query) ([]RowKey, error)
}

// Plugin is a query-time extension point. A plugin that also
// implements RowKeyProvider takes over candidate-key resolution.
type Plugin interface {
	Name() string
}

// DataPoint is a single timestamped value.
type DataPoint struct {
	Timestamp int64
	Value     []byte
	DataType  string
}

// Query describes a read or delete over the engine.
type Query struct {
	MetricName string
	StartMs    int64
	EndMs      int64
	// TagFilters maps a tag name to the set of glob patterns that must
	// match at least one of the row's values for that tag.
	TagFilters map[string][]string
	Limit      int
	Order      Order
	Plugins    []Plugin
}

// Callback receives the streamed result of a query runner invocation.
// The three methods are called in this order: StartDataPointSet once
// per candidate series (a batch may span several distinct tag sets
// sharing a row_time/data_type, so the series boundary, not the batch
// boundary, is what StartDataPointSet marks), AddDataPoint any number
// of times per series, EndDataPoints exactly once after every series
// has been delivered (§4.7, §9 — a push abstraction, since the store
// driver's async semantics make pull iteration awkward).
type Callback interface {
	StartDataPointSet(dataType string, tags Tags) error
	AddDataPoint(dp DataPoint) error
	EndDataPoints() error
}
