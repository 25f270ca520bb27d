// Package engine implements the write, read, and delete paths described
// in spec.md §4: it ties together the row-key codec, the known-key
// caches, the tag-index policy, the planner/runner, and the Cassandra
// store into the single entry point callers use.
package engine

import (
	"fmt"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"tscass/internal/cache"
	"tscass/internal/config"
	"tscass/internal/metrics"
	"tscass/internal/store"
	"tscass/internal/tagindex"
)

// Tracer is the minimal, nil-safe span-creation handle the engine
// carries instead of a process-wide tracer global (§9 — generalizes
// the source's singleton trace-span accessor into an injected field).
// A nil Tracer is valid; every call site on the hot path checks for it.
type Tracer interface {
	StartSpan(operation string) Span
}

// Span is the handle returned by Tracer.StartSpan; Finish must be safe
// to call on a nil Span.
type Span interface {
	Finish()
	SetTag(key string, value any)
}

// Options configures a new Engine.
type Options struct {
	Config config.Config
	Logger *zap.Logger
	Tracer Tracer
	// MemoryCeilingBytes bounds the query runner's sampling check of
	// allocated heap bytes (runtime.MemStats.Alloc, §4.7, §5). Zero
	// disables the monitor.
	MemoryCeilingBytes uint64
	// Caches overrides the engine's known-key caches. Nil builds the
	// default size-bounded caches via cache.NewCaches(cache.DefaultSizes());
	// tests wanting every index write to actually run pass
	// cache.NewNoopCaches() instead, changing only performance, never
	// correctness (§9).
	Caches *cache.Caches
}

// Engine is the storage engine's single entry point: PutDataPoint,
// RunQuery, and Delete are its three operations (§2).
type Engine struct {
	session            store.Session
	stmts              *store.Statements
	caches             *cache.Caches
	counters           *metrics.Counters
	policy             *tagindex.Policy
	logger             *zap.Logger
	tracer             Tracer
	cfg                config.Config
	consistency        consistencyPolicy
	memoryCeilingBytes uint64
}

// New builds an Engine bound to an already-open session. The session's
// lifetime is owned by the caller; Close flushes the engine's own
// resources (the logger) but never closes the session.
func New(session *gocql.Session, opts Options) (*Engine, error) {
	if session == nil {
		return nil, fmt.Errorf("engine: session must not be nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	caches := opts.Caches
	if caches == nil {
		var err error
		caches, err = cache.NewCaches(cache.DefaultSizes())
		if err != nil {
			return nil, fmt.Errorf("engine: failed to build caches: %w", err)
		}
	}

	global := tagindex.ParseGlobalList(opts.Config.IndexTagList)
	override := tagindex.ParseOverrideMap(opts.Config.MetricIndexTagList)

	return &Engine{
		session:  store.WrapSession(session),
		stmts:    store.NewStatements(opts.Config.Cassandra.Keyspace),
		caches:   caches,
		counters: metrics.NewCounters(),
		policy:   tagindex.NewPolicy(global, override),
		logger:   logger,
		tracer:   opts.Tracer,
		cfg:      opts.Config,
		consistency: newConsistencyPolicy(
			opts.Config.DataWriteLevelDatapoint,
			opts.Config.DataWriteLevelMeta,
			opts.Config.DataReadLevel,
		),
		memoryCeilingBytes: opts.MemoryCeilingBytes,
	}, nil
}

// Counters exposes the engine's self-reported counter set (§6).
func (e *Engine) Counters() *metrics.Counters { return e.counters }

// Close flushes the engine's logger. The session itself is owned by
// whoever constructed it (see New) and is left open; callers managing
// their own session lifecycle call session.Close() themselves.
func (e *Engine) Close() error {
	_ = e.logger.Sync()
	return nil
}

func (e *Engine) startSpan(operation string) Span {
	if e.tracer == nil {
		return nil
	}
	return e.tracer.StartSpan(operation)
}

func finishSpan(span Span) {
	if span != nil {
		span.Finish()
	}
}
