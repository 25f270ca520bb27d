// Package core contains the domain model shared by the write path, the
// planner, and the query runner: row keys, data points, queries, the
// glob grammar, and the engine's error kinds.
package core

import (
	"errors"
	"fmt"
)

// ErrorKind identifies one of the error categories named in the
// engine's error handling design.
type ErrorKind string

const (
	// KindDatastore wraps a synchronous failure from the store
	// (binding, preparation, exhausted hosts).
	KindDatastore ErrorKind = "datastore_error"
	// KindMaxRowKeysExceeded is raised by the planner when either the
	// read-rows or the filtered-rows ceiling trips.
	KindMaxRowKeysExceeded ErrorKind = "max_row_keys_for_query_exceeded"
	// KindOutOfMemory is raised by the query runner's memory monitor.
	KindOutOfMemory ErrorKind = "out_of_memory"
	// KindMalformedKey is raised by the row-key codec when a name or
	// value contains a reserved separator byte.
	KindMalformedKey ErrorKind = "malformed_key"
)

// EngineError is the single error type returned across package
// boundaries; callers branch on Kind or use errors.Is/errors.As.
type EngineError struct {
	Kind ErrorKind
	Msg  string
	Err  error

	// Fields below are populated only for KindMaxRowKeysExceeded.
	ReadCount     int
	FilteredCount int
	Limit         int
	Metric        string
	Index         string // "global" or "split:<tag>"
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *EngineError) Unwrap() error { return e.Err }

// Is reports whether target is an EngineError with the same Kind,
// letting callers write errors.Is(err, core.DatastoreError).
func (e *EngineError) Is(target error) bool {
	var other *EngineError
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// Sentinel EngineErrors usable with errors.Is for kind-only matching.
var (
	DatastoreError     = &EngineError{Kind: KindDatastore}
	MaxRowKeysForQuery = &EngineError{Kind: KindMaxRowKeysExceeded}
	OutOfMemory        = &EngineError{Kind: KindOutOfMemory}
	MalformedKey       = &EngineError{Kind: KindMalformedKey}
)

// NewDatastoreError wraps a synchronous store failure.
func NewDatastoreError(msg string, cause error) *EngineError {
	return &EngineError{Kind: KindDatastore, Msg: msg, Err: cause}
}

// NewMalformedKey wraps a codec round-trip failure as a DatastoreError,
// per §7's propagation policy.
func NewMalformedKey(msg string, cause error) *EngineError {
	return &EngineError{Kind: KindDatastore, Msg: "malformed key: " + msg, Err: &EngineError{Kind: KindMalformedKey, Msg: msg, Err: cause}}
}

// NewMaxRowKeysExceeded builds the limit-violation error with its
// structured fields.
func NewMaxRowKeysExceeded(metric, index string, readCount, filteredCount, limit int, reason string) *EngineError {
	return &EngineError{
		Kind:          KindMaxRowKeysExceeded,
		Msg:           reason,
		ReadCount:     readCount,
		FilteredCount: filteredCount,
		Limit:         limit,
		Metric:        metric,
		Index:         index,
	}
}

// NewOutOfMemory builds the memory-ceiling violation error.
func NewOutOfMemory(msg string) *EngineError {
	return &EngineError{Kind: KindOutOfMemory, Msg: msg}
}
