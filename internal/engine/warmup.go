package engine

import (
	"time"

	"github.com/cespare/xxhash/v2"
)

// warmUpConfig carries the configured knobs the predicate needs beyond
// the key hash and the clock (§9's "pure function of (hash(next_key),
// now, next_row_time, heating_interval, row_interval)").
type warmUpConfig struct {
	enabled         bool
	heatingInterval time.Duration
	rowInterval     time.Duration
}

// shouldWarmUp decides whether the next bucket's index entry should be
// pre-created now. It is a pure function of its arguments: the same
// inputs always produce the same answer, so it is tested in isolation
// from any clock or store dependency.
//
// Hashing next_key gives an offset within the row interval; warm-up
// fires inside a heating_interval-wide window that starts at
// next_row_time - row_interval + offset. Hashing
// the key spreads different series' warm-up writes across the row
// interval instead of bursting every series's warm-up at once.
func shouldWarmUp(cfg warmUpConfig, nextKey []byte, now time.Time, nextRowTime int64) bool {
	if !cfg.enabled || cfg.heatingInterval <= 0 || cfg.rowInterval <= 0 {
		return false
	}

	offset := hashOffset(nextKey, cfg.rowInterval)
	heatStart := time.UnixMilli(nextRowTime).Add(-cfg.rowInterval).Add(offset)
	heatEnd := heatStart.Add(cfg.heatingInterval)

	return !now.Before(heatStart) && now.Before(heatEnd)
}

// hashOffset maps nextKey into [0, rowInterval) so that different
// series' warm-up windows spread across the row interval instead of
// firing all at once.
func hashOffset(nextKey []byte, rowInterval time.Duration) time.Duration {
	return time.Duration(xxhash.Sum64(nextKey) % uint64(rowInterval))
}
