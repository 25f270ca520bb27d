package engine

import "github.com/gocql/gocql"

// consistencyPolicy resolves the three per-operation consistency levels
// named in §4.9, each parsed once at engine construction time rather
// than per call.
type consistencyPolicy struct {
	dataWrite gocql.Consistency
	metaWrite gocql.Consistency
	read      gocql.Consistency
}

func newConsistencyPolicy(dataWriteLevel, metaWriteLevel, readLevel string) consistencyPolicy {
	return consistencyPolicy{
		dataWrite: gocql.ParseConsistency(orDefault(dataWriteLevel, "ONE")),
		metaWrite: gocql.ParseConsistency(orDefault(metaWriteLevel, "QUORUM")),
		read:      gocql.ParseConsistency(orDefault(readLevel, "QUORUM")),
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
