package store

import (
	"context"

	"github.com/gocql/gocql"
)

// Session is the narrow capability Statements needs from a Cassandra
// session: bind CQL text and values into a Query. It mirrors
// *gocql.Session.Query but returns the Query interface below instead
// of the concrete *gocql.Query, so a caller can substitute a fake
// session in tests without a live cluster — the same seam
// engine/reader.go's indexIter gives the iterator side.
type Session interface {
	Query(stmt string, values ...any) Query
}

// Query is the subset of *gocql.Query the engine issues: bind a
// context and consistency level, then either execute (writes/deletes)
// or iterate (reads).
type Query interface {
	WithContext(ctx context.Context) Query
	Consistency(level gocql.Consistency) Query
	Exec() error
	Iter() Iter
}

// Iter is the subset of *gocql.Iter the engine scans. It matches
// *gocql.Iter's own method set exactly, so the real driver's iterator
// satisfies it with no adapter needed.
type Iter interface {
	Scan(dest ...any) bool
	Close() error
}

// WrapSession adapts a live *gocql.Session to the Session interface.
func WrapSession(session *gocql.Session) Session {
	return gocqlSession{session: session}
}

type gocqlSession struct {
	session *gocql.Session
}

func (g gocqlSession) Query(stmt string, values ...any) Query {
	return gocqlQuery{query: g.session.Query(stmt, values...)}
}

type gocqlQuery struct {
	query *gocql.Query
}

func (g gocqlQuery) WithContext(ctx context.Context) Query {
	return gocqlQuery{query: g.query.WithContext(ctx)}
}

func (g gocqlQuery) Consistency(level gocql.Consistency) Query {
	return gocqlQuery{query: g.query.Consistency(level)}
}

func (g gocqlQuery) Exec() error { return g.query.Exec() }

func (g gocqlQuery) Iter() Iter { return g.query.Iter() }
