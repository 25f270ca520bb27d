package store

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

// Config configures the Cassandra session the engine binds its
// prepared statements against.
type Config struct {
	Hosts          []string
	Keyspace       string
	Consistency    string
	ConnectTimeout time.Duration
	Timeout        time.Duration
	NumConns       int
	Username       string
	Password       string
}

// DefaultConfig matches the values the engine falls back to absent
// explicit configuration.
func DefaultConfig() Config {
	return Config{
		Hosts:          []string{"127.0.0.1"},
		Keyspace:       "tscass",
		Consistency:    "QUORUM",
		ConnectTimeout: 5 * time.Second,
		Timeout:        10 * time.Second,
		NumConns:       4,
	}
}

// NewSession builds a *gocql.ClusterConfig from cfg and opens a
// session, the way metrictank's NewCassandraStore builds its cluster
// handle: NewCluster with the configured hosts, consistency parsed via
// gocql.ParseConsistency, timeouts and connection-pool size applied,
// then CreateSession.
func NewSession(cfg Config) (*gocql.Session, error) {
	if len(cfg.Hosts) == 0 {
		return nil, fmt.Errorf("store: at least one host is required")
	}

	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = gocql.ParseConsistency(cfg.Consistency)
	cluster.Timeout = cfg.Timeout
	cluster.ConnectTimeout = cfg.ConnectTimeout
	if cfg.NumConns > 0 {
		cluster.NumConns = cfg.NumConns
	}
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("store: failed to create cassandra session: %w", err)
	}
	return session, nil
}

// EnsureKeyspace applies the DDL statements for keyspace against
// session, creating the keyspace and the four tables if they do not
// already exist. The "serve" CLI command calls it before building the
// engine, and the integration test calls it during setup; the engine's
// write/read path never does.
func EnsureKeyspace(session *gocql.Session, keyspace string) error {
	for _, stmt := range DDLStatements(keyspace) {
		if err := session.Query(stmt).Exec(); err != nil {
			return fmt.Errorf("store: failed to apply DDL statement: %w", err)
		}
	}
	return nil
}
