// Package config decodes the engine's TOML configuration document and
// validates it into a form the engine, planner, and write path consume
// directly (spec §6).
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// WarmingUp maps the [warming_up] table.
type WarmingUp struct {
	Enabled                bool `toml:"enabled"`
	HeatingIntervalMinutes int  `toml:"heating_interval_minutes"`
	RowIntervalMinutes     int  `toml:"row_interval_minutes"`
}

// Cassandra maps the [cassandra] table: cluster contact points, needed
// to actually build a gocql.ClusterConfig (the distilled spec assumes
// a store exists but never places its connection details anywhere).
type Cassandra struct {
	Hosts            []string `toml:"hosts"`
	Keyspace         string   `toml:"keyspace"`
	ConnectTimeoutMs int      `toml:"connect_timeout_ms"`
	TimeoutMs        int      `toml:"timeout_ms"`
	Username         string   `toml:"username"`
	Password         string   `toml:"password"`
}

// Config is the top-level TOML document, recognized keys matching §6
// one-for-one.
type Config struct {
	DatapointTTLSeconds     int64     `toml:"datapoint_ttl_seconds"`
	RowWidthReadMs          int64     `toml:"row_width_read_ms"`
	RowWidthWriteMs         int64     `toml:"row_width_write_ms"`
	IndexTagList            string    `toml:"index_tag_list"`
	MetricIndexTagList      string    `toml:"metric_index_tag_list"`
	MaxRowsForKeysQuery     int       `toml:"max_rows_for_keys_query"`
	MaxRowKeysForQuery      int       `toml:"max_row_keys_for_query"`
	DataReadLevel           string    `toml:"data_read_level"`
	DataWriteLevelDatapoint string    `toml:"data_write_level_datapoint"`
	DataWriteLevelMeta      string    `toml:"data_write_level_meta"`
	WarmingUp               WarmingUp `toml:"warming_up"`
	QuerySamplingPercentage int       `toml:"query_sampling_percentage"`
	Hostname                string    `toml:"hostname"`
	Cassandra               Cassandra `toml:"cassandra"`
}

// Default returns the configuration the engine falls back to absent an
// explicit document.
func Default() Config {
	return Config{
		DatapointTTLSeconds:     0,
		RowWidthReadMs:          3_600_000,
		RowWidthWriteMs:         3_600_000,
		MaxRowsForKeysQuery:     100_000,
		MaxRowKeysForQuery:      100_000,
		DataReadLevel:           "QUORUM",
		DataWriteLevelDatapoint: "ONE",
		DataWriteLevelMeta:      "QUORUM",
		QuerySamplingPercentage: 0,
		Hostname:                "localhost",
		Cassandra: Cassandra{
			Hosts:            []string{"127.0.0.1"},
			Keyspace:         "tscass",
			ConnectTimeoutMs: 5000,
			TimeoutMs:        10000,
		},
	}
}

// LoadFile decodes the TOML document at path, starting from Default()
// so unspecified keys keep their default value.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode file %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load decodes a TOML document from r, starting from Default().
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate turns structurally valid-but-semantically-wrong fields into
// a single wrapped error.
func (c Config) Validate() error {
	if c.RowWidthReadMs <= 0 {
		return fmt.Errorf("config: row_width_read_ms must be positive, got %d", c.RowWidthReadMs)
	}
	if c.RowWidthWriteMs <= 0 {
		return fmt.Errorf("config: row_width_write_ms must be positive, got %d", c.RowWidthWriteMs)
	}
	if c.RowWidthReadMs < c.RowWidthWriteMs {
		return fmt.Errorf("config: row_width_read_ms (%d) must be >= row_width_write_ms (%d)", c.RowWidthReadMs, c.RowWidthWriteMs)
	}
	if c.MaxRowsForKeysQuery <= 0 {
		return fmt.Errorf("config: max_rows_for_keys_query must be positive, got %d", c.MaxRowsForKeysQuery)
	}
	if c.MaxRowKeysForQuery <= 0 {
		return fmt.Errorf("config: max_row_keys_for_query must be positive, got %d", c.MaxRowKeysForQuery)
	}
	if c.QuerySamplingPercentage < 0 || c.QuerySamplingPercentage > 100 {
		return fmt.Errorf("config: query_sampling_percentage must be in [0, 100], got %d", c.QuerySamplingPercentage)
	}
	if len(c.Cassandra.Hosts) == 0 {
		return fmt.Errorf("config: cassandra.hosts must not be empty")
	}
	return nil
}

// MustLoadFile is a convenience wrapper for cmd/tscass: it loads and
// validates, exiting the decode error path to the caller directly
// rather than panicking, matching the cobra RunE error-return idiom.
func MustLoadFile(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return LoadFile(path)
}
