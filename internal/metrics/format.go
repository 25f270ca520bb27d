package metrics

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format selects how a Snapshot is rendered for the "stats" CLI
// subcommand.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
)

// Formatter renders a counter Snapshot.
type Formatter interface {
	Format(hostname string, snap Snapshot) (string, error)
}

// NewFormatter creates a Formatter for name. An empty name defaults to
// the human-readable format.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatHuman:
		return humanFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported metrics format: %s; use 'human' or 'json'", name)
	}
}

type humanFormatter struct{}

func (humanFormatter) Format(hostname string, snap Snapshot) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "host=%s\n", hostname)
	fmt.Fprintf(&sb, "  kairosdb.inserted.row_key_index        %d\n", snap.RowKeyIndexInserted)
	fmt.Fprintf(&sb, "  kairosdb.inserted.next_row_key_index    %d\n", snap.NextRowKeyIndexInserted)
	fmt.Fprintf(&sb, "  kairosdb.inserted.row_key_split_index   %d\n", snap.RowKeySplitInserted)
	fmt.Fprintf(&sb, "  kairosdb.limits.read_rows_exceeded      %d\n", snap.ReadRowsExceeded)
	fmt.Fprintf(&sb, "  kairosdb.limits.filtered_rows_exceeded  %d\n", snap.FilteredRowsExceeded)
	return sb.String(), nil
}

type jsonFormatter struct{}

type jsonSnapshot struct {
	Hostname string `json:"hostname"`
	Snapshot
}

func (jsonFormatter) Format(hostname string, snap Snapshot) (string, error) {
	b, err := json.Marshal(jsonSnapshot{Hostname: hostname, Snapshot: snap})
	if err != nil {
		return "", fmt.Errorf("metrics: failed to marshal snapshot: %w", err)
	}
	return string(b), nil
}
