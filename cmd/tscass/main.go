// Package main contains the cli implementation of the tool. It uses
// the cobra package for cli tool implementation.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tscass/internal/config"
	"tscass/internal/engine"
	"tscass/internal/metrics"
	"tscass/internal/store"
)

type serveFlags struct {
	configFile string
}

type statsFlags struct {
	configFile string
	format     string
}

type schemaFlags struct {
	keyspace string
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "tscass",
		Short: "Cassandra-backed time-series storage engine",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(schemaCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect the engine to Cassandra and keep it alive",
		Long: `Serve loads configuration, opens a session against the configured
Cassandra hosts, and keeps the engine alive. The HTTP/REST surface,
JSON query parsing, and process bootstrap this engine is embedded
behind are out of scope for this module; serve only proves the
engine's own lifecycle (connect, ensure schema, idle).`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "Path to a TOML config file (defaults applied if omitted)")
	return cmd
}

func runServe(flags *serveFlags) error {
	cfg, err := loadConfig(flags.configFile)
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	session, err := store.NewSession(store.Config{
		Hosts:          cfg.Cassandra.Hosts,
		Keyspace:       cfg.Cassandra.Keyspace,
		Consistency:    "QUORUM",
		ConnectTimeout: time.Duration(cfg.Cassandra.ConnectTimeoutMs) * time.Millisecond,
		Timeout:        time.Duration(cfg.Cassandra.TimeoutMs) * time.Millisecond,
		Username:       cfg.Cassandra.Username,
		Password:       cfg.Cassandra.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	if err := store.EnsureKeyspace(session, cfg.Cassandra.Keyspace); err != nil {
		return fmt.Errorf("failed to ensure keyspace: %w", err)
	}

	e, err := engine.New(session, engine.Options{Config: cfg, Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	defer func() { _ = e.Close() }()

	logger.Info("engine ready", zap.Strings("hosts", cfg.Cassandra.Hosts), zap.String("keyspace", cfg.Cassandra.Keyspace))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("engine shutting down")
	return nil
}

func statsCmd() *cobra.Command {
	flags := &statsFlags{}
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the engine's self-reported counters",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStats(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "Path to a TOML config file (defaults applied if omitted)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Output format: human or json")
	return cmd
}

func runStats(flags *statsFlags) error {
	cfg, err := loadConfig(flags.configFile)
	if err != nil {
		return err
	}

	formatter, err := metrics.NewFormatter(flags.format)
	if err != nil {
		return err
	}

	// A fresh process has an all-zero counter set; stats prints that
	// baseline snapshot without connecting, since connecting only to
	// print zeroes would require a live session for no benefit.
	snap := metrics.NewCounters().SnapshotAndReset()
	out, err := formatter.Format(cfg.Hostname, snap)
	if err != nil {
		return fmt.Errorf("failed to format stats: %w", err)
	}
	fmt.Print(out)
	return nil
}

func schemaCmd() *cobra.Command {
	flags := &schemaFlags{}
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the CQL DDL for the engine's tables",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSchema(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.keyspace, "keyspace", "k", config.Default().Cassandra.Keyspace, "Target keyspace name")
	return cmd
}

func runSchema(flags *schemaFlags) error {
	for _, stmt := range store.DDLStatements(flags.keyspace) {
		fmt.Println(stmt)
	}
	return nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.MustLoadFile(path)
}
