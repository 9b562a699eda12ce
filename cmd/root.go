package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver for --snapshot-source=postgres
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/outbreak-sim/outbreak-sim/forecast"
	"github.com/outbreak-sim/outbreak-sim/forecast/data"
	"github.com/outbreak-sim/outbreak-sim/forecast/export"
)

var (
	// Shared CLI flags
	logLevel        string // Log verbosity level
	modelConfigPath string // YAML file with model parameters
	dataDir         string // Directory holding populations.csv, beds.csv, timeseries.csv
	snapshotSource  string // "csv" (default) or "postgres"
	dsn             string // PostgreSQL connection string for --snapshot-source=postgres
	clockDate       string // Wall-clock date override (YYYY-MM-DD)
	iterations      int    // Intervals to project past today
	format          string // Result table format

	// Model parameter overrides
	r0Initial    float64 // Default reproduction number
	intervalDays int     // Days per interval
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "outbreak-sim",
	Short: "Deterministic outbreak trajectory forecaster",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveModelConfig loads the model YAML (if present) and applies explicit flag overrides.
func resolveModelConfig(cmd *cobra.Command) (forecast.Config, error) {
	cfg := forecast.DefaultConfig()
	if _, err := os.Stat(modelConfigPath); err == nil {
		cfg, err = loadModelConfig(modelConfigPath)
		if err != nil {
			return forecast.Config{}, err
		}
	} else if cmd.Flags().Changed("model-config") {
		return forecast.Config{}, fmt.Errorf("model config %s: %w", modelConfigPath, err)
	} else {
		logrus.Debugf("No model config at %s, using built-in defaults", modelConfigPath)
	}

	// Flags override the YAML only when the user set them.
	if cmd.Flags().Changed("r0-initial") {
		cfg.R0Initial = r0Initial
	}
	if cmd.Flags().Changed("interval") {
		cfg.ModelIntervalDays = intervalDays
	}
	if err := cfg.Validate(); err != nil {
		return forecast.Config{}, err
	}
	return cfg, nil
}

// parseClock returns the wall clock, or a fixed clock at the given date.
func parseClock(date string) (func() time.Time, error) {
	if date == "" {
		return time.Now, nil
	}
	t, err := time.Parse(forecast.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid --clock %q: %w", date, err)
	}
	return func() time.Time { return t }, nil
}

// dataSources opens the reference tables and the snapshot source.
// The returned closer releases any database handle.
func dataSources(ctx context.Context) (*data.ReferenceTables, forecast.SnapshotProvider, func(), error) {
	tables, err := data.LoadReferenceTables(
		filepath.Join(dataDir, "populations.csv"),
		filepath.Join(dataDir, "beds.csv"),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	switch snapshotSource {
	case "csv":
		ts, err := data.LoadTimeseriesCSV(filepath.Join(dataDir, "timeseries.csv"))
		if err != nil {
			return nil, nil, nil, err
		}
		return tables, ts, func() {}, nil
	case "postgres":
		if dsn == "" {
			return nil, nil, nil, fmt.Errorf("--dsn is required with --snapshot-source=postgres")
		}
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		return tables, data.NewSQLSnapshots(db), func() { _ = db.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown snapshot source %q (want csv or postgres)", snapshotSource)
	}
}

// newEngine builds an Engine from the shared flags.
func newEngine(cmd *cobra.Command) (*forecast.Engine, *data.ReferenceTables, func()) {
	if !export.IsValidFormat(format) {
		logrus.Fatalf("Unknown format %q (want csv or xlsx)", format)
	}
	if iterations < 0 {
		logrus.Fatalf("--iterations must be >= 0, got %d", iterations)
	}
	cfg, err := resolveModelConfig(cmd)
	if err != nil {
		logrus.Fatalf("Invalid model config: %v", err)
	}
	clock, err := parseClock(clockDate)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	tables, snapshots, closeSources, err := dataSources(cmd.Context())
	if err != nil {
		logrus.Fatalf("Failed to load data: %v", err)
	}

	engine := forecast.NewEngine(cfg, tables, snapshots)
	engine.Now = clock
	logrus.Infof("Model: r0_initial=%v interval=%dd window=%d, today=%s",
		cfg.R0Initial, cfg.ModelIntervalDays, cfg.RollingIntervalsForCurrentInfected,
		engine.Today().Format(forecast.DateLayout))
	return engine, tables, closeSources
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&modelConfigPath, "model-config", "defaults.yaml", "YAML file with model parameters")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "Directory holding populations.csv, beds.csv and timeseries.csv")
	rootCmd.PersistentFlags().StringVar(&snapshotSource, "snapshot-source", "csv", "Case snapshot source (csv, postgres)")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "PostgreSQL connection string for --snapshot-source=postgres")
	rootCmd.PersistentFlags().StringVar(&clockDate, "clock", "", "Treat this date (YYYY-MM-DD) as the current date; today is one day earlier")
	rootCmd.PersistentFlags().IntVar(&iterations, "iterations", 25, "Intervals to project past today")
	rootCmd.PersistentFlags().StringVar(&format, "format", "csv", "Result table format (csv, xlsx)")

	rootCmd.PersistentFlags().Float64Var(&r0Initial, "r0-initial", 2.4, "Reproduction number used when no empirical ratio is available")
	rootCmd.PersistentFlags().IntVar(&intervalDays, "interval", 4, "Days between simulated data points")

	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(sweepCmd)
}
