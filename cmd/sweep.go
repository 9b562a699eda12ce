package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/outbreak-sim/outbreak-sim/forecast"
	"github.com/outbreak-sim/outbreak-sim/forecast/export"
)

var (
	resultsDir string // Directory receiving one table per region
	workers    int    // Regions forecast concurrently
)

// sweepOptions groups the per-run parameters of a regional sweep.
type sweepOptions struct {
	Country    string
	Iterations int
	ResultsDir string
	Format     export.Format
	Workers    int // <= 1 means sequential
}

// sweepCmd forecasts every region of a country and writes one table each
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Forecast every region of a country",
	Run: func(cmd *cobra.Command, args []string) {
		engine, tables, closeSources := newEngine(cmd)
		defer closeSources()

		regions := tables.Regions(country)
		if len(regions) == 0 {
			logrus.Fatalf("No regions for country %q in %s", country, dataDir)
		}
		if err := os.MkdirAll(resultsDir, 0755); err != nil {
			logrus.Fatalf("Creating results dir: %v", err)
		}

		startTime := time.Now()
		manifest := runSweep(cmd.Context(), engine, regions, sweepOptions{
			Country:    country,
			Iterations: iterations,
			ResultsDir: resultsDir,
			Format:     export.Format(format),
			Workers:    workers,
		})
		if err := export.WriteManifest(filepath.Join(resultsDir, "manifest.yaml"), manifest); err != nil {
			logrus.Fatalf("Writing manifest: %v", err)
		}

		failed := 0
		for _, o := range manifest.Regions {
			if o.Failed() {
				failed++
			}
		}
		logrus.WithField("run_id", manifest.RunID).
			Infof("Sweep complete: %d regions, %d failed, in %s", len(regions), failed, time.Since(startTime))
	},
}

// runSweep forecasts each region and writes its table. A failing region is
// logged and recorded in the manifest; it never stops the sweep.
// Manifest entries follow the order of regions regardless of Workers.
func runSweep(ctx context.Context, engine *forecast.Engine, regions []forecast.Region, opts sweepOptions) *export.Manifest {
	manifest := &export.Manifest{
		RunID:      uuid.NewString(),
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		Today:      engine.Today().Format(forecast.DateLayout),
		Country:    opts.Country,
		Iterations: opts.Iterations,
		Format:     opts.Format,
		Model:      engine.Config,
		Regions:    make([]export.RegionOutcome, len(regions)),
	}
	log := logrus.WithField("run_id", manifest.RunID)

	var g errgroup.Group
	g.SetLimit(max(opts.Workers, 1))
	for i, region := range regions {
		i, region := i, region
		g.Go(func() error {
			manifest.Regions[i] = sweepRegion(ctx, engine, region, opts, log)
			return nil
		})
	}
	_ = g.Wait()
	return manifest
}

func sweepRegion(ctx context.Context, engine *forecast.Engine, region forecast.Region, opts sweepOptions, log *logrus.Entry) export.RegionOutcome {
	outcome := export.RegionOutcome{State: region.State}
	log = log.WithField("region", region.String())

	if err := ctx.Err(); err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	file, err := regionFileName(region, opts.Format)
	if err != nil {
		log.WithError(err).Error("Skipping region")
		outcome.Error = err.Error()
		return outcome
	}
	result, err := engine.Forecast(ctx, region, opts.Iterations)
	if err != nil {
		log.WithError(err).Error("Forecast failed")
		outcome.Error = err.Error()
		return outcome
	}

	if err := export.WriteFile(filepath.Join(opts.ResultsDir, file), opts.Format, result); err != nil {
		log.WithError(err).Error("Writing results failed")
		outcome.Error = err.Error()
		return outcome
	}

	outcome.File = file
	outcome.Rows = len(result.Rows)
	if result.OverwhelmedOn != nil {
		outcome.OverwhelmedOn = result.OverwhelmedOn.Format(forecast.DateLayout)
	}
	return outcome
}

// regionFileName names a region's table inside the results directory.
// States that are not a plain file name are rejected so output cannot
// land outside the directory.
func regionFileName(region forecast.Region, format export.Format) (string, error) {
	state := region.State
	if state == "" || state == "." || state == ".." || strings.ContainsAny(state, `/\`) {
		return "", fmt.Errorf("state %q is not usable as a file name", state)
	}
	return state + format.Extension(), nil
}

func init() {
	sweepCmd.Flags().StringVar(&country, "country", "USA", "Country whose regions are swept")
	sweepCmd.Flags().StringVar(&resultsDir, "results-dir", "results", "Directory receiving one table per region")
	sweepCmd.Flags().IntVar(&workers, "workers", 1, "Regions forecast concurrently")
}
