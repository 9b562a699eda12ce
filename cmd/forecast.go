package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/outbreak-sim/outbreak-sim/forecast"
	"github.com/outbreak-sim/outbreak-sim/forecast/export"
)

var (
	state   string // Sub-region name as it appears in populations.csv
	country string // Country name as it appears in populations.csv
	outPath string // Result table path; stdout (CSV only) when empty
)

// forecastCmd projects a single region
var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast one region",
	Run: func(cmd *cobra.Command, args []string) {
		if state == "" {
			logrus.Fatalf("Region not provided (--state). Exiting.")
		}
		if outPath == "" && export.Format(format) != export.FormatCSV {
			logrus.Fatalf("--out is required for --format %s", format)
		}

		engine, _, closeSources := newEngine(cmd)
		defer closeSources()

		region := forecast.Region{State: state, Country: country}
		result, err := engine.Forecast(cmd.Context(), region, iterations)
		if err != nil {
			logrus.Fatalf("Forecast failed: %v", err)
		}

		if outPath == "" {
			if err := export.WriteCSV(os.Stdout, result); err != nil {
				logrus.Fatalf("Writing results: %v", err)
			}
		} else if err := export.WriteFile(outPath, export.Format(format), result); err != nil {
			logrus.Fatalf("Writing results: %v", err)
		}

		if result.OverwhelmedOn != nil {
			logrus.Infof("Hospitals overwhelmed from %s", result.OverwhelmedOn.Format(forecast.DateLayout))
		}
		logrus.Infof("Forecast complete: %d intervals for %s", len(result.Rows), region)
	},
}

func init() {
	forecastCmd.Flags().StringVar(&state, "state", "", "Sub-region (state/province) to forecast")
	forecastCmd.Flags().StringVar(&country, "country", "USA", "Country of the sub-region")
	forecastCmd.Flags().StringVar(&outPath, "out", "", "Result table path (default: CSV to stdout)")
}
