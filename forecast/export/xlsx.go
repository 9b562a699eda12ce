package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/outbreak-sim/outbreak-sim/forecast"
)

const forecastSheet = "Forecast"

// WriteXLSXFile writes the result table to a single-sheet workbook.
// Numeric columns are stored as numbers; reserved columns stay blank.
func WriteXLSXFile(path string, result *forecast.Result) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", forecastSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(forecast.Columns))
	for i, c := range forecast.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(forecastSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetRowStyle(forecastSheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, row := range result.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := cellValues(row)
		if err := f.SetSheetRow(forecastSheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// cellValues mirrors Row.Record with typed cells.
func cellValues(r forecast.Row) []any {
	var chance any
	if r.EstimatedInfectionChance != nil {
		chance = *r.EstimatedInfectionChance
	}
	return []any{
		nil,
		r.Date.Format(forecast.DateLayout),
		r.EffectiveR0,
		r.BeginningSusceptible,
		r.NewlyInfected,
		r.PreviouslyInfected,
		r.RecoveredOrDied,
		r.EndingSusceptible,
		r.ActualReported,
		r.PredictedHospitalized,
		r.CumulativeInfected,
		r.CumulativeDeaths,
		r.AvailableHospitalBeds,
		nil,
		chance,
		nil,
		nil,
		nil,
		nil,
	}
}
