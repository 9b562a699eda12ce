package data

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/outbreak-sim/outbreak-sim/forecast"
)

type seriesKey struct {
	region forecast.Region
	date   string
}

type seriesRow struct {
	county    string
	cases     int64
	deaths    int64
	recovered int64
}

// TimeseriesCSV serves snapshots from a timeseries.csv file with columns
// state,country,county,date,cases,deaths,recovered. Rows with an empty county
// are state-level totals.
type TimeseriesCSV struct {
	rows map[seriesKey][]seriesRow
}

// LoadTimeseriesCSV reads the timeseries file at path.
func LoadTimeseriesCSV(path string) (*TimeseriesCSV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening timeseries: %w", err)
	}
	defer func() { _ = f.Close() }()
	return NewTimeseriesCSV(f)
}

// NewTimeseriesCSV parses a timeseries table. Empty count cells read as zero.
func NewTimeseriesCSV(r io.Reader) (*TimeseriesCSV, error) {
	ts := &TimeseriesCSV{rows: make(map[seriesKey][]seriesRow)}
	columns := []string{"state", "country", "county", "date", "cases", "deaths", "recovered"}
	err := readTable(r, columns, func(row []string, line int) error {
		var counts [3]int64
		for i, cell := range row[4:7] {
			n, err := parseCount(cell)
			if err != nil {
				return fmt.Errorf("timeseries line %d: %s: %w", line, columns[4+i], err)
			}
			counts[i] = n
		}
		key := seriesKey{
			region: forecast.Region{State: row[0], Country: row[1]},
			date:   strings.TrimSpace(row[3]),
		}
		ts.rows[key] = append(ts.rows[key], seriesRow{
			county:    strings.TrimSpace(row[2]),
			cases:     counts[0],
			deaths:    counts[1],
			recovered: counts[2],
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// Snapshot sums the state-level rows for the date; when those report no
// cases it aggregates every county row instead. No rows yields zeros.
func (ts *TimeseriesCSV) Snapshot(_ context.Context, region forecast.Region, date time.Time) (forecast.Snapshot, error) {
	rows := ts.rows[seriesKey{region: region, date: date.Format(forecast.DateLayout)}]

	var state, all seriesRow
	for _, r := range rows {
		if r.county == "" {
			state.add(r)
		}
		all.add(r)
	}
	if state.cases == 0 {
		return all.snapshot(), nil
	}
	return state.snapshot(), nil
}

func (s *seriesRow) add(r seriesRow) {
	s.cases += r.cases
	s.deaths += r.deaths
	s.recovered += r.recovered
}

func (s seriesRow) snapshot() forecast.Snapshot {
	return forecast.Snapshot{
		Confirmed: forecast.Known(s.cases),
		Deaths:    forecast.Known(s.deaths),
		Recovered: forecast.Known(s.recovered),
	}
}

func parseCount(cell string) (int64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, nil
	}
	// Some feeds write counts as floats ("12.0").
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q", cell)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative count %q", cell)
	}
	return int64(f), nil
}
