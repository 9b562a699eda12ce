package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/outbreak-sim/outbreak-sim/forecast"
)

const (
	stateLevelSnapshotQuery = `SELECT COALESCE(SUM(cases), 0), COALESCE(SUM(deaths), 0), COALESCE(SUM(recovered), 0)
FROM timeseries
WHERE state = $1 AND country = $2 AND date = $3 AND (county IS NULL OR county = '')`

	allCountiesSnapshotQuery = `SELECT COALESCE(SUM(cases), 0), COALESCE(SUM(deaths), 0), COALESCE(SUM(recovered), 0)
FROM timeseries
WHERE state = $1 AND country = $2 AND date = $3`
)

// SQLSnapshots serves snapshots from a PostgreSQL timeseries table with the
// same columns as timeseries.csv. The caller owns db and registers the driver.
type SQLSnapshots struct {
	db *sql.DB
}

// NewSQLSnapshots wraps an open database handle.
func NewSQLSnapshots(db *sql.DB) *SQLSnapshots {
	return &SQLSnapshots{db: db}
}

// Snapshot applies the same state-level-then-counties fallback as TimeseriesCSV.
func (s *SQLSnapshots) Snapshot(ctx context.Context, region forecast.Region, date time.Time) (forecast.Snapshot, error) {
	day := date.Format(forecast.DateLayout)

	totals, err := s.sum(ctx, stateLevelSnapshotQuery, region, day)
	if err != nil {
		return forecast.Snapshot{}, err
	}
	if totals.cases == 0 {
		totals, err = s.sum(ctx, allCountiesSnapshotQuery, region, day)
		if err != nil {
			return forecast.Snapshot{}, err
		}
	}
	return totals.snapshot(), nil
}

func (s *SQLSnapshots) sum(ctx context.Context, query string, region forecast.Region, day string) (seriesRow, error) {
	var r seriesRow
	err := s.db.QueryRowContext(ctx, query, region.State, region.Country, day).
		Scan(&r.cases, &r.deaths, &r.recovered)
	if err != nil {
		return seriesRow{}, fmt.Errorf("querying snapshot for %s on %s: %w", region, day, err)
	}
	return r, nil
}
