// Package testutil provides shared test infrastructure for the forecast
// packages: in-memory collaborators and assertion helpers used across
// forecast/ and forecast/export/ test packages.
package testutil

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/outbreak-sim/outbreak-sim/forecast"
)

// ErrNotFound is returned by StaticReference for unknown regions.
var ErrNotFound = errors.New("not found")

// StaticReference serves fixed population and bed counts.
type StaticReference struct {
	Populations map[forecast.Region]int64
	BedCounts   map[forecast.Region]int64
}

// NewStaticReference serves a single region.
func NewStaticReference(region forecast.Region, population, beds int64) *StaticReference {
	return &StaticReference{
		Populations: map[forecast.Region]int64{region: population},
		BedCounts:   map[forecast.Region]int64{region: beds},
	}
}

func (s *StaticReference) Population(_ context.Context, region forecast.Region) (int64, error) {
	p, ok := s.Populations[region]
	if !ok {
		return 0, ErrNotFound
	}
	return p, nil
}

func (s *StaticReference) Beds(_ context.Context, region forecast.Region) (int64, error) {
	b, ok := s.BedCounts[region]
	if !ok {
		return 0, ErrNotFound
	}
	return b, nil
}

// StaticSnapshots serves confirmed counts keyed by date ("2006-01-02").
// Dates without an entry return an all-zero known snapshot, as real sources do.
// Every request is recorded in Requested.
type StaticSnapshots struct {
	Confirmed map[string]int64
	Err       error
	Requested []time.Time
}

func (s *StaticSnapshots) Snapshot(_ context.Context, _ forecast.Region, date time.Time) (forecast.Snapshot, error) {
	s.Requested = append(s.Requested, date)
	if s.Err != nil {
		return forecast.Snapshot{}, s.Err
	}
	return forecast.Snapshot{
		Confirmed: forecast.Known(s.Confirmed[date.Format(forecast.DateLayout)]),
		Deaths:    forecast.Known(0),
		Recovered: forecast.Known(0),
	}, nil
}

// FixedClock returns a clock pinned to the given calendar date (UTC noon).
func FixedClock(date string) func() time.Time {
	t, err := time.Parse(forecast.DateLayout, date)
	if err != nil {
		panic(err)
	}
	t = t.Add(12 * time.Hour)
	return func() time.Time { return t }
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
