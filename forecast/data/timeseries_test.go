package data

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outbreak-sim/outbreak-sim/forecast"
)

const timeseriesCSV = `state,country,county,date,cases,deaths,recovered
FL,USA,,2020-04-01,6955,87,
FL,USA,Miami-Dade,2020-04-01,2585,20,
FL,USA,Miami-Dade,2020-04-02,3000,25,
FL,USA,Broward,2020-04-02,1200,12.0,
NY,USA,,2020-04-01,0,0,0
NY,USA,Kings,2020-04-01,12000,300,50
`

func day(s string) time.Time {
	t, _ := time.Parse(forecast.DateLayout, s)
	return t
}

func newTestTimeseries(t *testing.T) *TimeseriesCSV {
	t.Helper()
	ts, err := NewTimeseriesCSV(strings.NewReader(timeseriesCSV))
	require.NoError(t, err)
	return ts
}

func TestTimeseriesCSV_StateLevelRowPreferred(t *testing.T) {
	ts := newTestTimeseries(t)

	snap, err := ts.Snapshot(context.Background(), forecast.Region{State: "FL", Country: "USA"}, day("2020-04-01"))

	require.NoError(t, err)
	assert.Equal(t, forecast.Known(6955), snap.Confirmed)
	assert.Equal(t, forecast.Known(87), snap.Deaths)
	assert.Equal(t, forecast.Known(0), snap.Recovered)
}

func TestTimeseriesCSV_NoStateLevelRow_AggregatesCounties(t *testing.T) {
	ts := newTestTimeseries(t)

	snap, err := ts.Snapshot(context.Background(), forecast.Region{State: "FL", Country: "USA"}, day("2020-04-02"))

	require.NoError(t, err)
	assert.Equal(t, forecast.Known(4200), snap.Confirmed)
	assert.Equal(t, forecast.Known(37), snap.Deaths)
}

func TestTimeseriesCSV_ZeroStateLevelRow_AggregatesCounties(t *testing.T) {
	ts := newTestTimeseries(t)

	snap, err := ts.Snapshot(context.Background(), forecast.Region{State: "NY", Country: "USA"}, day("2020-04-01"))

	require.NoError(t, err)
	assert.Equal(t, forecast.Known(12000), snap.Confirmed)
	assert.Equal(t, forecast.Known(50), snap.Recovered)
}

func TestTimeseriesCSV_NoRows_ZeroNotUnknown(t *testing.T) {
	ts := newTestTimeseries(t)

	snap, err := ts.Snapshot(context.Background(), forecast.Region{State: "FL", Country: "USA"}, day("2019-01-01"))

	require.NoError(t, err)
	assert.Equal(t, forecast.Known(0), snap.Confirmed)
	assert.True(t, snap.Deaths.IsKnown())
}

func TestNewTimeseriesCSV_RejectsBadCounts(t *testing.T) {
	_, err := NewTimeseriesCSV(strings.NewReader("state,country,county,date,cases,deaths,recovered\nFL,USA,,2020-04-01,lots,0,0\n"))
	assert.ErrorContains(t, err, "cases")

	_, err = NewTimeseriesCSV(strings.NewReader("state,country,county,date,cases,deaths,recovered\nFL,USA,,2020-04-01,-5,0,0\n"))
	assert.ErrorContains(t, err, "negative")
}
