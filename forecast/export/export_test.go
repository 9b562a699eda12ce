package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/outbreak-sim/outbreak-sim/forecast"
	"github.com/outbreak-sim/outbreak-sim/forecast/internal/testutil"
)

func sampleResult(t *testing.T) *forecast.Result {
	t.Helper()
	region := forecast.Region{State: "FL", Country: "USA"}
	e := forecast.NewEngine(forecast.DefaultConfig(),
		testutil.NewStaticReference(region, 1_000_000, 10_000),
		&testutil.StaticSnapshots{Confirmed: map[string]int64{
			"2020-03-29": 100,
			"2020-04-02": 150,
		}})
	e.Now = testutil.FixedClock("2020-04-11")
	res, err := e.Forecast(context.Background(), region, 2)
	require.NoError(t, err)
	return res
}

func TestWriteCSV_HeaderAndRowLayout(t *testing.T) {
	res := sampleResult(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, res))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(res.Rows)+1)

	// THEN the header is the fixed compatibility layout
	assert.Equal(t, forecast.Columns, records[0])

	// AND the first data row carries the bootstrap values by position
	first := records[1]
	require.Len(t, first, 19)
	assert.Equal(t, "", first[0])
	assert.Equal(t, "2020-03-29", first[1])
	assert.Equal(t, "2.4", first[2])
	assert.Equal(t, "1000000", first[3])
	assert.Equal(t, "2000", first[4])
	assert.Equal(t, "100", first[8])
	assert.Equal(t, "", first[13])
	assert.NotEmpty(t, first[14])

	// AND future rows leave the estimated chance blank
	last := records[len(records)-1]
	assert.Equal(t, "0", last[8])
	assert.Equal(t, "", last[14])
}

func TestWriteFile_CSVAndXLSX(t *testing.T) {
	res := sampleResult(t)
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "FL"+FormatCSV.Extension())
	require.NoError(t, WriteFile(csvPath, FormatCSV, res))
	info, err := os.Stat(csvPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	xlsxPath := filepath.Join(dir, "FL"+FormatXLSX.Extension())
	require.NoError(t, WriteFile(xlsxPath, FormatXLSX, res))

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(forecastSheet)
	require.NoError(t, err)
	require.Len(t, rows, len(res.Rows)+1)
	assert.Equal(t, "Note", rows[0][0])
	assert.Equal(t, "% Susceptible", rows[0][18])
	assert.Equal(t, "2020-03-29", rows[1][1])
	assert.Equal(t, "2000", rows[1][4])
}

func TestWriteFile_UnknownFormat(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "x"), Format("parquet"), sampleResult(t))
	assert.Error(t, err)
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, IsValidFormat("csv"))
	assert.True(t, IsValidFormat("xlsx"))
	assert.False(t, IsValidFormat("json"))
	assert.False(t, IsValidFormat(""))
}

func TestManifest_WriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	m := &Manifest{
		RunID:      "run-1",
		Today:      "2020-04-10",
		Country:    "USA",
		Iterations: 25,
		Format:     FormatCSV,
		Model:      forecast.DefaultConfig(),
		Regions: []RegionOutcome{
			{State: "FL", File: "FL.csv", Rows: 29, OverwhelmedOn: "2020-04-22"},
			{State: "Atlantis", Error: "region not found"},
		},
	}

	require.NoError(t, WriteManifest(path, m))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	loaded := &Manifest{}
	require.NoError(t, yaml.Unmarshal(raw, loaded))

	assert.Equal(t, m, loaded)
	assert.False(t, loaded.Regions[0].Failed())
	assert.True(t, loaded.Regions[1].Failed())
}
