// Package data implements the forecast collaborators: static reference
// tables and case-snapshot sources.
package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/outbreak-sim/outbreak-sim/forecast"
)

// ErrRegionNotFound is returned (wrapped) when a reference table has no row for a region.
var ErrRegionNotFound = errors.New("region not found")

// ReferenceTables serves population and bed supply per region.
// Only the first row for a region is used.
type ReferenceTables struct {
	populations  map[forecast.Region]int64
	bedsPerMille map[forecast.Region]float64
	order        []forecast.Region
}

// LoadReferenceTables reads populations.csv (state,country,population) and
// beds.csv (state,country,bedspermille).
func LoadReferenceTables(populationsPath, bedsPath string) (*ReferenceTables, error) {
	pf, err := os.Open(populationsPath)
	if err != nil {
		return nil, fmt.Errorf("opening populations: %w", err)
	}
	defer func() { _ = pf.Close() }()

	bf, err := os.Open(bedsPath)
	if err != nil {
		return nil, fmt.Errorf("opening beds: %w", err)
	}
	defer func() { _ = bf.Close() }()

	return NewReferenceTables(pf, bf)
}

// NewReferenceTables parses the population and bed tables from readers.
func NewReferenceTables(populations, beds io.Reader) (*ReferenceTables, error) {
	t := &ReferenceTables{
		populations:  make(map[forecast.Region]int64),
		bedsPerMille: make(map[forecast.Region]float64),
	}

	err := readTable(populations, []string{"state", "country", "population"}, func(row []string, line int) error {
		region := forecast.Region{State: row[0], Country: row[1]}
		pop, err := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 64)
		if err != nil || pop <= 0 {
			return fmt.Errorf("populations line %d: invalid population %q", line, row[2])
		}
		if _, seen := t.populations[region]; !seen {
			t.populations[region] = pop
			t.order = append(t.order, region)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readTable(beds, []string{"state", "country", "bedspermille"}, func(row []string, line int) error {
		region := forecast.Region{State: row[0], Country: row[1]}
		perMille, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil || perMille < 0 {
			return fmt.Errorf("beds line %d: invalid bedspermille %q", line, row[2])
		}
		if _, seen := t.bedsPerMille[region]; !seen {
			t.bedsPerMille[region] = perMille
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Population returns the region's total population.
func (t *ReferenceTables) Population(_ context.Context, region forecast.Region) (int64, error) {
	pop, ok := t.populations[region]
	if !ok {
		return 0, fmt.Errorf("population of %s: %w", region, ErrRegionNotFound)
	}
	return pop, nil
}

// Beds returns the region's total bed count: bedspermille × population / 1000, rounded.
func (t *ReferenceTables) Beds(ctx context.Context, region forecast.Region) (int64, error) {
	perMille, ok := t.bedsPerMille[region]
	if !ok {
		return 0, fmt.Errorf("beds of %s: %w", region, ErrRegionNotFound)
	}
	pop, err := t.Population(ctx, region)
	if err != nil {
		return 0, err
	}
	return int64(math.RoundToEven(perMille * float64(pop) / 1000)), nil
}

// Regions lists the regions of the population table for a country, in file order.
func (t *ReferenceTables) Regions(country string) []forecast.Region {
	var out []forecast.Region
	for _, r := range t.order {
		if r.Country == country {
			out = append(out, r)
		}
	}
	return out
}

// readTable reads a headed CSV and calls fn with the named columns, in the
// order given, for each data row. line is 1-based and counts the header.
func readTable(r io.Reader, columns []string, fn func(row []string, line int) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("reading CSV header: %w", err)
	}
	idx, err := columnIndexes(header, columns)
	if err != nil {
		return err
	}

	line := 1
	picked := make([]string, len(columns))
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("reading CSV row %d: %w", line, err)
		}
		for i, col := range idx {
			if col < len(row) {
				picked[i] = row[col]
			} else {
				picked[i] = ""
			}
		}
		if err := fn(picked, line); err != nil {
			return err
		}
	}
}

func columnIndexes(header []string, columns []string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idx := make([]int, len(columns))
	for i, c := range columns {
		p, ok := pos[c]
		if !ok {
			return nil, fmt.Errorf("CSV header missing column %q", c)
		}
		idx[i] = p
	}
	return idx, nil
}
