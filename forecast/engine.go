package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidRegion is returned (wrapped) when reference data cannot support a forecast.
	ErrInvalidRegion = errors.New("invalid region reference data")
	// ErrInvalidIterations is returned (wrapped) for a negative projection length.
	ErrInvalidIterations = errors.New("iterations must be >= 0")
)

// ReferenceProvider supplies static per-region reference data.
// Both methods fail with an error wrapping a not-found sentinel when the
// region has no record.
type ReferenceProvider interface {
	Population(ctx context.Context, region Region) (int64, error)
	Beds(ctx context.Context, region Region) (int64, error)
}

// SnapshotProvider returns the observation for a region on a date.
// Missing data is an all-zero snapshot, not an error; errors are reserved
// for failures of the underlying source.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, region Region, date time.Time) (Snapshot, error)
}

// Engine runs forecasts. All run state lives inside Forecast, so an Engine
// may be shared across regions.
type Engine struct {
	Config    Config
	Reference ReferenceProvider
	Snapshots SnapshotProvider
	// Now is the wall clock; "today" is one day before Now to allow for reporting lag.
	Now func() time.Time
}

// NewEngine creates an Engine using the wall clock.
func NewEngine(cfg Config, reference ReferenceProvider, snapshots SnapshotProvider) *Engine {
	return &Engine{
		Config:    cfg,
		Reference: reference,
		Snapshots: snapshots,
		Now:       time.Now,
	}
}

// Today returns the last date treated as observed.
func (e *Engine) Today() time.Time {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	y, m, d := now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// Forecast projects the region iterations intervals past today.
// The first row is dated interval × window days before today.
func (e *Engine) Forecast(ctx context.Context, region Region, iterations int) (*Result, error) {
	if err := e.Config.Validate(); err != nil {
		return nil, err
	}
	if iterations < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidIterations, iterations)
	}

	log := logrus.WithField("region", region.String())
	log.Info("Building forecast")

	population, err := e.Reference.Population(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("population for %s: %w", region, err)
	}
	beds, err := e.Reference.Beds(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("beds for %s: %w", region, err)
	}
	if population <= 0 {
		return nil, fmt.Errorf("%w: %s population must be > 0, got %d", ErrInvalidRegion, region, population)
	}
	if beds < 0 {
		return nil, fmt.Errorf("%w: %s bed count must be >= 0, got %d", ErrInvalidRegion, region, beds)
	}
	log.Debugf("This location has %d beds for %d people", beds, population)

	cfg := e.Config
	today := e.Today()
	date := today.AddDate(0, 0, -cfg.ModelIntervalDays*cfg.RollingIntervalsForCurrentInfected)
	end := today.AddDate(0, 0, iterations*cfg.ModelIntervalDays)

	st := newRunState(cfg, population, beds)
	log.Debugf("Hospital capacity starts at %.0f beds, ceiling %.0f", st.capacity.Initial(), st.capacity.Ceiling())
	result := &Result{
		Region:     region,
		Population: population,
		Beds:       beds,
		Today:      today,
		Rows:       make([]Row, 0, iterations+cfg.RollingIntervalsForCurrentInfected+1),
	}

	for !date.After(end) {
		snapshot := UnknownSnapshot()
		if !date.After(today) {
			snapshot, err = e.Snapshots.Snapshot(ctx, region, date)
			if err != nil {
				return nil, fmt.Errorf("snapshot for %s on %s: %w", region, date.Format(DateLayout), err)
			}
		}
		log.Debugf("[%s] confirmed=%v deaths=%v recovered=%v",
			date.Format(DateLayout), snapshot.Confirmed, snapshot.Deaths, snapshot.Recovered)

		row, transitioned := st.step(date, snapshot)
		if transitioned {
			log.Infof("Hospitals in %s overwhelmed on %s", region.State, date.Format(DateLayout))
			overwhelmedOn := date
			result.OverwhelmedOn = &overwhelmedOn
		}
		result.Rows = append(result.Rows, row)
		date = date.AddDate(0, 0, cfg.ModelIntervalDays)
	}
	return result, nil
}

// runState is the simulation state carried between intervals.
type runState struct {
	cfg        Config
	population float64

	previousConfirmed         Count
	previousEndingSusceptible float64
	previousNewlyInfected     float64
	modeled                   bool // set once any interval has produced infections
	infected                  *InfectedWindow
	recoveredOrDied           float64
	cumulativeInfected        float64
	cumulativeDeaths          int64

	capacity  HospitalCapacity
	mortality MortalityModel
}

func newRunState(cfg Config, population, beds int64) *runState {
	return &runState{
		cfg:                       cfg,
		population:                float64(population),
		previousConfirmed:         Known(0),
		previousEndingSusceptible: float64(population),
		infected:                  NewInfectedWindow(cfg.RollingIntervalsForCurrentInfected),
		capacity:                  NewHospitalCapacity(beds, cfg),
		mortality:                 NewMortalityModel(cfg),
	}
}

// effectiveR0 returns the empirical growth ratio when both this and the
// previous confirmed counts are usable, else the configured default.
func (s *runState) effectiveR0(confirmed Count) float64 {
	r0 := s.cfg.R0Initial
	if current, ok := confirmed.Value(); ok {
		if previous, ok := s.previousConfirmed.Value(); ok && previous > 0 {
			r0 = float64(current) / float64(previous)
		}
	}
	s.previousConfirmed = confirmed
	return r0
}

// newlyInfected bootstraps from confirmed cases until infections have been
// modeled, then propagates with susceptible-fraction damping. Bootstrap
// never runs again once modeled, and the result never exceeds the
// susceptibles left at the end of the previous interval.
func (s *runState) newlyInfected(confirmed Count, r0 float64) float64 {
	var estimate float64
	switch {
	case s.modeled:
		estimate = s.previousNewlyInfected * r0 * s.previousEndingSusceptible / s.population
	case confirmed.IsKnown():
		// Early confirmed cases are assumed to be the hospitalized ones only.
		actualInfectedVsTestedPositive := 1 / s.cfg.InitialHospitalizationRate
		estimate = float64(confirmed.OrZero()) * actualInfectedVsTestedPositive
	}
	newly := math.Min(estimate, s.previousEndingSusceptible)
	if newly > 0 {
		s.modeled = true
	}
	return newly
}

func (s *runState) step(date time.Time, snapshot Snapshot) (Row, bool) {
	window := s.cfg.RollingIntervalsForCurrentInfected

	r0 := s.effectiveR0(snapshot.Confirmed)
	newlyInfected := s.newlyInfected(snapshot.Confirmed, r0)

	if resolved, ok := s.infected.PopOldestBeyond(window); ok {
		s.recoveredOrDied += resolved
	}
	previouslyInfected := s.infected.SumLast(window)
	s.cumulativeInfected += newlyInfected

	predictedHospitalized := newlyInfected * s.cfg.HospitalizationRate
	deaths, transitioned := s.mortality.Deaths(newlyInfected, predictedHospitalized, s.capacity.Available())
	s.cumulativeDeaths += deaths

	var chance *float64
	if confirmed, ok := snapshot.Confirmed.Value(); ok {
		c := (float64(confirmed) / s.cfg.HospitalizationRate * 2) / s.population
		chance = &c
	}

	endingSusceptible := math.Max(
		math.RoundToEven(s.population-newlyInfected-previouslyInfected-s.recoveredOrDied), 0)

	row := Row{
		Date:                     date,
		EffectiveR0:              math.RoundToEven(r0*100) / 100,
		BeginningSusceptible:     int64(s.previousEndingSusceptible),
		NewlyInfected:            int64(math.RoundToEven(newlyInfected)),
		PreviouslyInfected:       int64(math.RoundToEven(previouslyInfected)),
		RecoveredOrDied:          int64(math.RoundToEven(s.recoveredOrDied)),
		EndingSusceptible:        int64(endingSusceptible),
		ActualReported:           snapshot.Confirmed.OrZero(),
		PredictedHospitalized:    int64(predictedHospitalized),
		CumulativeInfected:       int64(s.cumulativeInfected),
		CumulativeDeaths:         s.cumulativeDeaths,
		AvailableHospitalBeds:    int64(s.capacity.Available()),
		EstimatedInfectionChance: chance,
		Overwhelmed:              s.mortality.State() == HospitalsOverwhelmed,
	}

	s.infected.PushNewest(newlyInfected)
	s.previousNewlyInfected = newlyInfected
	s.previousEndingSusceptible = endingSusceptible
	s.capacity.Grow()

	return row, transitioned
}
