package forecast

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned (wrapped) when a Config fails validation.
var ErrInvalidConfig = errors.New("invalid forecast config")

// Config groups the modeling assumptions of a forecast run.
// Passed by value; an Engine never mutates it.
type Config struct {
	R0Initial                            float64 `yaml:"r0_initial"`                               // fallback reproduction number when no empirical ratio exists
	HospitalizationRate                  float64 `yaml:"hospitalization_rate"`                     // share of new infections needing a bed
	InitialHospitalizationRate           float64 `yaml:"initial_hospitalization_rate"`             // early confirmed cases / true infections
	CaseFatalityRate                     float64 `yaml:"case_fatality_rate"`                       // deaths per infection while beds remain
	CaseFatalityRateHospitalsOverwhelmed float64 `yaml:"case_fatality_rate_hospitals_overwhelmed"` // doubled once hospitals are overwhelmed
	HospitalCapacityChangeDailyRate      float64 `yaml:"hospital_capacity_change_daily_rate"`      // growth factor, applied once per interval
	MaxHospitalCapacityFactor            float64 `yaml:"max_hospital_capacity_factor"`             // ceiling relative to initial available beds
	InitialHospitalBedUtilization        float64 `yaml:"initial_hospital_bed_utilization"`         // share of beds occupied by non-outbreak patients
	ModelIntervalDays                    int     `yaml:"model_interval_days"`                      // days between simulated data points
	RollingIntervalsForCurrentInfected   int     `yaml:"rolling_intervals_for_current_infected"`   // intervals an infection stays active
}

// DefaultConfig returns the stock modeling assumptions.
func DefaultConfig() Config {
	return Config{
		R0Initial:                            2.4,
		HospitalizationRate:                  0.073,
		InitialHospitalizationRate:           0.05,
		CaseFatalityRate:                     0.011,
		CaseFatalityRateHospitalsOverwhelmed: 0.01,
		HospitalCapacityChangeDailyRate:      1.05,
		MaxHospitalCapacityFactor:            2.08,
		InitialHospitalBedUtilization:        0.6,
		ModelIntervalDays:                    4,
		RollingIntervalsForCurrentInfected:   3,
	}
}

// Validate reports the first parameter that would make the model undefined.
func (c Config) Validate() error {
	switch {
	case c.R0Initial < 0:
		return fmt.Errorf("%w: r0_initial must be >= 0, got %v", ErrInvalidConfig, c.R0Initial)
	case !isRate(c.HospitalizationRate):
		return fmt.Errorf("%w: hospitalization_rate must be in [0,1], got %v", ErrInvalidConfig, c.HospitalizationRate)
	case c.InitialHospitalizationRate <= 0 || c.InitialHospitalizationRate > 1:
		return fmt.Errorf("%w: initial_hospitalization_rate must be in (0,1], got %v", ErrInvalidConfig, c.InitialHospitalizationRate)
	case !isRate(c.CaseFatalityRate):
		return fmt.Errorf("%w: case_fatality_rate must be in [0,1], got %v", ErrInvalidConfig, c.CaseFatalityRate)
	case !isRate(c.CaseFatalityRateHospitalsOverwhelmed):
		return fmt.Errorf("%w: case_fatality_rate_hospitals_overwhelmed must be in [0,1], got %v", ErrInvalidConfig, c.CaseFatalityRateHospitalsOverwhelmed)
	case c.HospitalCapacityChangeDailyRate < 1:
		return fmt.Errorf("%w: hospital_capacity_change_daily_rate must be >= 1, got %v", ErrInvalidConfig, c.HospitalCapacityChangeDailyRate)
	case c.MaxHospitalCapacityFactor < 1:
		return fmt.Errorf("%w: max_hospital_capacity_factor must be >= 1, got %v", ErrInvalidConfig, c.MaxHospitalCapacityFactor)
	case c.InitialHospitalBedUtilization < 0 || c.InitialHospitalBedUtilization >= 1:
		return fmt.Errorf("%w: initial_hospital_bed_utilization must be in [0,1), got %v", ErrInvalidConfig, c.InitialHospitalBedUtilization)
	case c.ModelIntervalDays < 1:
		return fmt.Errorf("%w: model_interval_days must be >= 1, got %d", ErrInvalidConfig, c.ModelIntervalDays)
	case c.RollingIntervalsForCurrentInfected < 1:
		return fmt.Errorf("%w: rolling_intervals_for_current_infected must be >= 1, got %d", ErrInvalidConfig, c.RollingIntervalsForCurrentInfected)
	}
	return nil
}

func isRate(v float64) bool {
	return v >= 0 && v <= 1
}
