package forecast

import "math"

// HospitalCapacity models beds available to outbreak patients.
// Capacity starts at the unoccupied share of total beds and grows
// geometrically once per interval until it reaches the ceiling.
type HospitalCapacity struct {
	initial   float64
	available float64
	ceiling   float64
	growth    float64
}

// NewHospitalCapacity derives starting capacity from the region's total bed count.
func NewHospitalCapacity(beds int64, cfg Config) HospitalCapacity {
	initial := math.RoundToEven(float64(beds) * (1 - cfg.InitialHospitalBedUtilization))
	return HospitalCapacity{
		initial:   initial,
		available: initial,
		ceiling:   cfg.MaxHospitalCapacityFactor * initial,
		growth:    cfg.HospitalCapacityChangeDailyRate,
	}
}

// Initial returns the starting capacity.
func (h *HospitalCapacity) Initial() float64 { return h.initial }

// Available returns the current capacity.
func (h *HospitalCapacity) Available() float64 { return h.available }

// Ceiling returns the maximum capacity.
func (h *HospitalCapacity) Ceiling() float64 { return h.ceiling }

// Grow applies one interval of capacity growth, clamped to the ceiling.
func (h *HospitalCapacity) Grow() {
	if h.available < h.ceiling {
		h.available = math.Min(h.available*h.growth, h.ceiling)
	}
}

// HospitalState is the mortality regime of a region.
type HospitalState int

const (
	// HospitalsNormal means predicted hospitalizations fit in available beds.
	HospitalsNormal HospitalState = iota
	// HospitalsOverwhelmed is entered the first time demand reaches capacity and never left.
	HospitalsOverwhelmed
)

func (s HospitalState) String() string {
	switch s {
	case HospitalsNormal:
		return "normal"
	case HospitalsOverwhelmed:
		return "overwhelmed"
	default:
		return "unknown"
	}
}

// MortalityModel applies the capacity-dependent fatality rule and tracks
// the one-way Normal → Overwhelmed transition.
type MortalityModel struct {
	cfr            float64
	overwhelmedCFR float64
	state          HospitalState
}

// NewMortalityModel starts in HospitalsNormal.
func NewMortalityModel(cfg Config) MortalityModel {
	return MortalityModel{
		cfr:            cfg.CaseFatalityRate,
		overwhelmedCFR: 2 * cfg.CaseFatalityRateHospitalsOverwhelmed,
		state:          HospitalsNormal,
	}
}

// State returns the current regime.
func (m *MortalityModel) State() HospitalState { return m.state }

// Deaths returns the interval's deaths. transitioned is true only on the
// interval where the model first enters HospitalsOverwhelmed.
func (m *MortalityModel) Deaths(newlyInfected, predictedHospitalized, availableBeds float64) (deaths int64, transitioned bool) {
	if availableBeds > predictedHospitalized {
		return int64(math.RoundToEven(newlyInfected * m.cfr)), false
	}
	transitioned = m.state != HospitalsOverwhelmed
	m.state = HospitalsOverwhelmed
	return int64(math.RoundToEven(newlyInfected * m.overwhelmedCFR)), transitioned
}
