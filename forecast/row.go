package forecast

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the calendar-date format used in snapshots and result tables.
const DateLayout = "2006-01-02"

// Region identifies a sub-region within a country.
type Region struct {
	State   string
	Country string
}

func (r Region) String() string {
	return fmt.Sprintf("%s, %s", r.State, r.Country)
}

// Columns is the result-table header. Downstream consumers parse by
// position, so order and spelling are fixed.
var Columns = []string{
	"Note",
	"Date",
	"Eff. R0",
	"Beg. Susceptible",
	"New Inf.",
	"Prev. Inf.",
	"Recov. or Died",
	"End Susceptible",
	"Actual Reported",
	"Pred. Hosp.",
	"Cum. Inf.",
	"Cum. Deaths",
	"Avail. Hosp. Beds",
	"S&P 500",
	"Est. Actual Chance of Inf.",
	"Pred. Chance of Inf.",
	"Cum. Pred. Chance of Inf.",
	"R0",
	"% Susceptible",
}

// Row is the model output for one interval.
type Row struct {
	Date                  time.Time
	EffectiveR0           float64 // rounded to 2 decimals
	BeginningSusceptible  int64
	NewlyInfected         int64
	PreviouslyInfected    int64 // still inside the active window
	RecoveredOrDied       int64
	EndingSusceptible     int64
	ActualReported        int64 // 0 when the snapshot is unknown
	PredictedHospitalized int64
	CumulativeInfected    int64
	CumulativeDeaths      int64
	AvailableHospitalBeds int64
	// EstimatedInfectionChance is nil when the snapshot is unknown.
	EstimatedInfectionChance *float64

	// Hospital regime after this interval; not part of the table.
	Overwhelmed bool
}

// Record renders the row as table cells in Columns order.
// Reserved columns are left empty.
func (r Row) Record() []string {
	chance := ""
	if r.EstimatedInfectionChance != nil {
		chance = strconv.FormatFloat(*r.EstimatedInfectionChance, 'g', -1, 64)
	}
	return []string{
		"",
		r.Date.Format(DateLayout),
		strconv.FormatFloat(r.EffectiveR0, 'f', -1, 64),
		strconv.FormatInt(r.BeginningSusceptible, 10),
		strconv.FormatInt(r.NewlyInfected, 10),
		strconv.FormatInt(r.PreviouslyInfected, 10),
		strconv.FormatInt(r.RecoveredOrDied, 10),
		strconv.FormatInt(r.EndingSusceptible, 10),
		strconv.FormatInt(r.ActualReported, 10),
		strconv.FormatInt(r.PredictedHospitalized, 10),
		strconv.FormatInt(r.CumulativeInfected, 10),
		strconv.FormatInt(r.CumulativeDeaths, 10),
		strconv.FormatInt(r.AvailableHospitalBeds, 10),
		"",
		chance,
		"",
		"",
		"",
		"",
	}
}

// Result is a complete forecast for one region.
type Result struct {
	Region     Region
	Population int64
	Beds       int64
	Today      time.Time // last date treated as observed
	Rows       []Row
	// OverwhelmedOn is the first interval date on which demand reached capacity, nil if never.
	OverwhelmedOn *time.Time
}
