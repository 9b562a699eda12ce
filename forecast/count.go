package forecast

import "strconv"

// Count is a cumulative case count that may be unknown.
// Unknown is distinct from zero: it marks dates with no underlying data.
// The zero value is Unknown.
type Count struct {
	n     int64
	known bool
}

// Known wraps an observed count.
func Known(n int64) Count {
	return Count{n: n, known: true}
}

// Unknown returns the "no data" sentinel.
func Unknown() Count {
	return Count{}
}

// Value returns the count and whether it is known.
func (c Count) Value() (int64, bool) {
	return c.n, c.known
}

// IsKnown reports whether the count was observed.
func (c Count) IsKnown() bool {
	return c.known
}

// OrZero returns the count, or 0 when unknown.
func (c Count) OrZero() int64 {
	if !c.known {
		return 0
	}
	return c.n
}

func (c Count) String() string {
	if !c.known {
		return "unknown"
	}
	return strconv.FormatInt(c.n, 10)
}

// Snapshot is the observation for one region on one date.
type Snapshot struct {
	Confirmed Count
	Deaths    Count
	Recovered Count
}

// UnknownSnapshot is returned for dates beyond today.
func UnknownSnapshot() Snapshot {
	return Snapshot{Confirmed: Unknown(), Deaths: Unknown(), Recovered: Unknown()}
}
