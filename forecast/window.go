package forecast

import "gonum.org/v1/gonum/floats"

// InfectedWindow holds the newly-infected counts of recent intervals,
// oldest first. Entries leave the window through PopOldestBeyond, which is
// how infections move into the recovered-or-died pool.
type InfectedWindow struct {
	series []float64
}

// NewInfectedWindow creates a window sized for the given number of active intervals.
func NewInfectedWindow(active int) *InfectedWindow {
	return &InfectedWindow{series: make([]float64, 0, active+1)}
}

// PushNewest appends the count for the interval just simulated.
func (w *InfectedWindow) PushNewest(v float64) {
	w.series = append(w.series, v)
}

// SumLast sums the n most recent entries (fewer if the window is shorter).
func (w *InfectedWindow) SumLast(n int) float64 {
	if n <= 0 {
		return 0
	}
	start := max(len(w.series)-n, 0)
	return floats.Sum(w.series[start:])
}

// PopOldestBeyond removes and returns the oldest entry when more than n are tracked.
// Returns false when the window holds n or fewer entries.
func (w *InfectedWindow) PopOldestBeyond(n int) (float64, bool) {
	if len(w.series) <= n {
		return 0, false
	}
	oldest := w.series[0]
	w.series = append(w.series[:0], w.series[1:]...)
	return oldest, true
}
