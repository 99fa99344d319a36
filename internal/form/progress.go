package form

import "math"

// IndicatorState classifies one step marker.
type IndicatorState int

const (
	Pending IndicatorState = iota
	Active
	Completed
)

// String returns the lower-case state name.
func (s IndicatorState) String() string {
	switch s {
	case Active:
		return "active"
	case Completed:
		return "completed"
	default:
		return "pending"
	}
}

// Indicator is the rendered state of one step marker.
type Indicator struct {
	Step  int
	State IndicatorState
}

// Progress is derived from the current position on every transition.
// It is never stored.
type Progress struct {
	Current int
	Total   int
	Percent int
}

// Percent returns the completion percentage for a position.
// A single-step wizard is always at 100.
func Percent(current, total int) int {
	if total <= 1 {
		return 100
	}
	return int(math.Round(100 * float64(current-1) / float64(total-1)))
}

// Indicators classifies every step relative to current.
func Indicators(current, total int) []Indicator {
	out := make([]Indicator, 0, total)
	for i := 1; i <= total; i++ {
		state := Pending
		switch {
		case i < current:
			state = Completed
		case i == current:
			state = Active
		}
		out = append(out, Indicator{Step: i, State: state})
	}
	return out
}

// ProgressAt builds the projection for a position.
func ProgressAt(current, total int) Progress {
	return Progress{Current: current, Total: total, Percent: Percent(current, total)}
}
