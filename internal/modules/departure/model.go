// README: Candidate, selection, and query types for departure-time search.
package departure

import (
	"time"

	"github.com/khtml-hack/baekend/internal/types"
)

// Scorer supplies minute-level congestion scores in [1,5]. Satisfied by
// congestion.Model; tests inject synthetic implementations.
type Scorer interface {
	Score(at time.Time, locationKey string) float64
}

// Window is a half-open search range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Candidate is a scanned minute with its combined (smoothed + slope-penalized)
// score, used only for ranking.
type Candidate struct {
	At    time.Time
	Score float64
}

// Selection is the scanner result: the best minute plus up to two runner-up
// minutes, every pair at least minGapMinutes apart.
type Selection struct {
	Primary         Candidate
	Alternatives    []Candidate
	Window          Window
	MinutesAnalyzed int
}

// Instants returns the selected departure minutes, primary first.
func (s *Selection) Instants() []time.Time {
	out := []time.Time{s.Primary.At}
	for _, alt := range s.Alternatives {
		out = append(out, alt.At)
	}
	return out
}

// ArrivalQuery asks for the latest departure that still makes the deadline.
// Nil coordinates signal failed geocoding; the solver then degrades to a
// fixed default duration instead of failing.
type ArrivalQuery struct {
	Origin        *types.Point
	Dest          *types.Point
	ArriveBy      time.Time
	WindowMinutes int // defaults to 120 when <= 0
	LocationKey   string
}

// Plan is the solver result. Feasible is false when no departure in the
// window makes the deadline; the plan then holds the earliest-in-window
// best effort and the caller must surface the missed constraint.
type Plan struct {
	Departure    time.Time
	Duration     time.Duration
	Alternatives []time.Time
	Window       Window
	Feasible     bool
	Degraded     bool // coordinates were unavailable, fixed default duration used
}
