// README: Reverse search for the latest departure that still meets a deadline.
package departure

import (
	"math"
	"time"

	"github.com/khtml-hack/baekend/internal/config"
	"github.com/khtml-hack/baekend/internal/types"
)

const defaultWindowMinutes = 120

// Solver finds the latest feasible departure for an arrival deadline.
//
// The scan runs backward from the deadline: travel duration depends on the
// congestion score at the departure minute, which is unknown until the
// departure is chosen. Fixing the deadline and checking feasibility per
// candidate avoids that circularity at O(window) evaluations.
type Solver struct {
	scorer Scorer
	cfg    config.RecommendConfig
}

func NewSolver(scorer Scorer, cfg config.RecommendConfig) *Solver {
	return &Solver{scorer: scorer, cfg: cfg}
}

// EstimateDuration returns the expected travel time departing at the given
// minute. Unknown coordinates degrade to the configured fixed duration.
func (s *Solver) EstimateDuration(at time.Time, origin, dest *types.Point, locationKey string) time.Duration {
	if origin == nil || dest == nil {
		return time.Duration(s.cfg.FallbackDurationMin) * time.Minute
	}
	distanceKm := HaversineKm(*origin, *dest) * s.cfg.RouteCircuity
	return s.durationFor(distanceKm, at, locationKey)
}

func (s *Solver) durationFor(distanceKm float64, at time.Time, locationKey string) time.Duration {
	score := s.scorer.Score(at, locationKey)
	multiplier := 1 + s.cfg.CongestionSlope*math.Max(0, score-1)
	minutes := math.Ceil(distanceKm / s.cfg.BaseSpeedKmh * 60 * multiplier)
	return time.Duration(minutes) * time.Minute
}

// LatestDeparture answers an ArrivalQuery relative to now. A deadline at or
// before now rolls to the next day first; deadlines are always in the future.
func (s *Solver) LatestDeparture(now time.Time, q ArrivalQuery) Plan {
	arriveBy := q.ArriveBy.Truncate(time.Minute)
	if !arriveBy.After(now) {
		arriveBy = arriveBy.AddDate(0, 0, 1)
	}

	windowMinutes := q.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = defaultWindowMinutes
	}
	window := Window{Start: arriveBy.Add(-time.Duration(windowMinutes) * time.Minute), End: arriveBy}

	// Degraded mode: without coordinates there is no distance to estimate,
	// so a fixed default duration anchors the plan just below the deadline.
	if q.Origin == nil || q.Dest == nil {
		duration := time.Duration(s.cfg.FallbackDurationMin) * time.Minute
		departure := arriveBy.Add(-duration)
		return Plan{
			Departure:    departure,
			Duration:     duration,
			Alternatives: clampedOffsets(departure, window),
			Window:       window,
			Feasible:     true,
			Degraded:     true,
		}
	}

	distanceKm := HaversineKm(*q.Origin, *q.Dest) * s.cfg.RouteCircuity

	var accepted []Candidate // Score carries the duration in minutes
	for m := 0; m <= windowMinutes; m++ {
		dep := arriveBy.Add(-time.Duration(m) * time.Minute)
		duration := s.durationFor(distanceKm, dep, q.LocationKey)
		if !dep.Add(duration).After(arriveBy) {
			accepted = append(accepted, Candidate{At: dep, Score: duration.Minutes()})
		}
	}

	if len(accepted) == 0 {
		// The trip does not fit anywhere in the window: report the earliest
		// departure as best effort with the constraint explicitly unmet.
		dep := window.Start
		return Plan{
			Departure: dep,
			Duration:  s.durationFor(distanceKm, dep, q.LocationKey),
			Window:    window,
			Feasible:  false,
		}
	}

	// The scan runs newest-first, so accepted[0] is the latest feasible
	// departure: maximal slack usage while still making the deadline.
	primary := accepted[0]

	var alternatives []time.Time
	for _, offset := range []time.Duration{10 * time.Minute, 20 * time.Minute} {
		target := primary.At.Add(-offset)
		if nearest, ok := nearestAccepted(accepted, target, primary.At, alternatives); ok {
			alternatives = append(alternatives, nearest)
		}
	}

	return Plan{
		Departure:    primary.At,
		Duration:     time.Duration(primary.Score) * time.Minute,
		Alternatives: alternatives,
		Window:       window,
		Feasible:     true,
	}
}

// nearestAccepted finds the accepted departure closest to target, skipping
// the primary and anything already chosen.
func nearestAccepted(accepted []Candidate, target, primary time.Time, taken []time.Time) (time.Time, bool) {
	var best time.Time
	bestDiff := time.Duration(math.MaxInt64)
	found := false
	for _, cand := range accepted {
		if cand.At.Equal(primary) || contains(taken, cand.At) {
			continue
		}
		diff := cand.At.Sub(target)
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			best = cand.At
			found = true
		}
	}
	return best, found
}

func contains(ts []time.Time, t time.Time) bool {
	for _, v := range ts {
		if v.Equal(t) {
			return true
		}
	}
	return false
}

// clampedOffsets proposes departure-10m and departure-20m alternatives,
// keeping only those inside the window.
func clampedOffsets(departure time.Time, window Window) []time.Time {
	var out []time.Time
	for _, offset := range []time.Duration{10 * time.Minute, 20 * time.Minute} {
		alt := departure.Add(-offset)
		if !alt.Before(window.Start) {
			out = append(out, alt)
		}
	}
	return out
}
