// README: Minute-by-minute window scan for the lowest-congestion departure.
package departure

import (
	"math"
	"sort"
	"time"
)

const (
	smoothHalfWindow = 2   // 5-minute centered moving average
	slopeLambda      = 0.2 // weight of the per-minute change penalty
	minGapMinutes    = 10  // minimum spacing between selected instants
	maxSelections    = 3   // primary plus up to two alternatives
)

// Scanner enumerates every minute of a window and ranks departure candidates.
type Scanner struct {
	scorer Scorer
}

func NewScanner(scorer Scorer) *Scanner {
	return &Scanner{scorer: scorer}
}

// FindOptimal scans [start, end) at minute resolution and returns the best
// departure minute plus spaced alternatives, or nil when the window is empty.
// An end strictly before start is taken as wrapping past midnight and rolls
// to the next day; an end equal to start is an empty window.
//
// Raw per-minute scores are noisy modeling artifacts, so ranking uses a
// 5-minute moving average plus a slope penalty: stable low-congestion
// plateaus beat knife-edge minima right before a spike.
func (s *Scanner) FindOptimal(start, end time.Time, locationKey string) *Selection {
	if end.Before(start) {
		end = end.AddDate(0, 0, 1)
	}

	probe := start.Truncate(time.Minute)
	if probe.Before(start) {
		probe = probe.Add(time.Minute)
	}

	var slots []Candidate
	for probe.Before(end) {
		slots = append(slots, Candidate{At: probe, Score: round4(s.scorer.Score(probe, locationKey))})
		probe = probe.Add(time.Minute)
	}
	if len(slots) == 0 {
		return nil
	}

	combined := make([]Candidate, len(slots))
	for i, slot := range slots {
		lo := max(0, i-smoothHalfWindow)
		hi := min(len(slots), i+smoothHalfWindow+1)
		var sum float64
		for _, neighbor := range slots[lo:hi] {
			sum += neighbor.Score
		}
		avg := sum / float64(hi-lo)

		slope := 0.0
		if i > 0 {
			slope = math.Abs(slot.Score - slots[i-1].Score)
		}
		combined[i] = Candidate{At: slot.At, Score: round4(avg + slopeLambda*slope)}
	}

	// Stable sort keeps the earlier minute ahead on score ties, so output is
	// fully determined by the inputs.
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Score < combined[j].Score
	})

	var selected []Candidate
	for _, cand := range combined {
		if tooClose(cand.At, selected) {
			continue
		}
		selected = append(selected, cand)
		if len(selected) >= maxSelections {
			break
		}
	}

	return &Selection{
		Primary:         selected[0],
		Alternatives:    selected[1:],
		Window:          Window{Start: start, End: end},
		MinutesAnalyzed: len(slots),
	}
}

func tooClose(at time.Time, selected []Candidate) bool {
	for _, s := range selected {
		gap := at.Sub(s.At)
		if gap < 0 {
			gap = -gap
		}
		if gap < minGapMinutes*time.Minute {
			return true
		}
	}
	return false
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
