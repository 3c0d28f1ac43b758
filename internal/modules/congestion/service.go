// README: Minute-resolution congestion score model.
package congestion

import (
	"fmt"
	"strings"
	"time"
)

// Model computes synthetic congestion scores in [1,5] from the injected
// static table. It is pure: identical inputs always produce identical scores.
type Model struct {
	table Table
}

func NewModel(table Table) *Model {
	return &Model{table: table}
}

// Score returns the congestion score for the given instant and location key.
//
// The per-weekday hourly base value is interpolated linearly between the
// current and the next hour using minute/60, so scores stay continuous across
// hour boundaries and the scanner never sees a false local minimum at :00.
// Location, weekend, and rush-hour multipliers apply on top; the result is
// clamped to [1,5].
func (m *Model) Score(at time.Time, locationKey string) float64 {
	weekday := strings.ToLower(at.Weekday().String())
	hour := at.Hour()
	minute := at.Minute()

	score := baseScore
	if daily, ok := m.table.HourlyPatterns[weekday]; ok {
		cur, ok := daily[hourKey(hour)]
		if !ok {
			cur = baseScore
		}
		next, ok := daily[hourKey((hour+1)%24)]
		if !ok {
			next = cur
		}
		frac := float64(minute) / 60.0
		score = (1-frac)*cur + frac*next
	}

	locationFactor, ok := m.table.LocationFactors[strings.ToLower(locationKey)]
	if !ok {
		locationFactor = 1.0
	}

	weekend := at.Weekday() == time.Saturday || at.Weekday() == time.Sunday
	if weekend {
		score *= m.multiplier("weekend_multiplier", defaultWeekendMul)
	} else if (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19) {
		score *= m.multiplier("rush_hour_multiplier", defaultRushMul)
	}

	score *= locationFactor

	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

func (m *Model) multiplier(name string, def float64) float64 {
	if v, ok := m.table.SpecialEvents[name]; ok {
		return v
	}
	return def
}

func hourKey(h int) string {
	return fmt.Sprintf("%02d", h)
}
