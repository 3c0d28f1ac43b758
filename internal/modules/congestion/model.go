// README: Congestion score table, level mapping, and legacy bucket labels.
package congestion

import "time"

// Table holds the static correction data the score model reads. It is loaded
// once at process start and injected by reference; the model never touches
// ambient state.
type Table struct {
	// HourlyPatterns maps lower-cased weekday name -> zero-padded hour -> base score.
	HourlyPatterns map[string]map[string]float64 `json:"hourly_patterns"`
	// SpecialEvents holds named multipliers ("weekend_multiplier", "rush_hour_multiplier").
	SpecialEvents map[string]float64 `json:"special_events"`
	// LocationFactors maps lower-cased zone key -> multiplier ("gangnam" -> 1.2).
	LocationFactors map[string]float64 `json:"location_factors"`
}

// TimeSlot is one scanned minute with its raw congestion score.
type TimeSlot struct {
	At    time.Time
	Score float64
}

const (
	baseScore         = 2.5
	minScore          = 1.0
	maxScore          = 5.0
	defaultWeekendMul = 0.8
	defaultRushMul    = 1.3
)

// Level maps a congestion score to the 1-5 UI level.
func Level(score float64) int {
	switch {
	case score <= 2.0:
		return 1
	case score <= 2.5:
		return 2
	case score <= 3.5:
		return 3
	case score <= 4.0:
		return 4
	default:
		return 5
	}
}

var levelDescriptions = [...]string{
	1: "매우 좋음",
	2: "좋음",
	3: "보통",
	4: "혼잡",
	5: "매우 혼잡",
}

// Describe returns the Korean descriptor for a congestion score.
func Describe(score float64) string {
	return levelDescriptions[Level(score)]
}

// Bucket is a named coarse time-of-day range, kept for legacy labeling only;
// minute-level selection supersedes it.
type Bucket struct {
	Code string
	Name string
}

type bucketRange struct {
	code  string
	name  string
	start string // inclusive, HH:MM
	end   string // inclusive, HH:MM
}

var bucketRanges = []bucketRange{
	{"T0", "이른 아침 시간대", "06:00", "07:59"},
	{"T1", "오전 시간대", "08:00", "09:59"},
	{"T2", "저녁 시간대", "17:00", "18:59"},
	{"T3", "밤 시간대", "19:00", "20:59"},
}

// BucketFor returns the legacy bucket containing t, or the catch-all bucket.
func BucketFor(t time.Time) Bucket {
	hm := t.Format("15:04")
	for _, b := range bucketRanges {
		if b.start <= hm && hm <= b.end {
			return Bucket{Code: b.code, Name: b.name}
		}
	}
	return Bucket{Code: "unknown", Name: "기타 시간대"}
}
