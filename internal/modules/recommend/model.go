// README: Recommendation output schema and persisted record.
package recommend

import (
	"time"

	"github.com/khtml-hack/baekend/internal/integrations/traffic"
	"github.com/khtml-hack/baekend/internal/types"
)

// Option titles by mode; "best" leads after ordering by time saved.
const (
	titleRollingBest = "최적 시간"
	titleRollingAlt  = "대안 시간"
	titleArriveBest  = "도착제한 최적"
	titleArriveAlt   = "도착제한 대안"
)

// Window is a search range rendered for the UI, HH:MM 24-hour.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Option is one departure proposal card. Every field is always present; a
// zero value is an explicit zero, never a missing key.
type Option struct {
	Title                 string `json:"title"`
	DepartInTimeText      string `json:"departInTimeText"`
	Window                Window `json:"window"`
	OptimalDepartureTime  string `json:"optimalDepartureTime"`
	ExpectedDurationMin   int    `json:"expectedDurationMin"`
	CongestionLevel       int    `json:"congestionLevel"`
	CongestionDescription string `json:"congestionDescription"`
	TimeSavedMin          int    `json:"timeSavedMin"`
	RewardAmount          int    `json:"rewardAmount"`
}

// CurrentAnalysis describes what happens if the user leaves right now. It is
// always computed from live "now", never from advisory text, so it cannot go
// stale relative to the request.
type CurrentAnalysis struct {
	DepartureTime         string `json:"departureTime"`
	ArrivalTime           string `json:"arrivalTime"`
	DurationMin           int    `json:"durationMin"`
	CongestionLevel       int    `json:"congestionLevel"`
	CongestionDescription string `json:"congestionDescription"`
	TimeBucket            string `json:"timeBucket"`
}

// Recommendation is the assembled response: current conditions plus exactly
// two departure options, best first.
type Recommendation struct {
	ID                 types.ID         `json:"recommendationId,omitempty"`
	OriginAddress      string           `json:"originAddress"`
	DestinationAddress string           `json:"destinationAddress"`
	DestinationZone    string           `json:"destinationZone,omitempty"`
	DeadlineMode       bool             `json:"deadlineMode"`
	DeadlineMet        bool             `json:"deadlineMet"`
	Current            CurrentAnalysis  `json:"current"`
	Options            []Option         `json:"options"`
	Traffic            *traffic.Summary `json:"traffic,omitempty"`
	Rationale          string           `json:"rationale,omitempty"`
}

// Record is the flat summary row handed to the persistence store. The store
// is the sole owner of historical records; the computation keeps nothing.
type Record struct {
	ID                  types.ID
	UserID              types.ID
	OriginAddress       string
	DestinationAddress  string
	OptimalDeparture    time.Time
	ExpectedDurationMin int
	CongestionLevel     int
	RewardAmount        int
	CreatedAt           time.Time
}
