// README: Trip lifecycle types and state machine.
package trip

import (
	"time"

	"github.com/khtml-hack/baekend/internal/types"
)

type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusArrived   Status = "arrived"
	StatusCancelled Status = "cancelled"
)

// allowedTransitions is the only place lifecycle rules live. A trip starts
// ongoing and terminates in exactly one of arrived or cancelled.
var allowedTransitions = map[Status][]Status{
	StatusOngoing:   {StatusArrived, StatusCancelled},
	StatusArrived:   {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Trip is a started journey bound to the recommendation it came from.
// Predicted figures are frozen at start time; actuals arrive on completion.
type Trip struct {
	ID                      types.ID   `json:"tripId"`
	UserID                  types.ID   `json:"userId"`
	RecommendationID        types.ID   `json:"recommendationId"`
	Status                  Status     `json:"status"`
	OriginAddress           string     `json:"originAddress"`
	DestinationAddress      string     `json:"destinationAddress"`
	PlannedDeparture        time.Time  `json:"plannedDeparture"`
	StartedAt               time.Time  `json:"startedAt"`
	ArrivedAt               *time.Time `json:"arrivedAt,omitempty"`
	PredictedDurationMin    int        `json:"predictedDurationMin"`
	ActualDurationMin       *int       `json:"actualDurationMin,omitempty"`
	ExpectedCongestionLevel int        `json:"expectedCongestionLevel"`
}

// ArrivalResult is the completion receipt: the reconciled reward plus the
// accuracy breakdown that produced it.
type ArrivalResult struct {
	Trip         Trip     `json:"trip"`
	RewardAmount int      `json:"rewardAmount"`
	RewardTags   []string `json:"rewardTags"`
}

// StatusLog is one append-only lifecycle entry.
type StatusLog struct {
	TripID    types.ID
	Status    Status
	Note      string
	CreatedAt time.Time
}
