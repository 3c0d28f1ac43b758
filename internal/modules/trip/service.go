// README: Trip lifecycle service, from start through arrival reconciliation.
package trip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/khtml-hack/baekend/internal/modules/recommend"
	"github.com/khtml-hack/baekend/internal/types"
)

var (
	ErrNotFound     = errors.New("trip not found")
	ErrInvalidState = errors.New("invalid trip state")
)

// RecommendationSource looks up the persisted recommendation a trip starts
// from. Satisfied by recommend.Store.
type RecommendationSource interface {
	Get(ctx context.Context, id types.ID) (recommend.Record, error)
}

// Storage is the persistence surface the service needs. Satisfied by Store.
type Storage interface {
	Create(ctx context.Context, t Trip) error
	Get(ctx context.Context, id types.ID) (Trip, error)
	UpdateArrival(ctx context.Context, t Trip) error
	AppendStatusLog(ctx context.Context, entry StatusLog) error
}

type Service struct {
	store           Storage
	recommendations RecommendationSource
	loc             *time.Location
	now             func() time.Time
	log             zerolog.Logger
}

func NewService(store Storage, recommendations RecommendationSource, loc *time.Location, log zerolog.Logger) *Service {
	return &Service{
		store:           store,
		recommendations: recommendations,
		loc:             loc,
		now:             time.Now,
		log:             log,
	}
}

// Start opens an ongoing trip from a stored recommendation, freezing its
// predicted duration and congestion level for later reconciliation.
func (s *Service) Start(ctx context.Context, userID, recommendationID types.ID) (Trip, error) {
	rec, err := s.recommendations.Get(ctx, recommendationID)
	if err != nil {
		if errors.Is(err, recommend.ErrNotFound) {
			return Trip{}, fmt.Errorf("recommendation %s: %w", recommendationID, ErrNotFound)
		}
		return Trip{}, fmt.Errorf("load recommendation: %w", err)
	}

	now := s.now().In(s.loc)
	t := Trip{
		ID:                      types.ID(uuid.NewString()),
		UserID:                  userID,
		RecommendationID:        rec.ID,
		Status:                  StatusOngoing,
		OriginAddress:           rec.OriginAddress,
		DestinationAddress:      rec.DestinationAddress,
		PlannedDeparture:        rec.OptimalDeparture,
		StartedAt:               now,
		PredictedDurationMin:    rec.ExpectedDurationMin,
		ExpectedCongestionLevel: rec.CongestionLevel,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return Trip{}, fmt.Errorf("create trip: %w", err)
	}
	s.logStatus(ctx, t.ID, StatusOngoing, "trip started")

	s.log.Info().
		Str("trip_id", string(t.ID)).
		Str("recommendation_id", string(rec.ID)).
		Msg("trip started")
	return t, nil
}

// Arrive closes an ongoing trip, computes the actual duration from the start
// timestamp, and reconciles the reward against the frozen prediction.
func (s *Service) Arrive(ctx context.Context, tripID types.ID) (ArrivalResult, error) {
	t, err := s.store.Get(ctx, tripID)
	if err != nil {
		return ArrivalResult{}, err
	}
	if !CanTransition(t.Status, StatusArrived) {
		return ArrivalResult{}, fmt.Errorf("trip %s is %s: %w", t.ID, t.Status, ErrInvalidState)
	}

	now := s.now().In(s.loc)
	actualMin := int(now.Sub(t.StartedAt).Minutes())
	if actualMin < 0 {
		actualMin = 0
	}

	t.Status = StatusArrived
	t.ArrivedAt = &now
	t.ActualDurationMin = &actualMin
	if err := s.store.UpdateArrival(ctx, t); err != nil {
		return ArrivalResult{}, fmt.Errorf("update trip: %w", err)
	}

	amount, tags := arrivalReward(t.PredictedDurationMin, actualMin, t.ExpectedCongestionLevel)
	s.logStatus(ctx, t.ID, StatusArrived, fmt.Sprintf("arrived, reward %d", amount))

	s.log.Info().
		Str("trip_id", string(t.ID)).
		Int("predicted_min", t.PredictedDurationMin).
		Int("actual_min", actualMin).
		Int("reward", amount).
		Msg("trip arrived")

	return ArrivalResult{Trip: t, RewardAmount: amount, RewardTags: tags}, nil
}

// logStatus records the lifecycle entry; the log table is advisory, so a
// write failure never fails the operation.
func (s *Service) logStatus(ctx context.Context, tripID types.ID, status Status, note string) {
	entry := StatusLog{TripID: tripID, Status: status, Note: note, CreatedAt: s.now().In(s.loc)}
	if err := s.store.AppendStatusLog(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("trip_id", string(tripID)).Msg("status log write failed")
	}
}
