// README: Trip store backed by PostgreSQL.
package trip

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khtml-hack/baekend/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, t Trip) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trips
			(id, user_id, recommendation_id, status,
			 origin_address, destination_address,
			 planned_departure, started_at,
			 predicted_duration_min, expected_congestion_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.UserID, t.RecommendationID, t.Status,
		t.OriginAddress, t.DestinationAddress,
		t.PlannedDeparture, t.StartedAt,
		t.PredictedDurationMin, t.ExpectedCongestionLevel)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (Trip, error) {
	var t Trip
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, recommendation_id, status,
		       origin_address, destination_address,
		       planned_departure, started_at, arrived_at,
		       predicted_duration_min, actual_duration_min, expected_congestion_level
		FROM trips
		WHERE id = $1`, id).Scan(
		&t.ID, &t.UserID, &t.RecommendationID, &t.Status,
		&t.OriginAddress, &t.DestinationAddress,
		&t.PlannedDeparture, &t.StartedAt, &t.ArrivedAt,
		&t.PredictedDurationMin, &t.ActualDurationMin, &t.ExpectedCongestionLevel)
	if errors.Is(err, pgx.ErrNoRows) {
		return Trip{}, ErrNotFound
	}
	if err != nil {
		return Trip{}, err
	}
	return t, nil
}

func (s *Store) UpdateArrival(ctx context.Context, t Trip) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET status = $2, arrived_at = $3, actual_duration_min = $4
		WHERE id = $1`,
		t.ID, t.Status, t.ArrivedAt, t.ActualDurationMin)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) AppendStatusLog(ctx context.Context, entry StatusLog) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trip_status_logs (trip_id, status, note, created_at)
		VALUES ($1, $2, $3, $4)`,
		entry.TripID, entry.Status, entry.Note, entry.CreatedAt)
	return err
}
