// README: Recommendation store backed by PostgreSQL.
package recommend

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khtml-hack/baekend/internal/types"
)

var ErrNotFound = errors.New("recommendation not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Save(ctx context.Context, r Record) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO recommendations
			(id, user_id, origin_address, destination_address,
			 optimal_departure, expected_duration_min, congestion_level,
			 reward_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.UserID, r.OriginAddress, r.DestinationAddress,
		r.OptimalDeparture, r.ExpectedDurationMin, r.CongestionLevel,
		r.RewardAmount, r.CreatedAt)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (Record, error) {
	var r Record
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, origin_address, destination_address,
		       optimal_departure, expected_duration_min, congestion_level,
		       reward_amount, created_at
		FROM recommendations
		WHERE id = $1`, id).Scan(
		&r.ID, &r.UserID, &r.OriginAddress, &r.DestinationAddress,
		&r.OptimalDeparture, &r.ExpectedDurationMin, &r.CongestionLevel,
		&r.RewardAmount, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return r, nil
}
