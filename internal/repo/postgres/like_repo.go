package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LikeRepo struct {
	pool *pgxpool.Pool
}

func NewLikeRepo(pool *pgxpool.Pool) *LikeRepo {
	return &LikeRepo{pool: pool}
}

func (r *LikeRepo) Add(ctx context.Context, likerID, likedID int64) error {
	if likerID <= 0 || likedID <= 0 || likerID == likedID {
		return fmt.Errorf("invalid pending like payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO pending_likes (liker_id, liked_id, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (liker_id, liked_id) DO NOTHING
`, likerID, likedID); err != nil {
		return fmt.Errorf("add pending like: %w", err)
	}

	return nil
}

func (r *LikeRepo) Exists(ctx context.Context, likerID, likedID int64) (bool, error) {
	if likerID <= 0 || likedID <= 0 {
		return false, fmt.Errorf("invalid pending like lookup payload")
	}
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM pending_likes
WHERE liker_id = $1 AND liked_id = $2
LIMIT 1
`, likerID, likedID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup pending like: %w", err)
	}

	return true, nil
}

// RemovePair deletes pending likes between two users in either direction.
func (r *LikeRepo) RemovePair(ctx context.Context, userID, targetID int64) error {
	if userID <= 0 || targetID <= 0 {
		return fmt.Errorf("invalid pending like delete payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
DELETE FROM pending_likes
WHERE (liker_id = $1 AND liked_id = $2) OR (liker_id = $2 AND liked_id = $1)
`, userID, targetID); err != nil {
		return fmt.Errorf("remove pending like pair: %w", err)
	}

	return nil
}
