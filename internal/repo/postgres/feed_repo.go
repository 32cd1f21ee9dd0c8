package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoCandidate = errors.New("no eligible candidate")

type FeedRepo struct {
	pool *pgxpool.Pool
}

func NewFeedRepo(pool *pgxpool.Pool) *FeedRepo {
	return &FeedRepo{pool: pool}
}

func (r *FeedRepo) Skip(ctx context.Context, userID, targetID int64) error {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return fmt.Errorf("invalid skip payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO skips (user_id, skipped_user_id, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_id, skipped_user_id) DO NOTHING
`, userID, targetID); err != nil {
		return fmt.Errorf("record skip: %w", err)
	}

	return nil
}

// NextCandidate draws one profile uniformly at random from the eligible set:
// not the user themself, not currently partnered, not skipped by the user,
// not reported by the user and with no block relation in either direction.
// Profiles the user has seen but neither liked nor skipped stay eligible.
func (r *FeedRepo) NextCandidate(ctx context.Context, userID int64) (ProfileRecord, error) {
	if userID <= 0 {
		return ProfileRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return ProfileRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec ProfileRecord
	err := r.pool.QueryRow(ctx, `
SELECT u.user_id, u.name, u.age, u.gender, COALESCE(u.bio, ''), u.photo_id, u.is_admin, u.current_partner_id, u.created_at
FROM users u
WHERE u.user_id != $1
  AND u.current_partner_id IS NULL
  AND NOT EXISTS (
	SELECT 1 FROM skips s
	WHERE s.user_id = $1 AND s.skipped_user_id = u.user_id
  )
  AND NOT EXISTS (
	SELECT 1 FROM reports rp
	WHERE rp.reporter_id = $1 AND rp.reported_id = u.user_id
  )
  AND NOT EXISTS (
	SELECT 1 FROM blocked_matches b
	WHERE (b.user_id = $1 AND b.blocked_user_id = u.user_id)
	   OR (b.user_id = u.user_id AND b.blocked_user_id = $1)
  )
ORDER BY RANDOM()
LIMIT 1
`, userID).Scan(
		&rec.UserID,
		&rec.Name,
		&rec.Age,
		&rec.Gender,
		&rec.Bio,
		&rec.PhotoID,
		&rec.IsAdmin,
		&rec.PartnerID,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProfileRecord{}, ErrNoCandidate
		}
		return ProfileRecord{}, fmt.Errorf("select candidate: %w", err)
	}

	return rec, nil
}
