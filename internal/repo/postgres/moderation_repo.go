package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ModerationRepo struct {
	pool *pgxpool.Pool
}

func NewModerationRepo(pool *pgxpool.Pool) *ModerationRepo {
	return &ModerationRepo{pool: pool}
}

// AddReport appends to the report audit log. Reports are never updated or
// deleted.
func (r *ModerationRepo) AddReport(ctx context.Context, reporterID, reportedID int64, reason string) error {
	if reporterID <= 0 || reportedID <= 0 {
		return fmt.Errorf("invalid report payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO reports (reporter_id, reported_id, reason, created_at)
VALUES ($1, $2, $3, NOW())
`, reporterID, reportedID, reason); err != nil {
		return fmt.Errorf("add report: %w", err)
	}

	return nil
}

func (r *ModerationRepo) AddBlock(ctx context.Context, userID, blockedID int64) error {
	if userID <= 0 || blockedID <= 0 {
		return fmt.Errorf("invalid block payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO blocked_matches (user_id, blocked_user_id, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_id, blocked_user_id) DO NOTHING
`, userID, blockedID); err != nil {
		return fmt.Errorf("add block: %w", err)
	}

	return nil
}
