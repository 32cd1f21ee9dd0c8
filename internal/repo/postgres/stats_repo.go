package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsRepo struct {
	pool *pgxpool.Pool
}

type Stats struct {
	TotalProfiles int64
	ActiveChats   int64
	TotalReports  int64
}

func NewStatsRepo(pool *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

func (r *StatsRepo) Get(ctx context.Context) (Stats, error) {
	if r.pool == nil {
		return Stats{}, fmt.Errorf("postgres pool is nil")
	}

	var stats Stats
	err := r.pool.QueryRow(ctx, `
SELECT
	(SELECT COUNT(*) FROM users),
	(SELECT COUNT(*) FROM active_chats WHERE is_active),
	(SELECT COUNT(*) FROM reports)
`).Scan(&stats.TotalProfiles, &stats.ActiveChats, &stats.TotalReports)
	if err != nil {
		return Stats{}, fmt.Errorf("read stats: %w", err)
	}

	return stats, nil
}
