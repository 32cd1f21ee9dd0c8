package metrics

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	pgrepo "github.com/ivankudzin/matefinder/internal/repo/postgres"
)

type StatsReader interface {
	Get(ctx context.Context) (pgrepo.Stats, error)
}

// Job periodically snapshots aggregate counters into the log stream, which
// is the only place operators can watch growth without the admin API.
type Job struct {
	stats  StatsReader
	logger *zap.Logger
}

func NewStatsJob(stats StatsReader, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		stats:  stats,
		logger: logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.stats == nil {
		return nil
	}

	stats, err := j.stats.Get(ctx)
	if err != nil {
		return fmt.Errorf("collect stats snapshot: %w", err)
	}

	j.logger.Info("stats snapshot",
		zap.Int64("total_users", stats.TotalProfiles),
		zap.Int64("active_chats", stats.ActiveChats),
		zap.Int64("total_reports", stats.TotalReports),
	)
	return nil
}
