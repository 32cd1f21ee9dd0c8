package botapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivankudzin/matefinder/internal/config"
	tginfra "github.com/ivankudzin/matefinder/internal/infra/telegram"
	"github.com/ivankudzin/matefinder/internal/jobs/metrics"
	pgrepo "github.com/ivankudzin/matefinder/internal/repo/postgres"
	redrepo "github.com/ivankudzin/matefinder/internal/repo/redis"
	"github.com/ivankudzin/matefinder/internal/services/dialog"
	matchingsvc "github.com/ivankudzin/matefinder/internal/services/matching"
	profilessvc "github.com/ivankudzin/matefinder/internal/services/profiles"
	ratesvc "github.com/ivankudzin/matefinder/internal/services/rate"
)

type App struct {
	cfg      config.Config
	logger   *zap.Logger
	postgres *pgxpool.Pool
	redis    *goredis.Client
	bot      *tginfra.Bot
	router   *Router
	statsJob *metrics.Job
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres for bot app: %w", err)
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Limits.LikeMaxPerMinute, cfg.Limits.LikeMaxPer10Sec)

	userRepo := pgrepo.NewUserRepo(pool)
	feedRepo := pgrepo.NewFeedRepo(pool)
	likeRepo := pgrepo.NewLikeRepo(pool)
	chatRepo := pgrepo.NewChatRepo(pool)
	moderationRepo := pgrepo.NewModerationRepo(pool)
	statsRepo := pgrepo.NewStatsRepo(pool)

	profileService := profilessvc.NewService(userRepo, cfg.Bot.AdminUserID)
	matchingService := matchingsvc.NewService(matchingsvc.Dependencies{
		Profiles:    userRepo,
		Feed:        feedRepo,
		Likes:       likeRepo,
		Chats:       chatRepo,
		Moderation:  moderationRepo,
		RateLimiter: rateLimiter,
	})

	var bot *tginfra.Bot
	if strings.TrimSpace(cfg.Bot.Token) != "" {
		bot, err = tginfra.NewBot(cfg.Bot.Token)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init telegram bot: %w", err)
		}
	} else {
		logger.Warn("BOT_TOKEN is empty, update listener disabled")
	}

	var router *Router
	if bot != nil {
		router = NewRouter(RouterDependencies{
			Sender:      bot,
			Dialog:      dialog.NewStore(),
			Profiles:    profileService,
			Matching:    matchingService,
			Stats:       statsRepo,
			AdminUserID: cfg.Bot.AdminUserID,
			Logger:      logger,
		})
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		postgres: pool,
		redis:    redisClient,
		bot:      bot,
		router:   router,
		statsJob: metrics.NewStatsJob(statsRepo, logger),
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("bot app started")

	errCh := make(chan error, 2)
	go func() {
		errCh <- a.runStatsLoop(ctx)
	}()

	if a.bot != nil {
		go func() {
			errCh <- a.bot.Listen(ctx, tginfra.Handlers{
				OnCommand:  a.handleCommand,
				OnText:     a.handleText,
				OnPhoto:    a.handlePhoto,
				OnCallback: a.handleCallback,
			})
		}()
	}

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("bot app stopped")
			return nil
		case err := <-errCh:
			if err == nil || errors.Is(err, context.Canceled) {
				continue
			}
			return err
		}
	}
}

func (a *App) runStatsLoop(ctx context.Context) error {
	if a.statsJob == nil {
		return nil
	}

	interval := a.cfg.Jobs.StatsInterval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	if err := a.statsJob.Run(ctx); err != nil {
		a.logger.Warn("stats snapshot failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.statsJob.Run(ctx); err != nil {
				a.logger.Warn("stats snapshot failed", zap.Error(err))
			}
		}
	}
}

// Handler wrappers keep a single failing update from tearing down the long
// poll loop: the error is logged and the next update is processed.

func (a *App) handleCommand(ctx context.Context, update tginfra.CommandUpdate) error {
	if err := a.router.HandleCommand(ctx, update); err != nil {
		a.logger.Error("command update failed", zap.Error(err), zap.String("command", update.Command), zap.Int64("user_id", update.UserID))
	}
	return nil
}

func (a *App) handleText(ctx context.Context, update tginfra.TextUpdate) error {
	if err := a.router.HandleText(ctx, update); err != nil {
		a.logger.Error("text update failed", zap.Error(err), zap.Int64("user_id", update.UserID))
	}
	return nil
}

func (a *App) handlePhoto(ctx context.Context, update tginfra.PhotoUpdate) error {
	if err := a.router.HandlePhoto(ctx, update); err != nil {
		a.logger.Error("photo update failed", zap.Error(err), zap.Int64("user_id", update.UserID))
	}
	return nil
}

func (a *App) handleCallback(ctx context.Context, update tginfra.CallbackUpdate) error {
	if err := a.router.HandleCallback(ctx, update); err != nil {
		a.logger.Error("callback update failed", zap.Error(err), zap.Int64("user_id", update.UserID))
	}
	return nil
}

func (a *App) Close() {
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
