package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/promoflow/promoflow/internal/analytics"
	"github.com/promoflow/promoflow/internal/app"
	"github.com/promoflow/promoflow/internal/masterdata/storegroups"
	"github.com/promoflow/promoflow/internal/platform/cache"
	"github.com/promoflow/promoflow/internal/platform/db"
	"github.com/promoflow/promoflow/internal/promo"
	"github.com/promoflow/promoflow/internal/rules"
	"github.com/promoflow/promoflow/internal/shared"
	"github.com/promoflow/promoflow/internal/users"
	"github.com/promoflow/promoflow/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	usersService := users.NewService(users.NewRepository(pool))
	storeGroupService := storegroups.NewService(storegroups.NewRepository(pool))
	rulesService := rules.NewService(rules.NewRepository(pool))

	promoService := promo.NewService(promo.NewRepository(pool), usersService, storeGroupService, shared.NewAuditLogger(pool), logger)
	if err := promoService.Start(ctx); err != nil {
		logger.Error("hydrate promotion requests", slog.Any("error", err))
		os.Exit(1)
	}

	analyticsService := analytics.NewService(promoService, rulesService, analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL), redisClient)

	reminderJob := jobs.NewPendingReminderJob(promoService, logger)
	warmupJob := jobs.NewAnalyticsWarmupJob(analyticsService, logger)

	reminderTask, err := jobs.NewPendingReminderTask(jobs.PendingReminderPayload{OlderThan: cfg.PendingReminderAfter})
	if err != nil {
		logger.Error("build reminder task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewAnalyticsWarmupTask()
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPendingReminder, Handler: reminderJob.Handle},
			{Type: jobs.TaskAnalyticsWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 9 * * 1-5", Task: reminderTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 6 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
