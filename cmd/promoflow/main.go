package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/promoflow/promoflow/internal/analytics"
	"github.com/promoflow/promoflow/internal/app"
	"github.com/promoflow/promoflow/internal/masterdata/skufamilies"
	"github.com/promoflow/promoflow/internal/masterdata/storegroups"
	"github.com/promoflow/promoflow/internal/platform/cache"
	"github.com/promoflow/promoflow/internal/platform/db"
	"github.com/promoflow/promoflow/internal/promo"
	"github.com/promoflow/promoflow/internal/rules"
	"github.com/promoflow/promoflow/internal/shared"
	"github.com/promoflow/promoflow/internal/users"
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
		logger.Warn("redis unavailable, analytics cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)

	usersService := users.NewService(users.NewRepository(pool))
	usersHandler := users.NewHandler(logger, usersService)

	rulesService := rules.NewService(rules.NewRepository(pool))
	rulesHandler := rules.NewHandler(logger, rulesService)

	storeGroupService := storegroups.NewService(storegroups.NewRepository(pool))
	storeGroupHandler := storegroups.NewHandler(logger, storeGroupService)

	skuFamilyService := skufamilies.NewService(skufamilies.NewRepository(pool))
	skuFamilyHandler := skufamilies.NewHandler(logger, skuFamilyService)

	promoService := promo.NewService(promo.NewRepository(pool), usersService, storeGroupService, auditLogger, logger)
	if err := promoService.Start(ctx); err != nil {
		logger.Error("hydrate promotion requests", slog.Any("error", err))
		os.Exit(1)
	}
	promoHandler := promo.NewHandler(logger, promoService, cfg.ImportMaxBytes)

	analyticsService := analytics.NewService(promoService, rulesService, analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL), redisClient)
	analyticsHandler := analytics.NewHandler(logger, analyticsService)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		ActorSource:       usersService,
		PromoHandler:      promoHandler,
		UsersHandler:      usersHandler,
		RulesHandler:      rulesHandler,
		StoreGroupHandler: storeGroupHandler,
		SKUFamilyHandler:  skuFamilyHandler,
		AnalyticsHandler:  analyticsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.AppAddr, "env", cfg.AppEnv)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
