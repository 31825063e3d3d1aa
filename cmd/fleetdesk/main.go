package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetdesk/fleetdesk/internal/app"
	"github.com/fleetdesk/fleetdesk/internal/articles"
	"github.com/fleetdesk/fleetdesk/internal/auth"
	"github.com/fleetdesk/fleetdesk/internal/bookings"
	"github.com/fleetdesk/fleetdesk/internal/companies"
	"github.com/fleetdesk/fleetdesk/internal/fleet"
	"github.com/fleetdesk/fleetdesk/internal/observability"
	"github.com/fleetdesk/fleetdesk/internal/platform/cache"
	"github.com/fleetdesk/fleetdesk/internal/platform/db"
	"github.com/fleetdesk/fleetdesk/internal/realtime"
	"github.com/fleetdesk/fleetdesk/internal/reports"
	"github.com/fleetdesk/fleetdesk/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

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

	// The token denylist lives in redis, so logins cannot be revoked
	// without it.
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

	companyRepo := companies.NewRepository(pool)
	userRepo := users.NewRepository(pool)
	userService := users.NewService(userRepo)
	userHandler := users.NewHandler(logger, userService)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(redisClient)
	authService := auth.NewService(pool, userRepo, companyRepo, tokens, tokenStore)
	authHandler := auth.NewHandler(logger, authService, userService)

	fleetRepo := fleet.NewRepository(pool)
	fleetService := fleet.NewService(fleetRepo, userRepo)
	fleetHandler := fleet.NewHandler(logger, fleetService)

	hub := realtime.NewHub(logger)
	realtimeHandler := realtime.NewHandler(logger, hub)

	bookingRepo := bookings.NewRepository(pool)
	bookingService := bookings.NewService(bookingRepo, userRepo, hub)
	bookingHandler := bookings.NewHandler(logger, bookingService)

	reportRepo := reports.NewRepository(pool)
	reportService := reports.NewService(reportRepo)
	reportHandler := reports.NewHandler(logger, reportService)

	articleService := articles.NewService(logger, cfg.ArticlesURL)
	articleHandler := articles.NewHandler(articleService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthService:     authService,
		AuthHandler:     authHandler,
		UsersHandler:    userHandler,
		FleetHandler:    fleetHandler,
		BookingsHandler: bookingHandler,
		ReportsHandler:  reportHandler,
		RealtimeHandler: realtimeHandler,
		ArticlesHandler: articleHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:        cfg.AppAddr,
		Handler:     router,
		ReadTimeout: cfg.AppReadTimeout,
		// WriteTimeout stays unset so websocket streams are not killed;
		// regular routes are bounded by the timeout middleware instead.
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
