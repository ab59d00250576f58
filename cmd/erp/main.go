package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/activity"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/app"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/auth"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/authz"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/dashboard"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/devauth"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/finance"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/gateway"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/inventory"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/laboratory"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/logistics"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/observability"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/platform/cache"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/platform/db"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/procurement"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/production"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/reports"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/sales"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/settings"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/users"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/view"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	api := gateway.NewClient(cfg.ERPAPIBaseURL)

	var exchanger auth.Exchanger = api
	var notifier shared.LogoutNotifier = api
	if cfg.DevAuth {
		provider, err := devauth.NewProvider(cfg.DevAuthPassword)
		if err != nil {
			logger.Error("init dev auth", slog.Any("error", err))
			os.Exit(1)
		}
		exchanger = provider
		notifier = provider
		logger.Warn("dev auth enabled, remote credential exchange is bypassed")
	}

	sessionManager := shared.NewSessionManager(redisClient, notifier, logger, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	activityService := activity.NewService(activity.NewRepository(dbpool), logger)
	settingsRepo := settings.NewRepository(dbpool)

	authzMW := authz.Middleware{Logger: logger, Activity: activityService, Metrics: metrics}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Authz:          authzMW,

		AuthHandler:        auth.NewHandler(logger, exchanger, templates, sessionManager, csrfManager, settingsRepo, activityService, metrics),
		DashboardHandler:   dashboard.NewHandler(logger, api, templates, csrfManager, sessionManager),
		InventoryHandler:   inventory.NewHandler(logger, api, templates, csrfManager, sessionManager),
		ProductionHandler:  production.NewHandler(logger, api, templates, csrfManager, sessionManager),
		LaboratoryHandler:  laboratory.NewHandler(logger, api, templates, csrfManager, sessionManager),
		SalesHandler:       sales.NewHandler(logger, api, templates, csrfManager, sessionManager),
		LogisticsHandler:   logistics.NewHandler(logger, api, templates, csrfManager, sessionManager),
		ProcurementHandler: procurement.NewHandler(logger, api, templates, csrfManager, sessionManager),
		FinanceHandler:     finance.NewHandler(logger, api, templates, csrfManager, sessionManager),
		ReportsHandler:     reports.NewHandler(logger, api, templates, csrfManager, sessionManager),
		UsersHandler:       users.NewHandler(logger, api, templates, csrfManager, sessionManager),
		ActivityHandler:    activity.NewHandler(logger, activityService, templates, csrfManager),
		SettingsHandler:    settings.NewHandler(logger, settingsRepo, templates, csrfManager),

		Metrics: metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
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
