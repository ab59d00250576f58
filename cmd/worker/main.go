package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/activity"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/app"
	jobmetrics "github.com/umarbinmusa/ERP-CLIENT-sub000/internal/jobs"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/platform/db"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	purgeNow := flag.Bool("purge-now", false, "enqueue an activity purge immediately instead of waiting for the schedule")
	flag.Parse()

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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	activityService := activity.NewService(activity.NewRepository(pool), logger)
	metrics := jobmetrics.NewMetrics(nil)

	purgeTask, err := jobs.NewActivityPurgeTask(jobs.ActivityPurgePayload{RetentionDays: cfg.ActivityRetentionDays})
	if err != nil {
		logger.Error("build purge task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskActivityPurge, Handler: jobs.ActivityPurgeHandler(activityService, logger, metrics)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "45 2 * * *", Task: purgeTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if *purgeNow {
		client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		if err != nil {
			logger.Error("init queue client", slog.Any("error", err))
			os.Exit(1)
		}
		info, err := client.EnqueueActivityPurge(ctx, jobs.ActivityPurgePayload{RetentionDays: cfg.ActivityRetentionDays})
		_ = client.Close()
		if err != nil {
			logger.Error("enqueue purge", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("activity purge enqueued", slog.String("task_id", info.ID))
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
