package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/laundrydesk/laundrydesk/internal/app"
	"github.com/laundrydesk/laundrydesk/internal/catalog"
	"github.com/laundrydesk/laundrydesk/internal/customers"
	"github.com/laundrydesk/laundrydesk/internal/expenses"
	"github.com/laundrydesk/laundrydesk/internal/export"
	jobmetrics "github.com/laundrydesk/laundrydesk/internal/jobs"
	"github.com/laundrydesk/laundrydesk/internal/notify"
	"github.com/laundrydesk/laundrydesk/internal/orders"
	"github.com/laundrydesk/laundrydesk/internal/platform/cache"
	"github.com/laundrydesk/laundrydesk/internal/platform/db"
	"github.com/laundrydesk/laundrydesk/internal/reports"
	"github.com/laundrydesk/laundrydesk/internal/shared"
	"github.com/laundrydesk/laundrydesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
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

	reportCache := cache.NewVersioned(redisClient, "reports", cfg.ReportCacheTTL).WithLogger(logger)
	customerService := customers.NewService(customers.NewRepository(pool), reportCache)
	catalogService := catalog.NewService(catalog.NewRepository(pool), reportCache)
	expenseService := expenses.NewService(expenses.NewRepository(pool), reportCache)
	orderService := orders.NewService(orders.NewRepository(pool), shared.NewAuditLogger(pool), shared.NewIdempotencyStore(pool), reportCache, orders.ServiceConfig{
		StrictTransitions: cfg.OrderStrictTransitions,
	})
	reportService := reports.NewService(orderService, expenseService, customerService, reportCache)
	exportService := export.NewService(customerService, catalogService, orderService, expenseService, cfg.BusinessName)

	var sender notify.Sender = notify.LogSender{Logger: logger}
	if cfg.TwilioEnabled() {
		sender = notify.NewTwilioSender(notify.TwilioConfig{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			From:       cfg.TwilioWhatsAppFrom,
		}, logger)
	} else {
		logger.Warn("twilio credentials missing, whatsapp messages will only be logged")
	}

	metrics := jobmetrics.NewMetrics(nil)
	whatsAppJob := jobs.NewWhatsAppJob(sender, logger, metrics)
	backupJob := jobs.NewBackupJob(exportService, cfg.BackupDir, logger, metrics)
	cleanupJob := jobs.NewIdempotencyCleanupJob(shared.NewIdempotencyStore(pool), logger, metrics)
	warmupJob := jobs.NewReportsWarmupJob(reportService, logger, metrics)

	backupTask, err := jobs.NewBackupTask(cfg.BackupRetain)
	if err != nil {
		logger.Error("build backup task", slog.Any("error", err))
		os.Exit(1)
	}
	cleanupTask, err := jobs.NewIdempotencyCleanupTask(cfg.IdempotencyRetention)
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewReportsWarmupTask(30, 12)
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskNotifyWhatsApp, Handler: whatsAppJob.Handle},
			{Type: jobs.TaskBackupSnapshot, Handler: backupJob.Handle},
			{Type: jobs.TaskIdempotencyCleanup, Handler: cleanupJob.Handle},
			{Type: jobs.TaskReportsWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 2 * * *", Task: backupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 2 * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "15 5 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
