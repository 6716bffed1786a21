package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/laundrydesk/laundrydesk/cmd/laundrydesk/cli"
	"github.com/laundrydesk/laundrydesk/internal/app"
	"github.com/laundrydesk/laundrydesk/internal/auth"
	"github.com/laundrydesk/laundrydesk/internal/catalog"
	"github.com/laundrydesk/laundrydesk/internal/customers"
	"github.com/laundrydesk/laundrydesk/internal/expenses"
	"github.com/laundrydesk/laundrydesk/internal/export"
	"github.com/laundrydesk/laundrydesk/internal/invoice"
	"github.com/laundrydesk/laundrydesk/internal/notify"
	"github.com/laundrydesk/laundrydesk/internal/observability"
	"github.com/laundrydesk/laundrydesk/internal/orders"
	"github.com/laundrydesk/laundrydesk/internal/platform/cache"
	"github.com/laundrydesk/laundrydesk/internal/platform/db"
	"github.com/laundrydesk/laundrydesk/internal/reports"
	"github.com/laundrydesk/laundrydesk/internal/shared"
	"github.com/laundrydesk/laundrydesk/jobs"
)

const usage = `usage: laundrydesk <command> [args]

commands:
  serve [-migrate]       run the HTTP API (default)
  migrate                apply the database schema
  hash-password          read a password from stdin and print its bcrypt hash
  jobs trigger <name>    enqueue backup, cleanup or warmup
  jobs stats             print default queue counters
`

// reportInvalidator bumps the report cache version and asks the worker to
// refill it.
type reportInvalidator struct {
	cache  *cache.Versioned
	queue  *jobs.Client
	logger *slog.Logger
}

func (i reportInvalidator) Bump(ctx context.Context) error {
	if err := i.cache.Bump(ctx); err != nil {
		return err
	}
	if i.queue == nil {
		return nil
	}
	if err := i.queue.EnqueueReportsWarmup(ctx); err != nil {
		i.logger.Warn("enqueue reports warmup", slog.Any("error", err))
	}
	return nil
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, stop, args)
	case "migrate":
		err = runMigrate(ctx)
	case "hash-password":
		err = cli.HashPassword(os.Stdin, os.Stdout)
	case "jobs":
		err = runJobs(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Default().Error(cmd, slog.Any("error", err))
		os.Exit(1)
	}
}

func runMigrate(ctx context.Context) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}
	app.NewLogger(cfg).Info("schema applied")
	return nil
}

func runJobs(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("jobs: expected trigger or stats")
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	jobsCLI := cli.NewJobsCLI(cfg.RedisAddr, cli.JobDefaults{
		BackupRetain:         cfg.BackupRetain,
		IdempotencyRetention: cfg.IdempotencyRetention,
	})
	defer func() { _ = jobsCLI.Close() }()

	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			return errors.New("jobs trigger: job name required")
		}
		info, err := jobsCLI.Trigger(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "enqueued %s as %s\n", info.Type, info.ID)
		return nil
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			return err
		}
		return cli.WriteStats(os.Stdout, stats)
	default:
		return fmt.Errorf("jobs: unknown subcommand %s", args[0])
	}
}

func runServe(ctx context.Context, stop context.CancelFunc, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	migrate := fs.Bool("migrate", false, "apply the database schema before serving")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer dbpool.Close()
	if *migrate {
		if err := db.Migrate(ctx, dbpool); err != nil {
			return err
		}
		logger.Info("schema applied")
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		return fmt.Errorf("init job client: %w", err)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	reportCache := cache.NewVersioned(redisClient, "reports", cfg.ReportCacheTTL).WithLogger(logger)
	if err := reportCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("report cache listener", slog.Any("error", err))
	}
	invalidator := reportInvalidator{cache: reportCache, queue: jobClient, logger: logger}

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	customerService := customers.NewService(customers.NewRepository(dbpool), invalidator)
	catalogService := catalog.NewService(catalog.NewRepository(dbpool), invalidator)
	expenseService := expenses.NewService(expenses.NewRepository(dbpool), invalidator)
	orderService := orders.NewService(orders.NewRepository(dbpool), auditLogger, idempotencyStore, invalidator, orders.ServiceConfig{
		StrictTransitions: cfg.OrderStrictTransitions,
	})
	reportService := reports.NewService(orderService, expenseService, customerService, reportCache)
	exportService := export.NewService(customerService, catalogService, orderService, expenseService, cfg.BusinessName)

	dispatcher := notify.NewDispatcher(cfg.WhatsAppCountryCode, jobClient, logger)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authService := auth.NewService(auth.Credentials{
		Email:        cfg.AdminEmail,
		PasswordHash: cfg.AdminPasswordHash,
	}, tokens, auth.NewRedisRevocations(redisClient))
	if cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH is empty, login is disabled")
	}

	renderer, err := invoice.NewRenderer(invoice.Business{
		Name:    cfg.BusinessName,
		Address: cfg.BusinessAddress,
		Phone:   cfg.BusinessPhone,
	})
	if err != nil {
		return err
	}
	var pdf invoice.PDFRenderer
	if cfg.GotenbergURL != "" {
		client := invoice.NewClient(cfg.GotenbergURL)
		if err := client.Ping(ctx); err != nil {
			logger.Warn("gotenberg ping", slog.Any("error", err))
		}
		pdf = client
	}

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Metrics:          observability.NewMetrics(),
		AuthHandler:      auth.NewHandler(logger, authService),
		CustomersHandler: customers.NewHandler(logger, customerService),
		CatalogHandler:   catalog.NewHandler(logger, catalogService),
		OrdersHandler:    orders.NewHandler(logger, orderService, dispatcher),
		ExpensesHandler:  expenses.NewHandler(logger, expenseService),
		ReportsHandler:   reports.NewHandler(logger, reportService),
		ExportHandler:    export.NewHandler(logger, exportService),
		InvoiceHandler:   invoice.NewHandler(logger, orderService, renderer, pdf),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Health:           healthCheck(dbpool, redisClient),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	return nil
}

func healthCheck(pool *pgxpool.Pool, client *redis.Client) app.HealthCheck {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}
}
