package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/laundrydesk/laundrydesk/internal/jobs"
	"github.com/laundrydesk/laundrydesk/internal/reports"
)

// ReportSource is the subset of the reports service the warmup touches.
type ReportSource interface {
	Dashboard(ctx context.Context) (reports.Dashboard, error)
	RevenueByDay(ctx context.Context, days int) ([]reports.DailyRevenue, error)
	MonthlyTrend(ctx context.Context, months int) ([]reports.MonthlyPoint, error)
}

// ReportsWarmupJob pre-populates report caches after they are invalidated.
type ReportsWarmupJob struct {
	Reports ReportSource
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(source ReportSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{Reports: source, Logger: logger, Metrics: metrics}
}

// Handle processes TaskReportsWarmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.RevenueDays <= 0 {
		payload.RevenueDays = 30
	}
	if payload.TrendMonths <= 0 {
		payload.TrendMonths = 12
	}

	tracker := metricsOrDefault(j.Metrics).Track(TaskReportsWarmup)
	defer func() { err = tracker.End(err) }()

	start := time.Now()
	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := j.Reports.Dashboard(warmCtx); err != nil {
		return fmt.Errorf("warm dashboard: %w", err)
	}
	if _, err := j.Reports.RevenueByDay(warmCtx, payload.RevenueDays); err != nil {
		return fmt.Errorf("warm revenue: %w", err)
	}
	if _, err := j.Reports.MonthlyTrend(warmCtx, payload.TrendMonths); err != nil {
		return fmt.Errorf("warm monthly trend: %w", err)
	}
	jobLogger(j.Logger, TaskReportsWarmup).Info("reports warmed", slog.Duration("duration", time.Since(start)))
	return nil
}
