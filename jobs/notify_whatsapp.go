package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/laundrydesk/laundrydesk/internal/jobs"
	"github.com/laundrydesk/laundrydesk/internal/notify"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// WhatsAppJob delivers queued WhatsApp messages through a notify.Sender.
type WhatsAppJob struct {
	Sender  notify.Sender
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewWhatsAppJob wires dependencies for the delivery handler.
func NewWhatsAppJob(sender notify.Sender, logger *slog.Logger, metrics *jobmetrics.Metrics) *WhatsAppJob {
	return &WhatsAppJob{Sender: sender, Logger: logger, Metrics: metrics}
}

// Handle processes TaskNotifyWhatsApp tasks. Undecodable or unaddressed
// messages are dropped without retry.
func (j *WhatsAppJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Sender == nil {
		return errors.New("whatsapp: handler not configured")
	}
	var msg notify.Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("decode message: %v: %w", err, asynq.SkipRetry)
	}
	if msg.Phone == "" || msg.Text == "" {
		return fmt.Errorf("empty message: %w", asynq.SkipRetry)
	}

	tracker := metricsOrDefault(j.Metrics).Track(TaskNotifyWhatsApp)
	defer func() { err = tracker.End(err) }()

	logger := jobLogger(j.Logger, TaskNotifyWhatsApp).With(slog.String("kind", string(msg.Kind)))
	if err := j.Sender.Send(ctx, msg); err != nil {
		logger.Warn("send whatsapp", slog.Any("error", err))
		return err
	}
	logger.Info("whatsapp delivered")
	return nil
}

func jobLogger(logger *slog.Logger, job string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("job", job))
}

func metricsOrDefault(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}
