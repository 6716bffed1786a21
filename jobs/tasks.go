package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/laundrydesk/laundrydesk/internal/notify"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskNotifyWhatsApp delivers one composed WhatsApp message.
	TaskNotifyWhatsApp = "notify:whatsapp"
	// TaskBackupSnapshot writes a JSON backup snapshot to disk.
	TaskBackupSnapshot = "backup:snapshot"
	// TaskIdempotencyCleanup purges expired idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
	// TaskReportsWarmup pre-populates the dashboard report caches.
	TaskReportsWarmup = "reports:warmup"
)

// BackupPayload configures a backup run.
type BackupPayload struct {
	Retain int `json:"retain"`
}

// IdempotencyCleanupPayload configures key retention.
type IdempotencyCleanupPayload struct {
	MaxAge time.Duration `json:"max_age"`
}

// ReportsWarmupPayload configures which report windows to warm.
type ReportsWarmupPayload struct {
	RevenueDays int `json:"revenue_days"`
	TrendMonths int `json:"trend_months"`
}

// NewWhatsAppTask wraps a composed message for asynchronous delivery.
func NewWhatsAppTask(msg notify.Message) (*asynq.Task, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotifyWhatsApp, data, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// NewBackupTask constructs the scheduled backup task.
func NewBackupTask(retain int) (*asynq.Task, error) {
	data, err := json.Marshal(BackupPayload{Retain: retain})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBackupSnapshot, data, asynq.Queue(QueueDefault)), nil
}

// NewIdempotencyCleanupTask constructs the scheduled cleanup task.
func NewIdempotencyCleanupTask(maxAge time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{MaxAge: maxAge})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data, asynq.Queue(QueueDefault)), nil
}

// NewReportsWarmupTask constructs the scheduled cache warmup task.
func NewReportsWarmupTask(revenueDays, trendMonths int) (*asynq.Task, error) {
	data, err := json.Marshal(ReportsWarmupPayload{RevenueDays: revenueDays, TrendMonths: trendMonths})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data, asynq.Queue(QueueDefault)), nil
}
