package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/laundrydesk/laundrydesk/internal/jobs"
)

const backupGlob = "laundry-backup-*.json"

// BackupWriter produces a backup file inside dir.
type BackupWriter interface {
	WriteBackupFile(ctx context.Context, dir string) (string, error)
}

// BackupJob writes the nightly JSON snapshot and prunes old ones.
type BackupJob struct {
	Writer  BackupWriter
	Dir     string
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewBackupJob wires dependencies for the backup handler.
func NewBackupJob(writer BackupWriter, dir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *BackupJob {
	return &BackupJob{Writer: writer, Dir: dir, Logger: logger, Metrics: metrics}
}

// Handle processes TaskBackupSnapshot tasks.
func (j *BackupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Writer == nil || j.Dir == "" {
		return errors.New("backup: handler not configured")
	}
	var payload BackupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	tracker := metricsOrDefault(j.Metrics).Track(TaskBackupSnapshot)
	defer func() { err = tracker.End(err) }()

	logger := jobLogger(j.Logger, TaskBackupSnapshot)
	path, err := j.Writer.WriteBackupFile(ctx, j.Dir)
	if err != nil {
		logger.Error("write backup", slog.Any("error", err))
		return err
	}
	removed, err := PruneBackups(j.Dir, payload.Retain)
	if err != nil {
		logger.Warn("prune backups", slog.Any("error", err))
	}
	logger.Info("backup written", slog.String("path", path), slog.Int("pruned", removed))
	return nil
}

// PruneBackups keeps the newest retain backup files in dir. Backup names are
// date-stamped so lexical order is chronological. retain <= 0 keeps all.
func PruneBackups(dir string, retain int) (int, error) {
	if retain <= 0 {
		return 0, nil
	}
	files, err := filepath.Glob(filepath.Join(dir, backupGlob))
	if err != nil {
		return 0, err
	}
	if len(files) <= retain {
		return 0, nil
	}
	sort.Strings(files)
	removed := 0
	for _, f := range files[:len(files)-retain] {
		if err := os.Remove(f); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
