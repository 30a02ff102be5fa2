package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/rpggio/confsched/internal/config"
	"github.com/rpggio/confsched/internal/domain/activity"
	"github.com/rpggio/confsched/internal/domain/task"
)

// Job names.
const (
	Reconcile      = "reconcile"
	Backup         = "backup"
	EnforceWindows = "enforce_windows"
)

// User is the operator recorded on audit entries written by scheduled jobs.
const User = "scheduler"

// TaskRunner is the subset of the task service used by jobs.
type TaskRunner interface {
	Reconcile(ctx context.Context) (*task.ReconcileResult, error)
	ApplyWindows(ctx context.Context) (*task.ApplyResult, error)
}

// Snapshotter takes a database backup.
type Snapshotter interface {
	Snapshot(ctx context.Context) (string, error)
}

// BackupObserver is told when a backup completes.
type BackupObserver interface {
	SetLastBackup(unixSeconds float64)
}

// Deps are the services the standard jobs drive.
type Deps struct {
	Tasks    TaskRunner
	Backups  Snapshotter
	Observer BackupObserver
	Logger   *slog.Logger
}

// Register adds the reconcile, backup and enforce_windows jobs using the
// schedules in cfg.
func Register(s *Scheduler, cfg config.JobsConfig, deps Deps) error {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := s.Add(Reconcile, cfg.Reconcile, func(ctx context.Context) error {
		res, err := deps.Tasks.Reconcile(activity.WithUser(ctx, User))
		if err != nil {
			return err
		}
		if len(res.Removed) > 0 || len(res.Added) > 0 {
			logger.Info("scheduled reconcile changed tasks", "removed", len(res.Removed), "added", len(res.Added))
		}
		return nil
	}); err != nil {
		return err
	}

	if err := s.Add(Backup, cfg.Backup, func(ctx context.Context) error {
		path, err := deps.Backups.Snapshot(ctx)
		if err != nil {
			return err
		}
		if deps.Observer != nil {
			deps.Observer.SetLastBackup(float64(time.Now().Unix()))
		}
		logger.Info("database backup written", "path", path)
		return nil
	}); err != nil {
		return err
	}

	return s.Add(EnforceWindows, cfg.EnforceWindows, func(ctx context.Context) error {
		res, err := deps.Tasks.ApplyWindows(activity.WithUser(ctx, User))
		if res != nil && (len(res.Enabled) > 0 || len(res.Disabled) > 0) {
			logger.Info("windows applied", "enabled", res.Enabled, "disabled", res.Disabled)
		}
		return err
	})
}
