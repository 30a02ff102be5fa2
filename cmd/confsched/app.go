package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/confsched/internal/backup"
	"github.com/rpggio/confsched/internal/cfgtemplate"
	"github.com/rpggio/confsched/internal/config"
	"github.com/rpggio/confsched/internal/domain/activity"
	"github.com/rpggio/confsched/internal/domain/task"
	"github.com/rpggio/confsched/internal/fsstate"
	"github.com/rpggio/confsched/internal/logging"
	"github.com/rpggio/confsched/internal/metrics"
	"github.com/rpggio/confsched/internal/sqlite"
)

// app holds the wired services shared by every command.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sqlite.DB
	files     *fsstate.Store
	activity  *activity.Service
	tasks     *task.Service
	templates *cfgtemplate.Generator
	backups   *backup.Manager
	metrics   *metrics.PrometheusMetrics

	logCloser io.Closer
}

type openOptions struct {
	// snapshot copies the store file aside before it is opened.
	snapshot bool
	logOut   io.Writer
}

func openApp(opts openOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	out := opts.logOut
	if out == nil {
		out = os.Stdout
	}
	logger, logCloser, err := logging.New(cfg.Log.Level, cfg.Log.Path, out)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, logCloser: logCloser}
	if err := a.init(opts); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(opts openOptions) error {
	if err := ensureDBDir(a.cfg.DB.Path); err != nil {
		return fmt.Errorf("prepare database path: %w", err)
	}

	if opts.snapshot {
		pre := backup.NewManager(a.cfg.DB.Path, a.cfg.DB.BackupCount, nil, a.logger)
		if _, err := pre.SnapshotFile(); err != nil {
			a.logger.Warn("startup backup failed", "error", err)
		}
	}

	db, err := sqlite.New(a.cfg.DB.Path)
	if err != nil {
		return err
	}
	a.db = db
	if err := db.RunMigrations(); err != nil {
		return err
	}

	a.files = fsstate.New(a.cfg.Dirs.Enabled, a.cfg.Dirs.Disabled)
	if err := a.files.EnsureDirs(); err != nil {
		return fmt.Errorf("prepare config directories: %w", err)
	}

	a.metrics = metrics.New("confsched")
	a.activity = activity.NewService(sqlite.NewActivityRepository(db), a.logger)
	a.tasks = task.NewService(sqlite.NewTaskRepository(db), a.files, a.activity, a.logger,
		task.WithMetrics(a.metrics),
	)
	a.templates = cfgtemplate.NewGenerator(a.files.EnabledDir(), a.activity, a.logger)
	a.backups = backup.NewManager(a.cfg.DB.Path, a.cfg.DB.BackupCount, db, a.logger)
	return nil
}

func (a *app) close() {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	if err := errors.Join(errs...); err != nil && a.logger != nil {
		a.logger.Warn("shutdown cleanup failed", "error", err)
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
