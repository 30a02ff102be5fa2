package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/rpggio/confsched/internal/domain/activity"
	"github.com/rpggio/confsched/internal/repository"
)

// DefaultWindow is the length of the window given to files found by the reconciler.
const DefaultWindow = 7 * 24 * time.Hour

// Service handles task business logic across the record store and the filesystem.
type Service struct {
	tasks      Repository
	files      FileStore
	activities ActivityRecorder
	metrics    MetricsRecorder
	logger     *slog.Logger
	now        func() time.Time
	window     time.Duration
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source used for "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDefaultWindow overrides the reconciler's default window length.
func WithDefaultWindow(d time.Duration) Option {
	return func(s *Service) { s.window = d }
}

// NewService creates a new task service. activities and logger may be nil.
func NewService(tasks Repository, files FileStore, activities ActivityRecorder, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		tasks:      tasks,
		files:      files,
		activities: activities,
		logger:     logger,
		now:        time.Now,
		window:     DefaultWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add creates a task. A duplicate filename yields ErrDuplicate so the caller can offer ForceAdd.
func (s *Service) Add(ctx context.Context, req WindowRequest) (*Task, error) {
	t, err := s.prepare(req)
	if err != nil {
		s.observe("add", err)
		return nil, err
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.logger.Warn("task already exists", "filename", t.Filename)
			err = fmt.Errorf("%w: %s", ErrDuplicate, t.Filename)
			s.observe("add", err)
			return nil, err
		}
		err = fmt.Errorf("creating task: %w", err)
		s.observe("add", err)
		return nil, err
	}

	s.logger.Info("task added", "filename", t.Filename, "start", req.Start, "end", req.End)
	s.audit(ctx, activity.ActionAdd, t.Filename, windowDetails(t))
	s.observe("add", nil)
	return t, nil
}

// ForceAdd replaces any existing task for the filename. The filesystem is not touched.
func (s *Service) ForceAdd(ctx context.Context, req WindowRequest) (*Task, error) {
	t, err := s.prepare(req)
	if err != nil {
		s.observe("force_add", err)
		return nil, err
	}

	if err := s.tasks.Replace(ctx, t); err != nil {
		err = fmt.Errorf("replacing task: %w", err)
		s.logger.Error("force add failed", "filename", t.Filename, "error", err)
		s.observe("force_add", err)
		return nil, err
	}

	s.logger.Info("task overwritten", "filename", t.Filename)
	s.audit(ctx, activity.ActionForceAdd, t.Filename, windowDetails(t))
	s.observe("force_add", nil)
	return t, nil
}

// EditWindow changes the window of an existing task. It reports false, without
// error, when no record exists for the filename.
func (s *Service) EditWindow(ctx context.Context, req WindowRequest) (bool, error) {
	t, err := s.prepare(req)
	if err != nil {
		s.observe("edit", err)
		return false, err
	}

	updated, err := s.tasks.UpdateWindow(ctx, t.Filename, t.Start, t.End)
	if err != nil {
		err = fmt.Errorf("updating task window: %w", err)
		s.logger.Error("edit failed", "filename", t.Filename, "error", err)
		s.observe("edit", err)
		return false, err
	}

	if updated {
		s.logger.Info("task edited", "filename", t.Filename)
		s.audit(ctx, activity.ActionEdit, t.Filename, windowDetails(t))
	} else {
		s.logger.Debug("edit matched no task", "filename", t.Filename)
	}
	s.observe("edit", nil)
	return updated, nil
}

// Delete removes the record and the file from both directories.
// If a file removal fails after the record is gone, the record is restored.
func (s *Service) Delete(ctx context.Context, filename string) (*DeleteResult, error) {
	if err := validateTarget(filename); err != nil {
		s.logger.Warn("delete rejected", "filename", filename, "error", err)
		s.observe("delete", err)
		return nil, err
	}

	previous, err := s.tasks.Get(ctx, filename)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		err = fmt.Errorf("loading task: %w", err)
		s.observe("delete", err)
		return nil, err
	}

	removed, err := s.tasks.Delete(ctx, filename)
	if err != nil {
		err = fmt.Errorf("deleting task: %w", err)
		s.logger.Error("delete failed", "filename", filename, "error", err)
		s.observe("delete", err)
		return nil, err
	}

	paths, err := s.files.Remove(filename)
	if err != nil {
		if removed && previous != nil {
			if rerr := s.tasks.Create(ctx, previous); rerr != nil {
				s.logger.Error("restoring task after failed file removal", "filename", filename, "error", rerr)
			}
		}
		err = fmt.Errorf("removing config file: %w", err)
		s.logger.Error("delete failed", "filename", filename, "error", err)
		s.observe("delete", err)
		return nil, err
	}

	result := &DeleteResult{RecordRemoved: removed, FilesRemoved: paths}
	if !removed && len(paths) == 0 {
		err := fmt.Errorf("%w: %s", ErrTaskNotFound, filename)
		s.observe("delete", err)
		return result, err
	}

	s.logger.Info("config deleted", "filename", filename, "record", removed, "files", len(paths))
	s.audit(ctx, activity.ActionDelete, filename, strings.Join(paths, ", "))
	s.observe("delete", nil)
	return result, nil
}

// Toggle moves the file to the other directory and returns its new status.
// The record, if any, is left untouched.
func (s *Service) Toggle(ctx context.Context, filename string) (Status, error) {
	if err := validateTarget(filename); err != nil {
		s.logger.Warn("toggle rejected", "filename", filename, "error", err)
		s.observe("toggle", err)
		return "", err
	}

	var next Status
	var err error
	switch status, _ := s.files.Resolve(filename); status {
	case StatusEnabled:
		next, err = StatusDisabled, s.files.Disable(filename)
	case StatusDisabled:
		next, err = StatusEnabled, s.files.Enable(filename)
	default:
		err = fmt.Errorf("%w: %s", ErrFileMissing, filename)
		s.logger.Warn("toggle failed", "filename", filename, "error", err)
		s.observe("toggle", err)
		return StatusMissing, err
	}
	if err != nil {
		err = fmt.Errorf("moving config file: %w", err)
		s.logger.Error("toggle failed", "filename", filename, "error", err)
		s.observe("toggle", err)
		return "", err
	}

	s.logger.Info("status toggled", "filename", filename, "status", next)
	s.audit(ctx, activity.ActionToggle, filename, string(next))
	s.observe("toggle", nil)
	return next, nil
}

// Get returns one task with its current status.
func (s *Service) Get(ctx context.Context, filename string) (*TaskView, error) {
	t, err := s.tasks.Get(ctx, filename)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, filename)
		}
		return nil, fmt.Errorf("loading task: %w", err)
	}
	status, _ := s.files.Resolve(filename)
	view := t.View(status)
	return &view, nil
}

// List reconciles and then returns every task ordered by start date, newest first.
func (s *Service) List(ctx context.Context) ([]TaskView, error) {
	if _, err := s.Reconcile(ctx); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	counts := map[Status]int{StatusEnabled: 0, StatusDisabled: 0, StatusMissing: 0}
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		status, _ := s.files.Resolve(t.Filename)
		counts[status]++
		views = append(views, t.View(status))
	}
	if s.metrics != nil {
		s.metrics.SetStatusCounts(counts)
	}
	return views, nil
}

// Reconcile drops records whose file exists in neither directory and creates
// default-window records for untracked enabled files. Existing windows are kept.
func (s *Service) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	result := &ReconcileResult{}

	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	for _, t := range tasks {
		if status, _ := s.files.Resolve(t.Filename); status != StatusMissing {
			continue
		}
		if _, err := s.tasks.Delete(ctx, t.Filename); err != nil {
			return nil, fmt.Errorf("removing orphan task %s: %w", t.Filename, err)
		}
		s.logger.Warn("removed orphan task", "filename", t.Filename)
		s.audit(ctx, activity.ActionReconcileRemove, t.Filename, "")
		result.Removed = append(result.Removed, t.Filename)
	}

	names, err := s.files.ListEnabled()
	if err != nil {
		return nil, fmt.Errorf("listing enabled configs: %w", err)
	}
	start := truncateDay(s.now())
	end := start.Add(s.window)
	candidates := make([]Task, 0, len(names))
	for _, name := range names {
		if strings.EqualFold(name, GlobalConfigName) {
			continue
		}
		candidates = append(candidates, Task{Filename: name, Start: start, End: end})
	}
	if len(candidates) > 0 {
		added, err := s.tasks.InsertMissing(ctx, candidates)
		if err != nil {
			return nil, fmt.Errorf("inserting default tasks: %w", err)
		}
		for _, name := range added {
			s.logger.Info("tracked new config", "filename", name)
			s.audit(ctx, activity.ActionReconcileAdd, name, windowDetails(&Task{Start: start, End: end}))
		}
		result.Added = added
	}

	if s.metrics != nil {
		s.metrics.RecordReconcile(len(result.Removed), len(result.Added))
	}
	return result, nil
}

// AvailableConfigs returns the base names of enabled configs, excluding the global config.
func (s *Service) AvailableConfigs() ([]string, error) {
	names, err := s.files.ListEnabled()
	if err != nil {
		return nil, fmt.Errorf("listing enabled configs: %w", err)
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if strings.EqualFold(name, GlobalConfigName) {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ConfigExt))
	}
	sort.Strings(out)
	return out, nil
}

// ApplyWindows enables disabled files whose window contains today and disables
// enabled files whose window does not. Missing files are skipped.
func (s *Service) ApplyWindows(ctx context.Context) (*ApplyResult, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	today := s.now()
	result := &ApplyResult{}
	var errs []error
	for _, t := range tasks {
		if IsProtected(t.Filename) {
			continue
		}
		status, _ := s.files.Resolve(t.Filename)
		inside := t.Contains(today)
		switch {
		case status == StatusDisabled && inside:
			if err := s.files.Enable(t.Filename); err != nil {
				errs = append(errs, fmt.Errorf("enabling %s: %w", t.Filename, err))
				continue
			}
			result.Enabled = append(result.Enabled, t.Filename)
			s.audit(ctx, activity.ActionApplyWindow, t.Filename, string(StatusEnabled))
		case status == StatusEnabled && !inside:
			if err := s.files.Disable(t.Filename); err != nil {
				errs = append(errs, fmt.Errorf("disabling %s: %w", t.Filename, err))
				continue
			}
			result.Disabled = append(result.Disabled, t.Filename)
			s.audit(ctx, activity.ActionApplyWindow, t.Filename, string(StatusDisabled))
		}
	}

	if n := len(result.Enabled) + len(result.Disabled); n > 0 {
		s.logger.Info("applied schedule windows", "enabled", len(result.Enabled), "disabled", len(result.Disabled))
	}
	return result, errors.Join(errs...)
}

func (s *Service) prepare(req WindowRequest) (*Task, error) {
	if err := validateTarget(req.Filename); err != nil {
		s.logger.Warn("task rejected", "filename", req.Filename, "error", err)
		return nil, err
	}
	start, end, err := ParseWindow(req.Start, req.End)
	if err != nil {
		s.logger.Warn("task rejected", "filename", req.Filename, "error", err)
		return nil, err
	}
	return &Task{Filename: req.Filename, Start: start, End: end}, nil
}

func (s *Service) audit(ctx context.Context, action activity.Action, filename, details string) {
	if s.activities == nil {
		return
	}
	if err := s.activities.Record(ctx, action, filename, details); err != nil {
		s.logger.Warn("failed to record activity", "action", action, "filename", filename, "error", err)
	}
}

func (s *Service) observe(operation string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordOperation(operation, ResultLabel(err))
}

// ResultLabel classifies an operation error for metrics and transport mapping.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrProtected):
		return "protected"
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidWindow), errors.Is(err, ErrInvalidFilename):
		return "invalid"
	case errors.Is(err, ErrDuplicate):
		return "conflict"
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, ErrFileMissing):
		return "not_found"
	default:
		return "error"
	}
}

func windowDetails(t *Task) string {
	return t.Start.Format(DateLayout) + ".." + t.End.Format(DateLayout)
}
