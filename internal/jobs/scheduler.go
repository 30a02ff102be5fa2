// Package jobs runs the console's periodic maintenance on cron schedules.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Func is the body of a scheduled job.
type Func func(ctx context.Context) error

// Recorder observes job outcomes.
type Recorder interface {
	RecordJob(job string, err error)
}

// ErrUnknownJob is returned by Run for a name that was never added.
var ErrUnknownJob = errors.New("unknown job")

// Scheduler wraps a cron instance with named jobs and outcome logging.
type Scheduler struct {
	cron    *cron.Cron
	parser  cron.Parser
	logger  *slog.Logger
	metrics Recorder

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	jobs    map[string]Func
	entries map[string]cron.Schedule
}

// New creates a stopped scheduler. metrics may be nil.
func New(logger *slog.Logger, metrics Recorder) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		parser:  parser,
		logger:  logger,
		metrics: metrics,
		ctx:     context.Background(),
		jobs:    make(map[string]Func),
		entries: make(map[string]cron.Schedule),
	}
}

// Add registers fn under name. An empty spec leaves the job disabled but still
// runnable through Run.
func (s *Scheduler) Add(name, spec string, fn Func) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %q already registered", name)
	}
	s.jobs[name] = fn

	if spec == "" {
		s.logger.Info("job disabled", "job", name)
		return nil
	}

	sched, err := s.parser.Parse(spec)
	if err != nil {
		delete(s.jobs, name)
		return fmt.Errorf("invalid schedule for job %q: %w", name, err)
	}
	s.cron.Schedule(sched, cron.FuncJob(func() { _ = s.execute(name) }))
	s.entries[name] = sched
	s.logger.Info("job scheduled", "job", name, "schedule", spec)
	return nil
}

// Run executes the named job immediately and returns its error.
func (s *Scheduler) Run(name string) error {
	s.mu.Lock()
	_, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.execute(name)
}

// Names lists registered jobs.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Next returns the next scheduled run of name, or the zero time if it has no schedule.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	sched, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return sched.Next(time.Now())
}

// Start begins firing scheduled jobs. Jobs receive a context derived from ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("scheduler already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	s.cron.Start()
	s.logger.Info("job scheduler started", "jobs", len(s.entries))
	return nil
}

// Stop halts scheduling and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	done := s.cron.Stop()
	cancel()
	<-done.Done()
	s.logger.Info("job scheduler stopped")
}

func (s *Scheduler) execute(name string) error {
	s.mu.Lock()
	fn := s.jobs[name]
	ctx := s.ctx
	s.mu.Unlock()

	start := time.Now()
	err := fn(ctx)
	if s.metrics != nil {
		s.metrics.RecordJob(name, err)
	}
	if err != nil {
		s.logger.Error("job failed", "job", name, "duration", time.Since(start), "error", err)
		return err
	}
	s.logger.Debug("job completed", "job", name, "duration", time.Since(start))
	return nil
}
