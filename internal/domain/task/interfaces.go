package task

import (
	"context"
	"time"

	"github.com/rpggio/confsched/internal/domain/activity"
)

// Repository provides persistence for task records.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, filename string) (*Task, error)
	Replace(ctx context.Context, t *Task) error
	UpdateWindow(ctx context.Context, filename string, start, end time.Time) (bool, error)
	Delete(ctx context.Context, filename string) (bool, error)
	List(ctx context.Context) ([]Task, error)
	InsertMissing(ctx context.Context, tasks []Task) ([]string, error)
}

// FileStore is the filesystem side: two directories whose membership is the status.
type FileStore interface {
	Resolve(filename string) (Status, string)
	Enable(filename string) error
	Disable(filename string) error
	Remove(filename string) ([]string, error)
	ListEnabled() ([]string, error)
}

// ActivityRecorder writes audit entries.
type ActivityRecorder interface {
	Record(ctx context.Context, action activity.Action, filename, details string) error
}

// MetricsRecorder receives operation outcomes.
type MetricsRecorder interface {
	RecordOperation(operation, result string)
	RecordReconcile(removed, added int)
	SetStatusCounts(counts map[Status]int)
}
