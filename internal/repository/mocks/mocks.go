package mocks

import (
	"context"
	"time"

	"github.com/rpggio/confsched/internal/domain/activity"
	"github.com/rpggio/confsched/internal/domain/task"
	"github.com/stretchr/testify/mock"
)

// TaskRepository is a mock for task.Repository.
type TaskRepository struct {
	mock.Mock
}

func (m *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TaskRepository) Get(ctx context.Context, filename string) (*task.Task, error) {
	args := m.Called(ctx, filename)
	if t, ok := args.Get(0).(*task.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) Replace(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TaskRepository) UpdateWindow(ctx context.Context, filename string, start, end time.Time) (bool, error) {
	args := m.Called(ctx, filename, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *TaskRepository) Delete(ctx context.Context, filename string) (bool, error) {
	args := m.Called(ctx, filename)
	return args.Bool(0), args.Error(1)
}

func (m *TaskRepository) List(ctx context.Context) ([]task.Task, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]task.Task); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) InsertMissing(ctx context.Context, tasks []task.Task) ([]string, error) {
	args := m.Called(ctx, tasks)
	if names, ok := args.Get(0).([]string); ok {
		return names, args.Error(1)
	}
	return nil, args.Error(1)
}

// FileStore is a mock for task.FileStore.
type FileStore struct {
	mock.Mock
}

func (m *FileStore) Resolve(filename string) (task.Status, string) {
	args := m.Called(filename)
	return args.Get(0).(task.Status), args.String(1)
}

func (m *FileStore) Enable(filename string) error {
	args := m.Called(filename)
	return args.Error(0)
}

func (m *FileStore) Disable(filename string) error {
	args := m.Called(filename)
	return args.Error(0)
}

func (m *FileStore) Remove(filename string) ([]string, error) {
	args := m.Called(filename)
	if paths, ok := args.Get(0).([]string); ok {
		return paths, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FileStore) ListEnabled() ([]string, error) {
	args := m.Called()
	if names, ok := args.Get(0).([]string); ok {
		return names, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRecorder is a mock for task.ActivityRecorder.
type ActivityRecorder struct {
	mock.Mock
}

func (m *ActivityRecorder) Record(ctx context.Context, action activity.Action, filename, details string) error {
	args := m.Called(ctx, action, filename, details)
	return args.Error(0)
}
