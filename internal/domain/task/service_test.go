package task_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/confsched/internal/domain/activity"
	"github.com/rpggio/confsched/internal/domain/task"
	"github.com/rpggio/confsched/internal/repository"
	"github.com/rpggio/confsched/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTaskService_Add_Duplicate(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.TaskRepository{}
	files := &mocks.FileStore{}
	repo.On("Create", ctx, mock.Anything).Return(repository.ErrConflict)

	svc := task.NewService(repo, files, nil, nil)
	_, err := svc.Add(ctx, task.WindowRequest{Filename: "alice.yml", Start: "2025-06-01", End: "2025-06-10"})
	require.ErrorIs(t, err, task.ErrDuplicate)
}

func TestTaskService_Add_RejectsInvertedWindow(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.TaskRepository{}
	svc := task.NewService(repo, &mocks.FileStore{}, nil, nil)

	_, err := svc.Add(ctx, task.WindowRequest{Filename: "alice.yml", Start: "2025-06-10", End: "2025-06-01"})
	require.ErrorIs(t, err, task.ErrInvalidWindow)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTaskService_Add_RejectsBadDates(t *testing.T) {
	ctx := context.Background()
	svc := task.NewService(&mocks.TaskRepository{}, &mocks.FileStore{}, nil, nil)

	for _, req := range []task.WindowRequest{
		{Filename: "alice.yml", Start: "2025/06/01", End: "2025-06-10"},
		{Filename: "alice.yml", Start: "2025-06-01", End: ""},
		{Filename: "alice.yml", Start: "2025-6-1", End: "2025-06-10"},
	} {
		_, err := svc.Add(ctx, req)
		require.ErrorIs(t, err, task.ErrInvalidInput, "start=%q end=%q", req.Start, req.End)
	}
}

func TestTaskService_Add_RejectsUnsafeFilename(t *testing.T) {
	ctx := context.Background()
	svc := task.NewService(&mocks.TaskRepository{}, &mocks.FileStore{}, nil, nil)

	for _, name := range []string{"", "..", "../etc/passwd", `sub\alice.yml`} {
		_, err := svc.Add(ctx, task.WindowRequest{Filename: name, Start: "2025-06-01", End: "2025-06-10"})
		require.ErrorIs(t, err, task.ErrInvalidFilename, "filename %q", name)
	}
}

func TestTaskService_ProtectedNamesNeverReachStores(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.TaskRepository{}
	files := &mocks.FileStore{}
	svc := task.NewService(repo, files, nil, nil)

	req := task.WindowRequest{Filename: "Global.YML", Start: "2025-06-01", End: "2025-06-10"}
	_, err := svc.Add(ctx, req)
	require.ErrorIs(t, err, task.ErrProtected)
	_, err = svc.ForceAdd(ctx, req)
	require.ErrorIs(t, err, task.ErrProtected)
	_, err = svc.EditWindow(ctx, req)
	require.ErrorIs(t, err, task.ErrProtected)
	_, err = svc.Delete(ctx, "Global.YML")
	require.ErrorIs(t, err, task.ErrProtected)
	_, err = svc.Toggle(ctx, "old-global.yml")
	require.ErrorIs(t, err, task.ErrProtected)

	require.Empty(t, repo.Calls)
	require.Empty(t, files.Calls)
}

func TestTaskService_EditWindow_NoRecordIsNoop(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.TaskRepository{}
	repo.On("UpdateWindow", ctx, "ghost.yml", mock.Anything, mock.Anything).Return(false, nil)
	recorder := &mocks.ActivityRecorder{}

	svc := task.NewService(repo, &mocks.FileStore{}, recorder, nil)
	updated, err := svc.EditWindow(ctx, task.WindowRequest{Filename: "ghost.yml", Start: "2025-06-01", End: "2025-06-10"})
	require.NoError(t, err)
	require.False(t, updated)
	recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskService_EditWindow_ValidatesOrder(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TaskRepository{}
	svc := task.NewService(repo, &mocks.FileStore{}, nil, nil)

	_, err := svc.EditWindow(ctx, task.WindowRequest{Filename: "alice.yml", Start: "2025-06-10", End: "2025-06-01"})
	require.ErrorIs(t, err, task.ErrInvalidWindow)
	require.Empty(t, repo.Calls)
}

func TestTaskService_Delete_RestoresRecordWhenFileRemovalFails(t *testing.T) {
	ctx := context.Background()
	existing := &task.Task{Filename: "alice.yml"}

	repo := &mocks.TaskRepository{}
	files := &mocks.FileStore{}
	repo.On("Get", ctx, "alice.yml").Return(existing, nil)
	repo.On("Delete", ctx, "alice.yml").Return(true, nil)
	files.On("Remove", "alice.yml").Return([]string(nil), errors.New("permission denied"))
	repo.On("Create", ctx, existing).Return(nil)

	svc := task.NewService(repo, files, nil, nil)
	_, err := svc.Delete(ctx, "alice.yml")
	require.Error(t, err)
	require.Equal(t, "error", task.ResultLabel(err))
	repo.AssertCalled(t, "Create", ctx, existing)
}

func TestTaskService_Toggle_Missing(t *testing.T) {
	ctx := context.Background()

	files := &mocks.FileStore{}
	files.On("Resolve", "ghost.yml").Return(task.StatusMissing, "")

	svc := task.NewService(&mocks.TaskRepository{}, files, nil, nil)
	status, err := svc.Toggle(ctx, "ghost.yml")
	require.ErrorIs(t, err, task.ErrFileMissing)
	require.Equal(t, task.StatusMissing, status)
}

func TestTaskService_Toggle_MoveFailureIsInternal(t *testing.T) {
	ctx := context.Background()

	files := &mocks.FileStore{}
	files.On("Resolve", "alice.yml").Return(task.StatusEnabled, "configs")
	files.On("Disable", "alice.yml").Return(errors.New("destination already exists"))

	svc := task.NewService(&mocks.TaskRepository{}, files, nil, nil)
	_, err := svc.Toggle(ctx, "alice.yml")
	require.Error(t, err)
	require.Equal(t, "error", task.ResultLabel(err))
}

func TestTaskService_Reconcile_SkipsGlobalConfig(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 15, 30, 0, 0, time.Local)

	repo := &mocks.TaskRepository{}
	files := &mocks.FileStore{}
	repo.On("List", ctx).Return([]task.Task{}, nil)
	files.On("ListEnabled").Return([]string{"GLOBAL.yml", "alice.yml"}, nil)
	repo.On("InsertMissing", ctx, mock.MatchedBy(func(tasks []task.Task) bool {
		return len(tasks) == 1 &&
			tasks[0].Filename == "alice.yml" &&
			tasks[0].Start.Format(task.DateLayout) == "2025-06-01" &&
			tasks[0].End.Format(task.DateLayout) == "2025-06-08"
	})).Return([]string{"alice.yml"}, nil)

	svc := task.NewService(repo, files, nil, nil, task.WithClock(func() time.Time { return now }))
	result, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"alice.yml"}, result.Added)
	require.Empty(t, result.Removed)
}

func TestTaskService_Reconcile_RecordsCleanupActivity(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.TaskRepository{}
	files := &mocks.FileStore{}
	recorder := &mocks.ActivityRecorder{}
	repo.On("List", ctx).Return([]task.Task{{Filename: "gone.yml"}}, nil)
	files.On("Resolve", "gone.yml").Return(task.StatusMissing, "")
	repo.On("Delete", ctx, "gone.yml").Return(true, nil)
	files.On("ListEnabled").Return([]string{}, nil)
	recorder.On("Record", ctx, activity.ActionReconcileRemove, "gone.yml", "").Return(nil)

	svc := task.NewService(repo, files, recorder, nil)
	result, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"gone.yml"}, result.Removed)
	recorder.AssertExpectations(t)
}

func TestResultLabel(t *testing.T) {
	require.Equal(t, "ok", task.ResultLabel(nil))
	require.Equal(t, "protected", task.ResultLabel(task.ErrProtected))
	require.Equal(t, "invalid", task.ResultLabel(task.ErrInvalidWindow))
	require.Equal(t, "conflict", task.ResultLabel(task.ErrDuplicate))
	require.Equal(t, "not_found", task.ResultLabel(task.ErrFileMissing))
	require.Equal(t, "error", task.ResultLabel(errors.New("disk on fire")))
}
