package task_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpggio/confsched/internal/domain/activity"
	"github.com/rpggio/confsched/internal/domain/task"
	"github.com/rpggio/confsched/internal/fsstate"
	"github.com/rpggio/confsched/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *task.Service
	files    *fsstate.Store
	tasks    *sqlite.TaskRepository
	activity *sqlite.ActivityRepository
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	root := t.TempDir()
	files := fsstate.New(filepath.Join(root, "configs"), filepath.Join(root, "disabled_configs"))
	require.NoError(t, files.EnsureDirs())

	tasks := sqlite.NewTaskRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)
	svc := task.NewService(tasks, files, activity.NewService(activityRepo, nil), nil,
		task.WithClock(func() time.Time { return now }))

	return &fixture{svc: svc, files: files, tasks: tasks, activity: activityRepo}
}

func (f *fixture) write(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("download_args: {}\n"), 0o644))
}

func TestReconcile_TracksUntrackedEnabledFiles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	f.write(t, f.files.EnabledDir(), "alice.yml")
	f.write(t, f.files.EnabledDir(), "global.yml")

	result, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"alice.yml"}, result.Added)

	got, err := f.tasks.Get(ctx, "alice.yml")
	require.NoError(t, err)
	require.Equal(t, "2025-06-01", got.Start.Format(task.DateLayout))
	require.Equal(t, "2025-06-08", got.End.Format(task.DateLayout))

	_, err = f.tasks.Get(ctx, "global.yml")
	require.Error(t, err)
}

func TestReconcile_UsesUTCCalendarDay(t *testing.T) {
	ctx := context.Background()
	kiritimati := time.FixedZone("UTC+14", 14*60*60)
	f := newFixture(t, time.Date(2025, 6, 10, 1, 0, 0, 0, kiritimati))
	f.write(t, f.files.EnabledDir(), "alice.yml")

	_, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)

	got, err := f.tasks.Get(ctx, "alice.yml")
	require.NoError(t, err)
	require.Equal(t, "2025-06-09", got.Start.Format(task.DateLayout))
	require.Equal(t, "2025-06-16", got.End.Format(task.DateLayout))
}

func TestReconcile_KeepsExistingWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	f.write(t, f.files.EnabledDir(), "alice.yml")

	_, err := f.svc.Add(ctx, task.WindowRequest{Filename: "alice.yml", Start: "2025-01-01", End: "2025-12-31"})
	require.NoError(t, err)

	result, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Empty(t, result.Added)

	got, err := f.tasks.Get(ctx, "alice.yml")
	require.NoError(t, err)
	require.Equal(t, "2025-12-31", got.End.Format(task.DateLayout))
}

func TestReconcile_DropsOrphans(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Now())

	_, err := f.svc.Add(ctx, task.WindowRequest{Filename: "ghost.yml", Start: "2025-06-01", End: "2025-06-10"})
	require.NoError(t, err)

	result, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"ghost.yml"}, result.Removed)

	views, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, views)

	action := activity.ActionReconcileRemove
	entries, err := f.activity.List(ctx, activity.ListActivityOptions{Action: &action})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestToggle_TwiceRestoresOriginalState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Now())
	f.write(t, f.files.EnabledDir(), "alice.yml")
	_, err := f.svc.Add(ctx, task.WindowRequest{Filename: "alice.yml", Start: "2025-06-01", End: "2025-06-10"})
	require.NoError(t, err)

	status, err := f.svc.Toggle(ctx, "alice.yml")
	require.NoError(t, err)
	require.Equal(t, task.StatusDisabled, status)
	require.FileExists(t, filepath.Join(f.files.DisabledDir(), "alice.yml"))

	status, err = f.svc.Toggle(ctx, "alice.yml")
	require.NoError(t, err)
	require.Equal(t, task.StatusEnabled, status)
	require.FileExists(t, filepath.Join(f.files.EnabledDir(), "alice.yml"))
	require.NoFileExists(t, filepath.Join(f.files.DisabledDir(), "alice.yml"))

	got, err := f.tasks.Get(ctx, "alice.yml")
	require.NoError(t, err)
	require.Equal(t, "2025-06-01", got.Start.Format(task.DateLayout))
	require.Equal(t, "2025-06-10", got.End.Format(task.DateLayout))
}

func TestAdd_InvertedWindowCreatesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Now())

	_, err := f.svc.Add(ctx, task.WindowRequest{Filename: "alice.yml", Start: "2025-06-10", End: "2025-06-01"})
	require.ErrorIs(t, err, task.ErrInvalidWindow)

	list, err := f.tasks.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAdd_DuplicateThenForceAdd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Now())
	f.write(t, f.files.DisabledDir(), "alice.yml")

	_, err := f.svc.Add(ctx, task.WindowRequest{Filename: "alice.yml", Start: "2025-06-01", End: "2025-06-10"})
	require.NoError(t, err)

	_, err = f.svc.Add(ctx, task.WindowRequest{Filename: "alice.yml", Start: "2025-07-01", End: "2025-07-10"})
	require.ErrorIs(t, err, task.ErrDuplicate)

	_, err = f.svc.ForceAdd(ctx, task.WindowRequest{Filename: "alice.yml", Start: "2025-07-01", End: "2025-07-10"})
	require.NoError(t, err)

	got, err := f.tasks.Get(ctx, "alice.yml")
	require.NoError(t, err)
	require.Equal(t, "2025-07-01", got.Start.Format(task.DateLayout))

	status, _ := f.files.Resolve("alice.yml")
	require.Equal(t, task.StatusDisabled, status)
}

func TestDelete_GlobalConfigRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Now())
	f.write(t, f.files.EnabledDir(), "Global.YML")
	_, err := f.tasks.InsertMissing(ctx, []task.Task{{Filename: "Global.YML", Start: time.Now(), End: time.Now()}})
	require.NoError(t, err)

	_, err = f.svc.Delete(ctx, "Global.YML")
	require.ErrorIs(t, err, task.ErrProtected)

	require.FileExists(t, filepath.Join(f.files.EnabledDir(), "Global.YML"))
	_, err = f.tasks.Get(ctx, "Global.YML")
	require.NoError(t, err)
}

func TestDelete_RemovesEverythingAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Now())
	f.write(t, f.files.EnabledDir(), "alice.yml")
	f.write(t, f.files.DisabledDir(), "alice.yml")
	_, err := f.svc.Add(ctx, task.WindowRequest{Filename: "alice.yml", Start: "2025-06-01", End: "2025-06-10"})
	require.NoError(t, err)

	result, err := f.svc.Delete(ctx, "alice.yml")
	require.NoError(t, err)
	require.True(t, result.RecordRemoved)
	require.Len(t, result.FilesRemoved, 2)

	status, _ := f.files.Resolve("alice.yml")
	require.Equal(t, task.StatusMissing, status)

	result, err = f.svc.Delete(ctx, "alice.yml")
	require.ErrorIs(t, err, task.ErrTaskNotFound)
	require.False(t, result.RecordRemoved)
	require.Empty(t, result.FilesRemoved)
}

func TestList_ReportsStatusAndOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	f.write(t, f.files.EnabledDir(), "alice.yml")
	f.write(t, f.files.DisabledDir(), "bob.yml")

	_, err := f.svc.Add(ctx, task.WindowRequest{Filename: "bob.yml", Start: "2025-09-01", End: "2025-09-30"})
	require.NoError(t, err)

	views, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, task.TaskView{Filename: "bob.yml", Start: "2025-09-01", End: "2025-09-30", Status: task.StatusDisabled}, views[0])
	require.Equal(t, task.TaskView{Filename: "alice.yml", Start: "2025-06-01", End: "2025-06-08", Status: task.StatusEnabled}, views[1])
}

func TestAvailableConfigs(t *testing.T) {
	f := newFixture(t, time.Now())
	f.write(t, f.files.EnabledDir(), "bob.yml")
	f.write(t, f.files.EnabledDir(), "alice.yml")
	f.write(t, f.files.EnabledDir(), "global.yml")
	f.write(t, f.files.DisabledDir(), "carol.yml")

	names, err := f.svc.AvailableConfigs()
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, names)
}

func TestApplyWindows(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC))
	f.write(t, f.files.DisabledDir(), "due.yml")
	f.write(t, f.files.EnabledDir(), "expired.yml")
	f.write(t, f.files.EnabledDir(), "current.yml")

	for _, req := range []task.WindowRequest{
		{Filename: "due.yml", Start: "2025-06-01", End: "2025-06-05"},
		{Filename: "expired.yml", Start: "2025-05-01", End: "2025-06-04"},
		{Filename: "current.yml", Start: "2025-06-05", End: "2025-06-30"},
		{Filename: "ghost.yml", Start: "2025-06-01", End: "2025-06-30"},
	} {
		_, err := f.svc.Add(ctx, req)
		require.NoError(t, err)
	}

	result, err := f.svc.ApplyWindows(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"due.yml"}, result.Enabled)
	require.Equal(t, []string{"expired.yml"}, result.Disabled)

	status, _ := f.files.Resolve("current.yml")
	require.Equal(t, task.StatusEnabled, status)
}
