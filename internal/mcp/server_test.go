package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/confsched/internal/cfgtemplate"
	"github.com/rpggio/confsched/internal/domain/activity"
	"github.com/rpggio/confsched/internal/domain/task"
)

type taskStub struct {
	listFn      func(context.Context) ([]task.TaskView, error)
	getFn       func(context.Context, string) (*task.TaskView, error)
	addFn       func(context.Context, task.WindowRequest) (*task.Task, error)
	forceAddFn  func(context.Context, task.WindowRequest) (*task.Task, error)
	editFn      func(context.Context, task.WindowRequest) (bool, error)
	deleteFn    func(context.Context, string) (*task.DeleteResult, error)
	toggleFn    func(context.Context, string) (task.Status, error)
	reconcileFn func(context.Context) (*task.ReconcileResult, error)
}

func (s taskStub) List(ctx context.Context) ([]task.TaskView, error) { return s.listFn(ctx) }
func (s taskStub) Get(ctx context.Context, filename string) (*task.TaskView, error) {
	return s.getFn(ctx, filename)
}
func (s taskStub) Add(ctx context.Context, req task.WindowRequest) (*task.Task, error) {
	return s.addFn(ctx, req)
}
func (s taskStub) ForceAdd(ctx context.Context, req task.WindowRequest) (*task.Task, error) {
	return s.forceAddFn(ctx, req)
}
func (s taskStub) EditWindow(ctx context.Context, req task.WindowRequest) (bool, error) {
	return s.editFn(ctx, req)
}
func (s taskStub) Delete(ctx context.Context, filename string) (*task.DeleteResult, error) {
	return s.deleteFn(ctx, filename)
}
func (s taskStub) Toggle(ctx context.Context, filename string) (task.Status, error) {
	return s.toggleFn(ctx, filename)
}
func (s taskStub) Reconcile(ctx context.Context) (*task.ReconcileResult, error) {
	return s.reconcileFn(ctx)
}

type activityStub struct {
	listFn func(context.Context, activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

func (s activityStub) GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	return s.listFn(ctx, opts)
}

type templateStub struct {
	generateFn func(context.Context, cfgtemplate.Request) (string, error)
}

func (s templateStub) Generate(ctx context.Context, req cfgtemplate.Request) (string, error) {
	return s.generateFn(ctx, req)
}

func connect(t *testing.T, svc Services) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := NewServer(Config{Services: svc, Version: "test"})
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})
	return cs
}

func callTool(t *testing.T, cs *sdkmcp.ClientSession, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	res, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return res
}

func resultText(t *testing.T, res *sdkmcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func decode(t *testing.T, res *sdkmcp.CallToolResult, out any) {
	t.Helper()
	require.False(t, res.IsError, resultText(t, res))
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), out))
}

func TestTools_Listed(t *testing.T) {
	cs := connect(t, Services{Tasks: taskStub{}, Activity: activityStub{}, Templates: templateStub{}})

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		"list_tasks", "get_task", "add_task", "force_add_task", "delete_task",
		"edit_task", "toggle_task", "reconcile", "list_activity", "create_template",
	} {
		require.True(t, names[want], "missing tool %s", want)
	}
}

func TestListTasks(t *testing.T) {
	cs := connect(t, Services{Tasks: taskStub{
		listFn: func(context.Context) ([]task.TaskView, error) {
			return []task.TaskView{{Filename: "a.yml", Start: "2025-01-01", End: "2025-01-07", Status: task.StatusEnabled}}, nil
		},
	}})

	var out listTasksOutput
	decode(t, callTool(t, cs, "list_tasks", nil), &out)
	require.Len(t, out.Tasks, 1)
	require.Equal(t, task.StatusEnabled, out.Tasks[0].Status)
}

func TestAddTask_AttributesClient(t *testing.T) {
	var gotUser string
	var gotReq task.WindowRequest
	cs := connect(t, Services{Tasks: taskStub{
		addFn: func(ctx context.Context, req task.WindowRequest) (*task.Task, error) {
			gotUser = activity.UserFromContext(ctx)
			gotReq = req
			start, _ := task.ParseDate(req.Start)
			end, _ := task.ParseDate(req.End)
			return &task.Task{Filename: req.Filename, Start: start, End: end}, nil
		},
		getFn: func(_ context.Context, filename string) (*task.TaskView, error) {
			return &task.TaskView{Filename: filename, Start: "2025-01-01", End: "2025-01-07", Status: task.StatusDisabled}, nil
		},
	}})

	var out taskOutput
	decode(t, callTool(t, cs, "add_task", map[string]any{
		"filename": "a.yml", "start": "2025-01-01", "end": "2025-01-07",
	}), &out)

	require.Equal(t, "test-client", gotUser)
	require.Equal(t, "a.yml", gotReq.Filename)
	require.Equal(t, task.StatusDisabled, out.Task.Status)
}

func TestAddTask_MapsErrors(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("%w: a.yml", task.ErrDuplicate), "DUPLICATE"},
		{fmt.Errorf("%w: global.yml", task.ErrProtected), "PROTECTED"},
		{fmt.Errorf("%w: bad", task.ErrInvalidWindow), "INVALID_INPUT"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			cs := connect(t, Services{Tasks: taskStub{
				addFn: func(context.Context, task.WindowRequest) (*task.Task, error) { return nil, tc.err },
			}})
			res := callTool(t, cs, "add_task", map[string]any{
				"filename": "a.yml", "start": "2025-01-01", "end": "2025-01-07",
			})
			require.True(t, res.IsError)
			require.Contains(t, resultText(t, res), tc.code)
		})
	}
}

func TestToggleAndDelete(t *testing.T) {
	cs := connect(t, Services{Tasks: taskStub{
		toggleFn: func(_ context.Context, filename string) (task.Status, error) {
			return task.StatusDisabled, nil
		},
		deleteFn: func(_ context.Context, filename string) (*task.DeleteResult, error) {
			return nil, fmt.Errorf("%w: %s", task.ErrTaskNotFound, filename)
		},
	}})

	var toggled toggleOutput
	decode(t, callTool(t, cs, "toggle_task", map[string]any{"filename": "a.yml"}), &toggled)
	require.Equal(t, task.StatusDisabled, toggled.Status)

	res := callTool(t, cs, "delete_task", map[string]any{"filename": "a.yml"})
	require.True(t, res.IsError)
	require.Contains(t, resultText(t, res), "NOT_FOUND")
}

func TestReconcileAndEdit(t *testing.T) {
	cs := connect(t, Services{Tasks: taskStub{
		reconcileFn: func(context.Context) (*task.ReconcileResult, error) {
			return &task.ReconcileResult{Added: []string{"b.yml"}}, nil
		},
		editFn: func(context.Context, task.WindowRequest) (bool, error) { return false, nil },
	}})

	var rec task.ReconcileResult
	decode(t, callTool(t, cs, "reconcile", nil), &rec)
	require.Equal(t, []string{"b.yml"}, rec.Added)
	require.Empty(t, rec.Removed)

	var edited editOutput
	decode(t, callTool(t, cs, "edit_task", map[string]any{
		"filename": "missing.yml", "start": "2025-01-01", "end": "2025-01-02",
	}), &edited)
	require.False(t, edited.Updated)
}

func TestListActivity(t *testing.T) {
	var gotOpts activity.ListActivityOptions
	cs := connect(t, Services{Activity: activityStub{
		listFn: func(_ context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
			gotOpts = opts
			return []activity.ActivityEntry{{
				ID: "1", Action: activity.ActionToggle, Filename: "a.yml", User: "alice",
				Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
			}}, nil
		},
	}})

	var out listActivityOutput
	decode(t, callTool(t, cs, "list_activity", map[string]any{"filename": "a.yml"}), &out)
	require.Len(t, out.Entries, 1)
	require.Equal(t, "2025-01-02T03:04:05Z", out.Entries[0].Timestamp)
	require.NotNil(t, gotOpts.Filename)
	require.Equal(t, "a.yml", *gotOpts.Filename)
	require.Equal(t, defaultActivityLimit, gotOpts.Limit)
}

func TestCreateTemplate(t *testing.T) {
	var got cfgtemplate.Request
	cs := connect(t, Services{Templates: templateStub{
		generateFn: func(_ context.Context, req cfgtemplate.Request) (string, error) {
			got = req
			return "/configs/DMR-alice.yml", nil
		},
	}})

	var out createTemplateOutput
	decode(t, callTool(t, cs, "create_template", map[string]any{
		"task_name": "alice", "url": "https://live.example/1", "repost": true,
	}), &out)
	require.Equal(t, "DMR-alice.yml", out.Filename)
	require.True(t, got.Repost)
}

func TestDocResources(t *testing.T) {
	cs := connect(t, Services{})

	res, err := cs.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: "confsched://docs/errors"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "DUPLICATE")
}

func TestMapError_Unknown(t *testing.T) {
	require.Nil(t, MapError(nil))
	require.Nil(t, MapError(fmt.Errorf("disk on fire")))
}
