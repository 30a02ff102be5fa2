package mcp

import (
	"context"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/confsched/internal/cfgtemplate"
	"github.com/rpggio/confsched/internal/domain/activity"
	"github.com/rpggio/confsched/internal/domain/task"
)

type listTasksInput struct{}

type listTasksOutput struct {
	Tasks []task.TaskView `json:"tasks"`
}

type filenameInput struct {
	Filename string `json:"filename" jsonschema:"config file name including the .yml extension"`
}

type windowInput struct {
	Filename string `json:"filename" jsonschema:"config file name including the .yml extension"`
	Start    string `json:"start" jsonschema:"first active day, YYYY-MM-DD"`
	End      string `json:"end" jsonschema:"last active day, YYYY-MM-DD"`
}

type taskOutput struct {
	Task task.TaskView `json:"task"`
}

type editOutput struct {
	Updated bool `json:"updated"`
}

type toggleOutput struct {
	Filename string      `json:"filename"`
	Status   task.Status `json:"status"`
}

type listActivityInput struct {
	Filename string `json:"filename,omitempty" jsonschema:"only entries for this config"`
	Action   string `json:"action,omitempty" jsonschema:"only entries of this action"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of entries"`
	Offset   int    `json:"offset,omitempty" jsonschema:"entries to skip"`
}

type activityView struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Filename  string `json:"filename"`
	User      string `json:"user"`
	Details   string `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
}

type listActivityOutput struct {
	Entries []activityView `json:"entries"`
}

type createTemplateInput struct {
	TaskName string `json:"task_name" jsonschema:"name used in DMR-<task_name>.yml and the output directory"`
	URL      string `json:"url" jsonschema:"live stream URL"`
	Tags     string `json:"tags,omitempty" jsonschema:"comma separated upload tags"`
	Repost   bool   `json:"repost,omitempty" jsonschema:"mark the upload as a repost"`
}

type createTemplateOutput struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

const defaultActivityLimit = 50

func registerTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_tasks",
		Description: "Reconcile and list every scheduled config with its window and status",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ listTasksInput) (*sdkmcp.CallToolResult, listTasksOutput, error) {
		tasks, err := svc.Tasks.List(ctx)
		if err != nil {
			return nil, listTasksOutput{}, mapError(err)
		}
		if tasks == nil {
			tasks = []task.TaskView{}
		}
		return nil, listTasksOutput{Tasks: tasks}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_task",
		Description: "Get one scheduled config with its current status",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in filenameInput) (*sdkmcp.CallToolResult, taskOutput, error) {
		view, err := svc.Tasks.Get(ctx, in.Filename)
		if err != nil {
			return nil, taskOutput{}, mapError(err)
		}
		return nil, taskOutput{Task: *view}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_task",
		Description: "Schedule a config for a date window. Fails with DUPLICATE if it is already scheduled",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in windowInput) (*sdkmcp.CallToolResult, taskOutput, error) {
		t, err := svc.Tasks.Add(ctx, windowRequest(in))
		if err != nil {
			return nil, taskOutput{}, mapError(err)
		}
		return nil, taskOutput{Task: currentView(ctx, svc.Tasks, t)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "force_add_task",
		Description: "Schedule a config, replacing any existing window. Files are not moved",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in windowInput) (*sdkmcp.CallToolResult, taskOutput, error) {
		t, err := svc.Tasks.ForceAdd(ctx, windowRequest(in))
		if err != nil {
			return nil, taskOutput{}, mapError(err)
		}
		return nil, taskOutput{Task: currentView(ctx, svc.Tasks, t)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "edit_task",
		Description: "Change the window of a scheduled config. updated is false when no record exists",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in windowInput) (*sdkmcp.CallToolResult, editOutput, error) {
		updated, err := svc.Tasks.EditWindow(ctx, windowRequest(in))
		if err != nil {
			return nil, editOutput{}, mapError(err)
		}
		return nil, editOutput{Updated: updated}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_task",
		Description: "Delete a config's record and its file from both directories",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in filenameInput) (*sdkmcp.CallToolResult, task.DeleteResult, error) {
		res, err := svc.Tasks.Delete(ctx, in.Filename)
		if err != nil {
			return nil, task.DeleteResult{}, mapError(err)
		}
		if res.FilesRemoved == nil {
			res.FilesRemoved = []string{}
		}
		return nil, *res, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "toggle_task",
		Description: "Move a config between the enabled and disabled directories",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in filenameInput) (*sdkmcp.CallToolResult, toggleOutput, error) {
		status, err := svc.Tasks.Toggle(ctx, in.Filename)
		if err != nil {
			return nil, toggleOutput{}, mapError(err)
		}
		return nil, toggleOutput{Filename: in.Filename, Status: status}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "reconcile",
		Description: "Drop records whose file is gone and add default windows for untracked enabled files",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ listTasksInput) (*sdkmcp.CallToolResult, task.ReconcileResult, error) {
		res, err := svc.Tasks.Reconcile(ctx)
		if err != nil {
			return nil, task.ReconcileResult{}, mapError(err)
		}
		if res.Removed == nil {
			res.Removed = []string{}
		}
		if res.Added == nil {
			res.Added = []string{}
		}
		return nil, *res, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_activity",
		Description: "List recent schedule changes, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in listActivityInput) (*sdkmcp.CallToolResult, listActivityOutput, error) {
		opts := activity.ListActivityOptions{Limit: in.Limit, Offset: in.Offset}
		if opts.Limit <= 0 {
			opts.Limit = defaultActivityLimit
		}
		if in.Filename != "" {
			opts.Filename = &in.Filename
		}
		if in.Action != "" {
			action := activity.Action(in.Action)
			opts.Action = &action
		}
		entries, err := svc.Activity.GetRecentActivity(ctx, opts)
		if err != nil {
			return nil, listActivityOutput{}, mapError(err)
		}
		out := listActivityOutput{Entries: make([]activityView, 0, len(entries))}
		for _, e := range entries {
			out.Entries = append(out.Entries, activityView{
				ID:        e.ID,
				Action:    string(e.Action),
				Filename:  e.Filename,
				User:      e.User,
				Details:   e.Details,
				Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			})
		}
		return nil, out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_template",
		Description: "Write a new recording config DMR-<task_name>.yml into the enabled directory",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in createTemplateInput) (*sdkmcp.CallToolResult, createTemplateOutput, error) {
		path, err := svc.Templates.Generate(ctx, cfgtemplate.Request{
			TaskName: in.TaskName,
			URL:      in.URL,
			Tags:     in.Tags,
			Repost:   in.Repost,
		})
		if err != nil {
			return nil, createTemplateOutput{}, mapError(err)
		}
		return nil, createTemplateOutput{Filename: cfgtemplate.FileName(in.TaskName), Path: path}, nil
	})
}

// currentView reads back the stored task so the status reflects the filesystem.
func currentView(ctx context.Context, tasks TaskService, t *task.Task) task.TaskView {
	if view, err := tasks.Get(ctx, t.Filename); err == nil {
		return *view
	}
	return t.View(task.StatusMissing)
}

func windowRequest(in windowInput) task.WindowRequest {
	return task.WindowRequest{Filename: in.Filename, Start: in.Start, End: in.End}
}
