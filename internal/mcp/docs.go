package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `confsched schedules recording configs by moving YAML files between an enabled and a disabled directory.

Model:
- Task: a config filename (e.g. DMR-alice.yml) with a start and end date (YYYY-MM-DD, inclusive).
- Status: derived from the filesystem. enabled = file in the enabled dir, disabled = file in the disabled dir, missing = neither.
- global.yml is the recording tool's base config and is never touched.

Workflow:
1) list_tasks to see the schedule. It reconciles first, so new files appear with a 7 day window and vanished files are dropped.
2) add_task to schedule a config. If it reports DUPLICATE, confirm with the user and call force_add_task.
3) edit_task to change a window, toggle_task to flip enabled/disabled, delete_task to remove the record and both file copies.
4) create_template to write a new DMR-<name>.yml for a stream URL.
5) list_activity to review who changed what.
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "confsched://docs/usage",
		Name:        "usage",
		Title:       "Scheduling configs",
		Description: "How tasks, windows and directory status fit together",
		Content:     serverInstructions,
	},
	{
		URI:         "confsched://docs/errors",
		Name:        "errors",
		Title:       "Tool error codes",
		Description: "Error codes returned by tools and how to recover",
		Content: `# Tool error codes

- INVALID_INPUT: bad date format, start after end, or an unusable filename. Fix the arguments.
- PROTECTED: the target names global.yml. Do not retry.
- DUPLICATE: the config is already scheduled. Use force_add_task after confirming.
- NOT_FOUND: no record and no file exist for the name. Check list_tasks.
- FILE_MISSING: the record exists but the file is in neither directory. Run reconcile.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
