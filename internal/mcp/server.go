package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/confsched/internal/cfgtemplate"
	"github.com/rpggio/confsched/internal/domain/activity"
	"github.com/rpggio/confsched/internal/domain/task"
)

// TaskService defines task operations exposed as tools.
type TaskService interface {
	List(ctx context.Context) ([]task.TaskView, error)
	Get(ctx context.Context, filename string) (*task.TaskView, error)
	Add(ctx context.Context, req task.WindowRequest) (*task.Task, error)
	ForceAdd(ctx context.Context, req task.WindowRequest) (*task.Task, error)
	EditWindow(ctx context.Context, req task.WindowRequest) (bool, error)
	Delete(ctx context.Context, filename string) (*task.DeleteResult, error)
	Toggle(ctx context.Context, filename string) (task.Status, error)
	Reconcile(ctx context.Context) (*task.ReconcileResult, error)
}

// ActivityService defines audit trail reads.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// TemplateGenerator renders new recording configs.
type TemplateGenerator interface {
	Generate(ctx context.Context, req cfgtemplate.Request) (string, error)
}

// Services contains the domain services tools call into.
type Services struct {
	Tasks     TaskService
	Activity  ActivityService
	Templates TemplateGenerator
}

// Config contains server configuration.
type Config struct {
	Services Services
	Version  string
	Logger   *slog.Logger
}

// DefaultUser is recorded for sessions that do not identify themselves.
const DefaultUser = "mcp"

// NewServer creates an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "confsched",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(operatorMiddleware(DefaultUser))
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}

// NewHTTPHandler serves server over the streamable HTTP transport.
func NewHTTPHandler(server *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			SessionTimeout: 30 * time.Minute,
		},
	)
}
