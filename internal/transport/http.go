package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rpggio/confsched/internal/cfgtemplate"
	"github.com/rpggio/confsched/internal/domain/activity"
	"github.com/rpggio/confsched/internal/domain/task"
)

// TaskService is the task surface used by the console.
type TaskService interface {
	List(ctx context.Context) ([]task.TaskView, error)
	AvailableConfigs() ([]string, error)
	Add(ctx context.Context, req task.WindowRequest) (*task.Task, error)
	ForceAdd(ctx context.Context, req task.WindowRequest) (*task.Task, error)
	EditWindow(ctx context.Context, req task.WindowRequest) (bool, error)
	Delete(ctx context.Context, filename string) (*task.DeleteResult, error)
	Toggle(ctx context.Context, filename string) (task.Status, error)
}

// TemplateGenerator renders new recording configs.
type TemplateGenerator interface {
	Generate(ctx context.Context, req cfgtemplate.Request) (string, error)
}

// ActivityLister reads the audit trail.
type ActivityLister interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Config wires the console's dependencies. Activity, Metrics and MCP are optional.
type Config struct {
	Tasks     TaskService
	Templates TemplateGenerator
	Activity  ActivityLister
	Metrics   http.Handler
	MCP       http.Handler
	Logger    *slog.Logger
}

// Server holds the console handlers.
type Server struct {
	tasks     TaskService
	templates TemplateGenerator
	activity  ActivityLister
	logger    *slog.Logger
}

// NewServer creates the console router.
func NewServer(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{
		tasks:     cfg.Tasks,
		templates: cfg.Templates,
		activity:  cfg.Activity,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(OperatorMiddleware)

	r.Get("/", srv.handleIndex)
	r.Post("/add", srv.handleAdd)
	r.Get("/force_add/{filename}", srv.handleForceAdd)
	r.Get("/delete/{filename}", srv.handleDelete)
	r.Get("/toggle_task/{filename}", srv.handleToggle)
	r.Post("/edit/{filename}", srv.handleEdit)
	r.Post("/create_template", srv.handleCreateTemplate)
	r.Get("/health", srv.handleHealth)

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	if cfg.MCP != nil {
		r.Handle("/mcp", cfg.MCP)
		r.Handle("/mcp/*", cfg.MCP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}
