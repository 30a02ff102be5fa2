// Package testserver assembles the full console over temporary storage for tests.
package testserver

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/confsched/internal/cfgtemplate"
	"github.com/rpggio/confsched/internal/domain/activity"
	"github.com/rpggio/confsched/internal/domain/task"
	"github.com/rpggio/confsched/internal/fsstate"
	"github.com/rpggio/confsched/internal/mcp"
	"github.com/rpggio/confsched/internal/metrics"
	"github.com/rpggio/confsched/internal/sqlite"
	"github.com/rpggio/confsched/internal/transport"
)

// Today is the fixed clock every test server runs on.
var Today = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type TestServer struct {
	Server    *httptest.Server
	DB        *sqlite.DB
	Files     *fsstate.Store
	Tasks     *task.Service
	Activity  *activity.Service
	Templates *cfgtemplate.Generator
	Metrics   *metrics.PrometheusMetrics
}

func New(t *testing.T) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	root := t.TempDir()
	files := fsstate.New(filepath.Join(root, "configs"), filepath.Join(root, "disabled_configs"))
	require.NoError(t, files.EnsureDirs())

	m := metrics.New("confsched")
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	taskSvc := task.NewService(sqlite.NewTaskRepository(db), files, activitySvc, nil,
		task.WithClock(func() time.Time { return Today }),
		task.WithMetrics(m),
	)
	templates := cfgtemplate.NewGenerator(files.EnabledDir(), activitySvc, nil)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{Tasks: taskSvc, Activity: activitySvc, Templates: templates},
		Version:  "test",
	})

	server := httptest.NewServer(transport.NewServer(transport.Config{
		Tasks:     taskSvc,
		Templates: templates,
		Activity:  activitySvc,
		Metrics:   m.Handler(),
		MCP:       mcp.NewHTTPHandler(mcpServer),
	}))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:    server,
		DB:        db,
		Files:     files,
		Tasks:     taskSvc,
		Activity:  activitySvc,
		Templates: templates,
		Metrics:   m,
	}
}

// Client returns an HTTP client that reports redirects instead of following them.
func (ts *TestServer) Client() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// WriteEnabled creates a config file in the enabled directory.
func (ts *TestServer) WriteEnabled(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(ts.Files.EnabledDir(), name), []byte("download_args: {}\n"), 0o644))
}

// WriteDisabled creates a config file in the disabled directory.
func (ts *TestServer) WriteDisabled(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(ts.Files.DisabledDir(), name), []byte("download_args: {}\n"), 0o644))
}
