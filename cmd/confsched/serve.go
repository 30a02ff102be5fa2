package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpggio/confsched/internal/jobs"
	"github.com/rpggio/confsched/internal/mcp"
	"github.com/rpggio/confsched/internal/transport"
)

const shutdownTimeout = 5 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web console, MCP endpoint and background jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := openApp(openOptions{snapshot: true, logOut: cmd.OutOrStdout()})
		if err != nil {
			return err
		}
		defer a.close()
		return serve(ctx, a)
	},
}

func serve(ctx context.Context, a *app) error {
	logger := a.logger

	if _, err := a.tasks.Reconcile(ctx); err != nil {
		logger.Warn("startup reconcile failed", "error", err)
	}

	scheduler := jobs.New(logger, a.metrics)
	if err := jobs.Register(scheduler, a.cfg.Jobs, jobs.Deps{
		Tasks:    a.tasks,
		Backups:  a.backups,
		Observer: a.metrics,
		Logger:   logger,
	}); err != nil {
		return err
	}
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{Tasks: a.tasks, Activity: a.activity, Templates: a.templates},
		Version:  Version,
		Logger:   logger,
	})

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	httpServer := &http.Server{
		Addr: addr,
		Handler: transport.NewServer(transport.Config{
			Tasks:     a.tasks,
			Templates: a.templates,
			Activity:  a.activity,
			Metrics:   a.metrics.Handler(),
			MCP:       mcp.NewHTTPHandler(mcpServer),
			Logger:    logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "enabled_dir", a.cfg.Dirs.Enabled, "disabled_dir", a.cfg.Dirs.Disabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
