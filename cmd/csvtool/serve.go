package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvtool/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve POST /api/profile, POST /api/transform and GET /api/runs until
interrupted. On SIGINT or SIGTERM the server stops accepting requests and
waits for running jobs before exiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return serve(cmd.Context(), a)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Interface to bind (overrides SERVER_HOST)")
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides SERVER_PORT)")

	return cmd
}

// serve runs the server until ctx is cancelled, then shuts down gracefully.
func serve(ctx context.Context, a *app) error {
	cfg := a.cfg
	server := web.NewServer(a.service, cfg)

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"max_concurrent_jobs", cfg.Server.MaxConcurrentJobs,
		"rate_limit_per_minute", cfg.Server.RateLimitPerMinute,
		"auth_required", cfg.Security.RequireAPIKey(),
		"history_in_database", cfg.Database.HistoryEnabled(),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if active := a.service.Limiter().ActiveCount(); active > 0 {
		slog.Info("waiting for jobs to complete", "active", active)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		return err
	}

	slog.Info("server stopped")
	return nil
}
