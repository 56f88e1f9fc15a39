package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/verdictio/caselaw-api/internal/adapters/mcp"
	"github.com/verdictio/caselaw-api/internal/bootstrap"
	"github.com/verdictio/caselaw-api/internal/config"
	"github.com/verdictio/caselaw-api/internal/observability/logging"
)

const serverVersion = "1.0.0"

func main() {
	cfg := config.Load()
	// MCP owns stdout; logs must go to stderr.
	logger := logging.NewJSONLoggerTo(os.Stderr, "mcp", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := mcpadapter.NewServer(serverVersion, app.SearchUC, app.ReaderUC)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ServeStdio()
	}()
	slog.Info("mcp_serving_stdio")

	select {
	case <-ctx.Done():
		slog.Info("mcp_shutting_down")
	case err := <-errCh:
		if err != nil {
			slog.Error("mcp_server_failed", "error", err)
			os.Exit(1)
		}
	}
}
