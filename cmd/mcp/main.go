package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/joonhokim/examgen/internal/adapters/mcp"
	"github.com/joonhokim/examgen/internal/bootstrap"
	"github.com/joonhokim/examgen/internal/config"
	"github.com/joonhokim/examgen/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	// Stdout carries the MCP stream; logs go to stderr.
	slog.SetDefault(logging.NewStderrJSONLogger("mcp", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := mcpadapter.NewServer(mcpadapter.Deps{
		Query:    app.QueryUC,
		Quiz:     app.QuizUC,
		Synonyms: app.Synonyms,
	})
	if err := srv.ServeStdio(); err != nil {
		slog.Error("mcp server exited", "error", err)
		os.Exit(1)
	}
}
