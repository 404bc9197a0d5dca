package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/joonhokim/examgen/internal/adapters/http"
	"github.com/joonhokim/examgen/internal/bootstrap"
	"github.com/joonhokim/examgen/internal/config"
	"github.com/joonhokim/examgen/internal/observability/logging"
	"github.com/joonhokim/examgen/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The served contract must stay loadable; refusing to start beats
	// serving a document clients cannot parse.
	if _, err := httpadapter.LoadOpenAPIDocument(); err != nil {
		slog.Error("openapi contract is invalid", "error", err)
		os.Exit(1)
	}

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, httpadapter.Deps{
		Metrics:   metrics.NewHTTPServerMetrics("api"),
		Ingest:    app.IngestUC,
		Documents: app.Documents,
		Quiz:      app.QuizUC,
		Batches:   app.Batches,
		Grader:    app.GradeUC,
		Query:     app.QueryUC,
		Progress:  app.ProgressUC,
	}).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown failed", "error", err)
	}
}
