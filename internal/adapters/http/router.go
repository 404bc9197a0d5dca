package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/joonhokim/examgen/internal/config"
	"github.com/joonhokim/examgen/internal/core/ports"
	"github.com/joonhokim/examgen/internal/observability/metrics"
)

const (
	metricsService = "api"

	defaultMaxInFlight      = 64
	defaultBackpressureWait = 100 * time.Millisecond
)

// Deps are the inbound services the router exposes over HTTP. Metrics
// may be nil; instrumentation is then skipped.
type Deps struct {
	Metrics   *metrics.HTTPServerMetrics
	Ingest    ports.DocumentIngestor
	Documents ports.DocumentReader
	Quiz      ports.QuizService
	Batches   ports.QuizReader
	Grader    ports.AnswerGrader
	Query     ports.CorpusQueryService
	Progress  ports.ProgressTracker
}

type Router struct {
	cfg      config.Config
	metrics  *metrics.HTTPServerMetrics
	ingest   ports.DocumentIngestor
	docs     ports.DocumentReader
	quiz     ports.QuizService
	batches  ports.QuizReader
	grader   ports.AnswerGrader
	query    ports.CorpusQueryService
	progress ports.ProgressTracker
}

func NewRouter(cfg config.Config, deps Deps) *Router {
	return &Router{
		cfg:      cfg,
		metrics:  deps.Metrics,
		ingest:   deps.Ingest,
		docs:     deps.Documents,
		quiz:     deps.Quiz,
		batches:  deps.Batches,
		grader:   deps.Grader,
		query:    deps.Query,
		progress: deps.Progress,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	mux.HandleFunc("GET /v1/openapi.yaml", rt.serveOpenAPI)

	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/documents", rt.listDocuments)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocumentByID)

	mux.HandleFunc("POST /v1/quizzes", rt.createQuiz)
	mux.HandleFunc("GET /v1/quizzes", rt.listQuizBatches)
	mux.HandleFunc("GET /v1/quizzes/{id}", rt.getQuizBatch)
	mux.HandleFunc("GET /v1/quizzes/{id}/sources", rt.getQuizSources)
	mux.HandleFunc("POST /v1/quizzes/{id}/answers", rt.gradeQuizAnswer)

	mux.HandleFunc("POST /v1/search", rt.searchCorpus)
	mux.HandleFunc("POST /v1/ask", rt.askCorpus)

	mux.HandleFunc("GET /v1/progress", rt.getProgressSummary)
	mux.HandleFunc("GET /v1/progress/weak-topics", rt.getWeakTopics)
	mux.HandleFunc("GET /v1/progress/wrong-answers", rt.getWrongAnswers)
	mux.HandleFunc("GET /v1/progress/export", rt.exportProgress)
	mux.HandleFunc("POST /v1/questions/{id}/bookmark", rt.toggleBookmark)
	mux.HandleFunc("GET /v1/bookmarks", rt.listBookmarks)

	var handler http.Handler = mux
	handler = authMiddleware(handler, rt.cfg.APIAuthToken)
	handler = backpressureMiddleware(handler, defaultMaxInFlight, defaultBackpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(metricsService, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
