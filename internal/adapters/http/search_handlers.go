package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"
)

type searchRequest struct {
	Query     string  `json:"query"`
	TopK      int     `json:"top_k"`
	Threshold float64 `json:"threshold"`
}

func (rt *Router) searchCorpus(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	docs, err := rt.query.Search(r.Context(), req.Query, req.TopK, req.Threshold)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordRetrieval(metricsService, "search", len(docs), time.Since(start))
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": req.Query, "documents": docs})
}

type askRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

func (rt *Router) askCorpus(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	answer, err := rt.query.Ask(r.Context(), req.Question, req.TopK)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordRetrieval(metricsService, "ask", len(answer.Sources), time.Since(start))
	}
	writeJSON(w, http.StatusOK, answer)
}
