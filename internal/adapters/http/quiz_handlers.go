package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/joonhokim/examgen/internal/core/domain"
)

const defaultQuestionCount = 5

type createQuizRequest struct {
	Topic      string              `json:"topic"`
	Difficulty domain.Difficulty   `json:"difficulty"`
	Type       domain.QuestionType `json:"type"`
	Count      int                 `json:"count"`
}

func (rt *Router) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = domain.DifficultyNormal
	}
	if req.Type == "" {
		req.Type = domain.TypeMultipleChoice
	}
	if req.Count == 0 {
		req.Count = defaultQuestionCount
	}

	start := time.Now()
	batch, err := rt.quiz.Generate(r.Context(), domain.GenerateQuizInput{
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Type:       req.Type,
		Count:      req.Count,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		status := "ok"
		if batch.Repaired {
			status = "repaired"
		}
		rt.metrics.RecordQuizBatch(metricsService, status, string(batch.Type), len(batch.Questions), time.Since(start))
	}
	writeJSON(w, http.StatusCreated, batch)
}

func (rt *Router) listQuizBatches(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	batches, err := rt.batches.ListBatches(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"batches": batches})
}

func (rt *Router) getQuizBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := rt.batches.GetBatch(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (rt *Router) getQuizSources(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("id")
	// A repaired batch legitimately has zero sources, so missing
	// batches are detected before the sources query.
	if _, err := rt.batches.GetBatch(r.Context(), batchID); err != nil {
		writeError(w, err)
		return
	}
	sources, err := rt.batches.BatchSources(r.Context(), batchID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"batch_id": batchID, "sources": sources})
}

type gradeAnswerRequest struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

func (rt *Router) gradeQuizAnswer(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("id")

	var req gradeAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	// Question IDs carry their batch as "<batch>_<n>".
	if !strings.HasPrefix(req.QuestionID, batchID+"_") {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("question %s is not part of batch %s", req.QuestionID, batchID),
		})
		return
	}

	result, err := rt.grader.Grade(r.Context(), req.QuestionID, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordGrade(metricsService, string(result.Match.Tier))
	}
	writeJSON(w, http.StatusOK, result)
}
