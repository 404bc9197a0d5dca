package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joonhokim/examgen/internal/config"
	"github.com/joonhokim/examgen/internal/core/domain"
)

func TestCreateQuizAppliesRequestDefaults(t *testing.T) {
	quiz := &quizServiceFake{batch: testBatch()}
	handler := NewRouter(config.Config{}, Deps{Quiz: quiz}).Handler()

	payload, _ := json.Marshal(map[string]any{"topic": "S3"})
	req := httptest.NewRequest(http.MethodPost, "/v1/quizzes", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if len(quiz.inputs) != 1 {
		t.Fatalf("expected one Generate call, got %d", len(quiz.inputs))
	}
	input := quiz.inputs[0]
	if input.Topic != "S3" {
		t.Fatalf("unexpected topic %q", input.Topic)
	}
	if input.Difficulty != domain.DifficultyNormal {
		t.Fatalf("expected default difficulty %q, got %q", domain.DifficultyNormal, input.Difficulty)
	}
	if input.Type != domain.TypeMultipleChoice {
		t.Fatalf("expected default type %q, got %q", domain.TypeMultipleChoice, input.Type)
	}
	if input.Count != 5 {
		t.Fatalf("expected default count 5, got %d", input.Count)
	}

	var batchResp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&batchResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if batchResp["id"] != "1700000000000" {
		t.Fatalf("unexpected batch id: %+v", batchResp["id"])
	}
}

func TestCreateQuizKeepsExplicitParameters(t *testing.T) {
	quiz := &quizServiceFake{batch: testBatch()}
	handler := NewRouter(config.Config{}, Deps{Quiz: quiz}).Handler()

	payload, _ := json.Marshal(map[string]any{
		"topic":      "EC2",
		"difficulty": string(domain.DifficultyHard),
		"type":       string(domain.TypeShortAnswer),
		"count":      3,
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/quizzes", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", res.Code)
	}
	input := quiz.inputs[0]
	if input.Difficulty != domain.DifficultyHard || input.Type != domain.TypeShortAnswer || input.Count != 3 {
		t.Fatalf("request parameters were not forwarded: %+v", input)
	}
}

func TestCreateQuizRejectsInvalidJSON(t *testing.T) {
	handler := newTestHandler(config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/v1/quizzes", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestListQuizBatchesRejectsNonPositiveLimit(t *testing.T) {
	handler := newTestHandler(config.Config{})

	for _, raw := range []string{"0", "-3", "ten"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/quizzes?limit="+raw, nil)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if res.Code != http.StatusBadRequest {
			t.Fatalf("limit=%s expected 400, got %d", raw, res.Code)
		}
	}
}

func TestListQuizBatches(t *testing.T) {
	batches := &quizReaderFake{batches: []domain.QuizBatch{*testBatch()}}
	handler := NewRouter(config.Config{}, Deps{Batches: batches}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/quizzes?limit=10", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var listResp struct {
		Batches []map[string]any `json:"batches"`
	}
	if err := json.NewDecoder(res.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listResp.Batches) != 1 || listResp.Batches[0]["id"] != "1700000000000" {
		t.Fatalf("unexpected batch list: %+v", listResp.Batches)
	}
}

func TestGetQuizSourcesReturns404ForUnknownBatch(t *testing.T) {
	batches := &quizReaderFake{err: domain.WrapError(domain.ErrNotFound, "get batch", errors.New("id=missing"))}
	handler := NewRouter(config.Config{}, Deps{Batches: batches}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/quizzes/missing/sources", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGetQuizSources(t *testing.T) {
	batches := &quizReaderFake{batch: testBatch(), sources: testBatch().Sources}
	handler := NewRouter(config.Config{}, Deps{Batches: batches}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/quizzes/1700000000000/sources", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var sourcesResp struct {
		BatchID string                  `json:"batch_id"`
		Sources []domain.MergedDocument `json:"sources"`
	}
	if err := json.NewDecoder(res.Body).Decode(&sourcesResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if sourcesResp.BatchID != "1700000000000" {
		t.Fatalf("unexpected batch id %q", sourcesResp.BatchID)
	}
	if len(sourcesResp.Sources) != 1 || sourcesResp.Sources[0].SourceID != "aws.pdf" {
		t.Fatalf("unexpected sources: %+v", sourcesResp.Sources)
	}
}

func TestGradeAnswerRejectsQuestionFromAnotherBatch(t *testing.T) {
	grader := &graderFake{result: testGradeResult()}
	handler := NewRouter(config.Config{}, Deps{Grader: grader}).Handler()

	payload, _ := json.Marshal(map[string]any{"question_id": "999_1", "answer": "A"})
	req := httptest.NewRequest(http.MethodPost, "/v1/quizzes/123/answers", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
	if len(grader.gradedIDs) != 0 {
		t.Fatalf("grader should not run for a foreign question, graded %v", grader.gradedIDs)
	}
	if !strings.Contains(res.Body.String(), "not part of batch") {
		t.Fatalf("expected membership error, got %s", res.Body.String())
	}
}

func TestGradeAnswerSuccess(t *testing.T) {
	grader := &graderFake{result: testGradeResult()}
	handler := NewRouter(config.Config{}, Deps{Grader: grader}).Handler()

	payload, _ := json.Marshal(map[string]any{"question_id": "1700000000000_1", "answer": "A"})
	req := httptest.NewRequest(http.MethodPost, "/v1/quizzes/1700000000000/answers", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if len(grader.gradedIDs) != 1 || grader.gradedIDs[0] != "1700000000000_1" {
		t.Fatalf("unexpected graded ids: %v", grader.gradedIDs)
	}

	var result domain.GradeResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !result.Match.Correct || result.Match.Tier != domain.MatchExact {
		t.Fatalf("unexpected grade result: %+v", result.Match)
	}
}
