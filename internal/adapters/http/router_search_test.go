package httpadapter

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joonhokim/examgen/internal/config"
	"github.com/joonhokim/examgen/internal/core/domain"
)

func TestSearchCorpusForwardsRequestParameters(t *testing.T) {
	query := &queryFake{docs: []domain.MergedDocument{
		{SourceID: "aws.pdf", Text: "S3 Standard is the default storage class.", CompositeScore: 0.91},
	}}
	handler := NewRouter(config.Config{}, Deps{Query: query}).Handler()

	payload, _ := json.Marshal(map[string]any{"query": "s3 storage class", "top_k": 3, "threshold": 0.7})
	req := httptest.NewRequest(http.MethodPost, "/v1/search", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if query.lastQuery != "s3 storage class" || query.lastTopK != 3 || query.lastThreshold != 0.7 {
		t.Fatalf("request parameters were not forwarded: %q %d %v", query.lastQuery, query.lastTopK, query.lastThreshold)
	}

	var searchResp struct {
		Query     string                  `json:"query"`
		Documents []domain.MergedDocument `json:"documents"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if searchResp.Query != "s3 storage class" {
		t.Fatalf("unexpected echoed query %q", searchResp.Query)
	}
	if len(searchResp.Documents) != 1 || searchResp.Documents[0].SourceID != "aws.pdf" {
		t.Fatalf("unexpected documents: %+v", searchResp.Documents)
	}
}

func TestSearchCorpusRejectsInvalidJSON(t *testing.T) {
	handler := newTestHandler(config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/v1/search", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestAskCorpusReturnsAnswerWithSources(t *testing.T) {
	query := &queryFake{answer: &domain.Answer{
		Text: "S3의 기본 스토리지 클래스는 S3 Standard입니다 [1].",
		Sources: []domain.MergedDocument{
			{SourceID: "aws.pdf", Text: "S3 Standard is the default storage class.", CompositeScore: 0.91},
		},
	}}
	handler := NewRouter(config.Config{}, Deps{Query: query}).Handler()

	payload, _ := json.Marshal(map[string]any{"question": "S3 기본 스토리지 클래스는?", "top_k": 4})
	req := httptest.NewRequest(http.MethodPost, "/v1/ask", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if query.lastTopK != 4 {
		t.Fatalf("expected top_k 4 forwarded, got %d", query.lastTopK)
	}

	var answer domain.Answer
	if err := json.NewDecoder(res.Body).Decode(&answer); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if answer.Text == "" || len(answer.Sources) != 1 {
		t.Fatalf("unexpected answer: %+v", answer)
	}
}
