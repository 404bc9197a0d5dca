package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joonhokim/examgen/internal/core/domain"
	"github.com/joonhokim/examgen/internal/core/ports"
)

const askMaxTokens = 4096

// SearchUseCase answers retrieval queries over the indexed corpus,
// either as ranked merged documents or as a grounded free-text answer.
type SearchUseCase struct {
	retriever ports.Retriever
	generator ports.Generator
	topK      int
	threshold float64
}

func NewSearchUseCase(retriever ports.Retriever, generator ports.Generator, topK int, threshold float64) *SearchUseCase {
	if topK <= 0 {
		topK = 8
	}
	if threshold <= 0 {
		threshold = 0.50
	}
	return &SearchUseCase{retriever: retriever, generator: generator, topK: topK, threshold: threshold}
}

// Search retrieves and merges corpus documents for a query. Zero topK
// and threshold fall back to the configured defaults. An unavailable
// retrieval backend reads as an empty corpus, not as a request
// failure.
func (uc *SearchUseCase) Search(ctx context.Context, query string, topK int, threshold float64) ([]domain.MergedDocument, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search corpus", errors.New("query is empty"))
	}
	if topK <= 0 {
		topK = uc.topK
	}
	if threshold <= 0 {
		threshold = uc.threshold
	}
	fragments, err := uc.retriever.Retrieve(ctx, query, topK, threshold)
	if err != nil {
		if domain.IsKind(err, domain.ErrRetrievalUnavailable) {
			slog.Warn("retrieval unavailable, returning empty search result", "query", query, "error", err)
			return []domain.MergedDocument{}, nil
		}
		return nil, fmt.Errorf("search corpus: %w", err)
	}
	return MergeFragments(fragments, threshold), nil
}

// Ask answers a question grounded in the retrieved context. The
// generator is consulted even when nothing was retrieved, so it can
// say that the corpus has no answer. Citation markers that point
// outside the retrieved set are deleted from the answer.
func (uc *SearchUseCase) Ask(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask corpus", errors.New("question is empty"))
	}
	docs, err := uc.Search(ctx, question, topK, 0)
	if err != nil {
		return nil, err
	}
	text, err := uc.generator.GenerateText(ctx, buildAskPrompt(question, docs), askMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("answer question: %w", err)
	}
	cleaned, _ := CleanCitations(text, len(docs))
	return &domain.Answer{Text: strings.TrimSpace(cleaned), Sources: docs}, nil
}
