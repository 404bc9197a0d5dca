package qdrant

import (
	"context"
	"errors"

	"github.com/joonhokim/examgen/internal/core/domain"
	"github.com/joonhokim/examgen/internal/core/ports"
)

// Retriever embeds a query and searches the vector collection. Backend
// failures surface as domain.ErrRetrievalUnavailable so callers can degrade
// to empty results instead of failing the whole request.
type Retriever struct {
	embedder ports.Embedder
	index    ports.VectorIndex
}

func NewRetriever(embedder ports.Embedder, index ports.VectorIndex) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, minScore float64) ([]domain.Fragment, error) {
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, wrapRetrievalError("embed query", err)
	}

	fragments, err := r.index.Search(ctx, vector, topK, minScore)
	if err != nil {
		return nil, wrapRetrievalError("vector search", err)
	}
	return fragments, nil
}

func wrapRetrievalError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domain.WrapError(domain.ErrRetrievalUnavailable, op, err)
}
