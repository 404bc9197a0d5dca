package ports

import (
	"context"
	"io"

	"github.com/joonhokim/examgen/internal/core/domain"
)

// DocumentRepository persists and reads corpus document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SetChunkCount(ctx context.Context, id string, chunkCount int) error
}

// ObjectStorage stores uploaded source files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Chunker splits text into indexable chunks.
type Chunker interface {
	Split(text string) []string
}

// VectorIndex indexes chunk vectors and searches them.
type VectorIndex interface {
	IndexChunks(ctx context.Context, doc *domain.Document, chunks []string, vectors [][]float32) error
	DeleteByDocument(ctx context.Context, documentID string) error
	Search(ctx context.Context, queryVector []float32, limit int, minScore float64) ([]domain.Fragment, error)
}

// Retriever runs the full query-to-fragments retrieval round trip.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, minScore float64) ([]domain.Fragment, error)
}

// Generator produces model output for a composed prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error)
	GenerateJSON(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// QuizRepository persists generated batches and their questions.
type QuizRepository interface {
	SaveBatch(ctx context.Context, batch *domain.QuizBatch) error
	GetBatch(ctx context.Context, batchID string) (*domain.QuizBatch, error)
	ListBatches(ctx context.Context, limit int) ([]domain.QuizBatch, error)
	GetQuestion(ctx context.Context, questionID string) (*domain.QuestionRecord, error)
	BatchSources(ctx context.Context, batchID string) ([]domain.MergedDocument, error)
}

// ProgressRepository persists grading attempts and bookmarks.
type ProgressRepository interface {
	UpsertAttempt(ctx context.Context, attempt *domain.Attempt) error
	ListAttempts(ctx context.Context) ([]domain.Attempt, error)
	AddBookmark(ctx context.Context, questionID string) (bool, error)
	RemoveBookmark(ctx context.Context, questionID string) (bool, error)
	ListBookmarkedQuestions(ctx context.Context) ([]domain.QuestionRecord, error)
}

// ConceptGraph links the concepts seen in generated questions per topic.
type ConceptGraph interface {
	UpsertConcepts(ctx context.Context, topic string, concepts []string) error
	RelatedConcepts(ctx context.Context, topic string, limit int) ([]string, error)
}
