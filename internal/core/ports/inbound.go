package ports

import (
	"context"
	"io"

	"github.com/joonhokim/examgen/internal/core/domain"
)

// DocumentIngestor is the inbound contract for corpus upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for corpus metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document indexing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// QuizService is the inbound contract for exam generation.
type QuizService interface {
	Generate(ctx context.Context, input domain.GenerateQuizInput) (*domain.QuizBatch, error)
}

// AnswerGrader grades a submitted answer against a stored question.
type AnswerGrader interface {
	Grade(ctx context.Context, questionID, submitted string) (*domain.GradeResult, error)
}

// CorpusQueryService is the inbound contract for retrieval search and
// grounded question answering.
type CorpusQueryService interface {
	Search(ctx context.Context, query string, topK int, threshold float64) ([]domain.MergedDocument, error)
	Ask(ctx context.Context, question string, topK int) (*domain.Answer, error)
}

// QuizReader is the inbound read model for stored quiz batches.
type QuizReader interface {
	GetBatch(ctx context.Context, batchID string) (*domain.QuizBatch, error)
	ListBatches(ctx context.Context, limit int) ([]domain.QuizBatch, error)
	BatchSources(ctx context.Context, batchID string) ([]domain.MergedDocument, error)
}

// ProgressTracker aggregates grading history and bookmarks.
type ProgressTracker interface {
	Summary(ctx context.Context) (*domain.ProgressSummary, error)
	WeakTopics(ctx context.Context) ([]domain.WeakTopic, error)
	WrongAnswers(ctx context.Context) ([]domain.Attempt, error)
	ToggleBookmark(ctx context.Context, questionID string) (bool, error)
	Bookmarks(ctx context.Context) ([]domain.QuestionRecord, error)
}
