package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/joonhokim/examgen/internal/core/domain"
)

type QuizRepository struct {
	db *sql.DB
}

func NewQuizRepository(db *sql.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS quiz_batches (
	id TEXT PRIMARY KEY,
	topic TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	question_type TEXT NOT NULL,
	repaired BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_quiz_batches_created_at ON quiz_batches(created_at DESC);

CREATE TABLE IF NOT EXISTS quiz_questions (
	id TEXT PRIMARY KEY,
	batch_id TEXT NOT NULL REFERENCES quiz_batches(id) ON DELETE CASCADE,
	display_number INTEGER NOT NULL,
	question TEXT NOT NULL,
	question_type TEXT NOT NULL,
	options JSONB NOT NULL DEFAULT '{}'::jsonb,
	answer TEXT NOT NULL,
	explanation_correct TEXT NOT NULL DEFAULT '',
	explanation_wrong JSONB NOT NULL DEFAULT '{}'::jsonb,
	difficulty TEXT NOT NULL,
	topic TEXT NOT NULL,
	related_concepts JSONB NOT NULL DEFAULT '[]'::jsonb
);

CREATE INDEX IF NOT EXISTS idx_quiz_questions_batch ON quiz_questions(batch_id);

CREATE TABLE IF NOT EXISTS quiz_sources (
	batch_id TEXT NOT NULL REFERENCES quiz_batches(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	source_id TEXT NOT NULL,
	content TEXT NOT NULL,
	composite_score DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (batch_id, position)
);
`
	return ensureSchema(ctx, r.db, ddl)
}

func (r *QuizRepository) SaveBatch(ctx context.Context, batch *domain.QuizBatch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO quiz_batches (id, topic, difficulty, question_type, repaired, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, batch.ID, batch.Topic, string(batch.Difficulty), string(batch.Type), batch.Repaired, batch.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz batch: %w", err)
	}

	for _, q := range batch.Questions {
		optionsJSON, err := marshalStringMap(q.Options)
		if err != nil {
			return fmt.Errorf("marshal options for %s: %w", q.ID, err)
		}
		wrongJSON, err := marshalStringMap(q.Explanation.Wrong)
		if err != nil {
			return fmt.Errorf("marshal wrong explanations for %s: %w", q.ID, err)
		}
		conceptsJSON, err := marshalStringSlice(q.RelatedConcepts)
		if err != nil {
			return fmt.Errorf("marshal related concepts for %s: %w", q.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
INSERT INTO quiz_questions (
	id, batch_id, display_number, question, question_type, options, answer,
	explanation_correct, explanation_wrong, difficulty, topic, related_concepts
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
			q.ID, batch.ID, q.DisplayNumber, q.Question, string(q.Type), optionsJSON, q.Answer,
			q.Explanation.Correct, wrongJSON, string(q.Difficulty), q.Topic, conceptsJSON,
		)
		if err != nil {
			return fmt.Errorf("insert quiz question %s: %w", q.ID, err)
		}
	}

	// Positions are 1-based so they line up with [n] citations.
	for i, src := range batch.Sources {
		_, err = tx.ExecContext(ctx, `
INSERT INTO quiz_sources (batch_id, position, source_id, content, composite_score)
VALUES ($1,$2,$3,$4,$5)
`, batch.ID, i+1, src.SourceID, src.Text, src.CompositeScore)
		if err != nil {
			return fmt.Errorf("insert quiz source %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save batch tx: %w", err)
	}
	return nil
}

func (r *QuizRepository) GetBatch(ctx context.Context, batchID string) (*domain.QuizBatch, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, topic, difficulty, question_type, repaired, created_at
FROM quiz_batches
WHERE id = $1
`, batchID)

	var batch domain.QuizBatch
	var difficulty, questionType string
	err := row.Scan(&batch.ID, &batch.Topic, &difficulty, &questionType, &batch.Repaired, &batch.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "quiz batch "+batchID, err)
		}
		return nil, fmt.Errorf("scan quiz batch: %w", err)
	}
	batch.Difficulty = domain.Difficulty(difficulty)
	batch.Type = domain.QuestionType(questionType)

	questions, err := r.batchQuestions(ctx, batchID)
	if err != nil {
		return nil, err
	}
	batch.Questions = questions
	return &batch, nil
}

func (r *QuizRepository) ListBatches(ctx context.Context, limit int) ([]domain.QuizBatch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, topic, difficulty, question_type, repaired, created_at
FROM quiz_batches
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list quiz batches: %w", err)
	}
	defer rows.Close()

	out := make([]domain.QuizBatch, 0, limit)
	for rows.Next() {
		var batch domain.QuizBatch
		var difficulty, questionType string
		if err := rows.Scan(&batch.ID, &batch.Topic, &difficulty, &questionType, &batch.Repaired, &batch.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz batch row: %w", err)
		}
		batch.Difficulty = domain.Difficulty(difficulty)
		batch.Type = domain.QuestionType(questionType)
		out = append(out, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quiz batches: %w", err)
	}
	return out, nil
}

func (r *QuizRepository) GetQuestion(ctx context.Context, questionID string) (*domain.QuestionRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+questionColumns+`
FROM quiz_questions
WHERE id = $1
`, questionID)

	question, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "question "+questionID, err)
		}
		return nil, fmt.Errorf("scan question: %w", err)
	}
	return question, nil
}

func (r *QuizRepository) BatchSources(ctx context.Context, batchID string) ([]domain.MergedDocument, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT source_id, content, composite_score
FROM quiz_sources
WHERE batch_id = $1
ORDER BY position
`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list quiz sources: %w", err)
	}
	defer rows.Close()

	out := make([]domain.MergedDocument, 0, 8)
	for rows.Next() {
		var src domain.MergedDocument
		if err := rows.Scan(&src.SourceID, &src.Text, &src.CompositeScore); err != nil {
			return nil, fmt.Errorf("scan quiz source row: %w", err)
		}
		out = append(out, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quiz sources: %w", err)
	}
	return out, nil
}

func (r *QuizRepository) batchQuestions(ctx context.Context, batchID string) ([]domain.QuestionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+questionColumns+`
FROM quiz_questions
WHERE batch_id = $1
ORDER BY display_number
`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch questions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.QuestionRecord, 0, 8)
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		out = append(out, *question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch questions: %w", err)
	}
	return out, nil
}

const questionColumns = `id, display_number, question, question_type, options, answer, explanation_correct, explanation_wrong, difficulty, topic, related_concepts`

func scanQuestion(row rowScanner) (*domain.QuestionRecord, error) {
	var q domain.QuestionRecord
	var questionType, difficulty string
	var optionsRaw, wrongRaw, conceptsRaw []byte

	err := row.Scan(
		&q.ID, &q.DisplayNumber, &q.Question, &questionType, &optionsRaw, &q.Answer,
		&q.Explanation.Correct, &wrongRaw, &difficulty, &q.Topic, &conceptsRaw,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(optionsRaw, &q.Options); err != nil {
		return nil, fmt.Errorf("unmarshal options: %w", err)
	}
	if err := json.Unmarshal(wrongRaw, &q.Explanation.Wrong); err != nil {
		return nil, fmt.Errorf("unmarshal wrong explanations: %w", err)
	}
	if err := json.Unmarshal(conceptsRaw, &q.RelatedConcepts); err != nil {
		return nil, fmt.Errorf("unmarshal related concepts: %w", err)
	}
	q.Type = domain.QuestionType(questionType)
	q.Difficulty = domain.Difficulty(difficulty)
	return &q, nil
}

func marshalStringMap(m map[string]string) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}
	return json.Marshal(m)
}

func marshalStringSlice(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	return json.Marshal(items)
}
