package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/joonhokim/examgen/internal/core/domain"
)

const pgForeignKeyViolation = "23503"

type ProgressRepository struct {
	db *sql.DB
}

func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS quiz_attempts (
	question_id TEXT PRIMARY KEY,
	question TEXT NOT NULL,
	topic TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	question_type TEXT NOT NULL,
	answer TEXT NOT NULL,
	submitted TEXT NOT NULL,
	tier TEXT NOT NULL,
	correct BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_quiz_attempts_topic ON quiz_attempts(topic);
CREATE INDEX IF NOT EXISTS idx_quiz_attempts_updated_at ON quiz_attempts(updated_at DESC);

CREATE TABLE IF NOT EXISTS quiz_bookmarks (
	question_id TEXT PRIMARY KEY REFERENCES quiz_questions(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL
);
`
	return ensureSchema(ctx, r.db, ddl)
}

// UpsertAttempt keeps one row per question: re-answering replaces the
// previous result and bumps updated_at, keeping the first created_at.
func (r *ProgressRepository) UpsertAttempt(ctx context.Context, attempt *domain.Attempt) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO quiz_attempts (
	question_id, question, topic, difficulty, question_type, answer,
	submitted, tier, correct, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (question_id) DO UPDATE SET
	submitted = EXCLUDED.submitted,
	tier = EXCLUDED.tier,
	correct = EXCLUDED.correct,
	updated_at = EXCLUDED.updated_at
`,
		attempt.QuestionID, attempt.Question, attempt.Topic, string(attempt.Difficulty),
		string(attempt.Type), attempt.Answer, attempt.Submitted, string(attempt.Tier),
		attempt.Correct, attempt.CreatedAt, attempt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert attempt: %w", err)
	}
	return nil
}

func (r *ProgressRepository) ListAttempts(ctx context.Context) ([]domain.Attempt, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT question_id, question, topic, difficulty, question_type, answer,
	submitted, tier, correct, created_at, updated_at
FROM quiz_attempts
ORDER BY updated_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Attempt, 0, 32)
	for rows.Next() {
		var a domain.Attempt
		var difficulty, questionType, tier string
		err := rows.Scan(
			&a.QuestionID, &a.Question, &a.Topic, &difficulty, &questionType, &a.Answer,
			&a.Submitted, &tier, &a.Correct, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attempt row: %w", err)
		}
		a.Difficulty = domain.Difficulty(difficulty)
		a.Type = domain.QuestionType(questionType)
		a.Tier = domain.MatchTier(tier)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

// AddBookmark reports true when the bookmark is new, false when the
// question was already bookmarked.
func (r *ProgressRepository) AddBookmark(ctx context.Context, questionID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO quiz_bookmarks (question_id, created_at)
VALUES ($1, $2)
ON CONFLICT (question_id) DO NOTHING
`, questionID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return false, domain.WrapError(domain.ErrNotFound, "question "+questionID, err)
		}
		return false, fmt.Errorf("insert bookmark: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("bookmark rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *ProgressRepository) RemoveBookmark(ctx context.Context, questionID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM quiz_bookmarks WHERE question_id = $1
`, questionID)
	if err != nil {
		return false, fmt.Errorf("delete bookmark: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("bookmark rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *ProgressRepository) ListBookmarkedQuestions(ctx context.Context) ([]domain.QuestionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT q.id, q.display_number, q.question, q.question_type, q.options, q.answer,
	q.explanation_correct, q.explanation_wrong, q.difficulty, q.topic, q.related_concepts
FROM quiz_bookmarks b
JOIN quiz_questions q ON q.id = b.question_id
ORDER BY b.created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list bookmarked questions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.QuestionRecord, 0, 16)
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bookmarked question: %w", err)
		}
		out = append(out, *question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookmarked questions: %w", err)
	}
	return out, nil
}
