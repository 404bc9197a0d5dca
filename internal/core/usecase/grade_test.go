package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joonhokim/examgen/internal/core/domain"
)

type fakeProgressRepo struct {
	upserts    []domain.Attempt
	latest     map[string]domain.Attempt
	attempts   []domain.Attempt
	bookmarks  map[string]bool
	bookmarkQs []domain.QuestionRecord
	err        error
}

func (f *fakeProgressRepo) UpsertAttempt(_ context.Context, attempt *domain.Attempt) error {
	if f.err != nil {
		return f.err
	}
	if f.latest == nil {
		f.latest = make(map[string]domain.Attempt)
	}
	f.upserts = append(f.upserts, *attempt)
	f.latest[attempt.QuestionID] = *attempt
	return nil
}

func (f *fakeProgressRepo) ListAttempts(context.Context) ([]domain.Attempt, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Attempt(nil), f.attempts...), nil
}

func (f *fakeProgressRepo) AddBookmark(_ context.Context, questionID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.bookmarks == nil {
		f.bookmarks = make(map[string]bool)
	}
	if f.bookmarks[questionID] {
		return false, nil
	}
	f.bookmarks[questionID] = true
	return true, nil
}

func (f *fakeProgressRepo) RemoveBookmark(_ context.Context, questionID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if !f.bookmarks[questionID] {
		return false, nil
	}
	delete(f.bookmarks, questionID)
	return true, nil
}

func (f *fakeProgressRepo) ListBookmarkedQuestions(context.Context) ([]domain.QuestionRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.QuestionRecord(nil), f.bookmarkQs...), nil
}

func newGradeFixture(questions map[string]domain.QuestionRecord, progress *fakeProgressRepo) *GradeAnswerUseCase {
	uc := NewGradeAnswerUseCase(&fakeQuizRepo{questions: questions}, progress, testSynonymTable())
	uc.now = func() time.Time { return time.UnixMilli(1727000000000) }
	return uc
}

func TestGradeShortAnswerSynonym(t *testing.T) {
	questions := map[string]domain.QuestionRecord{
		"17_1": {
			ID: "17_1", Question: "가상 서버 서비스는?", Type: domain.TypeShortAnswer,
			Answer: "EC2", Topic: "컴퓨팅", Difficulty: domain.DifficultyNormal,
			Explanation: domain.Explanation{Correct: "EC2입니다."},
		},
	}
	progress := &fakeProgressRepo{}
	uc := newGradeFixture(questions, progress)

	result, err := uc.Grade(context.Background(), "17_1", "이씨투")
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}
	if !result.Match.Correct || result.Match.Tier != domain.MatchSynonym {
		t.Fatalf("expected synonym correct, got %+v", result.Match)
	}
	if result.CorrectAnswer != "EC2" {
		t.Fatalf("expected canonical answer echoed, got %q", result.CorrectAnswer)
	}
	if len(progress.upserts) != 1 {
		t.Fatalf("expected one recorded attempt, got %d", len(progress.upserts))
	}
	attempt := progress.upserts[0]
	if !attempt.Correct || attempt.Tier != domain.MatchSynonym || attempt.Submitted != "이씨투" {
		t.Fatalf("unexpected attempt %+v", attempt)
	}
}

func TestGradeShortAnswerPartialStaysIncorrect(t *testing.T) {
	questions := map[string]domain.QuestionRecord{
		"17_2": {ID: "17_2", Type: domain.TypeShortAnswer, Answer: "가용영역", Topic: "인프라"},
	}
	progress := &fakeProgressRepo{}
	uc := newGradeFixture(questions, progress)

	result, err := uc.Grade(context.Background(), "17_2", "가용")
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}
	if result.Match.Correct || result.Match.Tier != domain.MatchPartial {
		t.Fatalf("expected incorrect partial, got %+v", result.Match)
	}
	if progress.latest["17_2"].Correct {
		t.Fatalf("partial attempt must be recorded as incorrect")
	}
}

func TestGradeMultipleChoice(t *testing.T) {
	questions := map[string]domain.QuestionRecord{
		"5_1": {
			ID: "5_1", Type: domain.TypeMultipleChoice, Answer: "B",
			Options: map[string]string{"A": "S3", "B": "EC2", "C": "VPC", "D": "RDS"},
		},
	}
	progress := &fakeProgressRepo{}
	uc := newGradeFixture(questions, progress)

	right, err := uc.Grade(context.Background(), "5_1", "b")
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}
	if !right.Match.Correct || right.Match.Message != "정답입니다!" {
		t.Fatalf("expected correct choice, got %+v", right.Match)
	}

	wrong, err := uc.Grade(context.Background(), "5_1", "C")
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}
	if wrong.Match.Correct || wrong.Match.Message != "오답입니다." {
		t.Fatalf("expected bare wrong message, got %+v", wrong.Match)
	}
	if wrong.CorrectAnswer != "B" {
		t.Fatalf("expected correct key in result, got %q", wrong.CorrectAnswer)
	}
	// the second grade overwrote the first attempt
	if len(progress.upserts) != 2 || progress.latest["5_1"].Correct {
		t.Fatalf("expected latest attempt to win, got %+v", progress.latest["5_1"])
	}
}

func TestGradeTrueFalse(t *testing.T) {
	questions := map[string]domain.QuestionRecord{
		"9_1": {ID: "9_1", Type: domain.TypeTrueFalse, Answer: "A",
			Options: map[string]string{"A": "O", "B": "X"}},
	}
	progress := &fakeProgressRepo{}
	uc := newGradeFixture(questions, progress)

	cases := []struct {
		submitted string
		correct   bool
	}{
		{"O", true},
		{"a", true},
		{"X", false},
		{"B", false},
	}
	for _, tc := range cases {
		result, err := uc.Grade(context.Background(), "9_1", tc.submitted)
		if err != nil {
			t.Fatalf("Grade(%q) error = %v", tc.submitted, err)
		}
		if result.Match.Correct != tc.correct {
			t.Errorf("Grade(%q) correct = %v, want %v", tc.submitted, result.Match.Correct, tc.correct)
		}
		if result.CorrectAnswer != "O" {
			t.Errorf("expected O/X display form, got %q", result.CorrectAnswer)
		}
	}
}

func TestGradeUnknownQuestion(t *testing.T) {
	uc := newGradeFixture(map[string]domain.QuestionRecord{}, &fakeProgressRepo{})
	if _, err := uc.Grade(context.Background(), "missing", "A"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("Grade() error = %v, want not found kind", err)
	}
}

func TestGradeValidatesInput(t *testing.T) {
	uc := newGradeFixture(map[string]domain.QuestionRecord{}, &fakeProgressRepo{})
	if _, err := uc.Grade(context.Background(), "", "A"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty id, got %v", err)
	}
	if _, err := uc.Grade(context.Background(), "17_1", "  "); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty submission, got %v", err)
	}
}

func TestGradeRecordFailurePropagates(t *testing.T) {
	questions := map[string]domain.QuestionRecord{
		"5_1": {ID: "5_1", Type: domain.TypeMultipleChoice, Answer: "A"},
	}
	progress := &fakeProgressRepo{err: errors.New("db down")}
	uc := newGradeFixture(questions, progress)

	if _, err := uc.Grade(context.Background(), "5_1", "A"); err == nil {
		t.Fatalf("expected error when attempt cannot be recorded")
	}
}
