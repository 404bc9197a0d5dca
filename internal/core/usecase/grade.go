package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joonhokim/examgen/internal/core/domain"
	"github.com/joonhokim/examgen/internal/core/ports"
)

// GradeAnswerUseCase grades a submission against its stored question
// and records the outcome as the question's latest attempt.
type GradeAnswerUseCase struct {
	quizzes  ports.QuizRepository
	progress ports.ProgressRepository
	synonyms domain.SynonymTable
	now      func() time.Time
}

func NewGradeAnswerUseCase(quizzes ports.QuizRepository, progress ports.ProgressRepository, synonyms domain.SynonymTable) *GradeAnswerUseCase {
	return &GradeAnswerUseCase{quizzes: quizzes, progress: progress, synonyms: synonyms, now: time.Now}
}

func (uc *GradeAnswerUseCase) Grade(ctx context.Context, questionID, submitted string) (*domain.GradeResult, error) {
	if strings.TrimSpace(questionID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "grade answer", errors.New("question id is empty"))
	}
	if strings.TrimSpace(submitted) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "grade answer", errors.New("submitted answer is empty"))
	}
	question, err := uc.quizzes.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("load question %s: %w", questionID, err)
	}

	var match domain.MatchResult
	correctAnswer := question.Answer
	switch question.Type {
	case domain.TypeShortAnswer:
		match = VerifyAnswer(uc.synonyms, submitted, question.Answer)
	case domain.TypeTrueFalse:
		correctAnswer = trueFalseDisplay(question.Answer)
		match = verifyChoice(normalizeTrueFalse(submitted), correctAnswer)
	default:
		match = verifyChoice(strings.ToUpper(strings.TrimSpace(submitted)), question.Answer)
	}

	attempt := &domain.Attempt{
		QuestionID: question.ID,
		Question:   question.Question,
		Topic:      question.Topic,
		Difficulty: question.Difficulty,
		Type:       question.Type,
		Answer:     question.Answer,
		Submitted:  submitted,
		Tier:       match.Tier,
		Correct:    match.Correct,
		CreatedAt:  uc.now(),
		UpdatedAt:  uc.now(),
	}
	if err := uc.progress.UpsertAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("record attempt for %s: %w", question.ID, err)
	}

	return &domain.GradeResult{
		QuestionID:      question.ID,
		Match:           match,
		CorrectAnswer:   correctAnswer,
		Explanation:     question.Explanation,
		RelatedConcepts: question.RelatedConcepts,
	}, nil
}

// trueFalseDisplay maps the stored choice letter to its O/X form.
func trueFalseDisplay(answer string) string {
	if strings.ToUpper(strings.TrimSpace(answer)) == "A" {
		return "O"
	}
	return "X"
}

// normalizeTrueFalse accepts either the displayed O/X or the
// underlying A/B letter.
func normalizeTrueFalse(submitted string) string {
	s := strings.ToUpper(strings.TrimSpace(submitted))
	switch s {
	case "A":
		return "O"
	case "B":
		return "X"
	}
	return s
}
