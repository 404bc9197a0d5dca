package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/joonhokim/examgen/internal/core/domain"
	"github.com/joonhokim/examgen/internal/core/ports"
)

const (
	weakTopicMinAttempts = 2
	weakTopicMaxAccuracy = 60.0
)

// ProgressUseCase aggregates grading history into study statistics.
type ProgressUseCase struct {
	progress ports.ProgressRepository
}

func NewProgressUseCase(progress ports.ProgressRepository) *ProgressUseCase {
	return &ProgressUseCase{progress: progress}
}

func (uc *ProgressUseCase) Summary(ctx context.Context) (*domain.ProgressSummary, error) {
	attempts, err := uc.progress.ListAttempts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return summarizeAttempts(attempts), nil
}

func (uc *ProgressUseCase) WeakTopics(ctx context.Context) ([]domain.WeakTopic, error) {
	attempts, err := uc.progress.ListAttempts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return weakTopics(attempts), nil
}

// WrongAnswers lists the questions whose latest attempt is incorrect,
// newest first.
func (uc *ProgressUseCase) WrongAnswers(ctx context.Context) ([]domain.Attempt, error) {
	attempts, err := uc.progress.ListAttempts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	wrong := make([]domain.Attempt, 0, len(attempts))
	for _, a := range attempts {
		if !a.Correct {
			wrong = append(wrong, a)
		}
	}
	return wrong, nil
}

// ToggleBookmark flips the bookmark state of a question and reports
// the new state.
func (uc *ProgressUseCase) ToggleBookmark(ctx context.Context, questionID string) (bool, error) {
	if strings.TrimSpace(questionID) == "" {
		return false, domain.WrapError(domain.ErrInvalidInput, "toggle bookmark", errors.New("question id is empty"))
	}
	added, err := uc.progress.AddBookmark(ctx, questionID)
	if err != nil {
		return false, fmt.Errorf("add bookmark %s: %w", questionID, err)
	}
	if added {
		return true, nil
	}
	if _, err := uc.progress.RemoveBookmark(ctx, questionID); err != nil {
		return false, fmt.Errorf("remove bookmark %s: %w", questionID, err)
	}
	return false, nil
}

func (uc *ProgressUseCase) Bookmarks(ctx context.Context) ([]domain.QuestionRecord, error) {
	questions, err := uc.progress.ListBookmarkedQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return questions, nil
}

// summarizeAttempts builds overall, per-topic and per-difficulty
// accuracy. Every difficulty key is present even with no attempts.
func summarizeAttempts(attempts []domain.Attempt) *domain.ProgressSummary {
	summary := &domain.ProgressSummary{
		ByTopic:      make(map[string]domain.BucketStats),
		ByDifficulty: make(map[domain.Difficulty]domain.BucketStats),
	}
	for _, d := range domain.Difficulties() {
		summary.ByDifficulty[d] = domain.BucketStats{}
	}
	for _, a := range attempts {
		summary.Total++
		if a.Correct {
			summary.Correct++
		}
		topic := summary.ByTopic[a.Topic]
		topic.Total++
		if a.Correct {
			topic.Correct++
		}
		summary.ByTopic[a.Topic] = topic

		diff := summary.ByDifficulty[a.Difficulty]
		diff.Total++
		if a.Correct {
			diff.Correct++
		}
		summary.ByDifficulty[a.Difficulty] = diff
	}
	summary.Accuracy = accuracyPercent(summary.Correct, summary.Total)
	for topic, stats := range summary.ByTopic {
		stats.Accuracy = accuracyPercent(stats.Correct, stats.Total)
		summary.ByTopic[topic] = stats
	}
	for diff, stats := range summary.ByDifficulty {
		stats.Accuracy = accuracyPercent(stats.Correct, stats.Total)
		summary.ByDifficulty[diff] = stats
	}
	return summary
}

// weakTopics returns topics attempted at least twice whose accuracy
// sits under 60 percent, weakest first.
func weakTopics(attempts []domain.Attempt) []domain.WeakTopic {
	type bucket struct {
		total   int
		correct int
	}
	perTopic := make(map[string]*bucket)
	for _, a := range attempts {
		b, ok := perTopic[a.Topic]
		if !ok {
			b = &bucket{}
			perTopic[a.Topic] = b
		}
		b.total++
		if a.Correct {
			b.correct++
		}
	}
	weak := make([]domain.WeakTopic, 0)
	for topic, b := range perTopic {
		if b.total < weakTopicMinAttempts {
			continue
		}
		accuracy := accuracyPercent(b.correct, b.total)
		if accuracy >= weakTopicMaxAccuracy {
			continue
		}
		weak = append(weak, domain.WeakTopic{Topic: topic, Total: b.total, Accuracy: accuracy})
	}
	sort.Slice(weak, func(i, j int) bool {
		if weak[i].Accuracy != weak[j].Accuracy {
			return weak[i].Accuracy < weak[j].Accuracy
		}
		return weak[i].Topic < weak[j].Topic
	})
	return weak
}

func accuracyPercent(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}
