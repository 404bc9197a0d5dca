package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joonhokim/examgen/internal/core/domain"
)

const (
	answerErrorText      = "오류"
	answerDefectText     = "정답 생성 오류"
	explanationErrorText = "JSON 파싱 오류"
)

// ExtractQuestionSet parses the span between the first '{' and the
// last '}' of raw generator output as a question set. Any failure
// (no braces, malformed JSON, no questions) returns nil so the caller
// can fall back to a repair batch.
func ExtractQuestionSet(raw string) *domain.QuestionSet {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil
	}
	var payload struct {
		Questions []struct {
			Question        string             `json:"question"`
			Options         map[string]string  `json:"options"`
			Answer          string             `json:"answer"`
			Explanation     domain.Explanation `json:"explanation"`
			RelatedConcepts []string           `json:"related_concepts"`
		} `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return nil
	}
	if len(payload.Questions) == 0 {
		return nil
	}
	set := &domain.QuestionSet{Questions: make([]domain.QuestionRecord, 0, len(payload.Questions))}
	for _, q := range payload.Questions {
		set.Questions = append(set.Questions, domain.QuestionRecord{
			Question:        q.Question,
			Options:         q.Options,
			Answer:          q.Answer,
			Explanation:     q.Explanation,
			RelatedConcepts: q.RelatedConcepts,
		})
	}
	return set
}

// RepairQuestionSet fabricates a visibly broken batch when generator
// output could not be parsed, so the client still renders the
// requested number of question slots.
func RepairQuestionSet(input domain.GenerateQuizInput, batchID int64) *domain.QuestionSet {
	set := &domain.QuestionSet{Questions: make([]domain.QuestionRecord, 0, input.Count)}
	for i := 1; i <= input.Count; i++ {
		q := domain.QuestionRecord{
			ID:              fmt.Sprintf("%d_%d", batchID, i),
			DisplayNumber:   i,
			Question:        fmt.Sprintf("문제 생성 오류 (%d/%d)", i, input.Count),
			Type:            input.Type,
			Difficulty:      input.Difficulty,
			Topic:           input.Topic,
			Explanation:     domain.Explanation{Correct: explanationErrorText},
			RelatedConcepts: []string{},
		}
		if input.Type == domain.TypeShortAnswer {
			q.Answer = answerErrorText
			q.Options = map[string]string{}
			q.Explanation.Wrong = map[string]string{}
		} else {
			q.Answer = "A"
			q.Options = placeholderOptions()
			q.Explanation.Wrong = placeholderOptions()
		}
		set.Questions = append(set.Questions, q)
	}
	return set
}

func placeholderOptions() map[string]string {
	return map[string]string{"A": "-", "B": "-", "C": "-", "D": "-"}
}

// FinalizeQuestionSet stamps request metadata over whatever the
// generator claimed. IDs, numbering, topic, difficulty and type come
// from the request, and per-type shape rules are enforced: short
// answer questions never carry options or a bare choice letter, choice
// questions always carry four options.
func FinalizeQuestionSet(set *domain.QuestionSet, input domain.GenerateQuizInput, batchID int64) {
	for i := range set.Questions {
		q := &set.Questions[i]
		q.ID = fmt.Sprintf("%d_%d", batchID, i+1)
		q.DisplayNumber = i + 1
		q.Topic = input.Topic
		q.Difficulty = input.Difficulty
		q.Type = input.Type
		if q.RelatedConcepts == nil {
			q.RelatedConcepts = []string{}
		}
		if input.Type == domain.TypeShortAnswer {
			q.Options = map[string]string{}
			switch strings.ToUpper(q.Answer) {
			case "A", "B", "C", "D":
				q.Answer = answerDefectText
			}
			q.Explanation.Wrong = map[string]string{}
			continue
		}
		if len(q.Options) == 0 {
			q.Options = placeholderOptions()
		}
		if q.Explanation.Wrong == nil {
			q.Explanation.Wrong = map[string]string{}
		}
	}
}
