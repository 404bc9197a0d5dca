package domain

import "time"

type QuestionType string

const (
	TypeMultipleChoice QuestionType = "객관식"
	TypeTrueFalse      QuestionType = "OX"
	TypeShortAnswer    QuestionType = "단답형"
)

func (t QuestionType) Valid() bool {
	switch t {
	case TypeMultipleChoice, TypeTrueFalse, TypeShortAnswer:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "쉬움"
	DifficultyNormal Difficulty = "보통"
	DifficultyHard   Difficulty = "어려움"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return true
	}
	return false
}

// Difficulties lists every difficulty in display order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard}
}

type Explanation struct {
	Correct string            `json:"correct"`
	Wrong   map[string]string `json:"wrong"`
}

type QuestionRecord struct {
	ID              string            `json:"id"`
	DisplayNumber   int               `json:"display_number"`
	Question        string            `json:"question"`
	Type            QuestionType      `json:"type"`
	Options         map[string]string `json:"options"`
	Answer          string            `json:"answer"`
	Explanation     Explanation       `json:"explanation"`
	Difficulty      Difficulty        `json:"difficulty"`
	Topic           string            `json:"topic"`
	RelatedConcepts []string          `json:"related_concepts"`
}

type QuestionSet struct {
	Questions []QuestionRecord `json:"questions"`
}

// QuizBatch is one generation result. Question IDs are "<batch>_<n>"
// with n counting from 1, so IDs stay unique across batches.
type QuizBatch struct {
	ID         string           `json:"id"`
	Topic      string           `json:"topic"`
	Difficulty Difficulty       `json:"difficulty"`
	Type       QuestionType     `json:"type"`
	Repaired   bool             `json:"repaired,omitempty"`
	Questions  []QuestionRecord `json:"questions"`
	Sources    []MergedDocument `json:"sources,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

type GenerateQuizInput struct {
	Topic      string       `json:"topic"`
	Difficulty Difficulty   `json:"difficulty"`
	Type       QuestionType `json:"type"`
	Count      int          `json:"count"`
}

type MatchTier string

const (
	MatchExact   MatchTier = "exact"
	MatchSynonym MatchTier = "synonym"
	MatchPartial MatchTier = "partial"
	MatchWrong   MatchTier = "wrong"
)

type MatchResult struct {
	Correct bool      `json:"correct"`
	Tier    MatchTier `json:"tier"`
	Message string    `json:"message"`
}

type GradeResult struct {
	QuestionID      string      `json:"question_id"`
	Match           MatchResult `json:"match"`
	CorrectAnswer   string      `json:"correct_answer"`
	Explanation     Explanation `json:"explanation"`
	RelatedConcepts []string    `json:"related_concepts,omitempty"`
}

// QuizPlanStep is one decoded drafting decision: either a tool call or
// the final draft text.
type QuizPlanStep struct {
	Type  string                 `json:"type"`
	Tool  string                 `json:"tool,omitempty"`
	Draft string                 `json:"draft,omitempty"`
	Input map[string]interface{} `json:"input,omitempty"`
}

type QuizLimits struct {
	MaxQuestions    int
	MaxDraftTurns   int
	SearchTopK      int
	SearchThreshold float64
	Timeout         time.Duration
	StepTimeout     time.Duration
}
