package domain

import "time"

// Attempt is the latest grading state of one question. Re-answering
// the same question overwrites the previous attempt rather than
// adding a second row.
type Attempt struct {
	QuestionID string       `json:"question_id"`
	Question   string       `json:"question"`
	Topic      string       `json:"topic"`
	Difficulty Difficulty   `json:"difficulty"`
	Type       QuestionType `json:"type"`
	Answer     string       `json:"answer"`
	Submitted  string       `json:"submitted"`
	Tier       MatchTier    `json:"tier"`
	Correct    bool         `json:"correct"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type BucketStats struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// ProgressSummary always carries every difficulty key, zeroed when no
// attempt exists for it.
type ProgressSummary struct {
	Total        int                        `json:"total"`
	Correct      int                        `json:"correct"`
	Accuracy     float64                    `json:"accuracy"`
	ByTopic      map[string]BucketStats     `json:"by_topic"`
	ByDifficulty map[Difficulty]BucketStats `json:"by_difficulty"`
}

type WeakTopic struct {
	Topic    string  `json:"topic"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

type Bookmark struct {
	QuestionID string    `json:"question_id"`
	CreatedAt  time.Time `json:"created_at"`
}
