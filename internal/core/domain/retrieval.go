package domain

type Fragment struct {
	SourceID string  `json:"source_id"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

type MergedDocument struct {
	SourceID       string  `json:"source_id"`
	Text           string  `json:"text"`
	CompositeScore float64 `json:"composite_score"`
}

// SourceSet is the citation context of a single request: the ordered
// documents the generator saw, so a marker [n] resolves 1-based into
// Documents. Each request owns its own set; a new search replaces the
// previous contents instead of appending.
type SourceSet struct {
	Query     string           `json:"query,omitempty"`
	Documents []MergedDocument `json:"documents"`
}

func (s *SourceSet) Replace(query string, docs []MergedDocument) {
	s.Query = query
	s.Documents = docs
}

func (s *SourceSet) Count() int {
	if s == nil {
		return 0
	}
	return len(s.Documents)
}

type Answer struct {
	Text    string           `json:"text"`
	Sources []MergedDocument `json:"sources"`
}
