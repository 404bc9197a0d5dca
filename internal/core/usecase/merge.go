package usecase

import (
	"sort"
	"strings"

	"github.com/joonhokim/examgen/internal/core/domain"
)

// corroborationBonus rewards a source that several fragments point at:
// composite = mean * (1 + (n-1)*bonus). The boost is uncapped.
const corroborationBonus = 0.25

// MergeFragments drops fragments scoring below threshold, groups the
// rest by source in arrival order, joins each group's text with a
// newline and ranks groups by composite score descending. Ties keep
// first-seen order. An empty input yields an empty result.
func MergeFragments(fragments []domain.Fragment, threshold float64) []domain.MergedDocument {
	type group struct {
		sourceID string
		texts    []string
		sum      float64
	}
	index := make(map[string]*group)
	ordered := make([]*group, 0, len(fragments))
	for _, f := range fragments {
		if f.Score < threshold {
			continue
		}
		g, ok := index[f.SourceID]
		if !ok {
			g = &group{sourceID: f.SourceID}
			index[f.SourceID] = g
			ordered = append(ordered, g)
		}
		g.texts = append(g.texts, f.Text)
		g.sum += f.Score
	}

	merged := make([]domain.MergedDocument, 0, len(ordered))
	for _, g := range ordered {
		n := float64(len(g.texts))
		merged = append(merged, domain.MergedDocument{
			SourceID:       g.sourceID,
			Text:           strings.Join(g.texts, "\n"),
			CompositeScore: g.sum / n * (1 + (n-1)*corroborationBonus),
		})
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CompositeScore > merged[j].CompositeScore
	})
	return merged
}
