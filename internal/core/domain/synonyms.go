package domain

import (
	"regexp"
	"strings"
)

var answerSpaceRe = regexp.MustCompile(`\s+`)

// NormalizeAnswer lowers the text and removes every whitespace run so
// that "로드 밸런서" and "로드밸런서" compare equal.
func NormalizeAnswer(text string) string {
	return strings.ToLower(answerSpaceRe.ReplaceAllString(strings.TrimSpace(text), ""))
}

// SynonymTable is an ordered list of closed variant groups. The table
// is built once at load time and never mutated afterwards, so a
// single instance is safe to share across concurrent requests.
type SynonymTable struct {
	groups [][]string
}

func NewSynonymTable(groups [][]string) SynonymTable {
	normalized := make([][]string, 0, len(groups))
	for _, group := range groups {
		seen := make(map[string]struct{}, len(group))
		variants := make([]string, 0, len(group))
		for _, v := range group {
			n := NormalizeAnswer(v)
			if n == "" {
				continue
			}
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			variants = append(variants, n)
		}
		if len(variants) > 0 {
			normalized = append(normalized, variants)
		}
	}
	return SynonymTable{groups: normalized}
}

// Expand returns the normalized variant group containing text, or the
// normalized text alone when no group knows it. Earlier groups win if
// a variant ever appears twice.
func (t SynonymTable) Expand(text string) []string {
	n := NormalizeAnswer(text)
	for _, group := range t.groups {
		for _, v := range group {
			if v == n {
				return append([]string(nil), group...)
			}
		}
	}
	return []string{n}
}

// Match reports whether the two texts share at least one variant.
func (t SynonymTable) Match(a, b string) bool {
	expanded := make(map[string]struct{})
	for _, v := range t.Expand(b) {
		expanded[v] = struct{}{}
	}
	for _, v := range t.Expand(a) {
		if _, ok := expanded[v]; ok {
			return true
		}
	}
	return false
}

func (t SynonymTable) Len() int {
	return len(t.groups)
}
