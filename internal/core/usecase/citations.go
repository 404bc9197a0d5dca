package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	markdownHeaderRe  = regexp.MustCompile(`(?m)^#+\s*`)
	verboseCitationRe = regexp.MustCompile(`(?i)\[ID:\s*(\d+)\]`)
	citationRe        = regexp.MustCompile(`\[(\d+)\]`)
	referencesLabelRe = regexp.MustCompile(`(?i)^\s*(references|참고\s?자료|참고\s?문헌|출처)\s*[::]\s*$`)
)

// StripMarkdownHeaders removes leading #-runs so generator output does
// not leak heading syntax into question text.
func StripMarkdownHeaders(text string) string {
	return markdownHeaderRe.ReplaceAllString(text, "")
}

// CleanCitations rewrites verbose [ID: n] markers into [n], deletes
// every marker that does not resolve 1-based into the validCount
// context documents, and appends "(none)" to a references-style label
// line left without markers. Cleaning an already clean text is a
// no-op. The second return value counts deleted markers so callers
// can classify the loss as domain.ErrInvalidCitation.
func CleanCitations(text string, validCount int) (string, int) {
	dropped := 0
	out := verboseCitationRe.ReplaceAllString(text, "[$1]")
	out = citationRe.ReplaceAllStringFunc(out, func(marker string) string {
		n, err := strconv.Atoi(marker[1 : len(marker)-1])
		if err != nil || n < 1 || n > validCount {
			dropped++
			return ""
		}
		return marker
	})
	return placeholderDanglingReferences(out), dropped
}

func placeholderDanglingReferences(text string) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		if referencesLabelRe.MatchString(lines[i]) {
			lines[i] = strings.TrimRight(lines[i], " \t") + " (none)"
		}
		break
	}
	return strings.Join(lines, "\n")
}
