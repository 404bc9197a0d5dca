package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/joonhokim/examgen/internal/core/domain"
)

const (
	correctAnswerMessage = "정답입니다!"
	partialAnswerFormat  = "아쉽습니다! 정답은 '%s'입니다."
	wrongAnswerFormat    = "오답입니다. 정답은 '%s'입니다."
	wrongChoiceMessage   = "오답입니다."
)

// VerifyAnswer grades a free-text answer against the canonical one:
// exact match on the normalized forms first, then the synonym table,
// then a partial-credit substring check. A partial match stays
// incorrect but gets a softer message. Messages always echo the
// canonical answer as stored, not its normalized form.
func VerifyAnswer(table domain.SynonymTable, submitted, canonical string) domain.MatchResult {
	sub := domain.NormalizeAnswer(submitted)
	want := domain.NormalizeAnswer(canonical)

	if sub == want {
		return domain.MatchResult{Correct: true, Tier: domain.MatchExact, Message: correctAnswerMessage}
	}
	if table.Match(submitted, canonical) {
		return domain.MatchResult{Correct: true, Tier: domain.MatchSynonym, Message: correctAnswerMessage}
	}
	if utf8.RuneCountInString(sub) >= 2 && utf8.RuneCountInString(want) >= 2 &&
		(strings.Contains(want, sub) || strings.Contains(sub, want)) {
		return domain.MatchResult{Correct: false, Tier: domain.MatchPartial, Message: fmt.Sprintf(partialAnswerFormat, canonical)}
	}
	return domain.MatchResult{Correct: false, Tier: domain.MatchWrong, Message: fmt.Sprintf(wrongAnswerFormat, canonical)}
}

// verifyChoice compares a selected option key with the canonical one.
// Choice feedback does not echo the correct key; the caller returns it
// separately with the explanation.
func verifyChoice(submitted, canonical string) domain.MatchResult {
	if submitted != "" && strings.EqualFold(submitted, strings.TrimSpace(canonical)) {
		return domain.MatchResult{Correct: true, Tier: domain.MatchExact, Message: correctAnswerMessage}
	}
	return domain.MatchResult{Correct: false, Tier: domain.MatchWrong, Message: wrongChoiceMessage}
}
