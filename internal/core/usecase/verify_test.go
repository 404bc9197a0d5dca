package usecase

import (
	"testing"

	"github.com/joonhokim/examgen/internal/core/domain"
)

func testSynonymTable() domain.SynonymTable {
	return domain.NewSynonymTable([][]string{
		{"이씨투", "ec2", "이씨2", "일라스틱컴퓨트클라우드"},
		{"에스쓰리", "s3", "에스3", "심플스토리지서비스"},
		{"로드밸런싱", "로드 밸런서", "로드 밸런싱", "부하분산"},
	})
}

func TestVerifyAnswerExact(t *testing.T) {
	table := testSynonymTable()

	got := VerifyAnswer(table, "Amazon S3", "amazon s3")
	if !got.Correct || got.Tier != domain.MatchExact {
		t.Fatalf("expected exact match, got %+v", got)
	}
	if got.Message != "정답입니다!" {
		t.Fatalf("unexpected message %q", got.Message)
	}

	spaced := VerifyAnswer(table, "로드 밸런서", "로드밸런서")
	if !spaced.Correct || spaced.Tier != domain.MatchExact {
		t.Fatalf("expected whitespace-insensitive exact match, got %+v", spaced)
	}
}

func TestVerifyAnswerSynonym(t *testing.T) {
	table := testSynonymTable()

	got := VerifyAnswer(table, "이씨투", "EC2")
	if !got.Correct || got.Tier != domain.MatchSynonym {
		t.Fatalf("expected synonym match, got %+v", got)
	}
	if got.Message != "정답입니다!" {
		t.Fatalf("synonym match should read as a full correct answer, got %q", got.Message)
	}
}

func TestVerifyAnswerPartial(t *testing.T) {
	table := testSynonymTable()

	got := VerifyAnswer(table, "가용", "가용영역")
	if got.Correct {
		t.Fatalf("partial match must stay incorrect, got %+v", got)
	}
	if got.Tier != domain.MatchPartial {
		t.Fatalf("expected partial tier, got %s", got.Tier)
	}
	if got.Message != "아쉽습니다! 정답은 '가용영역'입니다." {
		t.Fatalf("unexpected partial message %q", got.Message)
	}

	// Substring containment the other way around also counts.
	reversed := VerifyAnswer(table, "가용영역입니다", "가용영역")
	if reversed.Tier != domain.MatchPartial {
		t.Fatalf("expected reversed containment partial, got %+v", reversed)
	}
}

func TestVerifyAnswerSingleRuneNeverPartial(t *testing.T) {
	table := testSynonymTable()

	got := VerifyAnswer(table, "가", "가용영역")
	if got.Tier != domain.MatchWrong {
		t.Fatalf("single-rune submission must not earn partial credit, got %+v", got)
	}
	if got.Message != "오답입니다. 정답은 '가용영역'입니다." {
		t.Fatalf("unexpected wrong message %q", got.Message)
	}
}

func TestVerifyAnswerWrong(t *testing.T) {
	table := testSynonymTable()

	got := VerifyAnswer(table, "다이나모", "EC2")
	if got.Correct || got.Tier != domain.MatchWrong {
		t.Fatalf("expected wrong answer, got %+v", got)
	}
	if got.Message != "오답입니다. 정답은 'EC2'입니다." {
		t.Fatalf("message must echo the canonical answer as stored, got %q", got.Message)
	}
}

func TestVerifyChoice(t *testing.T) {
	if got := verifyChoice("B", "B"); !got.Correct || got.Tier != domain.MatchExact {
		t.Fatalf("expected matching key to be correct, got %+v", got)
	}
	if got := verifyChoice("b", "B"); !got.Correct {
		t.Fatalf("expected case-insensitive key match, got %+v", got)
	}
	wrong := verifyChoice("C", "B")
	if wrong.Correct || wrong.Tier != domain.MatchWrong {
		t.Fatalf("expected wrong choice, got %+v", wrong)
	}
	if wrong.Message != "오답입니다." {
		t.Fatalf("choice feedback must not echo the correct key, got %q", wrong.Message)
	}
}
