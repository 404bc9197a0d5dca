package usecase

import (
	"fmt"
	"strings"

	"github.com/joonhokim/examgen/internal/core/domain"
)

const (
	noSearchResultsMessage = "검색 결과 없음."
	noAskContextMessage    = "No relevant documents found."
	searchCorpusTool       = "search_corpus"
)

var difficultyGuide = map[domain.Difficulty]string{
	domain.DifficultyEasy:   "기본 개념과 정의를 묻는 쉬운 문제",
	domain.DifficultyNormal: "개념의 적용과 이해를 묻는 중간 난이도 문제",
	domain.DifficultyHard:   "심화 개념과 복잡한 시나리오를 포함한 어려운 문제",
}

var typeGuide = map[domain.QuestionType]string{
	domain.TypeMultipleChoice: "4개의 선택지(A, B, C, D)가 있는 객관식 문제. answer는 A/B/C/D 중 하나",
	domain.TypeTrueFalse:      "참/거짓을 판단하는 문제 (선택지 A: O, B: X). answer는 A 또는 B",
	domain.TypeShortAnswer:    "1~3단어 이내의 짧은 키워드로 답하는 문제. options는 빈 객체 {}, answer는 실제 정답 단어",
}

func buildOptimizerPrompt(topic string) string {
	var b strings.Builder
	b.WriteString("검색어 최적화 도구. 질문에서 핵심 검색어만 추출.\n\n")
	fmt.Fprintf(&b, "질문: %s\n", topic)
	b.WriteString("핵심 검색어만 한 줄로 출력하세요.")
	return b.String()
}

func buildDrafterPrompt(input domain.GenerateQuizInput, query string, scratchpad []string) string {
	var b strings.Builder
	b.WriteString("시험 문제 출제자. search_corpus 도구로 문서를 찾아 간결한 문제 초안을 작성한다.\n\n")
	b.WriteString("반드시 JSON 객체 한 개만 출력한다. 허용 형식:\n")
	b.WriteString(`{"type":"tool","tool":"search_corpus","input":{"query":"<검색어>"}}` + "\n")
	b.WriteString(`{"type":"final","draft":"<문제 초안 텍스트>"}` + "\n\n")
	b.WriteString("규칙:\n")
	b.WriteString("1. 먼저 search_corpus로 관련 문서를 확보한 뒤 초안을 작성한다.\n")
	b.WriteString("2. 초안은 검색된 문서 내용에 근거하고, 문서의 [ID: n] 표기를 인용에 사용한다.\n")
	b.WriteString("3. 초안에는 문제, 보기, 정답, 해설 후보를 간결히 담는다.\n\n")
	fmt.Fprintf(&b, "주제: %s\n", query)
	fmt.Fprintf(&b, "문제 개수: %d개\n", input.Count)
	fmt.Fprintf(&b, "난이도: %s - %s\n", input.Difficulty, difficultyGuide[input.Difficulty])
	fmt.Fprintf(&b, "문제 유형: %s - %s\n\n", input.Type, typeGuide[input.Type])
	fmt.Fprintf(&b, "중요: %s 유형에 맞게 정확히 생성하세요!\n", input.Type)
	if len(scratchpad) > 0 {
		b.WriteString("\n지금까지의 도구 결과:\n")
		for _, entry := range scratchpad {
			b.WriteString(entry)
			b.WriteString("\n")
		}
		b.WriteString("\n도구 결과가 충분하면 type=final로 초안을 출력한다.\n")
	}
	return b.String()
}

func buildDrafterRepairPrompt(raw string) string {
	var b strings.Builder
	b.WriteString("이전 출력이 유효한 JSON이 아니다. 같은 내용을 유효한 JSON 객체 한 개로만 다시 출력한다.\n")
	b.WriteString(`허용 형식: {"type":"tool","tool":"search_corpus","input":{"query":"..."}} 또는 {"type":"final","draft":"..."}`)
	b.WriteString("\n\n이전 출력:\n")
	b.WriteString(raw)
	return b.String()
}

func buildEditorPrompt(draft string) string {
	var b strings.Builder
	b.WriteString(`문제 편집자. 초안을 JSON으로 변환.

규칙:
1. 100% 한국어
2. 객관식: 보기 4개(A,B,C,D), answer는 "A"/"B"/"C"/"D" 중 하나
3. OX: 보기 2개(A:O, B:X), answer는 "A" 또는 "B"
4. 단답형:
   - options는 반드시 빈 객체 {}
   - answer는 A/B/C/D가 아닌 실제 정답 키워드 (예: "Amazon S3", "VPC", "로드밸런서")
   - explanation의 wrong는 빈 객체 {}
5. JSON만 출력, 다른 텍스트 금지

단답형 예시:
{
    "questions": [{
        "number": 1,
        "question": "AWS의 객체 스토리지 서비스 이름은?",
        "options": {},
        "answer": "Amazon S3",
        "explanation": {
            "correct": "Amazon S3는 AWS의 대표적인 객체 스토리지 서비스입니다.",
            "wrong": {}
        },
        "related_concepts": ["S3", "객체 스토리지"]
    }]
}

객관식 예시:
{
    "questions": [{
        "number": 1,
        "question": "문제",
        "options": {"A":"보기1", "B":"보기2", "C":"보기3", "D":"보기4"},
        "answer": "A",
        "explanation": {
            "correct": "해설",
            "wrong": {"A":"A해설", "B":"B해설", "C":"C해설", "D":"D해설"}
        },
        "related_concepts": ["개념1"]
    }]
}
`)
	b.WriteString("\n초안:\n")
	b.WriteString(draft)
	return b.String()
}

func buildFallbackDraftPrompt(input domain.GenerateQuizInput, query, observation string) string {
	var b strings.Builder
	b.WriteString("시험 문제 출제자. 아래 문서를 근거로 간결한 문제 초안을 작성한다. 문서의 [ID: n] 표기를 인용에 사용한다.\n\n")
	fmt.Fprintf(&b, "문서:\n%s\n\n", observation)
	fmt.Fprintf(&b, "주제: %s\n", query)
	fmt.Fprintf(&b, "문제 개수: %d개\n", input.Count)
	fmt.Fprintf(&b, "난이도: %s - %s\n", input.Difficulty, difficultyGuide[input.Difficulty])
	fmt.Fprintf(&b, "문제 유형: %s - %s\n\n", input.Type, typeGuide[input.Type])
	fmt.Fprintf(&b, "중요: %s 유형에 맞게 정확히 생성하세요!\n", input.Type)
	return b.String()
}

func buildAskPrompt(question string, docs []domain.MergedDocument) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", formatAskContext(docs), question)
}

// formatSearchObservation renders merged documents the way the
// drafting loop cites them: 1-based [ID: n] blocks.
func formatSearchObservation(docs []domain.MergedDocument) string {
	if len(docs) == 0 {
		return noSearchResultsMessage
	}
	blocks := make([]string, 0, len(docs))
	for i, doc := range docs {
		blocks = append(blocks, fmt.Sprintf("[ID: %d] 파일: %s\n내용:\n%s", i+1, doc.SourceID, doc.Text))
	}
	return strings.Join(blocks, "\n\n")
}

func formatAskContext(docs []domain.MergedDocument) string {
	if len(docs) == 0 {
		return noAskContextMessage
	}
	blocks := make([]string, 0, len(docs))
	for i, doc := range docs {
		blocks = append(blocks, fmt.Sprintf("[%d] FILE: %s\n%s", i+1, doc.SourceID, doc.Text))
	}
	return strings.Join(blocks, "\n\n")
}
