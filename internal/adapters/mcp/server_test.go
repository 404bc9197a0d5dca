package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/joonhokim/examgen/internal/core/domain"
)

type queryFake struct {
	docs     []domain.MergedDocument
	answer   *domain.Answer
	err      error
	lastTopK int
}

func (f *queryFake) Search(_ context.Context, _ string, topK int, _ float64) ([]domain.MergedDocument, error) {
	f.lastTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func (f *queryFake) Ask(_ context.Context, _ string, topK int) (*domain.Answer, error) {
	f.lastTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

type quizFake struct {
	batch  *domain.QuizBatch
	err    error
	inputs []domain.GenerateQuizInput
}

func (f *quizFake) Generate(_ context.Context, input domain.GenerateQuizInput) (*domain.QuizBatch, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return f.batch, nil
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatalf("expected content in tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestSearchCorpusToolFormatsSourceBlocks(t *testing.T) {
	query := &queryFake{docs: []domain.MergedDocument{
		{SourceID: "aws.pdf", Text: "S3 Standard is the default storage class.", CompositeScore: 0.91},
		{SourceID: "notes.txt", Text: "Glacier is for archives.", CompositeScore: 0.62},
	}}
	srv := NewServer(Deps{Query: query})

	result, err := srv.searchCorpus(context.Background(), callRequest("search_corpus", map[string]any{"query": "s3", "top_k": 3}))
	if err != nil {
		t.Fatalf("searchCorpus() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	if query.lastTopK != 3 {
		t.Fatalf("expected top_k 3 forwarded, got %d", query.lastTopK)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "[1] 파일: aws.pdf (점수: 0.91)") {
		t.Fatalf("missing first source block: %s", text)
	}
	if !strings.Contains(text, "[2] 파일: notes.txt") {
		t.Fatalf("missing second source block: %s", text)
	}
}

func TestSearchCorpusToolReportsEmptyCorpus(t *testing.T) {
	srv := NewServer(Deps{Query: &queryFake{}})

	result, err := srv.searchCorpus(context.Background(), callRequest("search_corpus", map[string]any{"query": "unknown"}))
	if err != nil {
		t.Fatalf("searchCorpus() error = %v", err)
	}
	if got := resultText(t, result); got != "검색 결과 없음." {
		t.Fatalf("unexpected empty-corpus message: %q", got)
	}
}

func TestSearchCorpusToolRequiresQuery(t *testing.T) {
	srv := NewServer(Deps{Query: &queryFake{}})

	result, err := srv.searchCorpus(context.Background(), callRequest("search_corpus", map[string]any{}))
	if err != nil {
		t.Fatalf("searchCorpus() error = %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error for missing query argument")
	}
}

func TestAskCorpusToolAppendsSources(t *testing.T) {
	query := &queryFake{answer: &domain.Answer{
		Text: "기본 스토리지 클래스는 S3 Standard입니다 [1].",
		Sources: []domain.MergedDocument{
			{SourceID: "aws.pdf", Text: "S3 Standard is the default storage class.", CompositeScore: 0.91},
		},
	}}
	srv := NewServer(Deps{Query: query})

	result, err := srv.askCorpus(context.Background(), callRequest("ask_corpus", map[string]any{"question": "S3 기본 클래스는?"}))
	if err != nil {
		t.Fatalf("askCorpus() error = %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "S3 Standard입니다") {
		t.Fatalf("missing answer text: %s", text)
	}
	if !strings.Contains(text, "출처:") || !strings.Contains(text, "[1] aws.pdf") {
		t.Fatalf("missing source list: %s", text)
	}
}

func TestAskCorpusToolReportsFailure(t *testing.T) {
	query := &queryFake{err: domain.WrapError(domain.ErrTemporary, "ask corpus", errors.New("model busy"))}
	srv := NewServer(Deps{Query: query})

	result, err := srv.askCorpus(context.Background(), callRequest("ask_corpus", map[string]any{"question": "q"}))
	if err != nil {
		t.Fatalf("askCorpus() error = %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error for failed ask")
	}
}

func TestVerifyAnswerToolReturnsMatchJSON(t *testing.T) {
	synonyms := domain.NewSynonymTable([][]string{{"로드밸런서", "로드 밸런서", "ELB"}})
	srv := NewServer(Deps{Synonyms: synonyms})

	result, err := srv.verifyAnswer(context.Background(), callRequest("verify_answer", map[string]any{
		"submitted": "ELB",
		"canonical": "로드밸런서",
	}))
	if err != nil {
		t.Fatalf("verifyAnswer() error = %v", err)
	}

	var match domain.MatchResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &match); err != nil {
		t.Fatalf("decode match result: %v", err)
	}
	if !match.Correct || match.Tier != domain.MatchSynonym {
		t.Fatalf("expected synonym match, got %+v", match)
	}

	result, err = srv.verifyAnswer(context.Background(), callRequest("verify_answer", map[string]any{
		"submitted": "EC2",
		"canonical": "로드밸런서",
	}))
	if err != nil {
		t.Fatalf("verifyAnswer() error = %v", err)
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &match); err != nil {
		t.Fatalf("decode match result: %v", err)
	}
	if match.Correct || match.Tier != domain.MatchWrong {
		t.Fatalf("expected wrong match, got %+v", match)
	}
}

func TestGenerateQuizToolAppliesDefaults(t *testing.T) {
	quiz := &quizFake{batch: &domain.QuizBatch{
		ID:         "1700000000000",
		Topic:      "S3",
		Difficulty: domain.DifficultyNormal,
		Type:       domain.TypeMultipleChoice,
		Questions:  []domain.QuestionRecord{{ID: "1700000000000_1"}},
	}}
	srv := NewServer(Deps{Quiz: quiz})

	result, err := srv.generateQuiz(context.Background(), callRequest("generate_quiz", map[string]any{"topic": "S3"}))
	if err != nil {
		t.Fatalf("generateQuiz() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	if len(quiz.inputs) != 1 {
		t.Fatalf("expected one Generate call, got %d", len(quiz.inputs))
	}
	input := quiz.inputs[0]
	if input.Difficulty != domain.DifficultyNormal || input.Type != domain.TypeMultipleChoice || input.Count != 5 {
		t.Fatalf("defaults were not applied: %+v", input)
	}

	var batch domain.QuizBatch
	if err := json.Unmarshal([]byte(resultText(t, result)), &batch); err != nil {
		t.Fatalf("decode quiz batch: %v", err)
	}
	if batch.ID != "1700000000000" || len(batch.Questions) != 1 {
		t.Fatalf("unexpected batch payload: %+v", batch)
	}
}

func TestGenerateQuizToolReportsFailure(t *testing.T) {
	quiz := &quizFake{err: domain.WrapError(domain.ErrMalformedGeneratorOutput, "generate quiz", errors.New("bad json"))}
	srv := NewServer(Deps{Quiz: quiz})

	result, err := srv.generateQuiz(context.Background(), callRequest("generate_quiz", map[string]any{"topic": "S3"}))
	if err != nil {
		t.Fatalf("generateQuiz() error = %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error for failed generation")
	}
}
