package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/joonhokim/examgen/internal/core/domain"
	"github.com/joonhokim/examgen/internal/core/usecase"
)

func (s *Server) searchCorpus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	docs, err := s.deps.Query.Search(ctx, query, request.GetInt("top_k", 0), 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSourceBlocks(docs)), nil
}

func (s *Server) askCorpus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	answer, err := s.deps.Query.Ask(ctx, question, request.GetInt("top_k", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(answer.Text)
	if len(answer.Sources) > 0 {
		b.WriteString("\n\n출처:")
		for i, src := range answer.Sources {
			fmt.Fprintf(&b, "\n[%d] %s", i+1, src.SourceID)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) verifyAnswer(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	submitted, err := request.RequireString("submitted")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	canonical, err := request.RequireString("canonical")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	match := usecase.VerifyAnswer(s.deps.Synonyms, submitted, canonical)
	payload, err := json.Marshal(match)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode match result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) generateQuiz(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := request.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	batch, err := s.deps.Quiz.Generate(ctx, domain.GenerateQuizInput{
		Topic:      topic,
		Difficulty: domain.Difficulty(request.GetString("difficulty", string(domain.DifficultyNormal))),
		Type:       domain.QuestionType(request.GetString("type", string(domain.TypeMultipleChoice))),
		Count:      request.GetInt("count", defaultQuizCount),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	payload, err := json.Marshal(batch)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode quiz batch: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// formatSourceBlocks renders merged documents as the 1-based source
// blocks agents quote from.
func formatSourceBlocks(docs []domain.MergedDocument) string {
	if len(docs) == 0 {
		return "검색 결과 없음."
	}
	blocks := make([]string, 0, len(docs))
	for i, doc := range docs {
		blocks = append(blocks, fmt.Sprintf("[%d] 파일: %s (점수: %.2f)\n%s", i+1, doc.SourceID, doc.CompositeScore, doc.Text))
	}
	return strings.Join(blocks, "\n\n")
}
