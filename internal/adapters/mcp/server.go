package mcpadapter

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joonhokim/examgen/internal/core/domain"
	"github.com/joonhokim/examgen/internal/core/ports"
)

const (
	serverName    = "examgen"
	serverVersion = "0.1.0"

	defaultQuizCount = 5
)

// Deps lists the use cases the MCP tools expose.
type Deps struct {
	Query    ports.CorpusQueryService
	Quiz     ports.QuizService
	Synonyms domain.SynonymTable
}

// Server exposes retrieval, answer verification, and quiz generation
// as MCP tools over stdio, so agent hosts can drive the engine without
// the HTTP surface. Handlers only decode arguments and format results;
// all behavior lives in the use cases.
type Server struct {
	mcp  *server.MCPServer
	deps Deps
}

func NewServer(deps Deps) *Server {
	s := &Server{deps: deps}

	m := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	m.AddTool(mcp.NewTool("search_corpus",
		mcp.WithDescription("Search the indexed study corpus and return the matching source passages with scores."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
		mcp.WithNumber("top_k", mcp.Description("Maximum number of passages to return")),
	), s.searchCorpus)
	m.AddTool(mcp.NewTool("ask_corpus",
		mcp.WithDescription("Answer a question grounded in the indexed study corpus, citing its sources."),
		mcp.WithString("question", mcp.Required(), mcp.Description("Question to answer")),
		mcp.WithNumber("top_k", mcp.Description("Maximum number of passages to ground the answer on")),
	), s.askCorpus)
	m.AddTool(mcp.NewTool("verify_answer",
		mcp.WithDescription("Grade a submitted free-text answer against the canonical one, tolerating known synonyms."),
		mcp.WithString("submitted", mcp.Required(), mcp.Description("Answer to grade")),
		mcp.WithString("canonical", mcp.Required(), mcp.Description("Canonical answer")),
	), s.verifyAnswer)
	m.AddTool(mcp.NewTool("generate_quiz",
		mcp.WithDescription("Generate a batch of exam questions about a topic from the indexed corpus."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Exam topic, e.g. S3")),
		mcp.WithString("difficulty", mcp.Description("Question difficulty"), mcp.Enum(difficultyValues()...)),
		mcp.WithString("type", mcp.Description("Question type"), mcp.Enum(questionTypeValues()...)),
		mcp.WithNumber("count", mcp.Description("Number of questions")),
	), s.generateQuiz)

	s.mcp = m
	return s
}

// ServeStdio blocks serving the protocol on stdin/stdout until the
// stream closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func difficultyValues() []string {
	all := domain.Difficulties()
	out := make([]string, 0, len(all))
	for _, d := range all {
		out = append(out, string(d))
	}
	return out
}

func questionTypeValues() []string {
	return []string{
		string(domain.TypeMultipleChoice),
		string(domain.TypeTrueFalse),
		string(domain.TypeShortAnswer),
	}
}
