package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joonhokim/examgen/internal/core/domain"
	"github.com/joonhokim/examgen/internal/core/ports"
)

const (
	optimizerMaxTokens      = 1000
	drafterMaxTokens        = 2000
	editorBaseTokens        = 2000
	editorTokensPerQuestion = 800
)

// GenerateQuizUseCase runs the full generation chain: query
// optimization, a tool-driven drafting loop over the corpus, JSON
// editing, citation cleanup and metadata injection. A repair batch is
// produced instead of an error when the editor output cannot be
// parsed.
type GenerateQuizUseCase struct {
	retriever ports.Retriever
	generator ports.Generator
	quizzes   ports.QuizRepository
	graph     ports.ConceptGraph
	limits    domain.QuizLimits

	mu     sync.Mutex
	lastID int64
	now    func() time.Time
}

func NewGenerateQuizUseCase(retriever ports.Retriever, generator ports.Generator, quizzes ports.QuizRepository, graph ports.ConceptGraph, limits domain.QuizLimits) *GenerateQuizUseCase {
	if limits.MaxQuestions <= 0 {
		limits.MaxQuestions = 5
	}
	if limits.MaxDraftTurns <= 0 {
		limits.MaxDraftTurns = 4
	}
	if limits.SearchTopK <= 0 {
		limits.SearchTopK = 8
	}
	if limits.SearchThreshold <= 0 {
		limits.SearchThreshold = 0.60
	}
	if limits.Timeout <= 0 {
		limits.Timeout = 180 * time.Second
	}
	if limits.StepTimeout <= 0 {
		limits.StepTimeout = 60 * time.Second
	}
	return &GenerateQuizUseCase{
		retriever: retriever,
		generator: generator,
		quizzes:   quizzes,
		graph:     graph,
		limits:    limits,
		now:       time.Now,
	}
}

func (uc *GenerateQuizUseCase) Generate(ctx context.Context, input domain.GenerateQuizInput) (*domain.QuizBatch, error) {
	if err := uc.validate(input); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.limits.Timeout)
	defer cancel()

	query := uc.optimizeQuery(ctx, input.Topic)
	sources := &domain.SourceSet{}

	draft, fallbackReason, err := uc.draft(ctx, input, query, sources)
	if err != nil {
		return nil, err
	}
	if fallbackReason != "" {
		slog.Warn("quiz drafting fell back to direct retrieval", "reason", fallbackReason, "topic", input.Topic)
	}

	raw, err := uc.generateJSON(ctx, buildEditorPrompt(draft), editorBaseTokens+input.Count*editorTokensPerQuestion)
	if err != nil {
		return nil, fmt.Errorf("edit quiz draft: %w", err)
	}

	batchID := uc.nextBatchID()
	text, droppedCitations := CleanCitations(StripMarkdownHeaders(raw), sources.Count())
	if droppedCitations > 0 {
		slog.Warn("deleted citations without a matching source", "dropped", droppedCitations, "topic", input.Topic, "error", domain.ErrInvalidCitation)
	}
	set := ExtractQuestionSet(text)
	repaired := set == nil
	if repaired {
		slog.Warn("editor output could not be parsed, serving repair batch", "topic", input.Topic, "count", input.Count)
		set = RepairQuestionSet(input, batchID)
	} else {
		FinalizeQuestionSet(set, input, batchID)
	}

	batch := &domain.QuizBatch{
		ID:         strconv.FormatInt(batchID, 10),
		Topic:      input.Topic,
		Difficulty: input.Difficulty,
		Type:       input.Type,
		Repaired:   repaired,
		Questions:  set.Questions,
		Sources:    sources.Documents,
		CreatedAt:  uc.now(),
	}
	if err := uc.quizzes.SaveBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("save quiz batch %s: %w", batch.ID, err)
	}
	uc.recordConcepts(ctx, input.Topic, batch.Questions)
	return batch, nil
}

func (uc *GenerateQuizUseCase) validate(input domain.GenerateQuizInput) error {
	if strings.TrimSpace(input.Topic) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "generate quiz", errors.New("topic is empty"))
	}
	if !input.Difficulty.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "generate quiz", fmt.Errorf("unknown difficulty %q", input.Difficulty))
	}
	if !input.Type.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "generate quiz", fmt.Errorf("unknown question type %q", input.Type))
	}
	if input.Count < 1 || input.Count > uc.limits.MaxQuestions {
		return domain.WrapError(domain.ErrInvalidInput, "generate quiz", fmt.Errorf("count must be between 1 and %d", uc.limits.MaxQuestions))
	}
	return nil
}

// optimizeQuery condenses the topic into a search query. The raw
// topic is a good enough query when the optimizer is unavailable.
func (uc *GenerateQuizUseCase) optimizeQuery(ctx context.Context, topic string) string {
	out, err := uc.generateText(ctx, buildOptimizerPrompt(topic), optimizerMaxTokens)
	if err != nil {
		slog.Warn("query optimization failed, using raw topic", "error", err)
		return topic
	}
	out = strings.TrimSpace(out)
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = strings.TrimSpace(out[:i])
	}
	if out == "" {
		return topic
	}
	return out
}

// draft runs the tool loop until the model emits a final draft. Every
// exit besides a clean final step falls back to a single direct
// retrieval draft, with the reason reported alongside.
func (uc *GenerateQuizUseCase) draft(ctx context.Context, input domain.GenerateQuizInput, query string, sources *domain.SourceSet) (string, string, error) {
	scratchpad := make([]string, 0, uc.limits.MaxDraftTurns)
	fallbackReason := "max_turns"

loop:
	for turn := 0; turn < uc.limits.MaxDraftTurns; turn++ {
		if ctx.Err() != nil {
			fallbackReason = "timeout"
			break
		}
		raw, err := uc.generateJSON(ctx, buildDrafterPrompt(input, query, scratchpad), drafterMaxTokens)
		if err != nil {
			if isTimeoutError(err) {
				fallbackReason = "timeout"
			} else {
				fallbackReason = "drafter_error"
			}
			break
		}
		step, err := parseQuizStep(raw)
		if err != nil {
			repairedRaw, repairErr := uc.generateJSON(ctx, buildDrafterRepairPrompt(raw), drafterMaxTokens)
			if repairErr == nil {
				step, err = parseQuizStep(repairedRaw)
			}
			if repairErr != nil || err != nil {
				fallbackReason = "drafter_invalid_json"
				break
			}
		}
		switch step.Type {
		case "final":
			if strings.TrimSpace(step.Draft) == "" {
				fallbackReason = "empty_draft"
				break loop
			}
			return step.Draft, "", nil
		case "tool":
			if step.Tool != searchCorpusTool {
				fallbackReason = "unknown_tool"
				break loop
			}
			toolQuery := stringInput(step.Input, "query")
			if toolQuery == "" {
				toolQuery = query
			}
			observation := uc.searchObservation(ctx, toolQuery, sources)
			scratchpad = append(scratchpad, fmt.Sprintf("%s(%q):\n%s", searchCorpusTool, toolQuery, observation))
		default:
			fallbackReason = "unknown_step_type"
			break loop
		}
	}

	draft, err := uc.fallbackDraft(ctx, input, query, sources)
	if err != nil {
		return "", fallbackReason, err
	}
	return draft, fallbackReason, nil
}

// searchObservation retrieves and merges corpus fragments for the
// drafting loop. The observed documents replace the request's source
// set so citation markers resolve against the latest search.
func (uc *GenerateQuizUseCase) searchObservation(ctx context.Context, query string, sources *domain.SourceSet) string {
	stepCtx, cancel := context.WithTimeout(ctx, uc.limits.StepTimeout)
	defer cancel()
	fragments, err := uc.retriever.Retrieve(stepCtx, query, uc.limits.SearchTopK, uc.limits.SearchThreshold)
	if err != nil {
		slog.Warn("corpus search failed during drafting", "query", query, "error", err)
		return noSearchResultsMessage
	}
	docs := MergeFragments(fragments, uc.limits.SearchThreshold)
	sources.Replace(query, docs)
	return formatSearchObservation(docs)
}

func (uc *GenerateQuizUseCase) fallbackDraft(ctx context.Context, input domain.GenerateQuizInput, query string, sources *domain.SourceSet) (string, error) {
	observation := uc.searchObservation(ctx, query, sources)
	draft, err := uc.generateText(ctx, buildFallbackDraftPrompt(input, query, observation), drafterMaxTokens)
	if err != nil {
		return "", fmt.Errorf("draft quiz without tools: %w", err)
	}
	return draft, nil
}

func (uc *GenerateQuizUseCase) generateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	stepCtx, cancel := context.WithTimeout(ctx, uc.limits.StepTimeout)
	defer cancel()
	return uc.generator.GenerateText(stepCtx, prompt, maxTokens)
}

func (uc *GenerateQuizUseCase) generateJSON(ctx context.Context, prompt string, maxTokens int) (string, error) {
	stepCtx, cancel := context.WithTimeout(ctx, uc.limits.StepTimeout)
	defer cancel()
	return uc.generator.GenerateJSON(stepCtx, prompt, maxTokens)
}

// recordConcepts links the batch's related concepts to the topic in
// the concept graph. Failures only log; generation already succeeded.
func (uc *GenerateQuizUseCase) recordConcepts(ctx context.Context, topic string, questions []domain.QuestionRecord) {
	if uc.graph == nil {
		return
	}
	seen := make(map[string]struct{})
	concepts := make([]string, 0)
	for _, q := range questions {
		for _, c := range q.RelatedConcepts {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			concepts = append(concepts, c)
		}
	}
	if len(concepts) == 0 {
		return
	}
	if err := uc.graph.UpsertConcepts(ctx, topic, concepts); err != nil {
		slog.Warn("concept graph update failed", "topic", topic, "error", err)
	}
}

// nextBatchID returns the millisecond timestamp, bumped past the
// previously issued ID so two requests in the same millisecond still
// get distinct batches.
func (uc *GenerateQuizUseCase) nextBatchID() int64 {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	id := uc.now().UnixMilli()
	if id <= uc.lastID {
		id = uc.lastID + 1
	}
	uc.lastID = id
	return id
}

func parseQuizStep(raw string) (domain.QuizPlanStep, error) {
	var step domain.QuizPlanStep
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return step, domain.WrapError(domain.ErrMalformedGeneratorOutput, "parse draft step", errors.New("no JSON object in output"))
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &step); err != nil {
		return step, domain.WrapError(domain.ErrMalformedGeneratorOutput, "parse draft step", err)
	}
	if step.Type == "" {
		return step, domain.WrapError(domain.ErrMalformedGeneratorOutput, "parse draft step", errors.New("missing step type"))
	}
	return step, nil
}

func stringInput(input map[string]interface{}, key string) string {
	if input == nil {
		return ""
	}
	if v, ok := input[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func isTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
