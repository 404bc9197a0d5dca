package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/joonhokim/examgen/internal/config"
	"github.com/joonhokim/examgen/internal/content"
	"github.com/joonhokim/examgen/internal/core/domain"
	"github.com/joonhokim/examgen/internal/core/ports"
	"github.com/joonhokim/examgen/internal/core/usecase"
	"github.com/joonhokim/examgen/internal/infrastructure/chunking"
	"github.com/joonhokim/examgen/internal/infrastructure/extractor"
	"github.com/joonhokim/examgen/internal/infrastructure/extractor/pdfdoc"
	"github.com/joonhokim/examgen/internal/infrastructure/extractor/plaintext"
	"github.com/joonhokim/examgen/internal/infrastructure/graph/neo4jgraph"
	"github.com/joonhokim/examgen/internal/infrastructure/llm/ollama"
	"github.com/joonhokim/examgen/internal/infrastructure/queue/nats"
	"github.com/joonhokim/examgen/internal/infrastructure/repository/postgres"
	"github.com/joonhokim/examgen/internal/infrastructure/resilience"
	"github.com/joonhokim/examgen/internal/infrastructure/storage/localfs"
	"github.com/joonhokim/examgen/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Documents ports.DocumentReader
	Batches   ports.QuizReader
	Synonyms  domain.SynonymTable

	IngestUC   ports.DocumentIngestor
	ProcessUC  ports.DocumentProcessor
	QueryUC    ports.CorpusQueryService
	QuizUC     ports.QuizService
	GradeUC    ports.AnswerGrader
	ProgressUC ports.ProgressTracker

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	docRepo := postgres.NewDocumentRepository(db)
	quizRepo := postgres.NewQuizRepository(db)
	progressRepo := postgres.NewProgressRepository(db)
	if err := docRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure document schema: %w", err)
	}
	if err := quizRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure quiz schema: %w", err)
	}
	if err := progressRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure progress schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	ollamaClient := ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.Options{
		ResilienceExecutor: executor,
	})
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	retriever := qdrant.NewRetriever(embedder, vectorDB)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	extract := extractor.NewSelector(pdfdoc.NewExtractor(storage), plaintext.NewExtractor(storage))

	synonyms, err := content.LoadSynonyms()
	if err != nil {
		return nil, fmt.Errorf("load synonym table: %w", err)
	}

	// The concept graph is optional; generation runs without it and
	// simply skips concept enrichment.
	var graphConn *neo4jgraph.Graph
	var graph ports.ConceptGraph
	if cfg.Neo4jEnabled {
		graphConn, err = neo4jgraph.New(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect neo4j: %w", err)
		}
		graph = graphConn
	}

	ingestUC := usecase.NewIngestDocumentUseCase(docRepo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(docRepo, extract, chunker, embedder, vectorDB)
	queryUC := usecase.NewSearchUseCase(retriever, generator, cfg.SearchTopK, cfg.SearchScoreThreshold)
	quizUC := usecase.NewGenerateQuizUseCase(retriever, generator, quizRepo, graph, domain.QuizLimits{
		MaxQuestions:    cfg.QuizMaxQuestions,
		MaxDraftTurns:   cfg.QuizMaxDraftTurns,
		SearchTopK:      cfg.QuizSearchTopK,
		SearchThreshold: cfg.QuizSearchScoreThreshold,
		Timeout:         time.Duration(cfg.QuizTimeoutSeconds) * time.Second,
		StepTimeout:     time.Duration(cfg.QuizStepTimeoutSeconds) * time.Second,
	})
	gradeUC := usecase.NewGradeAnswerUseCase(quizRepo, progressRepo, synonyms)
	progressUC := usecase.NewProgressUseCase(progressRepo)

	return &App{
		Config: cfg,

		Queue:     queue,
		Documents: docRepo,
		Batches:   quizRepo,
		Synonyms:  synonyms,

		IngestUC:   ingestUC,
		ProcessUC:  processUC,
		QueryUC:    queryUC,
		QuizUC:     quizUC,
		GradeUC:    gradeUC,
		ProgressUC: progressUC,

		closeFn: func() {
			queue.Close()
			if graphConn != nil {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				_ = graphConn.Close(closeCtx)
				cancel()
			}
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
