package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/avolkov/grounded-qa/internal/config"
	"github.com/avolkov/grounded-qa/internal/core/ports"
	"github.com/avolkov/grounded-qa/internal/core/usecase"
	"github.com/avolkov/grounded-qa/internal/infrastructure/llm/ollama"
	"github.com/avolkov/grounded-qa/internal/infrastructure/queue/nats"
	"github.com/avolkov/grounded-qa/internal/infrastructure/repository/postgres"
	"github.com/avolkov/grounded-qa/internal/infrastructure/resilience"
	"github.com/avolkov/grounded-qa/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Pipeline ports.QueryAnswerer

	closeFn func()
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	chunkStore := postgres.NewChunkStore(db)

	executor := resilience.NewExecutor(resilience.Policy{
		MaxAttempts:         cfg.ResilienceMaxAttempts,
		BreakerEnabled:      cfg.BreakerEnabled,
		BreakerMinRequests:  uint32(cfg.BreakerMinRequests),
		BreakerFailureRatio: cfg.BreakerFailureRatio,
		BreakerOpenTimeout:  time.Duration(cfg.BreakerOpenTimeoutSecond) * time.Second,
	})

	audit, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init audit publisher: %w", err)
	}

	ollamaClient := ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.Options{
		HTTPTimeout:        time.Duration(cfg.OllamaTimeoutSecond) * time.Second,
		ResilienceExecutor: executor,
	})
	classifier := ollama.NewClassifier(ollamaClient)
	rewriter := ollama.NewRewriter(ollamaClient)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	searchClient := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	retriever := usecase.NewRetrievalCoordinator(searchClient, searchClient, cfg.DenseTopK, cfg.LexicalTopK, cfg.FusedTopK)
	pipeline := usecase.NewPipeline(
		usecase.NewIntentStage(classifier, logger),
		usecase.NewRewriteStage(rewriter, logger),
		embedder,
		retriever,
		usecase.NewEvidenceValidator(chunkStore, logger),
		usecase.NewAnswerStage(generator, logger),
		audit,
		usecase.StageTimeouts{
			Classify: time.Duration(cfg.ClassifyTimeoutSeconds) * time.Second,
			Rewrite:  time.Duration(cfg.RewriteTimeoutSeconds) * time.Second,
			Embed:    time.Duration(cfg.EmbedTimeoutSeconds) * time.Second,
			Retrieve: time.Duration(cfg.RetrieveTimeoutSeconds) * time.Second,
			Evidence: time.Duration(cfg.EvidenceTimeoutSeconds) * time.Second,
			Generate: time.Duration(cfg.GenerateTimeoutSeconds) * time.Second,
		},
		logger,
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Pipeline: pipeline,

		closeFn: func() {
			audit.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
