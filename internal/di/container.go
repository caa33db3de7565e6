package di

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"manual-assistant/internal/adapter/llm"
	"manual-assistant/internal/adapter/pdfext"
	"manual-assistant/internal/adapter/repository"
	"manual-assistant/internal/adapter/search"
	"manual-assistant/internal/domain"
	"manual-assistant/internal/infra/config"
	"manual-assistant/internal/infra/httpclient"
	"manual-assistant/internal/infra/registry"
	"manual-assistant/internal/usecase"
	"manual-assistant/internal/usecase/conversation"
	"manual-assistant/internal/usecase/retrieval"
	"manual-assistant/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the
// application.
type ApplicationComponents struct {
	PassageRepo domain.PassageRepository
	JobRepo     domain.IngestJobRepository
	Registry    *domain.ManualRegistry

	AskUsecase    usecase.AskUsecase
	IngestUsecase usecase.IngestManualUsecase

	Worker *worker.JobWorker
}

// NewApplicationComponents wires all dependencies from config and
// database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) (*ApplicationComponents, error) {
	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load manual registry: %w", err)
	}

	passageRepo := repository.NewPassageRepository(pool)
	jobRepo := repository.NewIngestJobRepository(pool)
	txManager := repository.NewPostgresTransactionManager(pool)

	embedderHTTP := httpclient.NewPooledClient(30 * time.Second)
	generatorHTTP := httpclient.NewPooledClient(120 * time.Second)

	embedder := llm.NewOpenAIEmbedder(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, embedderHTTP, cfg.EmbedRateLimit)
	generator := llm.NewOpenAIGenerator(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.GenerationModel, generatorHTTP)

	provider, err := search.NewProvider(embedder, passageRepo, cfg.EmbedCacheSize, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create search provider: %w", err)
	}

	retrievalCfg := retrieval.Config{
		TopK:               cfg.RetrievalTopK,
		StageOneMin:        cfg.StageOneMin,
		DominanceThreshold: cfg.DominanceThreshold,
	}
	if err := retrievalCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retrieval config: %w", err)
	}
	orchestrator := retrieval.NewOrchestrator(provider, retrievalCfg, log)

	tracker := conversation.NewTracker(log)
	promptBuilder := usecase.NewOperatorPromptBuilder()
	askUsecase := usecase.NewAskUsecase(tracker, orchestrator, promptBuilder, generator, cfg.AnswerMaxTokens, log)

	chunker, err := domain.NewManualChunkerWithLimits(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("invalid chunking config: %w", err)
	}
	extractor := pdfext.NewExtractor(log)
	ingestUsecase := usecase.NewIngestManualUsecase(
		extractor, chunker, embedder, passageRepo, txManager, cfg.IngestWorkers, log,
	)

	jobWorker := worker.NewJobWorker(jobRepo, ingestUsecase, log)

	return &ApplicationComponents{
		PassageRepo:   passageRepo,
		JobRepo:       jobRepo,
		Registry:      reg,
		AskUsecase:    askUsecase,
		IngestUsecase: ingestUsecase,
		Worker:        jobWorker,
	}, nil
}
