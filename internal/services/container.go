package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/talent-allocator/internal/config"
	"alfredoptarigan/talent-allocator/internal/repositories"
)

// Container is the wired service graph shared by the API server and the CLI.
type Container struct {
	Store       repositories.Store
	Pipeline    *ResumePipeline
	Positions   *PositionService
	Assignments *AssignmentService
	Queries     *QueryService
	Reports     *ReportService
	Storage     StorageService
}

// NewContainer wires services around an existing generator. index may be nil.
func NewContainer(cfg *config.Config, store repositories.Store, gen TextGenerator, index PositionIndex, log *zap.Logger) *Container {
	timeout := cfg.Reasoning.CallTimeout

	classifier := NewIntentionClassifier(gen, timeout, log)
	evaluator := NewPositionEvaluator(gen, timeout, cfg.Worker.EvalConcurrency, log)
	coordinator := NewPersistenceCoordinator(store, log)
	realloc := NewReallocationService(coordinator, classifier, evaluator, cfg.Allocation.MatchConfidenceThreshold, log)
	queries := NewQueryService(store)

	return &Container{
		Store:       store,
		Pipeline:    NewResumePipeline(store, NewPDFParserService(), NewProfileExtractor(), classifier, evaluator, coordinator, log),
		Positions:   NewPositionService(store, evaluator, realloc, index, log),
		Assignments: NewAssignmentService(store, evaluator, log),
		Queries:     queries,
		Reports:     NewReportService(queries),
		Storage:     NewStorageService(cfg.Storage.UploadPath),
	}
}

// BuildReasoning creates the configured generator with its optional cache, and the
// position index when qdrant is configured and the backend can embed.
func BuildReasoning(ctx context.Context, cfg *config.Config, log *zap.Logger) (TextGenerator, PositionIndex, error) {
	var (
		backend  TextGenerator
		embedder Embedder
	)

	switch cfg.Reasoning.Provider {
	case config.ProviderGemini:
		gemini, err := NewGeminiService(cfg.Reasoning.GeminiAPIKey, cfg.Reasoning.GeminiModel, cfg.Reasoning.GeminiEmbedModel, log)
		if err != nil {
			return nil, nil, err
		}
		backend, embedder = gemini, gemini
	case config.ProviderOpenAI:
		openai, err := NewOpenAIService(cfg.Reasoning.OpenAIAPIKey, cfg.Reasoning.OpenAIBaseURL, cfg.Reasoning.OpenAIModel)
		if err != nil {
			return nil, nil, err
		}
		backend = openai
	default:
		return nil, nil, fmt.Errorf("unsupported reasoning provider %q", cfg.Reasoning.Provider)
	}

	gen := WithRetry(backend, cfg.Reasoning.MaxRetries, cfg.Reasoning.RetryDelay, log)

	if cfg.Redis.URL != "" {
		cache, err := NewRedisCache(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn("reasoning cache disabled", zap.Error(err))
		} else {
			gen = WithCache(gen, cache, cfg.Redis.TTL, log)
		}
	}

	var index PositionIndex
	switch {
	case cfg.Qdrant.URL == "":
	case embedder == nil:
		log.Warn("position index needs an embedding backend, disabled", zap.String("provider", cfg.Reasoning.Provider))
	default:
		idx, err := NewPositionIndex(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, embedder, log)
		if err != nil {
			return nil, nil, err
		}
		if err := idx.InitCollection(ctx); err != nil {
			log.Warn("position index disabled", zap.Error(err))
		} else {
			index = idx
		}
	}

	return gen, index, nil
}
