package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"skillmatch/config"
	"skillmatch/internal/adapter/balancer"
	"skillmatch/internal/adapter/cache"
	"skillmatch/internal/adapter/catalogue"
	"skillmatch/internal/adapter/embedding"
	"skillmatch/internal/adapter/explain"
	"skillmatch/internal/adapter/index"
	"skillmatch/internal/domain"
	"skillmatch/internal/port"
	"skillmatch/internal/usecase"
)

// cataloguePath resolves the configured catalogue source against the root dir.
func cataloguePath() string {
	path := cfg.Catalogue.Path
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}

func newEmbedder() (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.BaseURL)
	default:
		var e *embedding.OpenAIEmbedder
		var err error
		if cfg.Embedding.BaseURL != "" {
			e, err = embedding.NewOpenAICompatibleEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL)
		} else {
			e, err = embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model)
		}
		if err != nil {
			return nil, err
		}
		e.SetBatchSize(cfg.Embedding.BatchSize)
		return e, nil
	}
}

// newExplainer picks the explainer implementation. Anything that prevents the
// network-backed one from starting degrades to the static fallback.
func newExplainer() port.Explainer {
	if !cfg.Explain.Enabled {
		return explain.NewStaticExplainer()
	}

	gemini, err := explain.NewGeminiExplainer(
		cfg.Explain.APIKeyEnv,
		cfg.Explain.Model,
		cfg.Explain.BaseURL,
		time.Duration(cfg.Explain.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: explanations disabled: %v\n", err)
		return explain.NewStaticExplainer()
	}

	return explain.NewBreakerExplainer(gemini, cfg.Explain.BreakerFails)
}

// buildEngine loads the catalogue, builds (or loads) the vector index, and
// wires the engine facade.
func buildEngine(progress func(done, total int)) (*usecase.Engine, error) {
	items, err := catalogue.Load(cataloguePath())
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogue: %w", err)
	}

	embedder, err := newEmbedder()
	if err != nil {
		return nil, err
	}

	idx, err := buildIndex(items, embedder, progress)
	if err != nil {
		return nil, err
	}

	return usecase.NewEngine(
		items,
		idx,
		embedder,
		balancer.New(),
		newExplainer(),
		usecase.EngineOptions{
			MinQueryChars: cfg.Engine.MinQueryChars,
			MaxTopK:       cfg.Engine.MaxTopK,
			OverfetchCap:  cfg.Engine.OverfetchCap,
			ResultCache:   cache.NewResultCache(cfg.Cache.MaxEntries, time.Duration(cfg.Cache.TTLSeconds)*time.Second),
			Logger:        slog.Default(),
		},
	)
}

// buildIndex opens the persisted index store, reuses or rebuilds the vectors,
// and closes the store again; scoring runs entirely in memory.
func buildIndex(items []domain.Assessment, embedder port.Embedder, progress func(done, total int)) (*index.VectorIndex, error) {
	if err := config.EnsureDataDir(rootDir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := index.OpenStore(config.IndexDBPath(rootDir))
	if err != nil {
		return nil, fmt.Errorf("failed to open index store: %w", err)
	}
	defer store.Close()

	buildUC := usecase.NewBuildUseCase(store, embedder, slog.Default())
	idx, result, err := buildUC.Build(items, progress)
	if err != nil {
		return nil, err
	}

	if result.FromCache {
		slog.Debug("loaded index from cache", "items", result.Items)
	} else {
		slog.Debug("built index", "items", result.Items, "fingerprint", result.Fingerprint)
	}
	return idx, nil
}
