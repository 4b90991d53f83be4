package usecase

import (
	"fmt"
	"log/slog"
	"sync"

	"skillmatch/internal/adapter/catalogue"
	"skillmatch/internal/adapter/index"
	"skillmatch/internal/domain"
	"skillmatch/internal/port"
)

// BuildUseCase turns a loaded catalogue into a ready VectorIndex, reusing the
// persisted index when the catalogue fingerprint and encoder model both
// match. A single-writer lock keeps concurrent builds from interleaving;
// readers keep serving whatever index they already hold.
type BuildUseCase struct {
	store    *index.Store
	embedder port.Embedder
	logger   *slog.Logger

	mu sync.Mutex
}

// BuildResult reports what a build did.
type BuildResult struct {
	Items       int
	FromCache   bool
	Fingerprint string
}

func NewBuildUseCase(store *index.Store, embedder port.Embedder, logger *slog.Logger) *BuildUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildUseCase{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// Build returns an index aligned with items. progress, if non-nil, receives
// (encoded, total) updates during the embedding batch.
func (u *BuildUseCase) Build(items []domain.Assessment, progress func(done, total int)) (*index.VectorIndex, *BuildResult, error) {
	if len(items) == 0 {
		return nil, nil, domain.ErrEmptyCatalogue
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	fingerprint := catalogue.Fingerprint(items)
	model := u.embedder.ModelName()

	cached, err := u.store.Load(model, fingerprint)
	if err != nil {
		// Corrupt cache is recovered by rebuilding, never surfaced.
		u.logger.Warn("index cache unreadable, rebuilding", "error", err)
	}
	if cached != nil {
		if cached.Size() != len(items) {
			u.logger.Warn("index cache size mismatch, rebuilding",
				"cached", cached.Size(), "catalogue", len(items))
		} else {
			return cached, &BuildResult{Items: len(items), FromCache: true, Fingerprint: fingerprint}, nil
		}
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = catalogue.SurrogateText(item)
	}

	vectors, err := u.embedAll(texts, progress)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to embed catalogue: %w", err)
	}
	if len(vectors) != len(items) {
		return nil, nil, fmt.Errorf("encoder returned %d vectors for %d items", len(vectors), len(items))
	}

	idx := index.New(vectors, u.embedder.Dimension(), model, fingerprint)

	if err := u.store.Save(idx); err != nil {
		// Persisting is an optimization; the in-memory index is complete.
		u.logger.Warn("failed to persist index", "error", err)
	}

	return idx, &BuildResult{Items: len(items), Fingerprint: fingerprint}, nil
}

// embedAll encodes texts in fixed-size slices so progress reporting stays
// responsive even when the embedder batches internally.
func (u *BuildUseCase) embedAll(texts []string, progress func(done, total int)) ([][]float32, error) {
	const step = 50

	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += step {
		end := i + step
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := u.embedder.Embed(texts[i:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)

		if progress != nil {
			progress(end, len(texts))
		}
	}

	return vectors, nil
}
