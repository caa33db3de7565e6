package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"

	"manual-assistant/internal/domain"
)

// embedBatchSize bounds how many chunk texts go to the encoder per
// request. Embedding services reject oversized batches long before
// memory becomes a concern.
const embedBatchSize = 32

// IngestResult reports what one manual contributed to the index.
type IngestResult struct {
	Source   string
	Pages    int
	Passages int
}

// IngestManualUsecase turns registered manuals into searchable
// passages. Re-ingesting a manual replaces its previous passages.
type IngestManualUsecase interface {
	Ingest(ctx context.Context, manual domain.ManualDefinition) (*IngestResult, error)
	IngestAll(ctx context.Context, manuals []domain.ManualDefinition) ([]IngestResult, error)
}

type ingestManualUsecase struct {
	extractor   domain.ManualExtractor
	chunker     domain.ManualChunker
	encoder     domain.VectorEncoder
	passageRepo domain.PassageRepository
	txManager   domain.TransactionManager
	concurrency int
	logger      *slog.Logger
}

// NewIngestManualUsecase wires together the extraction, chunking,
// embedding, and storage stages of the ingest pipeline.
func NewIngestManualUsecase(
	extractor domain.ManualExtractor,
	chunker domain.ManualChunker,
	encoder domain.VectorEncoder,
	passageRepo domain.PassageRepository,
	txManager domain.TransactionManager,
	concurrency int,
	logger *slog.Logger,
) IngestManualUsecase {
	if concurrency <= 0 {
		concurrency = 2
	}
	return &ingestManualUsecase{
		extractor:   extractor,
		chunker:     chunker,
		encoder:     encoder,
		passageRepo: passageRepo,
		txManager:   txManager,
		concurrency: concurrency,
		logger:      logger,
	}
}

func (u *ingestManualUsecase) Ingest(ctx context.Context, manual domain.ManualDefinition) (*IngestResult, error) {
	pages, err := u.extractor.Extract(ctx, manual.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", manual.Path, err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no text extracted from %s", manual.Path)
	}

	chunks, err := u.chunker.Chunk(pages)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk %s: %w", manual.Path, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks produced from %s", manual.Path)
	}

	u.logger.Info("manual_extracted",
		slog.String("source", manual.Path),
		slog.Int("pages", len(pages)),
		slog.Int("chunks", len(chunks)))

	embeddings, err := u.embedAll(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %s: %w", manual.Path, err)
	}

	now := time.Now()
	passages := make([]domain.ManualPassage, len(chunks))
	for i, c := range chunks {
		passages[i] = domain.ManualPassage{
			ID:        uuid.New(),
			Content:   c.Content,
			Embedding: pgvector.NewVector(embeddings[i]),
			Metadata: domain.PassageMetadata{
				EquipmentType:  manual.EquipmentType,
				EquipmentBrand: manual.EquipmentBrand,
				EquipmentModel: manual.EquipmentModel,
				Title:          manual.Title,
				Source:         manual.Path,
				PageNumber:     c.Page,
				ChunkID:        fmt.Sprintf("%s#%d", manual.Path, c.Ordinal),
			},
			CreatedAt: now,
		}
	}

	err = u.txManager.RunInTx(ctx, func(ctx context.Context) error {
		if err := u.passageRepo.DeleteBySource(ctx, manual.Path); err != nil {
			return fmt.Errorf("failed to delete stale passages: %w", err)
		}
		if err := u.passageRepo.BulkInsertPassages(ctx, passages); err != nil {
			return fmt.Errorf("failed to insert passages: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("manual_ingested",
		slog.String("source", manual.Path),
		slog.String("title", manual.Title),
		slog.Int("passages", len(passages)))

	return &IngestResult{
		Source:   manual.Path,
		Pages:    len(pages),
		Passages: len(passages),
	}, nil
}

// IngestAll ingests several manuals concurrently. One manual failing
// cancels the remaining work and surfaces that error.
func (u *ingestManualUsecase) IngestAll(ctx context.Context, manuals []domain.ManualDefinition) ([]IngestResult, error) {
	results := make([]IngestResult, len(manuals))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for i, manual := range manuals {
		g.Go(func() error {
			res, err := u.Ingest(gctx, manual)
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (u *ingestManualUsecase) embedAll(ctx context.Context, chunks []domain.ManualChunk) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		batch, err := u.encoder.Encode(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embedding count mismatch: got %d want %d", len(batch), len(texts))
		}
		embeddings = append(embeddings, batch...)
	}
	return embeddings, nil
}
