package search

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"manual-assistant/internal/domain"
)

// DefaultCacheSize bounds the query-embedding cache. Follow-up turns
// re-embed near-identical composed queries, so even a small cache
// saves most repeat encoder calls within a conversation.
const DefaultCacheSize = 256

// Provider implements similarity search over the passage index:
// encode the query, then run vector search with progressively looser
// filters until something comes back.
type Provider struct {
	encoder domain.VectorEncoder
	repo    domain.PassageRepository
	cache   *lru.Cache[string, []float32]
	logger  *slog.Logger
}

// NewProvider creates a search provider. cacheSize <= 0 falls back to
// DefaultCacheSize.
func NewProvider(encoder domain.VectorEncoder, repo domain.PassageRepository, cacheSize int, logger *slog.Logger) (*Provider, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	return &Provider{
		encoder: encoder,
		repo:    repo,
		cache:   cache,
		logger:  logger,
	}, nil
}

// Search embeds the query and returns the topK closest passages. When
// a brand+type filter matches nothing, the filter is loosened to type
// only, then dropped, so a mislabeled or missing manual degrades to
// broader results instead of an empty answer.
func (p *Provider) Search(ctx context.Context, query string, topK int, filter domain.SearchFilter) ([]domain.RetrievedPassage, error) {
	embedding, err := p.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	for _, f := range fallbackFilters(filter) {
		results, err := p.repo.SearchByVector(ctx, embedding, topK, f)
		if err != nil {
			return nil, fmt.Errorf("vector search failed: %w", err)
		}
		if len(results) > 0 {
			if f != filter {
				p.logger.Info("search_filter_loosened",
					slog.String("requested_brand", filter.Brand),
					slog.String("requested_type", filter.Type),
					slog.String("used_brand", f.Brand),
					slog.String("used_type", f.Type))
			}
			return toPassages(results), nil
		}
	}
	return nil, nil
}

// fallbackFilters returns the filter relaxation chain, tightest first.
func fallbackFilters(filter domain.SearchFilter) []domain.SearchFilter {
	if filter.IsZero() {
		return []domain.SearchFilter{{}}
	}
	var chain []domain.SearchFilter
	chain = append(chain, filter)
	if filter.Brand != "" && filter.Type != "" {
		chain = append(chain, domain.SearchFilter{Type: filter.Type})
	}
	chain = append(chain, domain.SearchFilter{})
	return chain
}

func (p *Provider) embed(ctx context.Context, query string) ([]float32, error) {
	if cached, ok := p.cache.Get(query); ok {
		return cached, nil
	}

	embeddings, err := p.encoder.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("encoder returned %d embeddings for one query", len(embeddings))
	}

	p.cache.Add(query, embeddings[0])
	return embeddings[0], nil
}

func toPassages(results []domain.VectorSearchResult) []domain.RetrievedPassage {
	passages := make([]domain.RetrievedPassage, len(results))
	for i, r := range results {
		passages[i] = domain.RetrievedPassage{
			Content:  r.Passage.Content,
			Score:    r.Score,
			Metadata: r.Passage.Metadata,
		}
	}
	return passages
}

var _ domain.SearchProvider = (*Provider)(nil)
