package search

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"manual-assistant/internal/domain"
)

type mockEncoder struct {
	mock.Mock
}

func (m *mockEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *mockEncoder) Version() string { return "test" }

type mockPassageRepo struct {
	mock.Mock
}

func (m *mockPassageRepo) BulkInsertPassages(ctx context.Context, passages []domain.ManualPassage) error {
	return m.Called(ctx, passages).Error(0)
}

func (m *mockPassageRepo) DeleteBySource(ctx context.Context, source string) error {
	return m.Called(ctx, source).Error(0)
}

func (m *mockPassageRepo) SearchByVector(ctx context.Context, embedding []float32, topK int, filter domain.SearchFilter) ([]domain.VectorSearchResult, error) {
	args := m.Called(ctx, embedding, topK, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VectorSearchResult), args.Error(1)
}

func (m *mockPassageRepo) Stats(ctx context.Context) (*domain.IndexStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IndexStats), args.Error(1)
}

func someResults(n int) []domain.VectorSearchResult {
	results := make([]domain.VectorSearchResult, n)
	for i := range results {
		results[i] = domain.VectorSearchResult{
			Passage: domain.ManualPassage{Content: "text"},
			Score:   0.9,
		}
	}
	return results
}

func newProviderFixture(t *testing.T, encoder domain.VectorEncoder, repo domain.PassageRepository) *Provider {
	t.Helper()
	p, err := NewProvider(encoder, repo, 8, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return p
}

func TestProviderSearch(t *testing.T) {
	ctx := context.Background()
	vec := []float32{0.1, 0.2}

	t.Run("tight filter that matches is used as-is", func(t *testing.T) {
		encoder := new(mockEncoder)
		encoder.On("Encode", ctx, []string{"descale"}).Return([][]float32{vec}, nil).Once()

		repo := new(mockPassageRepo)
		repo.On("SearchByVector", ctx, vec, 8, domain.SearchFilter{Brand: "Metos", Type: "Coffee_Maker"}).
			Return(someResults(3), nil).Once()

		p := newProviderFixture(t, encoder, repo)
		passages, err := p.Search(ctx, "descale", 8, domain.SearchFilter{Brand: "Metos", Type: "Coffee_Maker"})

		require.NoError(t, err)
		assert.Len(t, passages, 3)
		repo.AssertExpectations(t)
	})

	t.Run("empty brand match loosens to type then unfiltered", func(t *testing.T) {
		encoder := new(mockEncoder)
		encoder.On("Encode", ctx, mock.Anything).Return([][]float32{vec}, nil).Once()

		repo := new(mockPassageRepo)
		repo.On("SearchByVector", ctx, vec, 8, domain.SearchFilter{Brand: "Metos", Type: "Coffee_Maker"}).
			Return([]domain.VectorSearchResult{}, nil).Once()
		repo.On("SearchByVector", ctx, vec, 8, domain.SearchFilter{Type: "Coffee_Maker"}).
			Return([]domain.VectorSearchResult{}, nil).Once()
		repo.On("SearchByVector", ctx, vec, 8, domain.SearchFilter{}).
			Return(someResults(2), nil).Once()

		p := newProviderFixture(t, encoder, repo)
		passages, err := p.Search(ctx, "descale", 8, domain.SearchFilter{Brand: "Metos", Type: "Coffee_Maker"})

		require.NoError(t, err)
		assert.Len(t, passages, 2)
		repo.AssertExpectations(t)
	})

	t.Run("repeated query hits the embedding cache", func(t *testing.T) {
		encoder := new(mockEncoder)
		encoder.On("Encode", ctx, []string{"descale"}).Return([][]float32{vec}, nil).Once()

		repo := new(mockPassageRepo)
		repo.On("SearchByVector", ctx, vec, 8, domain.SearchFilter{}).
			Return(someResults(1), nil).Twice()

		p := newProviderFixture(t, encoder, repo)
		_, err := p.Search(ctx, "descale", 8, domain.SearchFilter{})
		require.NoError(t, err)
		_, err = p.Search(ctx, "descale", 8, domain.SearchFilter{})
		require.NoError(t, err)

		encoder.AssertExpectations(t)
	})

	t.Run("nothing anywhere returns empty without error", func(t *testing.T) {
		encoder := new(mockEncoder)
		encoder.On("Encode", ctx, mock.Anything).Return([][]float32{vec}, nil).Once()

		repo := new(mockPassageRepo)
		repo.On("SearchByVector", ctx, vec, 8, mock.Anything).
			Return([]domain.VectorSearchResult{}, nil)

		p := newProviderFixture(t, encoder, repo)
		passages, err := p.Search(ctx, "anything", 8, domain.SearchFilter{Type: "Fryer"})

		require.NoError(t, err)
		assert.Empty(t, passages)
	})
}
