package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atvirokodosprendimai/gamecatalog/internal/core/domain"
)

type stubEventRepo struct {
	listFn func(ctx context.Context, filter domain.GameEventFilter) ([]domain.GameEvent, error)
}

func (s *stubEventRepo) ListGameEvents(ctx context.Context, filter domain.GameEventFilter) ([]domain.GameEvent, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, nil
}

func TestCatalogServiceListGamesPassesNormalizedQuery(t *testing.T) {
	store := newMemStore()
	var got domain.GameQuery
	store.scanFn = func(_ context.Context, query domain.GameQuery) ([]domain.GameView, int64, error) {
		got = query
		return nil, 0, nil
	}

	page, err := NewCatalogService(store).ListGames(context.Background(), domain.ListParams{
		CategoryID: "3",
		Page:       "0",
		PerPage:    "500",
		Sort:       "star_rating",
		Order:      "DESC",
	})
	require.NoError(t, err)

	require.NotNil(t, got.Filter.CategoryID)
	assert.EqualValues(t, 3, *got.Filter.CategoryID)
	assert.Nil(t, got.Filter.PublisherID)
	assert.Equal(t, domain.PageRequest{Page: 1, PerPage: domain.MaxPerPage}, got.Page)
	assert.Equal(t, domain.GameSort{Field: domain.SortByStarRating, Desc: true}, got.Sort)

	require.NotNil(t, page.Games)
	assert.Empty(t, page.Games)
	assert.Equal(t, 1, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasNext)
	assert.False(t, page.Pagination.HasPrevious)
}

func TestCatalogServiceListGamesInvalidParamsSkipStore(t *testing.T) {
	store := newMemStore()
	store.scanFn = func(context.Context, domain.GameQuery) ([]domain.GameView, int64, error) {
		t.Error("store must not be queried")
		return nil, 0, nil
	}

	_, err := NewCatalogService(store).ListGames(context.Background(), domain.ListParams{Sort: "price"})
	var pe *domain.ParameterError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Invalid sort parameter", pe.Message)
}

func TestCatalogServiceListGamesWrapsStoreErrors(t *testing.T) {
	store := newMemStore()
	store.scanFn = func(context.Context, domain.GameQuery) ([]domain.GameView, int64, error) {
		return nil, 0, errStoreDown
	}

	_, err := NewCatalogService(store).ListGames(context.Background(), domain.ListParams{})
	assert.ErrorIs(t, err, errStoreDown)
}

func TestCatalogServiceGetGameNotFound(t *testing.T) {
	svc := NewCatalogService(newMemStore())

	for _, id := range []int64{0, -1, 42} {
		_, err := svc.GetGame(context.Background(), id)
		assert.EqualError(t, err, "Game not found", "id %d", id)
	}
}

func TestAuditServiceClampsFilter(t *testing.T) {
	var got domain.GameEventFilter
	svc := NewAuditService(&stubEventRepo{
		listFn: func(_ context.Context, filter domain.GameEventFilter) ([]domain.GameEvent, error) {
			got = filter
			return nil, nil
		},
	})
	ctx := context.Background()

	_, err := svc.List(ctx, domain.GameEventFilter{GameID: 7, AfterID: -4, Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, domain.GameEventFilter{GameID: 7, AfterID: 0, Limit: 1000}, got)

	_, err = svc.List(ctx, domain.GameEventFilter{GameID: 7})
	require.NoError(t, err)
	assert.Equal(t, 100, got.Limit)

	_, err = svc.List(ctx, domain.GameEventFilter{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
