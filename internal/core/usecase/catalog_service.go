package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/atvirokodosprendimai/gamecatalog/internal/core/domain"
	"github.com/atvirokodosprendimai/gamecatalog/internal/core/ports"
)

// CatalogService answers read requests: the filtered, sorted, paged game
// listing plus lookups of single games and reference data.
type CatalogService struct {
	store ports.CatalogReader
}

func NewCatalogService(store ports.CatalogReader) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) ListGames(ctx context.Context, params domain.ListParams) (domain.GamePage, error) {
	query, err := domain.ParseGameQuery(params)
	if err != nil {
		return domain.GamePage{}, err
	}

	games, total, err := s.store.ScanGames(ctx, query)
	if err != nil {
		return domain.GamePage{}, fmt.Errorf("scan games: %w", err)
	}
	if games == nil {
		games = []domain.GameView{}
	}

	return domain.GamePage{
		Games:      games,
		Pagination: domain.NewPagination(query.Page, total),
	}, nil
}

func (s *CatalogService) GetGame(ctx context.Context, id int64) (domain.GameView, error) {
	if id < 1 {
		return domain.GameView{}, domain.GameNotFound()
	}
	view, err := s.store.GetGame(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.GameView{}, domain.GameNotFound()
		}
		return domain.GameView{}, fmt.Errorf("get game: %w", err)
	}
	return view, nil
}

func (s *CatalogService) ListPublishers(ctx context.Context) ([]domain.Publisher, error) {
	publishers, err := s.store.ListPublishers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list publishers: %w", err)
	}
	return publishers, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
