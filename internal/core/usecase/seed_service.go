package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/atvirokodosprendimai/gamecatalog/internal/core/domain"
	"github.com/atvirokodosprendimai/gamecatalog/internal/core/ports"
)

// SeedService loads reference data and games in one transaction. Categories
// and publishers are matched by exact name, games by title within a
// publisher, so applying the same catalog twice is a no-op.
type SeedService struct {
	store ports.CatalogStore
}

func NewSeedService(store ports.CatalogStore) *SeedService {
	return &SeedService{store: store}
}

func (s *SeedService) Apply(ctx context.Context, catalog domain.SeedCatalog, meta domain.MutationMetadata) (domain.SeedResult, error) {
	if meta.Source == "" {
		meta.Source = "seed"
	}
	meta = meta.Normalize()

	var result domain.SeedResult
	err := s.store.WithinTx(ctx, func(tx ports.CatalogTx) error {
		result = domain.SeedResult{}

		for _, c := range catalog.Categories {
			created, err := ensureCategory(tx, c)
			if err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
			if created {
				result.CategoriesCreated++
			}
		}

		for _, p := range catalog.Publishers {
			created, err := ensurePublisher(tx, p)
			if err != nil {
				return fmt.Errorf("seed publisher %q: %w", p.Name, err)
			}
			if created {
				result.PublishersCreated++
			}
		}

		for _, g := range catalog.Games {
			created, err := ensureGame(tx, g, meta)
			if err != nil {
				return fmt.Errorf("seed game %q: %w", g.Title, err)
			}
			if created {
				result.GamesCreated++
			} else {
				result.GamesSkipped++
			}
		}
		return nil
	})
	if err != nil {
		return domain.SeedResult{}, err
	}
	return result, nil
}

func ensureCategory(tx ports.CatalogTx, c domain.SeedCategory) (bool, error) {
	name, err := domain.ValidateCategoryName(c.Name)
	if err != nil {
		return false, err
	}
	_, err = tx.CategoryByName(name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	if _, err := tx.InsertCategory(domain.Category{Name: name}); err != nil {
		return false, err
	}
	return true, nil
}

func ensurePublisher(tx ports.CatalogTx, p domain.SeedPublisher) (bool, error) {
	name, err := domain.ValidatePublisherName(p.Name)
	if err != nil {
		return false, err
	}
	description, err := domain.ValidatePublisherDescription(p.Description)
	if err != nil {
		return false, err
	}
	_, err = tx.PublisherByName(name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	if _, err := tx.InsertPublisher(domain.Publisher{Name: name, Description: description}); err != nil {
		return false, err
	}
	return true, nil
}

func ensureGame(tx ports.CatalogTx, g domain.SeedGame, meta domain.MutationMetadata) (bool, error) {
	publisher, err := tx.PublisherByName(g.Publisher)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.PublisherNotFound()
		}
		return false, err
	}
	category, err := tx.CategoryByName(g.Category)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.CategoryNotFound()
		}
		return false, err
	}

	exists, err := tx.GameExists(g.Title, publisher.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	in := domain.GameInput{
		Title:       domain.Field{Present: true, Value: g.Title},
		Description: domain.Field{Present: true, Value: g.Description},
		PublisherID: domain.Field{Present: true, Value: publisher.ID},
		CategoryID:  domain.Field{Present: true, Value: category.ID},
	}
	if g.StarRating != nil {
		in.StarRating = domain.Field{Present: true, Value: *g.StarRating}
	}

	game, err := createGame(tx, in)
	if err != nil {
		return false, err
	}
	if err := recordEvent(tx, meta, domain.EventGameCreated, game.ID, nil, &game, allGameFields); err != nil {
		return false, err
	}
	return true, nil
}
