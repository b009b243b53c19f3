package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atvirokodosprendimai/gamecatalog/internal/core/domain"
	"github.com/atvirokodosprendimai/gamecatalog/internal/core/ports"
	"github.com/google/uuid"
)

var allGameFields = []string{
	domain.FieldTitle,
	domain.FieldDescription,
	domain.FieldStarRating,
	domain.FieldPublisherID,
	domain.FieldCategoryID,
}

// GameService runs create, update and delete. Each call is one store
// transaction: existence checks, validation, the write and its event either
// all commit or all roll back.
type GameService struct {
	store ports.CatalogStore
}

func NewGameService(store ports.CatalogStore) *GameService {
	return &GameService{store: store}
}

func (s *GameService) Create(ctx context.Context, in domain.GameInput, meta domain.MutationMetadata) (domain.GameView, error) {
	if in.Empty() {
		return domain.GameView{}, domain.ErrNoData
	}
	if missing := in.MissingForCreate(); len(missing) > 0 {
		return domain.GameView{}, &domain.MissingFieldsError{Fields: missing}
	}
	meta = meta.Normalize()

	var view domain.GameView
	err := s.store.WithinTx(ctx, func(tx ports.CatalogTx) error {
		game, err := createGame(tx, in)
		if err != nil {
			return err
		}
		if err := recordEvent(tx, meta, domain.EventGameCreated, game.ID, nil, &game, allGameFields); err != nil {
			return err
		}
		view, err = tx.GameView(game.ID)
		if err != nil {
			return fmt.Errorf("reload created game: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.GameView{}, err
	}
	return view, nil
}

func (s *GameService) Update(ctx context.Context, id int64, in domain.GameInput, meta domain.MutationMetadata) (domain.GameView, error) {
	if in.Empty() {
		return domain.GameView{}, domain.ErrNoData
	}
	if id < 1 {
		return domain.GameView{}, domain.GameNotFound()
	}
	meta = meta.Normalize()

	var view domain.GameView
	err := s.store.WithinTx(ctx, func(tx ports.CatalogTx) error {
		current, err := loadGame(tx, id)
		if err != nil {
			return err
		}

		patch, err := buildPatch(tx, in)
		if err != nil {
			return err
		}

		if !patch.Empty() {
			changed := patch.ChangedFields(current)
			updated, err := tx.UpdateGame(id, patch)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return domain.GameNotFound()
				}
				return fmt.Errorf("update game: %w", err)
			}
			if err := recordEvent(tx, meta, domain.EventGameUpdated, id, &current, &updated, changed); err != nil {
				return err
			}
		}

		view, err = tx.GameView(id)
		if err != nil {
			return fmt.Errorf("reload updated game: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.GameView{}, err
	}
	return view, nil
}

func (s *GameService) Delete(ctx context.Context, id int64, meta domain.MutationMetadata) error {
	if id < 1 {
		return domain.GameNotFound()
	}
	meta = meta.Normalize()

	return s.store.WithinTx(ctx, func(tx ports.CatalogTx) error {
		current, err := loadGame(tx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteGame(id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.GameNotFound()
			}
			return fmt.Errorf("delete game: %w", err)
		}
		return recordEvent(tx, meta, domain.EventGameDeleted, id, &current, nil, nil)
	})
}

func loadGame(tx ports.CatalogTx, id int64) (domain.Game, error) {
	game, err := tx.GameByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Game{}, domain.GameNotFound()
		}
		return domain.Game{}, fmt.Errorf("load game: %w", err)
	}
	return game, nil
}

// createGame checks references before field rules: publisher, then
// category, then title, description and rating. The first failure wins.
func createGame(tx ports.CatalogTx, in domain.GameInput) (domain.Game, error) {
	publisherID, err := requirePublisher(tx, in.PublisherID.Value)
	if err != nil {
		return domain.Game{}, err
	}
	categoryID, err := requireCategory(tx, in.CategoryID.Value)
	if err != nil {
		return domain.Game{}, err
	}

	title, err := domain.ValidateGameTitle(in.Title.Value)
	if err != nil {
		return domain.Game{}, err
	}
	description, err := requireDescription(in.Description.Value)
	if err != nil {
		return domain.Game{}, err
	}

	game := domain.Game{
		Title:       title,
		Description: description,
		CategoryID:  categoryID,
		PublisherID: publisherID,
	}
	if in.StarRating.Present {
		game.StarRating, err = domain.ValidateStarRating(in.StarRating.Value)
		if err != nil {
			return domain.Game{}, err
		}
	}

	created, err := tx.InsertGame(game)
	if err != nil {
		return domain.Game{}, fmt.Errorf("insert game: %w", err)
	}
	return created, nil
}

// buildPatch validates only the supplied fields, in the order title,
// description, starRating, publisherId, categoryId.
func buildPatch(tx ports.CatalogTx, in domain.GameInput) (domain.GamePatch, error) {
	var patch domain.GamePatch

	if in.Title.Present {
		title, err := domain.ValidateGameTitle(in.Title.Value)
		if err != nil {
			return domain.GamePatch{}, err
		}
		patch.Title = &title
	}
	if in.Description.Present {
		description, err := requireDescription(in.Description.Value)
		if err != nil {
			return domain.GamePatch{}, err
		}
		patch.Description = &description
	}
	if in.StarRating.Present {
		rating, err := domain.ValidateStarRating(in.StarRating.Value)
		if err != nil {
			return domain.GamePatch{}, err
		}
		patch.SetStarRating = true
		patch.StarRating = rating
	}
	if in.PublisherID.Present {
		publisherID, err := requirePublisher(tx, in.PublisherID.Value)
		if err != nil {
			return domain.GamePatch{}, err
		}
		patch.PublisherID = &publisherID
	}
	if in.CategoryID.Present {
		categoryID, err := requireCategory(tx, in.CategoryID.Value)
		if err != nil {
			return domain.GamePatch{}, err
		}
		patch.CategoryID = &categoryID
	}
	return patch, nil
}

// requireDescription applies the nullable description rule, then rejects
// null because games always store a description.
func requireDescription(value any) (string, error) {
	description, err := domain.ValidateGameDescription(value)
	if err != nil {
		return "", err
	}
	if description == nil {
		return "", &domain.ValidationError{Field: "Description", Rule: domain.RuleRequired}
	}
	return *description, nil
}

func requirePublisher(tx ports.CatalogTx, value any) (int64, error) {
	id, err := domain.ParseReferenceID(domain.FieldPublisherID, value)
	if err != nil {
		return 0, err
	}
	ok, err := tx.PublisherExists(id)
	if err != nil {
		return 0, fmt.Errorf("check publisher: %w", err)
	}
	if !ok {
		return 0, domain.PublisherNotFound()
	}
	return id, nil
}

func requireCategory(tx ports.CatalogTx, value any) (int64, error) {
	id, err := domain.ParseReferenceID(domain.FieldCategoryID, value)
	if err != nil {
		return 0, err
	}
	ok, err := tx.CategoryExists(id)
	if err != nil {
		return 0, fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return 0, domain.CategoryNotFound()
	}
	return id, nil
}

type gameSnapshot struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StarRating  *float64 `json:"starRating"`
	CategoryID  int64    `json:"categoryId"`
	PublisherID int64    `json:"publisherId"`
}

func snapshot(g *domain.Game) (json.RawMessage, error) {
	if g == nil {
		return nil, nil
	}
	b, err := json.Marshal(gameSnapshot{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		StarRating:  g.StarRating,
		CategoryID:  g.CategoryID,
		PublisherID: g.PublisherID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal game %d snapshot: %w", g.ID, err)
	}
	return b, nil
}

func recordEvent(tx ports.CatalogTx, meta domain.MutationMetadata, action string, gameID int64, before, after *domain.Game, changed []string) error {
	if changed == nil {
		changed = []string{}
	}
	beforeJSON, err := snapshot(before)
	if err != nil {
		return err
	}
	afterJSON, err := snapshot(after)
	if err != nil {
		return err
	}
	err = tx.RecordGameEvent(domain.GameEvent{
		EventID:       uuid.NewString(),
		GameID:        gameID,
		Action:        action,
		Source:        meta.Source,
		RequestID:     meta.RequestID,
		Before:        beforeJSON,
		After:         afterJSON,
		ChangedFields: changed,
		OccurredAt:    meta.OccurredAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("record %s event: %w", action, err)
	}
	return nil
}
