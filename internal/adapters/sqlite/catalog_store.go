package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atvirokodosprendimai/gamecatalog/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/gamecatalog/internal/core/domain"
	"github.com/atvirokodosprendimai/gamecatalog/internal/core/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type categoryModel struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;not null"`
}

func (categoryModel) TableName() string {
	return "categories"
}

type publisherModel struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string  `gorm:"column:name;not null"`
	Description *string `gorm:"column:description"`
}

func (publisherModel) TableName() string {
	return "publishers"
}

type gameModel struct {
	ID          int64    `gorm:"column:id;primaryKey;autoIncrement"`
	Title       string   `gorm:"column:title;not null"`
	Description string   `gorm:"column:description;not null"`
	StarRating  *float64 `gorm:"column:star_rating"`
	CategoryID  int64    `gorm:"column:category_id;not null"`
	PublisherID int64    `gorm:"column:publisher_id;not null"`
}

func (gameModel) TableName() string {
	return "games"
}

// gameRow is one games row with its outer-joined publisher and category.
type gameRow struct {
	ID             int64    `gorm:"column:id"`
	Title          string   `gorm:"column:title"`
	Description    string   `gorm:"column:description"`
	StarRating     *float64 `gorm:"column:star_rating"`
	PublisherRefID *int64   `gorm:"column:publisher_ref_id"`
	PublisherName  *string  `gorm:"column:publisher_name"`
	CategoryRefID  *int64   `gorm:"column:category_ref_id"`
	CategoryName   *string  `gorm:"column:category_name"`
}

const gameViewColumns = "games.id AS id, games.title AS title, games.description AS description, " +
	"games.star_rating AS star_rating, publishers.id AS publisher_ref_id, publishers.name AS publisher_name, " +
	"categories.id AS category_ref_id, categories.name AS category_name"

var sortColumns = map[domain.SortField]string{
	domain.SortByTitle:      "title",
	domain.SortByStarRating: "star_rating",
	domain.SortByID:         "id",
}

type CatalogStore struct {
	db *gormsqlite.DB
}

func NewCatalogStore(db *gormsqlite.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

var _ ports.CatalogStore = (*CatalogStore)(nil)

func (s *CatalogStore) WithinTx(ctx context.Context, fn func(tx ports.CatalogTx) error) error {
	return s.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return fn(&catalogTx{db: tx.DB})
	})
}

func (s *CatalogStore) GetGame(ctx context.Context, id int64) (domain.GameView, error) {
	var view domain.GameView
	err := s.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		var err error
		view, err = loadGameView(tx.DB, id)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.GameView{}, domain.ErrNotFound
		}
		return domain.GameView{}, fmt.Errorf("get game: %w", err)
	}
	return view, nil
}

// ScanGames counts the filtered set, then reads one ordered page of it. Both
// run in the same read transaction so the count matches the page.
func (s *CatalogStore) ScanGames(ctx context.Context, query domain.GameQuery) ([]domain.GameView, int64, error) {
	column, ok := sortColumns[query.Sort.Field]
	if !ok {
		return nil, 0, fmt.Errorf("unsupported sort field %q", query.Sort.Field)
	}

	var (
		rows  []gameRow
		total int64
	)
	err := s.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := applyGameFilter(tx.Model(&gameModel{}), query.Filter).Count(&total).Error; err != nil {
			return fmt.Errorf("count games: %w", err)
		}

		q := applyGameFilter(joinedGames(tx.DB), query.Filter).
			Order(clause.OrderByColumn{Column: clause.Column{Table: "games", Name: column}, Desc: query.Sort.Desc})
		if query.Sort.Field != domain.SortByID {
			q = q.Order(clause.OrderByColumn{Column: clause.Column{Table: "games", Name: "id"}})
		}
		return q.Offset(query.Page.Offset()).Limit(query.Page.PerPage).Scan(&rows).Error
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan games: %w", err)
	}

	views := make([]domain.GameView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toGameView(row))
	}
	return views, total, nil
}

func (s *CatalogStore) ListPublishers(ctx context.Context) ([]domain.Publisher, error) {
	var models []publisherModel
	err := s.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Order("id ASC").Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list publishers: %w", err)
	}

	result := make([]domain.Publisher, 0, len(models))
	for _, m := range models {
		result = append(result, toPublisherDomain(m))
	}
	return result, nil
}

func (s *CatalogStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var models []categoryModel
	err := s.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Order("id ASC").Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	result := make([]domain.Category, 0, len(models))
	for _, m := range models {
		result = append(result, domain.Category{ID: m.ID, Name: m.Name})
	}
	return result, nil
}

type catalogTx struct {
	db *gorm.DB
}

func (t *catalogTx) GameByID(id int64) (domain.Game, error) {
	var model gameModel
	if err := t.db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Game{}, domain.ErrNotFound
		}
		return domain.Game{}, fmt.Errorf("get game: %w", err)
	}
	return toGameDomain(model), nil
}

func (t *catalogTx) GameView(id int64) (domain.GameView, error) {
	return loadGameView(t.db, id)
}

func (t *catalogTx) GameExists(title string, publisherID int64) (bool, error) {
	var n int64
	err := t.db.Model(&gameModel{}).Where("title = ? AND publisher_id = ?", title, publisherID).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check game: %w", err)
	}
	return n > 0, nil
}

func (t *catalogTx) InsertGame(game domain.Game) (domain.Game, error) {
	model := gameModel{
		Title:       game.Title,
		Description: game.Description,
		StarRating:  game.StarRating,
		CategoryID:  game.CategoryID,
		PublisherID: game.PublisherID,
	}
	if err := t.db.Create(&model).Error; err != nil {
		return domain.Game{}, fmt.Errorf("insert game: %w", err)
	}
	return toGameDomain(model), nil
}

func (t *catalogTx) UpdateGame(id int64, patch domain.GamePatch) (domain.Game, error) {
	updates := map[string]any{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.SetStarRating {
		if patch.StarRating == nil {
			updates["star_rating"] = nil
		} else {
			updates["star_rating"] = *patch.StarRating
		}
	}
	if patch.PublisherID != nil {
		updates["publisher_id"] = *patch.PublisherID
	}
	if patch.CategoryID != nil {
		updates["category_id"] = *patch.CategoryID
	}
	if len(updates) == 0 {
		return t.GameByID(id)
	}

	res := t.db.Model(&gameModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return domain.Game{}, fmt.Errorf("update game: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.Game{}, domain.ErrNotFound
	}
	return t.GameByID(id)
}

func (t *catalogTx) DeleteGame(id int64) error {
	res := t.db.Where("id = ?", id).Delete(&gameModel{})
	if res.Error != nil {
		return fmt.Errorf("delete game: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (t *catalogTx) PublisherExists(id int64) (bool, error) {
	var n int64
	if err := t.db.Model(&publisherModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check publisher: %w", err)
	}
	return n > 0, nil
}

func (t *catalogTx) PublisherByName(name string) (domain.Publisher, error) {
	var model publisherModel
	if err := t.db.Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Publisher{}, domain.ErrNotFound
		}
		return domain.Publisher{}, fmt.Errorf("get publisher: %w", err)
	}
	return toPublisherDomain(model), nil
}

func (t *catalogTx) InsertPublisher(p domain.Publisher) (domain.Publisher, error) {
	model := publisherModel{Name: p.Name, Description: p.Description}
	if err := t.db.Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Publisher{}, fmt.Errorf("publisher %q: %w", p.Name, domain.ErrConflict)
		}
		return domain.Publisher{}, fmt.Errorf("insert publisher: %w", err)
	}
	return toPublisherDomain(model), nil
}

func (t *catalogTx) CategoryExists(id int64) (bool, error) {
	var n int64
	if err := t.db.Model(&categoryModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return n > 0, nil
}

func (t *catalogTx) CategoryByName(name string) (domain.Category, error) {
	var model categoryModel
	if err := t.db.Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Category{}, domain.ErrNotFound
		}
		return domain.Category{}, fmt.Errorf("get category: %w", err)
	}
	return domain.Category{ID: model.ID, Name: model.Name}, nil
}

func (t *catalogTx) InsertCategory(c domain.Category) (domain.Category, error) {
	model := categoryModel{Name: c.Name}
	if err := t.db.Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Category{}, fmt.Errorf("category %q: %w", c.Name, domain.ErrConflict)
		}
		return domain.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return domain.Category{ID: model.ID, Name: model.Name}, nil
}

func (t *catalogTx) RecordGameEvent(event domain.GameEvent) error {
	return insertGameEvent(t.db, event)
}

func joinedGames(db *gorm.DB) *gorm.DB {
	return db.Table("games").
		Select(gameViewColumns).
		Joins("LEFT JOIN publishers ON publishers.id = games.publisher_id").
		Joins("LEFT JOIN categories ON categories.id = games.category_id")
}

func applyGameFilter(db *gorm.DB, filter domain.GameFilter) *gorm.DB {
	if filter.CategoryID != nil {
		db = db.Where("games.category_id = ?", *filter.CategoryID)
	}
	if filter.PublisherID != nil {
		db = db.Where("games.publisher_id = ?", *filter.PublisherID)
	}
	return db
}

func loadGameView(db *gorm.DB, id int64) (domain.GameView, error) {
	var rows []gameRow
	if err := joinedGames(db).Where("games.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return domain.GameView{}, fmt.Errorf("load game view: %w", err)
	}
	if len(rows) == 0 {
		return domain.GameView{}, domain.ErrNotFound
	}
	return toGameView(rows[0]), nil
}

func toGameView(row gameRow) domain.GameView {
	view := domain.GameView{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		StarRating:  row.StarRating,
	}
	if row.PublisherRefID != nil {
		view.Publisher = &domain.Summary{ID: *row.PublisherRefID, Name: deref(row.PublisherName)}
	}
	if row.CategoryRefID != nil {
		view.Category = &domain.Summary{ID: *row.CategoryRefID, Name: deref(row.CategoryName)}
	}
	return view
}

func toGameDomain(model gameModel) domain.Game {
	return domain.Game{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		StarRating:  model.StarRating,
		CategoryID:  model.CategoryID,
		PublisherID: model.PublisherID,
	}
}

func toPublisherDomain(model publisherModel) domain.Publisher {
	return domain.Publisher{ID: model.ID, Name: model.Name, Description: model.Description}
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
