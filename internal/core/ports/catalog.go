package ports

import (
	"context"

	"github.com/atvirokodosprendimai/gamecatalog/internal/core/domain"
)

// CatalogReader is the read side of the catalog store. Scans always resolve
// publisher and category through outer joins.
type CatalogReader interface {
	GetGame(ctx context.Context, id int64) (domain.GameView, error)
	ScanGames(ctx context.Context, query domain.GameQuery) ([]domain.GameView, int64, error)
	ListPublishers(ctx context.Context) ([]domain.Publisher, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// CatalogStore adds a write transaction to the read side. fn runs inside a
// single transaction that is rolled back if fn returns an error.
type CatalogStore interface {
	CatalogReader
	WithinTx(ctx context.Context, fn func(tx CatalogTx) error) error
}

// CatalogTx is a transaction-scoped store handle. It must not be used after
// the WithinTx callback returns.
type CatalogTx interface {
	GameByID(id int64) (domain.Game, error)
	GameView(id int64) (domain.GameView, error)
	GameExists(title string, publisherID int64) (bool, error)
	InsertGame(game domain.Game) (domain.Game, error)
	UpdateGame(id int64, patch domain.GamePatch) (domain.Game, error)
	DeleteGame(id int64) error

	PublisherExists(id int64) (bool, error)
	PublisherByName(name string) (domain.Publisher, error)
	InsertPublisher(p domain.Publisher) (domain.Publisher, error)

	CategoryExists(id int64) (bool, error)
	CategoryByName(name string) (domain.Category, error)
	InsertCategory(c domain.Category) (domain.Category, error)

	RecordGameEvent(event domain.GameEvent) error
}
