package ports

import (
	"context"

	"github.com/atvirokodosprendimai/gamecatalog/internal/core/domain"
)

type GameEventRepository interface {
	ListGameEvents(ctx context.Context, filter domain.GameEventFilter) ([]domain.GameEvent, error)
}
