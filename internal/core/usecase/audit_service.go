package usecase

import (
	"context"

	"github.com/atvirokodosprendimai/gamecatalog/internal/core/domain"
	"github.com/atvirokodosprendimai/gamecatalog/internal/core/ports"
)

type AuditService struct {
	repo ports.GameEventRepository
}

func NewAuditService(repo ports.GameEventRepository) *AuditService {
	return &AuditService{repo: repo}
}

// List returns the recorded mutations of one game in commit order. Events
// outlive the game, so a deleted game still has its trail.
func (s *AuditService) List(ctx context.Context, filter domain.GameEventFilter) ([]domain.GameEvent, error) {
	if filter.GameID < 1 {
		return nil, domain.GameNotFound()
	}
	if filter.AfterID < 0 {
		filter.AfterID = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return s.repo.ListGameEvents(ctx, filter)
}
