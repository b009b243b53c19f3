package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atvirokodosprendimai/gamecatalog/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/gamecatalog/internal/core/domain"
	"gorm.io/gorm"
)

type gameEventModel struct {
	ID                int64  `gorm:"column:id;primaryKey;autoIncrement"`
	EventID           string `gorm:"column:event_id;not null"`
	GameID            int64  `gorm:"column:game_id;not null"`
	Action            string `gorm:"column:action;not null"`
	Source            string `gorm:"column:source;not null"`
	RequestID         string `gorm:"column:request_id;not null"`
	BeforeJSON        string `gorm:"column:before_json;not null"`
	AfterJSON         string `gorm:"column:after_json;not null"`
	ChangedFieldsJSON string `gorm:"column:changed_fields_json;not null"`
	OccurredAt        string `gorm:"column:occurred_at;not null"`
}

func (gameEventModel) TableName() string {
	return "game_events"
}

type GameEventRepository struct {
	db *gormsqlite.DB
}

func NewGameEventRepository(db *gormsqlite.DB) *GameEventRepository {
	return &GameEventRepository{db: db}
}

func (r *GameEventRepository) ListGameEvents(ctx context.Context, filter domain.GameEventFilter) ([]domain.GameEvent, error) {
	var rows []gameEventModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&gameEventModel{}).Where("game_id = ?", filter.GameID)
		if filter.AfterID > 0 {
			query = query.Where("id > ?", filter.AfterID)
		}
		return query.Order("id ASC").Limit(filter.Limit).Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list game events: %w", err)
	}

	result := make([]domain.GameEvent, 0, len(rows))
	for _, row := range rows {
		event, err := toGameEventDomain(row)
		if err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, nil
}

func insertGameEvent(tx *gorm.DB, event domain.GameEvent) error {
	changed, err := json.Marshal(event.ChangedFields)
	if err != nil {
		return fmt.Errorf("marshal changed fields: %w", err)
	}
	model := gameEventModel{
		EventID:           event.EventID,
		GameID:            event.GameID,
		Action:            event.Action,
		Source:            event.Source,
		RequestID:         event.RequestID,
		BeforeJSON:        string(event.Before),
		AfterJSON:         string(event.After),
		ChangedFieldsJSON: string(changed),
		OccurredAt:        event.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	if err := tx.Create(&model).Error; err != nil {
		return fmt.Errorf("insert game event: %w", err)
	}
	return nil
}

func toGameEventDomain(row gameEventModel) (domain.GameEvent, error) {
	occurredAt, err := time.Parse(time.RFC3339Nano, row.OccurredAt)
	if err != nil {
		return domain.GameEvent{}, fmt.Errorf("parse event %s time: %w", row.EventID, err)
	}
	var changed []string
	if row.ChangedFieldsJSON != "" {
		if err := json.Unmarshal([]byte(row.ChangedFieldsJSON), &changed); err != nil {
			return domain.GameEvent{}, fmt.Errorf("decode event %s fields: %w", row.EventID, err)
		}
	}
	event := domain.GameEvent{
		ID:            row.ID,
		EventID:       row.EventID,
		GameID:        row.GameID,
		Action:        row.Action,
		Source:        row.Source,
		RequestID:     row.RequestID,
		ChangedFields: changed,
		OccurredAt:    occurredAt,
	}
	if row.BeforeJSON != "" {
		event.Before = json.RawMessage(row.BeforeJSON)
	}
	if row.AfterJSON != "" {
		event.After = json.RawMessage(row.AfterJSON)
	}
	return event, nil
}
