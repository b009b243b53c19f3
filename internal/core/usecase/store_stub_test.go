package usecase

import (
	"context"
	"errors"
	"sort"

	"github.com/atvirokodosprendimai/gamecatalog/internal/core/domain"
	"github.com/atvirokodosprendimai/gamecatalog/internal/core/ports"
)

// memStore is an in-memory CatalogStore. WithinTx works on a copy that is
// only kept when the callback succeeds.
type memStore struct {
	state   memState
	failTx  error
	scanFn  func(ctx context.Context, query domain.GameQuery) ([]domain.GameView, int64, error)
	onEvent func(event domain.GameEvent) error
}

type memState struct {
	games      map[int64]domain.Game
	publishers map[int64]domain.Publisher
	categories map[int64]domain.Category
	events     []domain.GameEvent
	nextID     int64
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		games:      map[int64]domain.Game{},
		publishers: map[int64]domain.Publisher{},
		categories: map[int64]domain.Category{},
	}}
}

func (s memState) clone() memState {
	c := memState{
		games:      make(map[int64]domain.Game, len(s.games)),
		publishers: make(map[int64]domain.Publisher, len(s.publishers)),
		categories: make(map[int64]domain.Category, len(s.categories)),
		events:     append([]domain.GameEvent(nil), s.events...),
		nextID:     s.nextID,
	}
	for k, v := range s.games {
		c.games[k] = v
	}
	for k, v := range s.publishers {
		c.publishers[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	return c
}

func (s *memStore) WithinTx(_ context.Context, fn func(tx ports.CatalogTx) error) error {
	if s.failTx != nil {
		return s.failTx
	}
	tx := &memTx{state: s.state.clone(), onEvent: s.onEvent}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

func (s *memStore) GetGame(_ context.Context, id int64) (domain.GameView, error) {
	tx := &memTx{state: s.state}
	return tx.GameView(id)
}

func (s *memStore) ScanGames(ctx context.Context, query domain.GameQuery) ([]domain.GameView, int64, error) {
	if s.scanFn != nil {
		return s.scanFn(ctx, query)
	}
	return nil, int64(len(s.state.games)), nil
}

func (s *memStore) ListPublishers(context.Context) ([]domain.Publisher, error) {
	out := make([]domain.Publisher, 0, len(s.state.publishers))
	for _, p := range s.state.publishers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) ListCategories(context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(s.state.categories))
	for _, c := range s.state.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memTx struct {
	state   memState
	onEvent func(event domain.GameEvent) error
}

func (t *memTx) id() int64 {
	t.state.nextID++
	return t.state.nextID
}

func (t *memTx) GameByID(id int64) (domain.Game, error) {
	g, ok := t.state.games[id]
	if !ok {
		return domain.Game{}, domain.ErrNotFound
	}
	return g, nil
}

func (t *memTx) GameView(id int64) (domain.GameView, error) {
	g, ok := t.state.games[id]
	if !ok {
		return domain.GameView{}, domain.ErrNotFound
	}
	view := domain.GameView{ID: g.ID, Title: g.Title, Description: g.Description, StarRating: g.StarRating}
	if p, ok := t.state.publishers[g.PublisherID]; ok {
		view.Publisher = &domain.Summary{ID: p.ID, Name: p.Name}
	}
	if c, ok := t.state.categories[g.CategoryID]; ok {
		view.Category = &domain.Summary{ID: c.ID, Name: c.Name}
	}
	return view, nil
}

func (t *memTx) GameExists(title string, publisherID int64) (bool, error) {
	for _, g := range t.state.games {
		if g.Title == title && g.PublisherID == publisherID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) InsertGame(game domain.Game) (domain.Game, error) {
	game.ID = t.id()
	t.state.games[game.ID] = game
	return game, nil
}

func (t *memTx) UpdateGame(id int64, patch domain.GamePatch) (domain.Game, error) {
	g, ok := t.state.games[id]
	if !ok {
		return domain.Game{}, domain.ErrNotFound
	}
	g = patch.Apply(g)
	t.state.games[id] = g
	return g, nil
}

func (t *memTx) DeleteGame(id int64) error {
	if _, ok := t.state.games[id]; !ok {
		return domain.ErrNotFound
	}
	delete(t.state.games, id)
	return nil
}

func (t *memTx) PublisherExists(id int64) (bool, error) {
	_, ok := t.state.publishers[id]
	return ok, nil
}

func (t *memTx) PublisherByName(name string) (domain.Publisher, error) {
	for _, p := range t.state.publishers {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.Publisher{}, domain.ErrNotFound
}

func (t *memTx) InsertPublisher(p domain.Publisher) (domain.Publisher, error) {
	if _, err := t.PublisherByName(p.Name); err == nil {
		return domain.Publisher{}, domain.ErrConflict
	}
	p.ID = t.id()
	t.state.publishers[p.ID] = p
	return p, nil
}

func (t *memTx) CategoryExists(id int64) (bool, error) {
	_, ok := t.state.categories[id]
	return ok, nil
}

func (t *memTx) CategoryByName(name string) (domain.Category, error) {
	for _, c := range t.state.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return domain.Category{}, domain.ErrNotFound
}

func (t *memTx) InsertCategory(c domain.Category) (domain.Category, error) {
	if _, err := t.CategoryByName(c.Name); err == nil {
		return domain.Category{}, domain.ErrConflict
	}
	c.ID = t.id()
	t.state.categories[c.ID] = c
	return c, nil
}

func (t *memTx) RecordGameEvent(event domain.GameEvent) error {
	if t.onEvent != nil {
		if err := t.onEvent(event); err != nil {
			return err
		}
	}
	event.ID = int64(len(t.state.events) + 1)
	t.state.events = append(t.state.events, event)
	return nil
}

var errStoreDown = errors.New("store down")

// seedRefs inserts one publisher and one category and returns their ids.
func seedRefs(s *memStore) (publisherID, categoryID int64) {
	_ = s.WithinTx(context.Background(), func(tx ports.CatalogTx) error {
		p, _ := tx.InsertPublisher(domain.Publisher{Name: "DevGames Inc"})
		c, _ := tx.InsertCategory(domain.Category{Name: "Strategy"})
		publisherID, categoryID = p.ID, c.ID
		return nil
	})
	return publisherID, categoryID
}
