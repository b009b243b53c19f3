package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/atvirokodosprendimai/gamecatalog/internal/core/domain"
	"github.com/atvirokodosprendimai/gamecatalog/internal/core/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	timeFormat      = "2006-01-02T15:04:05.999999999Z07:00"
	maxJSONBodySize = 1 << 20
)

type Handler struct {
	catalog *usecase.CatalogService
	games   *usecase.GameService
	audit   *usecase.AuditService
	metrics *Metrics

	schemaVersion func(ctx context.Context) (int64, error)
}

func NewHandler(catalog *usecase.CatalogService, games *usecase.GameService, audit *usecase.AuditService, metrics *Metrics) *Handler {
	return &Handler{catalog: catalog, games: games, audit: audit, metrics: metrics}
}

// SetSchemaVersionFunc makes /healthz report the applied migration version.
func (h *Handler) SetSchemaVersionFunc(fn func(ctx context.Context) (int64, error)) {
	h.schemaVersion = fn
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if h.metrics != nil {
		r.Use(h.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", h.healthz)
	r.Get("/openapi.json", h.openapi)

	r.Route("/api", func(ar chi.Router) {
		ar.Get("/games", h.listGames)
		ar.Post("/games", h.createGame)
		ar.Get("/games/{id:[0-9]+}", h.getGame)
		ar.Put("/games/{id:[0-9]+}", h.updateGame)
		ar.Delete("/games/{id:[0-9]+}", h.deleteGame)
		ar.Get("/games/{id:[0-9]+}/events", h.listGameEvents)

		ar.Get("/publishers", h.listPublishers)
		ar.Get("/categories", h.listCategories)
	})

	return r
}

type summaryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type gameResponse struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Publisher   *summaryResponse `json:"publisher"`
	Category    *summaryResponse `json:"category"`
	StarRating  *float64         `json:"starRating"`
}

type paginationResponse struct {
	Page        int   `json:"page"`
	PerPage     int   `json:"perPage"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

type listGamesResponse struct {
	Games      []gameResponse     `json:"games"`
	Pagination paginationResponse `json:"pagination"`
}

type gameEventResponse struct {
	ID            int64           `json:"id"`
	EventID       string          `json:"eventId"`
	GameID        int64           `json:"gameId"`
	Action        string          `json:"action"`
	Source        string          `json:"source"`
	RequestID     string          `json:"requestId,omitempty"`
	Before        json.RawMessage `json:"before,omitempty"`
	After         json.RawMessage `json:"after,omitempty"`
	ChangedFields []string        `json:"changedFields"`
	OccurredAt    string          `json:"occurredAt"`
}

func (h *Handler) listGames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.catalog.ListGames(r.Context(), domain.ListParams{
		CategoryID:  firstParam(q, "categoryId", "category_id"),
		PublisherID: firstParam(q, "publisherId", "publisher_id"),
		Page:        firstParam(q, "page"),
		PerPage:     firstParam(q, "perPage", "per_page"),
		Sort:        firstParam(q, "sort", "sortField"),
		Order:       firstParam(q, "order", "sortOrder"),
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	games := make([]gameResponse, 0, len(page.Games))
	for _, g := range page.Games {
		games = append(games, toGameResponse(g))
	}
	h.metrics.observeListed(len(games))

	p := page.Pagination
	writeJSON(w, http.StatusOK, listGamesResponse{
		Games: games,
		Pagination: paginationResponse{
			Page:        p.Page,
			PerPage:     p.PerPage,
			TotalItems:  p.TotalItems,
			TotalPages:  p.TotalPages,
			HasNext:     p.HasNext,
			HasPrevious: p.HasPrevious,
		},
	})
}

func (h *Handler) getGame(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}

	view, err := h.catalog.GetGame(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameResponse(view))
}

func (h *Handler) createGame(w http.ResponseWriter, r *http.Request) {
	in, err := decodeGameInput(w, r)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	view, err := h.games.Create(r.Context(), in, mutationMeta(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGameResponse(view))
}

func (h *Handler) updateGame(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	in, err := decodeGameInput(w, r)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	view, err := h.games.Update(r.Context(), id, in, mutationMeta(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameResponse(view))
}

func (h *Handler) deleteGame(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}

	if err := h.games.Delete(r.Context(), id, mutationMeta(r)); err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listGameEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}

	filter := domain.GameEventFilter{GameID: id}
	q := r.URL.Query()
	if raw := q.Get("after"); raw != "" {
		after, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "after must be integer")
			return
		}
		filter.AfterID = after
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be integer")
			return
		}
		filter.Limit = limit
	}

	events, err := h.audit.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]gameEventResponse, 0, len(events))
	for _, e := range events {
		changed := e.ChangedFields
		if changed == nil {
			changed = []string{}
		}
		result = append(result, gameEventResponse{
			ID:            e.ID,
			EventID:       e.EventID,
			GameID:        e.GameID,
			Action:        e.Action,
			Source:        e.Source,
			RequestID:     e.RequestID,
			Before:        e.Before,
			After:         e.After,
			ChangedFields: changed,
			OccurredAt:    e.OccurredAt.UTC().Format(timeFormat),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": result})
}

func (h *Handler) listPublishers(w http.ResponseWriter, r *http.Request) {
	publishers, err := h.catalog.ListPublishers(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]summaryResponse, 0, len(publishers))
	for _, p := range publishers {
		result = append(result, summaryResponse{ID: p.ID, Name: p.Name})
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]summaryResponse, 0, len(categories))
	for _, c := range categories {
		result = append(result, summaryResponse{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"ok": true}
	if h.schemaVersion != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		version, err := h.schemaVersion(ctx)
		if err != nil {
			log.Printf("healthz schema version: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
			return
		}
		body["schemaVersion"] = version
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) openapi(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, openapiSpec())
}

func toGameResponse(v domain.GameView) gameResponse {
	resp := gameResponse{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		StarRating:  v.StarRating,
	}
	if v.Publisher != nil {
		resp.Publisher = &summaryResponse{ID: v.Publisher.ID, Name: v.Publisher.Name}
	}
	if v.Category != nil {
		resp.Category = &summaryResponse{ID: v.Category.ID, Name: v.Category.Name}
	}
	return resp
}

func firstParam(q url.Values, names ...string) string {
	for _, name := range names {
		if v := q.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// gameID reads the numeric {id} segment. The route pattern already rejects
// non-digits; this only guards against overflow.
func gameID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, domain.GameNotFound().Error())
		return 0, false
	}
	return id, true
}

func mutationMeta(r *http.Request) domain.MutationMetadata {
	return domain.MutationMetadata{
		Source:    "api",
		RequestID: middleware.GetReqID(r.Context()),
	}
}

// decodeGameInput keeps JSON types intact (numbers as json.Number) so field
// validators can tell a string from anything else.
func decodeGameInput(w http.ResponseWriter, r *http.Request) (domain.GameInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var raw any
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.GameInput{}, domain.ErrNoData
		}
		return domain.GameInput{}, domain.ErrInvalidJSON
	}
	if err := ensureEOF(decoder); err != nil {
		return domain.GameInput{}, domain.ErrInvalidJSON
	}

	switch v := raw.(type) {
	case nil:
		return domain.GameInput{}, domain.ErrNoData
	case map[string]any:
		return domain.GameInputFromMap(v), nil
	default:
		return domain.GameInput{}, domain.ErrInvalidJSON
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Printf("encode json response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func handleDomainError(w http.ResponseWriter, err error) {
	if !domain.IsClientError(err) {
		log.Printf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var (
		paramErr    *domain.ParameterError
		payloadErr  *domain.PayloadError
		missingErr  *domain.MissingFieldsError
		validErr    *domain.ValidationError
		notFoundErr *domain.NotFoundError
	)
	switch {
	case errors.As(err, &paramErr):
		writeError(w, http.StatusBadRequest, paramErr.Error())
	case errors.As(err, &payloadErr):
		writeError(w, http.StatusBadRequest, payloadErr.Error())
	case errors.As(err, &missingErr):
		writeError(w, http.StatusBadRequest, missingErr.Error())
	case errors.As(err, &validErr):
		writeError(w, http.StatusBadRequest, validErr.Error())
	case errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, notFoundErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusConflict, "conflict")
	}
}

func ensureEOF(decoder *json.Decoder) error {
	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return errors.New("extra json tokens")
}

func openapiSpec() map[string]any {
	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "gamecatalog",
			"version": "1.0.0",
		},
		"paths": map[string]any{
			"/api/games": map[string]any{
				"get":  map[string]any{"summary": "List games with filters, sorting and pagination"},
				"post": map[string]any{"summary": "Create game"},
			},
			"/api/games/{id}": map[string]any{
				"get":    map[string]any{"summary": "Get game"},
				"put":    map[string]any{"summary": "Update game fields"},
				"delete": map[string]any{"summary": "Delete game"},
			},
			"/api/games/{id}/events": map[string]any{
				"get": map[string]any{"summary": "List recorded game mutations"},
			},
			"/api/publishers": map[string]any{
				"get": map[string]any{"summary": "List publishers"},
			},
			"/api/categories": map[string]any{
				"get": map[string]any{"summary": "List categories"},
			},
		},
	}
}
