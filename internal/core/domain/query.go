package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 50

	// maxPage keeps (page-1)*perPage inside the int range.
	maxPage = math.MaxInt32
)

type SortField string

const (
	SortByTitle      SortField = "title"
	SortByStarRating SortField = "starRating"
	SortByID         SortField = "id"
)

var sortFields = map[string]SortField{
	"title":       SortByTitle,
	"starRating":  SortByStarRating,
	"star_rating": SortByStarRating,
	"id":          SortByID,
}

const (
	msgInvalidCategoryID = "Invalid category_id parameter"
	msgInvalidPublisher  = "Invalid publisher_id parameter"
	msgPaginationInts    = "Pagination parameters must be integers"
	msgPerPagePositive   = "per_page must be greater than 0"
	msgInvalidOrder      = "Invalid order parameter. Must be 'asc' or 'desc'"
	msgInvalidSort       = "Invalid sort parameter"
)

// ListParams are the raw list-games query parameters. An empty string means
// the parameter was not provided.
type ListParams struct {
	CategoryID  string
	PublisherID string
	Page        string
	PerPage     string
	Sort        string
	Order       string
}

type GameFilter struct {
	CategoryID  *int64
	PublisherID *int64
}

type GameSort struct {
	Field SortField
	Desc  bool
}

type PageRequest struct {
	Page    int
	PerPage int
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

type GameQuery struct {
	Filter GameFilter
	Sort   GameSort
	Page   PageRequest
}

// ParseGameQuery validates raw parameters in a fixed order: filters,
// pagination, order, sort. The first failure wins.
func ParseGameQuery(p ListParams) (GameQuery, error) {
	var q GameQuery

	categoryID, err := parseOptionalID(p.CategoryID, msgInvalidCategoryID)
	if err != nil {
		return GameQuery{}, err
	}
	publisherID, err := parseOptionalID(p.PublisherID, msgInvalidPublisher)
	if err != nil {
		return GameQuery{}, err
	}
	q.Filter = GameFilter{CategoryID: categoryID, PublisherID: publisherID}

	page, err := parseIntDefault(p.Page, DefaultPage)
	if err != nil {
		return GameQuery{}, &ParameterError{Message: msgPaginationInts}
	}
	perPage, err := parseIntDefault(p.PerPage, DefaultPerPage)
	if err != nil {
		return GameQuery{}, &ParameterError{Message: msgPaginationInts}
	}
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if perPage < 1 {
		return GameQuery{}, &ParameterError{Message: msgPerPagePositive}
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	q.Page = PageRequest{Page: page, PerPage: perPage}

	order := strings.ToLower(strings.TrimSpace(p.Order))
	switch order {
	case "", "asc":
	case "desc":
		q.Sort.Desc = true
	default:
		return GameQuery{}, &ParameterError{Message: msgInvalidOrder}
	}

	sortName := strings.TrimSpace(p.Sort)
	if sortName == "" {
		sortName = string(SortByTitle)
	}
	field, ok := sortFields[sortName]
	if !ok {
		return GameQuery{}, &ParameterError{Message: msgInvalidSort}
	}
	q.Sort.Field = field

	return q, nil
}

func parseOptionalID(raw, message string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &ParameterError{Message: message}
	}
	return &id, nil
}

func parseIntDefault(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 0)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	// Out-of-range digits saturate to the int bounds; callers clamp from there.
	return int(n), nil
}

type Pagination struct {
	Page        int
	PerPage     int
	TotalItems  int64
	TotalPages  int
	HasNext     bool
	HasPrevious bool
}

// NewPagination derives page metadata. An empty result still has one page.
func NewPagination(req PageRequest, totalItems int64) Pagination {
	totalPages := 1
	if totalItems > 0 {
		totalPages = int((totalItems + int64(req.PerPage) - 1) / int64(req.PerPage))
	}
	return Pagination{
		Page:        req.Page,
		PerPage:     req.PerPage,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNext:     req.Page < totalPages,
		HasPrevious: req.Page > 1,
	}
}

type GamePage struct {
	Games      []GameView
	Pagination Pagination
}
