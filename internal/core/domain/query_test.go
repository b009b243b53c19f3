package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGameQueryDefaults(t *testing.T) {
	q, err := ParseGameQuery(ListParams{})
	require.NoError(t, err)

	assert.Nil(t, q.Filter.CategoryID)
	assert.Nil(t, q.Filter.PublisherID)
	assert.Equal(t, PageRequest{Page: DefaultPage, PerPage: DefaultPerPage}, q.Page)
	assert.Equal(t, GameSort{Field: SortByTitle}, q.Sort)
}

func TestParseGameQueryNormalizes(t *testing.T) {
	q, err := ParseGameQuery(ListParams{
		CategoryID:  " 2 ",
		PublisherID: "5",
		Page:        "-3",
		PerPage:     "51",
		Sort:        "star_rating",
		Order:       "DESC",
	})
	require.NoError(t, err)

	require.NotNil(t, q.Filter.CategoryID)
	require.NotNil(t, q.Filter.PublisherID)
	assert.EqualValues(t, 2, *q.Filter.CategoryID)
	assert.EqualValues(t, 5, *q.Filter.PublisherID)
	assert.Equal(t, PageRequest{Page: 1, PerPage: MaxPerPage}, q.Page)
	assert.Equal(t, GameSort{Field: SortByStarRating, Desc: true}, q.Sort)

	q, err = ParseGameQuery(ListParams{Page: "4000000000"})
	require.NoError(t, err)
	assert.Equal(t, maxPage, q.Page.Page)
}

func TestParseGameQuerySaturatesOverflow(t *testing.T) {
	tests := []struct {
		name   string
		params ListParams
		want   PageRequest
	}{
		{"huge per page", ListParams{PerPage: "99999999999999999999"}, PageRequest{Page: DefaultPage, PerPage: MaxPerPage}},
		{"huge page", ListParams{Page: "99999999999999999999"}, PageRequest{Page: maxPage, PerPage: DefaultPerPage}},
		{"huge negative page", ListParams{Page: "-99999999999999999999"}, PageRequest{Page: 1, PerPage: DefaultPerPage}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := ParseGameQuery(tc.params)
			require.NoError(t, err)
			assert.Equal(t, tc.want, q.Page)
		})
	}
}

func TestParseGameQueryErrorPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		params ListParams
		want   string
	}{
		{"category first", ListParams{CategoryID: "x", PublisherID: "y", Page: "z", Sort: "bad"}, "Invalid category_id parameter"},
		{"publisher before paging", ListParams{PublisherID: "y", Page: "z"}, "Invalid publisher_id parameter"},
		{"paging ints", ListParams{PerPage: "ten", Order: "bad"}, "Pagination parameters must be integers"},
		{"per page positive", ListParams{PerPage: "0", Order: "bad"}, "per_page must be greater than 0"},
		{"huge negative per page", ListParams{PerPage: "-99999999999999999999"}, "per_page must be greater than 0"},
		{"order before sort", ListParams{Order: "up", Sort: "price"}, "Invalid order parameter. Must be 'asc' or 'desc'"},
		{"sort", ListParams{Sort: "price"}, "Invalid sort parameter"},
		{"sort is case sensitive", ListParams{Sort: "Title"}, "Invalid sort parameter"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseGameQuery(tc.params)
			var pe *ParameterError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tc.want, pe.Message)
		})
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name  string
		req   PageRequest
		total int64
		want  Pagination
	}{
		{
			name: "empty result has one page",
			req:  PageRequest{Page: 1, PerPage: 20},
			want: Pagination{Page: 1, PerPage: 20, TotalPages: 1},
		},
		{
			name:  "exact multiple",
			req:   PageRequest{Page: 1, PerPage: 2},
			total: 4,
			want:  Pagination{Page: 1, PerPage: 2, TotalItems: 4, TotalPages: 2, HasNext: true},
		},
		{
			name:  "partial last page",
			req:   PageRequest{Page: 3, PerPage: 2},
			total: 5,
			want:  Pagination{Page: 3, PerPage: 2, TotalItems: 5, TotalPages: 3, HasPrevious: true},
		},
		{
			name:  "beyond last page",
			req:   PageRequest{Page: 7, PerPage: 10},
			total: 15,
			want:  Pagination{Page: 7, PerPage: 10, TotalItems: 15, TotalPages: 2, HasPrevious: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewPagination(tc.req, tc.total))
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 1, PerPage: 20}.Offset())
	assert.Equal(t, 40, PageRequest{Page: 3, PerPage: 20}.Offset())
}
