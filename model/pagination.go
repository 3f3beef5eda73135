package model

import (
	"net/url"
	"strconv"
)

// Paginated is the envelope of every paginated list endpoint.
type Paginated[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Pages  int `json:"pages"`
}

// QueryParams are the list parameters understood by the backend. Zero values
// are omitted from the request.
type QueryParams struct {
	Limit       int
	Offset      int
	Search      string
	SearchField string
}

func (q QueryParams) Values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.SearchField != "" {
		v.Set("search_field", q.SearchField)
	}
	return v
}
