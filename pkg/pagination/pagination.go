package pagination

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/JaimeStill/transflow/pkg/query"
)

// SortFields decodes from either "title,-created_at" or a JSON array of
// {"Field": ..., "Descending": ...} objects.
type SortFields []query.SortField

func (s *SortFields) UnmarshalJSON(data []byte) error {
	var raw string
	if json.Unmarshal(data, &raw) == nil {
		*s = query.ParseSortFields(raw)
		return nil
	}

	var fields []query.SortField
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = fields
	return nil
}

// PageRequest selects one page of a listing. Page is 1-based.
type PageRequest struct {
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Search   *string    `json:"search,omitempty"`
	Sort     SortFields `json:"sort,omitempty"`
}

// Normalize clamps the request into the bounds of cfg. A missing page size
// takes the configured default.
func (r *PageRequest) Normalize(cfg Config) {
	r.Page = max(r.Page, 1)
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	r.PageSize = min(r.PageSize, cfg.MaxPageSize)
}

// PageRequestFromQuery reads page, page_size, search and sort from values.
// Malformed numbers fall back to the defaults.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	req := PageRequest{
		Page:     atoi(values.Get("page")),
		PageSize: atoi(values.Get("page_size")),
		Sort:     query.ParseSortFields(values.Get("sort")),
	}
	if s := values.Get("search"); s != "" {
		req.Search = &s
	}
	req.Normalize(cfg)
	return req
}

// PageResult is one page of T plus the totals needed to walk the rest.
type PageResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult wraps data. An empty listing still reports one page and
// encodes Data as [] rather than null.
func NewPageResult[T any](data []T, total, page, pageSize int) PageResult[T] {
	if data == nil {
		data = []T{}
	}
	pages := 1
	if pageSize > 0 {
		pages = max((total+pageSize-1)/pageSize, 1)
	}
	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
