package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100
	// MaxPageNumber keeps Offset within 32 bits at the largest page size.
	MaxPageNumber = 10_000_000
)

type Params struct {
	PageNumber int
	PageSize   int
}

// NewParams clamps the inputs. A page number below 1 becomes 1 and one above
// MaxPageNumber is capped. A page size below 1 falls back to the default and
// one above the maximum is capped.
func NewParams(pageNumber, pageSize int) Params {
	if pageNumber < 1 {
		pageNumber = DefaultPageNumber
	}
	if pageNumber > MaxPageNumber {
		pageNumber = MaxPageNumber
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Params{PageNumber: pageNumber, PageSize: pageSize}
}

// FromQuery reads pageNumber and pageSize from the query string. Missing or
// malformed values fall back to the defaults.
func FromQuery(q url.Values) Params {
	return NewParams(queryInt(q, "pageNumber", DefaultPageNumber), queryInt(q, "pageSize", DefaultPageSize))
}

func (p Params) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}

func (p Params) Limit() int {
	return p.PageSize
}

type Page[T any] struct {
	Items           []T   `json:"items"`
	TotalCount      int64 `json:"totalCount"`
	PageNumber      int   `json:"pageNumber"`
	PageSize        int   `json:"pageSize"`
	TotalPages      int   `json:"totalPages"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
}

func NewPage[T any](items []T, totalCount int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := TotalPages(totalCount, p.PageSize)
	return Page[T]{
		Items:           items,
		TotalCount:      totalCount,
		PageNumber:      p.PageNumber,
		PageSize:        p.PageSize,
		TotalPages:      totalPages,
		HasPreviousPage: p.PageNumber > 1,
		HasNextPage:     p.PageNumber < totalPages,
	}
}

// Map converts the items of a page while keeping its counters.
func Map[T, U any](page Page[T], fn func(T) U) Page[U] {
	items := make([]U, len(page.Items))
	for i, item := range page.Items {
		items[i] = fn(item)
	}
	return Page[U]{
		Items:           items,
		TotalCount:      page.TotalCount,
		PageNumber:      page.PageNumber,
		PageSize:        page.PageSize,
		TotalPages:      page.TotalPages,
		HasPreviousPage: page.HasPreviousPage,
		HasNextPage:     page.HasNextPage,
	}
}

func TotalPages(totalCount int64, pageSize int) int {
	if pageSize < 1 || totalCount <= 0 {
		return 0
	}
	return int((totalCount + int64(pageSize) - 1) / int64(pageSize))
}

func queryInt(q url.Values, key string, fallback int) int {
	raw := q.Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
