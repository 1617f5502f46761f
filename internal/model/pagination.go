package model

import "strings"

// Listing defaults
const (
	DefaultPage      = 1
	DefaultPageSize  = 10
	MaxPageSize      = 100
	DefaultSortField = "name"
	SortAsc          = "asc"
	SortDesc         = "desc"
)

// ListParams describes a paginated, searchable, sortable listing request
type ListParams struct {
	Search   string `json:"search,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Order    string `json:"order,omitempty"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// Normalize applies defaults and clamps values. Sort columns outside
// allowed fall back to DefaultSortField so the column name can be
// interpolated into ORDER BY safely.
func (p ListParams) Normalize(allowed map[string]bool) ListParams {
	p.Search = strings.TrimSpace(p.Search)
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if !allowed[p.Sort] {
		p.Sort = DefaultSortField
	}
	if strings.EqualFold(p.Order, SortDesc) {
		p.Order = SortDesc
	} else {
		p.Order = SortAsc
	}
	return p
}

// Offset returns the row offset of the first item of the page
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is one page of a listing together with the collection total
type Page[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

// LastPage returns the number of the last page (at least 1)
func (p Page[T]) LastPage() int {
	if p.PageSize <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// From returns the 1-based position of the first item, or nil when empty
func (p Page[T]) From() *int {
	if len(p.Items) == 0 {
		return nil
	}
	from := (p.Page-1)*p.PageSize + 1
	return &from
}

// To returns the 1-based position of the last item, or nil when empty
func (p Page[T]) To() *int {
	if len(p.Items) == 0 {
		return nil
	}
	to := (p.Page-1)*p.PageSize + len(p.Items)
	return &to
}
