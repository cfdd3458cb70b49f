// Package queryparams carries list-endpoint paging and sorting parameters
// between handlers, services and repositories.
package queryparams

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
	DefaultSortBy  = "created_at"
	DefaultOrderBy = "desc"
)

// ListParams is parsed from the query string by handlers and sanitized with
// Validate before it reaches a repository.
type ListParams struct {
	Page    int    `query:"page"`
	PerPage int    `query:"per_page"`
	SortBy  string `query:"sort_by"`
	OrderBy string `query:"order_by"`
	Name    string `query:"name"`
	Status  string `query:"status"`
}

// Validate clamps paging values into their allowed ranges in place.
func (p *ListParams) Validate() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	if p.OrderBy != "asc" && p.OrderBy != "desc" {
		p.OrderBy = DefaultOrderBy
	}
}

// CalculateOffset returns the SQL offset for the current page.
func (p *ListParams) CalculateOffset() int {
	return (p.Page - 1) * p.PerPage
}

// CalculateTotalPages returns the page count for a result set.
func CalculateTotalPages(totalItems int64, perPage int) int {
	if perPage <= 0 || totalItems <= 0 {
		return 0
	}
	pages := int(totalItems) / perPage
	if int(totalItems)%perPage != 0 {
		pages++
	}
	return pages
}

// PaginationMeta describes one page of a paginated result.
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
}

// PaginatedResult is the generic envelope list endpoints return.
type PaginatedResult struct {
	Data interface{}    `json:"data"`
	Meta PaginationMeta `json:"meta"`
}
