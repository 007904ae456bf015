package user

import "time"

// SortDirection orders query results ascending or descending
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortField names a sortable user column
type SortField string

const (
	SortByUsername  SortField = "username"
	SortByStatus    SortField = "status"
	SortByCreatedAt SortField = "created_at"
)

// SortBy combines a field with a direction
type SortBy struct {
	Field     SortField
	Direction SortDirection
}

// Pagination selects a page of results. Zero values fall back to the first
// page of 25 items.
type Pagination struct {
	Page     int
	PageSize int
}

const defaultPageSize = 25

func (p Pagination) normalized() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	return p
}

// Offset returns the row offset for the page
func (p Pagination) Offset() int {
	p = p.normalized()
	return (p.Page - 1) * p.PageSize
}

// Limit returns the page size
func (p Pagination) Limit() int {
	return p.normalized().PageSize
}

// Filters narrows a user listing. Nil fields are ignored.
type Filters struct {
	Username      *string
	Status        *Status
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
}

// QueryResult is one page of a filtered listing
type QueryResult struct {
	Items      []User `json:"items"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

// HasNext reports whether a later page exists
func (r *QueryResult) HasNext() bool {
	return r.Page < r.TotalPages
}

// HasPrev reports whether an earlier page exists
func (r *QueryResult) HasPrev() bool {
	return r.Page > 1
}
