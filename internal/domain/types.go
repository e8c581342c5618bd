package domain

import "time"

// Pagination carries paging params and totals.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// Offset returns the row offset for the current page (1-based pages).
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Normalize clamps page to >= 1 and falls back to def when size is unset.
func (p Pagination) Normalize(def int) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 || p.PageSize > 100 {
		p.PageSize = def
	}
	return p
}

// Pages returns the number of pages for Total.
func (p Pagination) Pages() int {
	if p.PageSize <= 0 || p.Total <= 0 {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// Page is a slice of results plus paging info.
type Page[T any] struct {
	Items      []T        `json:"results"`
	Pagination Pagination `json:"pagination"`
}

// Actor is the authenticated staff user performing an operation.
type Actor struct {
	UserID int64 `json:"user_id"`
	Role   Role  `json:"role"`
}

// Clock lets services pin "now" in tests.
type Clock func() time.Time
