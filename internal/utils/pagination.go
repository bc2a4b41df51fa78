package utils

import (
	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Pagination is a page request resolved from ?page= and ?limit=.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// PageMeta describes a served page.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// ParsePagination reads page and limit. Out of range values fall back to
// page 1 and 20 per page; limit is capped at 100.
func ParsePagination(c *fiber.Ctx) Pagination {
	page := c.QueryInt("page", 1)
	if page <= 0 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageSize)
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}

	return Pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Meta reports p against a result set of total rows.
func (p Pagination) Meta(total int64) PageMeta {
	pages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		pages++
	}
	return PageMeta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}
