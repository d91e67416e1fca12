package api

import (
	"net/http"
	"strconv"
)

// maxPageSize caps the subscriber list page size to prevent abuse.
const maxPageSize = 200

// PaginationParams holds parsed pagination values from query params.
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

// PaginationMeta is the pagination block of list responses.
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalCount int `json:"totalCount"`
}

// ParsePagination extracts page and pageSize with defaults. The legacy
// "limit" param is honored as an alias for pageSize.
func ParsePagination(r *http.Request, defaultSize int) PaginationParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	if size < 1 {
		size, _ = strconv.Atoi(q.Get("limit"))
	}

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	return PaginationParams{
		Page:     page,
		PageSize: size,
		Offset:   (page - 1) * size,
	}
}

// Meta builds the response pagination block from a total match count.
func (p PaginationParams) Meta(totalCount int) PaginationMeta {
	totalPages := (totalCount + p.PageSize - 1) / p.PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	return PaginationMeta{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: totalPages,
		TotalCount: totalCount,
	}
}
