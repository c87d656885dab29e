package utils

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds pagination parameters.
type Pagination struct {
	Page    int
	PerPage int
	Offset  int
}

// ParsePagination reads page and per_page query params. per_page falls back to
// defaultPerPage when missing or invalid and is capped at maxPerPage when positive.
func ParsePagination(c *fiber.Ctx, defaultPerPage, maxPerPage int) Pagination {
	return NewPagination(c.Query("page"), c.Query("per_page"), defaultPerPage, maxPerPage)
}

// NewPagination builds pagination from raw parameter strings.
func NewPagination(pageRaw, perPageRaw string, defaultPerPage, maxPerPage int) Pagination {
	page := parseInt(pageRaw, 1)
	perPage := parseInt(perPageRaw, defaultPerPage)
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	if page <= 0 {
		page = 1
	}
	if perPage > 0 && page > math.MaxInt/perPage {
		page = math.MaxInt / perPage
	}

	return Pagination{
		Page:    page,
		PerPage: perPage,
		Offset:  (page - 1) * perPage,
	}
}

// Meta renders the pagination block returned next to list payloads.
func (p Pagination) Meta(total int64) fiber.Map {
	pages := 0
	if total > 0 {
		pages = int(math.Ceil(float64(total) / float64(p.PerPage)))
	}

	return fiber.Map{
		"page":     p.Page,
		"per_page": p.PerPage,
		"total":    total,
		"pages":    pages,
		"has_prev": p.Page > 1,
		"has_next": p.Page < pages,
	}
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
