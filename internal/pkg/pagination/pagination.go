package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params represents pagination parameters
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// Meta represents pagination metadata
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// NewParams clamps page and limit into range.
func NewParams(page, limit int) *Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return &Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// GetParams extracts ?page= and ?limit= from the request.
func GetParams(c *fiber.Ctx) *Params {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(DefaultLimit)))
	return NewParams(page, limit)
}

// Page is a paginated listing.
type Page struct {
	Items interface{} `json:"items"`
	Meta  *Meta       `json:"meta"`
}

// NewPage wraps items with metadata computed from total.
func NewPage(items interface{}, params *Params, total int64) *Page {
	totalPages := int((total + int64(params.Limit) - 1) / int64(params.Limit))
	return &Page{
		Items: items,
		Meta: &Meta{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    params.Page < totalPages,
		},
	}
}
