package pagination

import "math"

const (
	DefaultPage     = 1
	DefaultPageSize = 50
	MaxPageSize     = 100
	// MaxPage bounds the page number so the offset always fits an int.
	MaxPage = 1_000_000
)

// PageRequest holds the parameters for a paginated request.
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// NewPageRequest creates a new PageRequest with default values, ensuring they are within valid ranges.
func NewPageRequest(page, limit int) *PageRequest {
	if page <= 0 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return &PageRequest{
		Page:  page,
		Limit: limit,
	}
}

// GetOffset calculates the offset for the database query.
func (p *PageRequest) GetOffset() int {
	return (p.Page - 1) * p.Limit
}

// GetLimit returns the page size, which is the limit for the database query.
func (p *PageRequest) GetLimit() int {
	return p.Limit
}

// Meta describes the window a page was cut from.
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// PageResult holds the data for a paginated response.
type PageResult struct {
	Data       interface{} `json:"data"`
	Pagination Meta        `json:"pagination"`
}

// NewPageResult creates a new PageResult.
func NewPageResult(data interface{}, total int64, req *PageRequest) *PageResult {
	pages := 0
	if total > 0 && req.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(req.Limit)))
	}
	return &PageResult{
		Data: data,
		Pagination: Meta{
			Page:  req.Page,
			Limit: req.Limit,
			Total: total,
			Pages: pages,
		},
	}
}
