package store

// PageParams contains page-based pagination request parameters.
type PageParams struct {
	Page  int // 1-based page number (defaults to 1)
	Limit int // Items per page (defaults to 10 with a maximum of 100)
}

// Validate checks and corrects pagination parameters.
func (p *PageParams) Validate() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset returns the number of items to skip for the current page.
func (p *PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PagedResult contains one page of data plus paging metadata.
type PagedResult[T any] struct {
	Items       []T `json:"items"`
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
}

// NewPagedResult assembles a result, deriving TotalPages from the limit.
func NewPagedResult[T any](items []T, total int, params PageParams) *PagedResult[T] {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = (total + params.Limit - 1) / params.Limit
	}
	return &PagedResult[T]{
		Items:       items,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: params.Page,
	}
}
