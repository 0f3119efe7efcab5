package model

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is a 1-based page number and a page size.
type PageRequest struct {
	Page int
	Size int
}

// Normalize clamps the request to sane bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p PageRequest) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Size
}

func (p PageRequest) Limit() int {
	return p.Normalize().Size
}

// PageResult is a page of rows plus the total row count
type PageResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Pages int   `json:"pages"`
}

// NewPageResult computes the page count from total.
func NewPageResult[T any](items []T, total int64, req PageRequest) PageResult[T] {
	req = req.Normalize()
	if items == nil {
		items = []T{}
	}
	pages := int((total + int64(req.Size) - 1) / int64(req.Size))
	return PageResult[T]{Items: items, Total: total, Page: req.Page, Size: req.Size, Pages: pages}
}
