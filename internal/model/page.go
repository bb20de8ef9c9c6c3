package model

// Page is a bounded slice of an ordered result set together with the
// metadata needed to render pagination controls.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"` // 1-based
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func NewPage[T any](items []T, page, size int, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}

	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}

	return &Page[T]{
		Items:      items,
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
	}
}

func (p *Page[T]) HasPrev() bool {
	return p.Page > 1
}

func (p *Page[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

func (p *Page[T]) PrevPage() int {
	return p.Page - 1
}

func (p *Page[T]) NextPage() int {
	return p.Page + 1
}

// PageOffset clamps a 1-based page into 1..last page of total and returns it
// with the row offset to query. An empty result set has one empty page.
func PageOffset(page, size int, total int64) (int, int) {
	last := 1
	if size > 0 && total > 0 {
		last = int((total + int64(size) - 1) / int64(size))
	}

	if page < 1 {
		page = 1
	}
	if page > last {
		page = last
	}
	return page, (page - 1) * size
}
