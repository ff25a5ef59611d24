// Package view holds the small state helpers the page components
// consume directly: list pagination, per-day event paging and the
// product detail modal. They are independent of the stores.
package view

// Paginator windows a changing sequence into fixed-size pages. The
// source func is read on every access so the paginator always reflects
// the current sequence.
type Paginator[T any] struct {
	source      func() []T
	pageSize    int
	currentPage int
}

func NewPaginator[T any](source func() []T, pageSize int) *Paginator[T] {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Paginator[T]{
		source:      source,
		pageSize:    pageSize,
		currentPage: 1,
	}
}

// CurrentPage is 1-indexed.
func (p *Paginator[T]) CurrentPage() int {
	return p.currentPage
}

func (p *Paginator[T]) PaginatedItems() []T {
	items := p.source()
	start := (p.currentPage - 1) * p.pageSize
	if start < 0 || start >= len(items) {
		return nil
	}
	end := start + p.pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages is ceil(len/size); an empty source has zero pages.
func (p *Paginator[T]) TotalPages() int {
	return (len(p.source()) + p.pageSize - 1) / p.pageSize
}

// ChangePage sets the page unconditionally; bounds are the caller's
// responsibility.
func (p *Paginator[T]) ChangePage(page int) {
	p.currentPage = page
}

func (p *Paginator[T]) GoToFirstPage() {
	p.currentPage = 1
}

func (p *Paginator[T]) GoToLastPage() {
	p.currentPage = p.TotalPages()
}

func (p *Paginator[T]) PrevPage() {
	if p.currentPage > 1 {
		p.currentPage--
	}
}

func (p *Paginator[T]) NextPage() {
	if p.currentPage < p.TotalPages() {
		p.currentPage++
	}
}
