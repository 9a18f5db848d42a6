package pagination

import (
	"net/url"
	"strconv"

	"masters-marketplace/pkg/response"
)

// Page sizes used across listings
const (
	DefaultPageSize = 10
	MainPageSize    = 8
	ReviewPageSize  = 5
	MaxPageSize     = 100
	MaxPage         = 1_000_000
	PageParam       = "page"
	PageSizeParam   = "page_size"
)

// Params is a normalized page request.
type Params struct {
	Page     int
	PageSize int
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// FromQuery reads page and page_size. Missing, non-numeric or non-positive
// values fall back to 1 and defaultSize; page_size is capped at MaxPageSize
// and page at MaxPage so Offset can not overflow.
func FromQuery(q url.Values, defaultSize int) Params {
	p := Params{Page: 1, PageSize: defaultSize}

	if page, err := strconv.Atoi(q.Get(PageParam)); err == nil && page > 0 {
		p.Page = page
	}
	if size, err := strconv.Atoi(q.Get(PageSizeParam)); err == nil && size > 0 {
		p.PageSize = size
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	return p
}

// Within clamps the page so the whole page fits in the first window items.
func (p Params) Within(window int) Params {
	if p.PageSize <= 0 || window < p.PageSize {
		return p
	}
	if last := window / p.PageSize; p.Page > last {
		p.Page = last
	}
	return p
}

func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// Meta builds the response meta for one page of total items.
func Meta(p Params, total int64) *response.Meta {
	pages := TotalPages(total, p.PageSize)
	meta := &response.Meta{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: pages,
	}

	if p.Page < pages {
		next := p.Page + 1
		meta.Next = &next
	}
	if p.Page > 1 {
		prev := p.Page - 1
		if prev > pages && pages > 0 {
			prev = pages
		}
		meta.Previous = &prev
	}
	return meta
}
