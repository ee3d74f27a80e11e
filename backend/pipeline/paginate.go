package pipeline

import (
	"github.com/AnTengye/contractdesk/backend/model"
)

// PageSize is the number of rows per table page
const PageSize = 20

// Page is one slice of the ordered result
type Page struct {
	Items      []model.Contract `json:"items"`
	Number     int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	Total      int              `json:"total"`
	PageSize   int              `json:"page_size"`
}

// Empty reports whether the whole result, not just this page, is empty
func (p Page) Empty() bool { return p.Total == 0 }

// TotalPages is ceil(total/size), zero for an empty result
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// ClampPage keeps page within [1, max(1, totalPages)]
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate returns page number page of sorted. Out-of-range pages are clamped.
func Paginate(sorted []model.Contract, page, size int) Page {
	if size <= 0 {
		size = PageSize
	}
	total := len(sorted)
	pages := TotalPages(total, size)
	page = ClampPage(page, pages)

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	items := make([]model.Contract, end-start)
	copy(items, sorted[start:end])

	return Page{
		Items:      items,
		Number:     page,
		TotalPages: pages,
		Total:      total,
		PageSize:   size,
	}
}

// Run filters and sorts records for q. The result is a fresh slice.
func Run(records []model.Contract, q Query) []model.Contract {
	return Sort(Filter(records, q), SortColumn(q.Predicates))
}
