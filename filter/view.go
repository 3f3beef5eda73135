package filter

// FilterNotice is shown while a free-text filter narrows the loaded page.
const FilterNotice = "El filtro solo busca en la página cargada"

// View is what a table renders for one page.
type View[T any] struct {
	Records      []T
	TotalRecords int
	TotalPages   int
	PageNumber   int
	// Paginated is false while a filter is active; page controls are hidden.
	Paginated bool
	Notice    string
}

// ApplyView filters a loaded page. Without a query the page and its server
// totals pass through. With a query, pagination is suppressed and the counts
// describe the filtered records only.
func ApplyView[T any](records []T, totalRecords, totalPages, pageNumber int, query string, fields []string) View[T] {
	if query == "" {
		return View[T]{
			Records:      records,
			TotalRecords: totalRecords,
			TotalPages:   totalPages,
			PageNumber:   pageNumber,
			Paginated:    true,
		}
	}
	filtered := Filter(records, query, fields)
	return View[T]{
		Records:      filtered,
		TotalRecords: len(filtered),
		TotalPages:   1,
		PageNumber:   1,
		Notice:       FilterNotice,
	}
}
