package core

// PaginationState is derived once per request from the page and limit keys.
type PaginationState struct {
	HasPagination bool
	PageNumber    int
	PageSize      int
	Skip          int64
	TotalRecords  int64
	TotalPages    int
}

// ComputePagination derives skip and page size. Without a page key there is
// no pagination and only Limit (if any) bounds the result.
//
// Page numbers below 1 are clamped to 1.
func ComputePagination(page Page, limit Limit, defaultPageSize int) PaginationState {
	if !page.Present {
		return PaginationState{}
	}
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}

	size := defaultPageSize
	if limit.Present && limit.Value > 0 {
		size = limit.Value
	}
	number := page.Number
	if number < 1 {
		number = 1
	}

	return PaginationState{
		HasPagination: true,
		PageNumber:    number,
		PageSize:      size,
		Skip:          int64(number)*int64(size) - int64(size),
	}
}

// WithTotal records the total count reported by the store and the page count it implies.
func (p PaginationState) WithTotal(total int64) PaginationState {
	p.TotalRecords = total
	p.TotalPages = TotalPages(total, p.PageSize)
	return p
}

// TotalPages is ceil(total / size).
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
