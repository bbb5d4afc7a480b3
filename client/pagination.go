package client

// PageSize is the number of jobs shown per page.
const PageSize = 10

// Pagination is the window of jobs requested per status, end inclusive.
type Pagination struct {
	Start int
	End   int
}

// DefaultPagination is the first page.
func DefaultPagination() Pagination {
	return Pagination{Start: 0, End: PageSize - 1}
}

// Page describes where a Pagination is, in the list of count jobs.
type Page struct {
	Current int
	Total   int
}

// PageOf returns the page p is showing, out of all pages for count jobs.
func PageOf(p Pagination, count int64) Page {
	return Page{
		Current: p.Start/PageSize + 1,
		Total:   int((count + PageSize - 1) / PageSize),
	}
}

func (p Page) HasNext() bool { return p.Current < p.Total }

// HasPrev reports whether a full page fits before p.
func (p Pagination) HasPrev() bool { return p.Start >= PageSize }

// Next returns the window of the next page, or p if there is none.
func (p Pagination) Next(count int64) Pagination {
	if !PageOf(p, count).HasNext() {
		return p
	}

	return Pagination{Start: p.Start + PageSize, End: p.End + PageSize}
}

// Prev returns the window of the previous page, or p if there is none.
func (p Pagination) Prev() Pagination {
	if !p.HasPrev() {
		return p
	}

	return Pagination{Start: p.Start - PageSize, End: p.End - PageSize}
}
