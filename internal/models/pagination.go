package models

// Pagination is the cursor of one paginated feed
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// HasNext reports whether another page exists after the current one
func (p Pagination) HasNext() bool {
	return p.Page < p.PageCount
}

// HasPrev reports whether a page exists before the current one
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// SinglePage builds the cursor for a list that is not paginated upstream
func SinglePage(n int) Pagination {
	return Pagination{Page: 1, PageSize: n, PageCount: 1, Total: n}
}

// Page is one page of a feed: the items replace any previously shown page
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}
