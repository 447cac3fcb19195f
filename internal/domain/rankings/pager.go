package rankings

// Pager describes offset pagination over Total rows.
type Pager struct {
	Total  int
	Limit  int
	Offset int
}

// Page is the 1-based page number of Offset.
func (p Pager) Page() int {
	if p.Limit <= 0 {
		return 1
	}
	return p.Offset/p.Limit + 1
}

// Pages is the number of pages, at least 1.
func (p Pager) Pages() int {
	if p.Limit <= 0 || p.Total <= 0 {
		return 1
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// HasPrev reports whether a previous page exists.
func (p Pager) HasPrev() bool { return p.Offset > 0 }

// HasNext reports whether a next page exists.
func (p Pager) HasNext() bool { return p.Offset+p.Limit < p.Total }

// Prev is the offset of the previous page.
func (p Pager) Prev() int {
	if p.Offset-p.Limit < 0 {
		return 0
	}
	return p.Offset - p.Limit
}

// Next is the offset of the next page, or the current offset on the last page.
func (p Pager) Next() int {
	if !p.HasNext() {
		return p.Offset
	}
	return p.Offset + p.Limit
}

// OffsetOf is the offset of the 1-based page n, clamped to the valid range.
func (p Pager) OffsetOf(n int) int {
	if n < 1 {
		n = 1
	}
	if n > p.Pages() {
		n = p.Pages()
	}
	return (n - 1) * p.Limit
}
