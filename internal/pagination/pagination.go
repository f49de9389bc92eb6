// Package pagination implements page/limit windowing for aggregated read
// views. Out-of-range values are clamped rather than rejected so every
// paginated endpoint behaves identically.
package pagination

import "strconv"

const (
	// DefaultLimit applies when no limit is supplied.
	DefaultLimit = 10
	// MaxLimit caps the window size a single request may ask for.
	MaxLimit = 100
)

// Page describes a contiguous window over a sorted result set.
type Page struct {
	Page  int
	Limit int
}

// Parse builds a Page from raw query parameters. Non-numeric or out-of-range
// values are clamped into [1, ...] for page and [1, MaxLimit] for limit.
func Parse(pageStr, limitStr string) Page {
	page := atoiOr(pageStr, 1)
	if page < 1 {
		page = 1
	}

	limit := atoiOr(limitStr, DefaultLimit)
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Page{Page: page, Limit: limit}
}

// Offset returns the number of records to skip for this window.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Window returns (limit, offset) for direct use in a query.
func (p Page) Window() (int, int) {
	return p.Limit, p.Offset()
}

// Meta is the pagination metadata returned alongside every windowed payload.
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// MetaFor combines the window with the total matching record count.
func (p Page) MetaFor(total int64) Meta {
	return Meta{Page: p.Page, Limit: p.Limit, Total: total}
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
