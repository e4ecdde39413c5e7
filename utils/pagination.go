package utils

import "strconv"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a 1-based page request with a bounded size.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// NewPage clamps raw query values: page < 1 becomes 1, limit < 1 falls back
// to DefaultPageSize and anything above MaxPageSize is capped.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// Pages returns how many pages total items span.
func (p Page) Pages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// AtoiDefault parses s as an int, returning def on empty or invalid input.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
