package repositories

import (
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStatusChanged is returned by guarded status updates when the row no
	// longer holds the expected status.
	ErrStatusChanged = errors.New("status changed concurrently")
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Pagination is a 1-based page request.
type Pagination struct {
	Page    int
	PerPage int
}

// Normalize clamps the request to valid bounds.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page describes one page of a listing.
type Page struct {
	Page     int `json:"page"`
	PerPage  int `json:"per_page"`
	Total    int `json:"total"`
	LastPage int `json:"last_page"`
}

func NewPage(p Pagination, total int) Page {
	last := (total + p.PerPage - 1) / p.PerPage
	if last < 1 {
		last = 1
	}
	return Page{Page: p.Page, PerPage: p.PerPage, Total: total, LastPage: last}
}

// where joins conditions into a WHERE clause, or returns "" for none.
func where(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

type scanner interface {
	Scan(dest ...any) error
}
