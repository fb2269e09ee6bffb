package pagination

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/hackhub-dev/server/internal/validation"
)

// Options bounds the page size accepted for a listing.
type Options struct {
	DefaultLimit int
	MaxLimit     int
}

// Events is the page size policy shared by event and user listings.
var Events = Options{DefaultLimit: 10, MaxLimit: 50}

// Page is a 1-based page request.
type Page struct {
	Number int
	Limit  int
}

// Offset returns the number of rows to skip for this page.
func (p Page) Offset() int {
	if p.Number < 1 || p.Limit < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

// Meta is the pagination block returned with list responses.
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewMeta computes the page count as ceil(total/limit).
func NewMeta(p Page, total int) Meta {
	pages := 0
	if p.Limit > 0 && total > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Meta{Page: p.Number, Limit: p.Limit, Total: total, Pages: pages}
}

// Parse reads page and limit from query values. Every invalid field is reported.
func Parse(values url.Values, opts Options) (Page, error) {
	page := Page{Number: 1, Limit: opts.DefaultLimit}
	var errs validation.Errors

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs.Add("page", "Page must be a positive integer")
		} else {
			page.Number = n
		}
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > opts.MaxLimit {
			errs.Add("limit", "Limit must be between 1 and "+strconv.Itoa(opts.MaxLimit))
		} else {
			page.Limit = n
		}
	}

	return page, errs.Err()
}

// ClampLimit bounds a limit to [1, max], substituting def when the value is unset.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
