package pagination

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultPerPage = 25
	MaxPerPage     = 100
)

// Params holds the page window requested by a client.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// DefaultParams returns the first page with the default page size.
func DefaultParams() Params {
	return Params{Page: 1, PerPage: DefaultPerPage}
}

// FromRequest reads `page` and `per_page` from the query string. Out of range
// values keep their defaults.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()
	q := r.URL.Query()

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 && v <= MaxPerPage {
		p.PerPage = v
	}

	p.Offset = (p.Page - 1) * p.PerPage
	return p
}

// Cursor points at a neighbouring page.
type Cursor struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Page describes where a result set sits in the full collection.
type Page struct {
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
	Next       *Cursor `json:"next,omitempty"`
	Prev       *Cursor `json:"prev,omitempty"`
}

// NewPage computes page metadata for total matching rows.
func NewPage(total int, p Params) Page {
	pages := total / p.PerPage
	if total%p.PerPage > 0 {
		pages++
	}

	out := Page{Total: total, TotalPages: pages}
	if p.Offset+p.PerPage < total {
		out.Next = &Cursor{Page: p.Page + 1, PerPage: p.PerPage}
	}
	if p.Offset > 0 {
		out.Prev = &Cursor{Page: p.Page - 1, PerPage: p.PerPage}
	}
	return out
}

// Sort translates a comma separated `sort` query value such as "-average_cost,name"
// into an ORDER BY list. Only keys present in columns are honoured; the map
// value is the column expression. fallback is used when nothing valid remains.
func Sort(raw string, columns map[string]string, fallback string) string {
	var parts []string
	for _, key := range strings.Split(raw, ",") {
		key = strings.TrimSpace(key)
		dir := "ASC"
		if strings.HasPrefix(key, "-") {
			dir = "DESC"
			key = key[1:]
		}
		col, ok := columns[key]
		if !ok {
			continue
		}
		parts = append(parts, col+" "+dir)
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, ", ")
}
