// Package paging parses limit/skip windows for list endpoints.
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

const (
	// DefaultLimit applies when a request does not ask for a limit.
	DefaultLimit int64 = 1000
	// MaxLimit caps any requested limit.
	MaxLimit int64 = 5000
)

// Page is a limit/skip window.
type Page struct {
	Limit int64
	Skip  int64
}

// Parse reads ?limit= and ?skip= from r.
func Parse(r *http.Request) Page {
	return FromStrings(query.Get(r, "limit"), query.Get(r, "skip"))
}

// FromStrings builds a Page from raw values. Missing, invalid or negative
// values fall back to the defaults; limits above MaxLimit are capped.
func FromStrings(limit, skip string) Page {
	p := Page{Limit: DefaultLimit}
	if n, err := strconv.ParseInt(limit, 10, 64); err == nil && n > 0 {
		p.Limit = min(n, MaxLimit)
	}
	if n, err := strconv.ParseInt(skip, 10, 64); err == nil && n > 0 {
		p.Skip = n
	}
	return p
}
