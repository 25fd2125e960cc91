// Package normalize holds the canonical forms used when storing and
// matching user-supplied strings.
package normalize

import (
	"strings"
)

// Email lower-cases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status lower-cases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Tenant lower-cases and trims a tenant key. Empty input yields empty output;
// callers substitute the configured default tenant.
func Tenant(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// PermissionName converts a free-form permission label into its stored
// form. The label is trimmed, every non-letter becomes '_' and letters are
// upper-cased, so "create group" and "create-group" both yield
// "CREATE_GROUP" while "create  group" yields "CREATE__GROUP". A label
// without letters has no stored form and yields "".
func PermissionName(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	letters := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
			letters = true
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
			letters = true
		default:
			b.WriteByte('_')
		}
	}
	if !letters {
		return ""
	}
	return b.String()
}

// PermissionNames normalizes a list of permission labels, dropping empty
// results and duplicates while keeping first-seen order.
func PermissionNames(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		n := PermissionName(s)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// SplitList splits a comma separated configuration value, trimming each
// element and dropping empties. It returns nil when nothing remains.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
