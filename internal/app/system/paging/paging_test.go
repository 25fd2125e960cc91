package paging

import (
	"net/http/httptest"
	"testing"
)

func TestFromStrings(t *testing.T) {
	tests := []struct {
		name  string
		limit string
		skip  string
		want  Page
	}{
		{"defaults", "", "", Page{Limit: DefaultLimit}},
		{"explicit", "20", "40", Page{Limit: 20, Skip: 40}},
		{"invalid", "abc", "-3", Page{Limit: DefaultLimit}},
		{"zero limit", "0", "0", Page{Limit: DefaultLimit}},
		{"capped", "999999", "", Page{Limit: MaxLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromStrings(tt.limit, tt.skip)
			if got != tt.want {
				t.Errorf("FromStrings(%q, %q) = %+v, want %+v", tt.limit, tt.skip, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	r := httptest.NewRequest("GET", "/groups?limit=5&skip=10", nil)
	got := Parse(r)
	if got.Limit != 5 || got.Skip != 10 {
		t.Errorf("Parse() = %+v, want limit 5 skip 10", got)
	}
}
