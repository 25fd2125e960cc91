package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/accesshub/internal/app/system/htmlsanitize"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Air quality team", "Air quality team"},
		{"trims", "  Kampala  ", "Kampala"},
		{"strips tags", "<b>Air</b> quality", "Air quality"},
		{"drops script", "<script>alert('x')</script>hello", "hello"},
		{"keeps ampersand", "Sensors & Models", "Sensors & Models"},
		{"drops handler", `<a href="#" onclick="x()">link</a>`, "link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPtr(t *testing.T) {
	if htmlsanitize.Ptr(nil) != nil {
		t.Error("Ptr(nil) should be nil")
	}
	s := "<i>x</i>"
	if got := htmlsanitize.Ptr(&s); got == nil || *got != "x" {
		t.Errorf("Ptr(%q) = %v, want x", s, got)
	}
}
