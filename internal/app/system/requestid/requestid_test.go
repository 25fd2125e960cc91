package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, header string) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var got string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(Header, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return got, rec
}

func TestMiddleware_GeneratesID(t *testing.T) {
	id, rec := capture(t, "")
	require.NotEmpty(t, id)
	assert.Equal(t, id, rec.Header().Get(Header))
}

func TestMiddleware_HeaderValidation(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantNew bool
	}{
		{"alphanumeric", "abc-123_DEF", false},
		{"newline", "id\nforged: yes", true},
		{"spaces", "id with spaces", true},
		{"markup", "<script>", true},
		{"max length", strings.Repeat("a", 128), false},
		{"too long", strings.Repeat("a", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, _ := capture(t, tt.header)
			require.NotEmpty(t, id)
			if tt.wantNew {
				assert.NotEqual(t, tt.header, id)
			} else {
				assert.Equal(t, tt.header, id)
			}
		})
	}
}

func TestFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, FromContext(req.Context()))
}
