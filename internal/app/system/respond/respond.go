// Package respond writes service results to HTTP responses.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/system/result"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Result writes the envelope of res. A successful result without an
// explicit status is sent as 200, a failed one as 500.
func Result[T any](w http.ResponseWriter, res result.Result[T]) {
	env := res.Envelope()
	status := res.Status
	if status == 0 {
		if env.Success {
			status = http.StatusOK
		} else {
			status = http.StatusInternalServerError
		}
		env.Status = status
	}
	JSON(w, status, env)
}

// BadRequest writes a validation envelope for malformed input that never
// reached a service (bad JSON body, missing path value).
func BadRequest(w http.ResponseWriter, detail string) {
	Result(w, result.BadRequest[any](detail))
}

// Unauthorized writes the 401 envelope used by the auth middleware.
func Unauthorized(w http.ResponseWriter, detail string) {
	JSON(w, http.StatusUnauthorized, result.Envelope{
		Success: false,
		Message: "Unauthorized",
		Status:  http.StatusUnauthorized,
		Errors:  result.Errors{"message": detail},
	})
}

// Forbidden writes the 403 envelope for a caller who may not act here.
func Forbidden(w http.ResponseWriter, detail string) {
	JSON(w, http.StatusForbidden, result.Envelope{
		Success: false,
		Message: "Forbidden",
		Status:  http.StatusForbidden,
		Errors:  result.Errors{"message": detail},
	})
}
