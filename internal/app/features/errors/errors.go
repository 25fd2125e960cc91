// internal/app/features/errors/errors.go

// Package errors answers unknown routes and methods with the standard
// envelope.
package errors

import (
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/system/respond"
	"github.com/dalemusser/accesshub/internal/app/system/result"
)

// NotFound is the router's 404 handler.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respond.Result(w, result.NotFound[any]("the route "+r.URL.Path+" does not exist"))
}

// MethodNotAllowed is the router's 405 handler.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.Result(w, result.Fail[any](result.KindValidation, "Method Not Allowed", result.Errors{
		"message": r.Method + " is not supported on " + r.URL.Path,
	}).WithStatus(http.StatusMethodNotAllowed))
}
