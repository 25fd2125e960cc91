// Package result defines the uniform outcome returned by every service
// operation. A Result never carries a Go error across a service boundary:
// failures are described by a Kind, a human readable message and an
// optional per-key error map, and render to the JSON envelope
//
//	{ "success": bool, "message": string, "status": int, "data": ..., "errors": {...} }
package result

import (
	"net/http"
)

// Kind classifies an outcome.
type Kind int

const (
	KindOK Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindNotImplemented
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindNotImplemented:
		return "not_implemented"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// DefaultStatus is the HTTP status a Kind maps to when a Result does not
// set one explicitly.
func (k Kind) DefaultStatus() int {
	switch k {
	case KindOK:
		return http.StatusOK
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Errors is the per-key failure map. Single failures use the "message" key;
// bulk operations key by item id.
type Errors map[string]string

// Result is the typed outcome of a service operation.
type Result[T any] struct {
	Kind    Kind
	Message string
	Status  int
	Data    T
	Errors  Errors

	hasData bool
}

// Envelope is the wire shape of a Result.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Data    any    `json:"data,omitempty"`
	Errors  Errors `json:"errors,omitempty"`
}

// OK builds a successful Result carrying data.
func OK[T any](message string, data T) Result[T] {
	return Result[T]{Kind: KindOK, Message: message, Status: http.StatusOK, Data: data, hasData: true}
}

// Done builds a successful Result without a payload.
func Done[T any](message string) Result[T] {
	return Result[T]{Kind: KindOK, Message: message, Status: http.StatusOK}
}

// Fail builds a failed Result of the given kind.
func Fail[T any](kind Kind, message string, errs Errors) Result[T] {
	return Result[T]{Kind: kind, Message: message, Status: kind.DefaultStatus(), Errors: errs}
}

// BadRequest is the common "Bad Request Error" validation failure with a
// single detail message.
func BadRequest[T any](detail string) Result[T] {
	return Fail[T](KindValidation, "Bad Request Error", Errors{"message": detail})
}

// NotFound reports a missing entity.
func NotFound[T any](detail string) Result[T] {
	return Fail[T](KindNotFound, "Not Found", Errors{"message": detail})
}

// Internal wraps an unexpected store or driver error.
func Internal[T any](err error) Result[T] {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Fail[T](KindInternal, "Internal Server Error", Errors{"message": msg})
}

// Success reports whether the operation succeeded.
func (r Result[T]) Success() bool { return r.Kind == KindOK }

// HasData reports whether Data was explicitly set.
func (r Result[T]) HasData() bool { return r.hasData }

// WithStatus overrides the HTTP status.
func (r Result[T]) WithStatus(status int) Result[T] {
	r.Status = status
	return r
}

// WithData attaches a payload (used by failures that still report progress,
// such as partial bulk assignment).
func (r Result[T]) WithData(data T) Result[T] {
	r.Data = data
	r.hasData = true
	return r
}

// Envelope renders the Result to its wire shape.
func (r Result[T]) Envelope() Envelope {
	env := Envelope{
		Success: r.Success(),
		Message: r.Message,
		Status:  r.Status,
		Errors:  r.Errors,
	}
	if env.Status == 0 {
		env.Status = r.Kind.DefaultStatus()
	}
	if r.hasData {
		env.Data = r.Data
	}
	return env
}

// Recast carries a failed Result over to another payload type. The payload
// of r is dropped.
func Recast[U, T any](r Result[T]) Result[U] {
	return Result[U]{Kind: r.Kind, Message: r.Message, Status: r.Status, Errors: r.Errors}
}
