// internal/app/features/auditlog/handler.go
package auditlog

import "go.uber.org/zap"

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}
