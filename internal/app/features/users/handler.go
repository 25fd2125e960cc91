// internal/app/features/users/handler.go
package users

import (
	"github.com/dalemusser/accesshub/internal/app/system/metrics"
	"go.uber.org/zap"
)

type Handler struct {
	Log     *zap.Logger
	Metrics *metrics.Recorder
}

func NewHandler(rec *metrics.Recorder, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Metrics: rec}
}
