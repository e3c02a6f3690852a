package http

import (
	"net/http"

	"github.com/MKhiriev/go-vrc-link/internal/logger"
	"github.com/MKhiriev/go-vrc-link/models"
)

// HealthSource reports the current state of the daemon.
type HealthSource interface {
	Health() models.Health
}

type Handler struct {
	health  HealthSource
	metrics http.Handler

	logger *logger.Logger
}

func NewHandler(health HealthSource, metrics http.Handler, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		health:  health,
		metrics: metrics,
		logger:  logger,
	}
}
