package handler

import (
	nethttp "net/http"

	"github.com/MKhiriev/go-vrc-link/internal/config"
	"github.com/MKhiriev/go-vrc-link/internal/handler/http"
	"github.com/MKhiriev/go-vrc-link/internal/logger"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(health http.HealthSource, metrics nethttp.Handler, cfg config.Server, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.DiagnosticsAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{HTTP: http.NewHandler(health, metrics, logger)}, nil
}
