package http

import (
	"net/http"

	"github.com/MKhiriev/go-vrc-link/internal/logger"
	"github.com/MKhiriev/go-vrc-link/internal/utils"
)

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	health := h.health.Health()
	if _, err := utils.WriteJSON(w, health, http.StatusOK); err != nil {
		log.Err(err).Msg("failed to write health response")
	}
}
