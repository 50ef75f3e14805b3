package handlers

import (
	"net/http"
	"time"
)

// HealthResponse reports service liveness
// swagger:model HealthResponse
type HealthResponse struct {
	// example: healthy
	Status string `json:"status"`

	// example: user-service
	Service string `json:"service"`

	// RFC3339 timestamp of the response
	Timestamp string `json:"timestamp"`

	// Build version
	Version string `json:"version"`
}

// NewHealthHandler returns a liveness handler for the given service.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} handlers.HealthResponse "Service is healthy"
// @Router /health [get]
func NewHealthHandler(service, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:    "healthy",
			Service:   service,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   version,
		})
	}
}
