package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the JSON body of the /health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Units     int    `json:"units"`
	Timestamp string `json:"timestamp"`
}

// HealthChecker reports readiness of a backing dependency. The Qdrant store
// implements this; the in-memory backend needs no check and may pass nil.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewHealthHandler creates an HTTP handler for the /health endpoint. It
// reports the unit catalog size and, when a checker is supplied, backing
// store connectivity.
func NewHealthHandler(units int, checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		response := HealthResponse{
			Units:     units,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		w.Header().Set("Content-Type", "application/json")

		if checker != nil {
			if err := checker.Health(ctx); err != nil {
				response.Status = "unhealthy"
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(response)
				return
			}
		}

		response.Status = "healthy"
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}
