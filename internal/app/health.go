package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ecocal/ecocal/internal/database"
	log "github.com/sirupsen/logrus"
)

// HealthHandler reports whether the service can reach its database.
type HealthHandler struct {
	db *database.Connector
}

func NewHealthHandler(db *database.Connector) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check handles GET /api/health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := h.db.Ping(ctx); err != nil {
		log.Errorf("health check failed: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		if encodeErr := json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"}); encodeErr != nil {
			log.Errorf("failed to encode health response: %v", encodeErr)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
