package calsync

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ecocal/ecocal/internal/rest"
	log "github.com/sirupsen/logrus"
)

type SyncResultDTO struct {
	Success bool     `json:"success"`
	Synced  int      `json:"synced"`
	Total   int      `json:"total"`
	Errors  []string `json:"errors"`
}

type Handler struct {
	reconciler *Reconciler
}

func NewHandler(reconciler *Reconciler) *Handler {
	return &Handler{reconciler}
}

// TriggerSync handles POST /api/sync.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	log.Debug("Triggering calendar sync")
	w.Header().Set("Content-Type", "application/json")

	result, err := h.reconciler.Run(r.Context())
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			w.WriteHeader(http.StatusServiceUnavailable)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Calendar sync is not configured",
				Details: "store a Google OAuth token and restart to enable syncing",
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
				return
			}
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Sync failed",
			Details: err.Error(),
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(syncResultToDTO(result)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func syncResultToDTO(result Result) SyncResultDTO {
	errorsList := make([]string, 0, len(result.Failures))
	for _, failure := range result.Failures {
		errorsList = append(errorsList, fmt.Sprintf("%s: %s", failure.Summary, failure.Reason))
	}
	return SyncResultDTO{
		Success: result.Success(),
		Synced:  result.Succeeded,
		Total:   result.Attempted,
		Errors:  errorsList,
	}
}
