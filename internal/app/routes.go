package app

import (
	"github.com/ecocal/ecocal/internal/config"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Events
	r.HandleFunc("/api/events", deps.EventHandler.GetEvents).Methods("GET")
	r.HandleFunc("/api/events/stats", deps.EventHandler.GetStatistics).Methods("GET")
	r.HandleFunc("/api/events/unsynced", deps.EventHandler.GetUnsynced).Methods("GET")

	// Pipeline triggers
	r.HandleFunc("/api/scrape", deps.EventHandler.TriggerScrape).Methods("POST")
	r.HandleFunc("/api/sync", deps.SyncHandler.TriggerSync).Methods("POST")

	// Operational endpoints
	r.HandleFunc("/api/health", deps.HealthHandler.Check).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
}
