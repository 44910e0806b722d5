package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/warehouse-core/internal/warehouse"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/system", s.handleSystem)
		r.Get("/components", s.handleComponents)
		r.Get("/types", s.handleTypes)

		// Feed-backed snapshots
		r.Get("/sensors", s.handleSnapshot(warehouse.TypeSensor))
		r.Get("/alerts", s.handleSnapshot(warehouse.TypeAlert))
		r.Get("/zones", s.handleZones)

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", s.handleInventory)
			r.Delete("/{id}", s.handleDeleteInventoryItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", s.handleSnapshot(warehouse.TypeOrder))
			r.Post("/", s.handleCreateOrder)
			r.Patch("/{id}", s.handleUpdateOrder)
		})

		r.Route("/shipments", func(r chi.Router) {
			r.Get("/", s.handleSnapshot(warehouse.TypeShipment))
			r.Post("/", s.handleCreateShipment)
			r.Patch("/{id}", s.handleUpdateShipment)
		})

		// Read directly unless their feeds are configured
		r.Route("/reports", func(r chi.Router) {
			r.Get("/", handleListOf(s, warehouse.TypeReport, s.repo.Reports))
			r.Post("/", s.handleCreateReport)
			r.Get("/inventory.xlsx", s.handleInventoryExport)
		})
		r.Route("/users", func(r chi.Router) {
			r.Get("/", handleListOf(s, warehouse.TypeUser, s.repo.Users))
			r.Post("/", s.handleCreateUser)
		})
		r.Get("/settings", handleListOf(s, warehouse.TypeSystemSetting, s.repo.Settings))

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
