package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Triggers
	mux.Handle("POST /api/workspaces/{workspace_id}/triggers", chain(http.HandlerFunc(h.ReplaceTriggers)))
	mux.Handle("GET /api/workspaces/{workspace_id}/triggers", chain(http.HandlerFunc(h.GetTriggers)))
	mux.Handle("DELETE /api/workspaces/{workspace_id}/triggers", chain(http.HandlerFunc(h.RemoveTriggers)))

	// Metrics
	mux.Handle("GET /metrics/api/{workspace_id}", chain(http.HandlerFunc(h.WorkspaceMetrics)))

	// Health
	mux.Handle("GET /health", chain(http.HandlerFunc(h.Health)))
}
