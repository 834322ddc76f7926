package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shaiso/Impulse/internal/metrics"
	"github.com/shaiso/Impulse/internal/schedule"
	"github.com/shaiso/Impulse/internal/trigger"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	coordinator *trigger.Coordinator
	store       schedule.Store
	reader      *metrics.Reader
	logger      *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Coordinator *trigger.Coordinator
	Store       schedule.Store
	Reader      *metrics.Reader
	Logger      *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		coordinator: cfg.Coordinator,
		store:       cfg.Store,
		reader:      cfg.Reader,
		logger:      logger,
	}
}

// ReplaceTriggers обрабатывает POST /api/workspaces/{workspace_id}/triggers.
func (h *Handler) ReplaceTriggers(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.PathValue("workspace_id")

	var req ReplaceTriggersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	result, err := h.coordinator.ReplaceTriggers(r.Context(), workspaceID, req.Triggers)
	if HandleError(w, h.logger, err) {
		return
	}

	JSON(w, http.StatusOK, ReplaceTriggersResponse{
		Success:     true,
		WorkspaceID: workspaceID,
		Removed:     result.Removed,
		Added:       result.Added,
		Jobs:        result.Jobs,
	})
}

// GetTriggers обрабатывает GET /api/workspaces/{workspace_id}/triggers.
func (h *Handler) GetTriggers(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.PathValue("workspace_id")

	entries, err := h.coordinator.GetTriggers(r.Context(), workspaceID)
	if HandleError(w, h.logger, err) {
		return
	}

	jobs := make([]trigger.JobInfo, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		jobs = append(jobs, trigger.JobInfo{
			JobID:   e.JobID(),
			JobName: e.JobName,
			Cron:    e.CronExpr,
			URL:     e.Trigger.URL,
			Method:  e.Trigger.Method,
		})
	}

	JSON(w, http.StatusOK, ListTriggersResponse{
		Success:     true,
		WorkspaceID: workspaceID,
		Count:       len(jobs),
		Jobs:        jobs,
	})
}

// RemoveTriggers обрабатывает DELETE /api/workspaces/{workspace_id}/triggers.
func (h *Handler) RemoveTriggers(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.PathValue("workspace_id")

	removed, err := h.coordinator.RemoveTriggers(r.Context(), workspaceID)
	if HandleError(w, h.logger, err) {
		return
	}

	JSON(w, http.StatusOK, RemoveTriggersResponse{
		Success:     true,
		WorkspaceID: workspaceID,
		Removed:     removed,
	})
}

// Health обрабатывает GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}

// WorkspaceMetrics обрабатывает GET /metrics/api/{workspace_id}.
func (h *Handler) WorkspaceMetrics(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.PathValue("workspace_id")
	if workspaceID == "" {
		BadRequest(w, "workspace_id is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	result, err := h.reader.WorkspaceMetrics(r.Context(), workspaceID, limit)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	nextExecution, err := h.store.NextDue(r.Context(), workspaceID)
	if HandleError(w, h.logger, err) {
		return
	}

	JSON(w, http.StatusOK, WorkspaceMetricsResponse{
		WorkspaceID:   workspaceID,
		Total:         result.Total,
		Stats:         result.Stats,
		Executions:    result.Executions,
		NextExecution: nextExecution,
	})
}
