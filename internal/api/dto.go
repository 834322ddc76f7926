package api

import (
	"time"

	"github.com/shaiso/Impulse/internal/domain"
	"github.com/shaiso/Impulse/internal/trigger"
)

// ReplaceTriggersRequest — тело запроса замены триггеров.
// Отсутствующее поле triggers — ошибка; пустой массив — валидная
// очистка workspace.
type ReplaceTriggersRequest struct {
	Triggers []domain.Trigger `json:"triggers"`
}

// ReplaceTriggersResponse — ответ на замену триггеров.
type ReplaceTriggersResponse struct {
	Success     bool              `json:"success"`
	WorkspaceID string            `json:"workspace_id"`
	Removed     int               `json:"removed"`
	Added       int               `json:"added"`
	Jobs        []trigger.JobInfo `json:"jobs"`
}

// ListTriggersResponse — ответ на перечисление триггеров.
type ListTriggersResponse struct {
	Success     bool              `json:"success"`
	WorkspaceID string            `json:"workspace_id"`
	Count       int               `json:"count"`
	Jobs        []trigger.JobInfo `json:"jobs"`
}

// RemoveTriggersResponse — ответ на удаление триггеров.
type RemoveTriggersResponse struct {
	Success     bool   `json:"success"`
	WorkspaceID string `json:"workspace_id"`
	Removed     int    `json:"removed"`
}

// HealthResponse — ответ health check.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// WorkspaceMetricsResponse — ответ на запрос метрик workspace.
type WorkspaceMetricsResponse struct {
	WorkspaceID   string                   `json:"workspace_id"`
	Total         int                      `json:"total"`
	Stats         domain.WorkspaceStats    `json:"stats"`
	Executions    []domain.ExecutionRecord `json:"executions"`
	NextExecution *time.Time               `json:"next_execution"`
}
