package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// JobResponse — одна entry из API.
type JobResponse struct {
	JobID   string `json:"jobId"`
	JobName string `json:"jobName"`
	Cron    string `json:"cron"`
	URL     string `json:"url"`
	Method  string `json:"method"`
}

// ReplaceTriggersResponse — результат замены триггеров.
type ReplaceTriggersResponse struct {
	Success     bool          `json:"success"`
	WorkspaceID string        `json:"workspace_id"`
	Removed     int           `json:"removed"`
	Added       int           `json:"added"`
	Jobs        []JobResponse `json:"jobs"`
}

// ListTriggersResponse — результат перечисления триггеров.
type ListTriggersResponse struct {
	Success     bool          `json:"success"`
	WorkspaceID string        `json:"workspace_id"`
	Count       int           `json:"count"`
	Jobs        []JobResponse `json:"jobs"`
}

// RemoveTriggersResponse — результат удаления триггеров.
type RemoveTriggersResponse struct {
	Success     bool   `json:"success"`
	WorkspaceID string `json:"workspace_id"`
	Removed     int    `json:"removed"`
}

// StatsResponse — агрегаты выполнений workspace.
type StatsResponse struct {
	Total       int     `json:"total"`
	Success     int     `json:"success"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
	AvgDuration int64   `json:"avg_duration"`
}

// ExecutionResponse — одна запись истории выполнений.
type ExecutionResponse struct {
	Timestamp  string `json:"timestamp"`
	JobID      string `json:"job_id"`
	JobName    string `json:"job_name"`
	URL        string `json:"url"`
	Method     string `json:"method"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	StatusCode *int   `json:"status_code"`
	Error      *string `json:"error"`
	RetryCount int    `json:"retry_count"`
}

// WorkspaceMetricsResponse — история и агрегаты workspace.
type WorkspaceMetricsResponse struct {
	WorkspaceID   string              `json:"workspace_id"`
	Total         int                 `json:"total"`
	Stats         StatsResponse       `json:"stats"`
	Executions    []ExecutionResponse `json:"executions"`
	NextExecution string              `json:"next_execution"`
}

// --- Request types ---

// TriggerRequest — один триггер в запросе замены.
type TriggerRequest struct {
	Cron    string            `json:"cron"`
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Payload map[string]any    `json:"payload,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// --- API error wrapper ---

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Impulse API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ReplaceTriggers заменяет все триггеры workspace.
func (c *Client) ReplaceTriggers(workspaceID string, triggers []TriggerRequest) (*ReplaceTriggersResponse, error) {
	body := map[string]any{"triggers": triggers}
	var result ReplaceTriggersResponse
	err := c.doJSON(http.MethodPost, "/api/workspaces/"+url.PathEscape(workspaceID)+"/triggers", body, &result)
	return &result, err
}

// GetTriggers возвращает триггеры workspace.
func (c *Client) GetTriggers(workspaceID string) (*ListTriggersResponse, error) {
	var result ListTriggersResponse
	err := c.doJSON(http.MethodGet, "/api/workspaces/"+url.PathEscape(workspaceID)+"/triggers", nil, &result)
	return &result, err
}

// RemoveTriggers удаляет все триггеры workspace.
func (c *Client) RemoveTriggers(workspaceID string) (*RemoveTriggersResponse, error) {
	var result RemoveTriggersResponse
	err := c.doJSON(http.MethodDelete, "/api/workspaces/"+url.PathEscape(workspaceID)+"/triggers", nil, &result)
	return &result, err
}

// WorkspaceMetrics возвращает историю выполнений workspace.
func (c *Client) WorkspaceMetrics(workspaceID string, limit int) (*WorkspaceMetricsResponse, error) {
	path := "/metrics/api/" + url.PathEscape(workspaceID)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var result WorkspaceMetricsResponse
	err := c.doJSON(http.MethodGet, path, nil, &result)
	return &result, err
}

// --- HTTP helpers ---

func (c *Client) doJSON(method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error == "" {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}
	return fmt.Errorf("%s", er.Error)
}
