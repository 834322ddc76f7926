package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shaiso/Impulse/internal/domain"
	"github.com/shaiso/Impulse/internal/metrics"
	"github.com/shaiso/Impulse/internal/objstore"
	"github.com/shaiso/Impulse/internal/schedule"
	"github.com/shaiso/Impulse/internal/trigger"
)

type testEnv struct {
	srv      *httptest.Server
	store    *schedule.MemoryStore
	objects  *objstore.MemoryStore
	recorder *metrics.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := schedule.NewMemoryStore()
	objects := objstore.NewMemoryStore()

	handler := NewHandler(Config{
		Coordinator: trigger.NewCoordinator(store, logger),
		Store:       store,
		Reader: metrics.NewReader(metrics.ReaderConfig{
			Store:  objects,
			Logger: logger,
		}),
		Logger: logger,
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &testEnv{
		srv:     srv,
		store:   store,
		objects: objects,
		recorder: metrics.NewRecorder(metrics.RecorderConfig{
			Store:  objects,
			Logger: logger,
		}),
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func TestReplaceThenGetTriggers(t *testing.T) {
	env := newTestEnv(t)

	body := `{"triggers":[{"cron":"*/5 * * * *","url":"https://example.com/hook","method":"POST"}]}`
	resp, data := env.do(t, http.MethodPost, "/api/workspaces/acme/triggers", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, data)
	}

	var replaced ReplaceTriggersResponse
	if err := json.Unmarshal(data, &replaced); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !replaced.Success {
		t.Error("expected success")
	}
	if replaced.WorkspaceID != "acme" {
		t.Errorf("unexpected workspace_id: %s", replaced.WorkspaceID)
	}
	if replaced.Removed != 0 || replaced.Added != 1 {
		t.Errorf("expected removed=0 added=1, got removed=%d added=%d", replaced.Removed, replaced.Added)
	}
	if len(replaced.Jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(replaced.Jobs))
	}

	job := replaced.Jobs[0]
	if job.JobID != "acme:0" {
		t.Errorf("unexpected jobId: %s", job.JobID)
	}
	if job.JobName != "acme-trigger-0" {
		t.Errorf("unexpected jobName: %s", job.JobName)
	}
	if job.Cron != "*/5 * * * *" || job.URL != "https://example.com/hook" || job.Method != "POST" {
		t.Errorf("unexpected job fields: %+v", job)
	}

	resp, data = env.do(t, http.MethodGet, "/api/workspaces/acme/triggers", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, data)
	}

	var listed ListTriggersResponse
	if err := json.Unmarshal(data, &listed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if listed.Count != 1 {
		t.Errorf("expected count 1, got %d", listed.Count)
	}
	if len(listed.Jobs) != 1 || listed.Jobs[0].JobID != "acme:0" {
		t.Errorf("unexpected jobs: %+v", listed.Jobs)
	}
}

func TestReplaceTriggersMissingBody(t *testing.T) {
	env := newTestEnv(t)

	resp, data := env.do(t, http.MethodPost, "/api/workspaces/acme/triggers", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, data)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(data, &errResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if errResp.Success {
		t.Error("expected success=false")
	}
	if errResp.Error == "" {
		t.Error("expected error message")
	}
}

func TestReplaceTriggersMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/workspaces/acme/triggers", `{not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestReplaceTriggersInvalidTrigger(t *testing.T) {
	env := newTestEnv(t)

	// Второй триггер с битым cron: хранилище не должно измениться.
	body := `{"triggers":[
		{"cron":"*/5 * * * *","url":"https://example.com/a","method":"GET"},
		{"cron":"not-a-cron","url":"https://example.com/b","method":"GET"}
	]}`
	resp, data := env.do(t, http.MethodPost, "/api/workspaces/acme/triggers", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, data)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(data, &errResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if errResp.Error == "" {
		t.Fatal("expected error message")
	}

	entries, err := env.store.ListByWorkspace(context.Background(), "acme")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("store must stay untouched, got %d entries", len(entries))
	}
}

func TestRemoveTriggers(t *testing.T) {
	env := newTestEnv(t)

	body := `{"triggers":[
		{"cron":"* * * * *","url":"https://example.com/a","method":"GET"},
		{"cron":"* * * * *","url":"https://example.com/b","method":"GET"}
	]}`
	resp, data := env.do(t, http.MethodPost, "/api/workspaces/acme/triggers", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, data)
	}

	resp, data = env.do(t, http.MethodDelete, "/api/workspaces/acme/triggers", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, data)
	}

	var removed RemoveTriggersResponse
	if err := json.Unmarshal(data, &removed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !removed.Success || removed.Removed != 2 {
		t.Errorf("expected removed=2, got %+v", removed)
	}

	resp, data = env.do(t, http.MethodGet, "/api/workspaces/acme/triggers", "")
	var listed ListTriggersResponse
	if err := json.Unmarshal(data, &listed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if listed.Count != 0 {
		t.Errorf("expected count 0 after delete, got %d", listed.Count)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, data := env.do(t, http.MethodGet, "/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var health HealthResponse
	if err := json.Unmarshal(data, &health); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("unexpected status: %s", health.Status)
	}
	if health.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}
}

func TestWorkspaceMetrics(t *testing.T) {
	env := newTestEnv(t)

	// Регистрируем триггер, чтобы next_execution было чем заполнить.
	body := `{"triggers":[{"cron":"*/5 * * * *","url":"https://example.com/hook","method":"POST"}]}`
	resp, data := env.do(t, http.MethodPost, "/api/workspaces/acme/triggers", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, data)
	}

	code := 200
	env.recorder.Record(domain.ExecutionRecord{
		Timestamp:   time.Now().UTC(),
		WorkspaceID: "acme",
		JobID:       "acme:0",
		JobName:     "acme-trigger-0",
		URL:         "https://example.com/hook",
		Method:      "POST",
		Status:      domain.ExecutionStatusSuccess,
		DurationMs:  120,
		StatusCode:  &code,
	})
	if err := env.recorder.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	resp, data = env.do(t, http.MethodGet, "/metrics/api/acme?limit=10", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, data)
	}

	var result WorkspaceMetricsResponse
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.WorkspaceID != "acme" {
		t.Errorf("unexpected workspace_id: %s", result.WorkspaceID)
	}
	if result.Total != 1 {
		t.Errorf("expected total 1, got %d", result.Total)
	}
	if result.Stats.Success != 1 || result.Stats.Failed != 0 {
		t.Errorf("unexpected stats: %+v", result.Stats)
	}
	if len(result.Executions) != 1 {
		t.Errorf("expected 1 execution, got %d", len(result.Executions))
	}
	if result.NextExecution == nil {
		t.Error("expected next_execution")
	}
}

func TestWorkspaceMetricsBadLimit(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/metrics/api/acme?limit=abc", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
