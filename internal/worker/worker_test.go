package worker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/Impulse/internal/domain"
	"github.com/shaiso/Impulse/internal/mq"
)

type fakeSink struct {
	mu      sync.Mutex
	records []domain.ExecutionRecord
}

func (s *fakeSink) Record(rec domain.ExecutionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

func (s *fakeSink) all() []domain.ExecutionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ExecutionRecord, len(s.records))
	copy(out, s.records)
	return out
}

type fakePublisher struct {
	events chan domain.FireEvent
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{events: make(chan domain.FireEvent, 16)}
}

func (p *fakePublisher) PublishFire(_ context.Context, event domain.FireEvent) error {
	p.events <- event
	return nil
}

func newTestWorker(t *testing.T, sink *fakeSink, pub *fakePublisher) *Worker {
	t.Helper()
	return New(Config{
		Publisher: pub,
		Recorder:  sink,
		RetryBase: time.Millisecond,
	})
}

func fireDelivery(event domain.FireEvent) *mq.Delivery {
	return &mq.Delivery{
		Message: mq.Message{
			ID:      "test",
			Type:    mq.MessageTypeFire,
			Payload: event,
		},
	}
}

func testEvent(url string) domain.FireEvent {
	return domain.FireEvent{
		WorkspaceID: "acme",
		Index:       0,
		JobName:     "acme-trigger-0",
		Trigger: domain.Trigger{
			Cron:   "* * * * *",
			URL:    url,
			Method: "POST",
			Payload: map[string]any{
				"source": "test",
			},
		},
		ScheduledAt: time.Now().UTC(),
	}
}

func TestHandleFireSuccess(t *testing.T) {
	var gotMethod, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := &fakeSink{}
	pub := newFakePublisher()
	w := newTestWorker(t, sink, pub)

	err := w.handleFire(context.Background(), fireDelivery(testEvent(srv.URL)))
	if err != nil {
		t.Fatalf("handleFire: %v", err)
	}

	records := sink.all()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Status != domain.ExecutionStatusSuccess {
		t.Errorf("expected success, got %s", rec.Status)
	}
	if rec.StatusCode == nil || *rec.StatusCode != http.StatusOK {
		t.Errorf("unexpected status code: %v", rec.StatusCode)
	}
	if rec.JobID != "acme:0" {
		t.Errorf("unexpected job_id: %s", rec.JobID)
	}
	if rec.RetryCount != 0 {
		t.Errorf("unexpected retry_count: %d", rec.RetryCount)
	}
	if rec.Error != nil {
		t.Errorf("unexpected error text: %s", *rec.Error)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("unexpected method on target: %s", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected default content-type, got %q", gotContentType)
	}

	select {
	case ev := <-pub.events:
		t.Errorf("unexpected retry published: %+v", ev)
	default:
	}
}

// Полученный HTTP-ответ — успешное выполнение независимо от кода.
func TestHandleFireServerErrorIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := &fakeSink{}
	pub := newFakePublisher()
	w := newTestWorker(t, sink, pub)

	if err := w.handleFire(context.Background(), fireDelivery(testEvent(srv.URL))); err != nil {
		t.Fatalf("handleFire: %v", err)
	}

	records := sink.all()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Status != domain.ExecutionStatusSuccess {
		t.Errorf("5xx must be success, got %s", records[0].Status)
	}
	if records[0].StatusCode == nil || *records[0].StatusCode != http.StatusInternalServerError {
		t.Errorf("unexpected status code: %v", records[0].StatusCode)
	}

	select {
	case <-pub.events:
		t.Error("5xx must not trigger retry")
	default:
	}
}

func TestHandleFireTransportFailureSchedulesRetry(t *testing.T) {
	// Сервер закрыт до вызова — гарантированная транспортная ошибка.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	sink := &fakeSink{}
	pub := newFakePublisher()
	w := newTestWorker(t, sink, pub)

	if err := w.handleFire(context.Background(), fireDelivery(testEvent(url))); err != nil {
		t.Fatalf("handleFire: %v", err)
	}

	records := sink.all()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Status != domain.ExecutionStatusFailed {
		t.Errorf("expected failed, got %s", records[0].Status)
	}
	if records[0].StatusCode != nil {
		t.Errorf("transport failure must have nil status code, got %d", *records[0].StatusCode)
	}
	if records[0].Error == nil {
		t.Error("expected error text")
	}

	select {
	case ev := <-pub.events:
		if ev.Attempt != 1 {
			t.Errorf("expected attempt 1, got %d", ev.Attempt)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("retry event was not published")
	}
}

// Постоянно падающий вызов даёт ровно MaxAttempt+1 записей и
// ни одного retry после последней попытки.
func TestHandleFireRetryExhaustion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	sink := &fakeSink{}
	pub := newFakePublisher()
	w := newTestWorker(t, sink, pub)

	event := testEvent(url)
	for {
		if err := w.handleFire(context.Background(), fireDelivery(event)); err != nil {
			t.Fatalf("handleFire attempt %d: %v", event.Attempt, err)
		}

		select {
		case event = <-pub.events:
			continue
		case <-time.After(2 * time.Second):
		}
		break
	}

	records := sink.all()
	if len(records) != domain.MaxAttempt+1 {
		t.Fatalf("expected %d records, got %d", domain.MaxAttempt+1, len(records))
	}
	for i, rec := range records {
		if rec.RetryCount != i {
			t.Errorf("record %d: expected retry_count %d, got %d", i, i, rec.RetryCount)
		}
		if rec.Status != domain.ExecutionStatusFailed {
			t.Errorf("record %d: expected failed, got %s", i, rec.Status)
		}
	}
}

// Отмена контекста доставки (остановка worker'а) не обрывает уже
// начатый вызов: он доигрывает до ответа и записывается по фактическому
// исходу, без фиктивного failed и без retry.
func TestHandleFireSurvivesShutdownMidCall(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := &fakeSink{}
	pub := newFakePublisher()
	w := newTestWorker(t, sink, pub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.handleFire(ctx, fireDelivery(testEvent(srv.URL)))
	}()

	// Вызов повис на сервере; отменяем контекст в полёте.
	time.Sleep(100 * time.Millisecond)
	cancel()
	time.Sleep(50 * time.Millisecond)
	close(release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("handleFire: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handleFire did not finish")
	}

	records := sink.all()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Status != domain.ExecutionStatusSuccess {
		t.Errorf("expected success, got %s (error: %v)", records[0].Status, records[0].Error)
	}
	if records[0].StatusCode == nil || *records[0].StatusCode != http.StatusOK {
		t.Errorf("unexpected status code: %v", records[0].StatusCode)
	}

	select {
	case ev := <-pub.events:
		t.Errorf("unexpected retry published: %+v", ev)
	default:
	}
}

func TestHandleFirePoisonPayload(t *testing.T) {
	sink := &fakeSink{}
	pub := newFakePublisher()
	w := newTestWorker(t, sink, pub)

	d := &mq.Delivery{
		Message: mq.Message{
			ID:      "poison",
			Type:    mq.MessageTypeFire,
			Payload: map[string]any{"attempt": "not-a-number"},
		},
	}

	err := w.handleFire(context.Background(), d)
	if !errors.Is(err, mq.ErrReject) {
		t.Fatalf("expected ErrReject, got %v", err)
	}

	if len(sink.all()) != 0 {
		t.Error("poison payload must not produce records")
	}
}

func TestStopFlushesPendingRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	sink := &fakeSink{}
	pub := newFakePublisher()

	// Большая задержка: без flush на Stop событие не успеет опубликоваться.
	w := New(Config{
		Publisher: pub,
		Recorder:  sink,
		RetryBase: time.Hour,
	})

	if err := w.handleFire(context.Background(), fireDelivery(testEvent(url))); err != nil {
		t.Fatalf("handleFire: %v", err)
	}

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case ev := <-pub.events:
		if ev.Attempt != 1 {
			t.Errorf("expected attempt 1, got %d", ev.Attempt)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pending retry was not flushed on stop")
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not return")
	}
}
