package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Impulse/internal/domain"
	"github.com/shaiso/Impulse/internal/objstore"
	"github.com/shaiso/Impulse/internal/telemetry"
)

// Default configuration values.
const (
	defaultMaxBuffer     = 10
	defaultFlushInterval = 60 * time.Second
)

// Recorder буферизует execution records и периодически сбрасывает их
// в object store батчами, партиционированными по workspace и времени.
//
// Буфер — process-local состояние, общее для producer-пути worker'а и
// фонового flush-таймера; доступ под мьютексом. Flush делает swap буфера
// под локом, сетевая запись идёт уже без лока.
//
// Flush срабатывает по размеру буфера (>= MaxBuffer) или по таймеру,
// что наступит раньше. При ошибке записи записи возвращаются в начало
// буфера — at-least-once, читатель дедуплицирует.
type Recorder struct {
	store  objstore.Store
	logger *slog.Logger

	maxBuffer int
	interval  time.Duration

	mu  sync.Mutex
	buf []domain.ExecutionRecord

	flushCh    chan struct{}
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup

	now func() time.Time
}

// RecorderConfig — конфигурация Recorder.
type RecorderConfig struct {
	Store  objstore.Store
	Logger *slog.Logger

	// MaxBuffer — порог сброса по размеру (default: 10).
	MaxBuffer int

	// FlushInterval — период фонового сброса (default: 60s).
	FlushInterval time.Duration
}

// NewRecorder создаёт Recorder.
func NewRecorder(cfg RecorderConfig) *Recorder {
	maxBuffer := cfg.MaxBuffer
	if maxBuffer <= 0 {
		maxBuffer = defaultMaxBuffer
	}

	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = defaultFlushInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Recorder{
		store:     cfg.Store,
		logger:    logger,
		maxBuffer: maxBuffer,
		interval:  interval,
		flushCh:   make(chan struct{}, 1),
		now:       time.Now,
	}
}

// Start запускает фоновый flush-цикл.
func (r *Recorder) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancelFunc = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.flushLoop(ctx)
	}()
}

// Record добавляет запись в буфер.
// При достижении порога инициирует асинхронный flush.
func (r *Recorder) Record(rec domain.ExecutionRecord) {
	r.mu.Lock()
	r.buf = append(r.buf, rec)
	full := len(r.buf) >= r.maxBuffer
	r.mu.Unlock()

	if full {
		select {
		case r.flushCh <- struct{}{}:
		default: // flush уже запрошен
		}
	}
}

// Close останавливает flush-цикл и сбрасывает остаток буфера.
// Гарантия graceful shutdown: ни одна запись не теряется молча.
func (r *Recorder) Close(ctx context.Context) error {
	if r.cancelFunc != nil {
		r.cancelFunc()
	}
	r.wg.Wait()

	return r.Flush(ctx)
}

// flushLoop — фоновый цикл сброса.
func (r *Recorder) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-r.flushCh:
		}

		// Фоновый flush не должен умирать вместе с ctx запроса:
		// остаток доберёт Close.
		if err := r.Flush(context.WithoutCancel(ctx)); err != nil {
			r.logger.Warn("metrics flush failed, records requeued", "error", err)
		}
	}
}

// Flush сбрасывает текущий буфер в object store.
//
// Записи группируются по workspace; один объект на workspace за flush,
// партиция — от времени flush. Неудачно записанные записи возвращаются
// в начало буфера.
func (r *Recorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	if len(r.buf) == 0 {
		r.mu.Unlock()
		return nil
	}
	batch := r.buf
	r.buf = nil
	r.mu.Unlock()

	flushedAt := r.now()

	byWorkspace := make(map[string][]domain.ExecutionRecord)
	for i := range batch {
		ws := batch[i].WorkspaceID
		byWorkspace[ws] = append(byWorkspace[ws], batch[i])
	}

	var failed []domain.ExecutionRecord
	var firstErr error

	for ws, records := range byWorkspace {
		data, err := json.Marshal(records)
		if err != nil {
			// Не сериализуется — повтор не поможет, запись теряем с логом.
			r.logger.Error("failed to marshal execution records",
				"workspace_id", ws, "count", len(records), "error", err)
			continue
		}

		key := objectKey(ws, flushedAt)
		if err := r.store.Put(ctx, key, data); err != nil {
			failed = append(failed, records...)
			if firstErr == nil {
				firstErr = fmt.Errorf("put %s: %w", key, err)
			}
			continue
		}

		telemetry.MetricsFlushes.Inc()
		r.logger.Debug("flushed execution records",
			"workspace_id", ws, "count", len(records), "key", key)
	}

	if len(failed) > 0 {
		telemetry.MetricsFlushFailures.Inc()
		r.mu.Lock()
		r.buf = append(failed, r.buf...)
		r.mu.Unlock()
	}

	return firstErr
}

// BufferLen возвращает текущий размер буфера.
func (r *Recorder) BufferLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf)
}
