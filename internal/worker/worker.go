package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shaiso/Impulse/internal/domain"
	"github.com/shaiso/Impulse/internal/mq"
	"github.com/shaiso/Impulse/internal/telemetry"
)

// Default configuration values.
const (
	defaultConcurrency = 10
	defaultRatePerSec  = 100
	defaultRetryBase   = 2 * time.Second
)

// Executor выполняет один исходящий вызов триггера.
type Executor interface {
	Execute(ctx context.Context, t domain.Trigger) Outcome
}

// RecordSink принимает execution records.
// Продакшен-реализация — metrics.Recorder.
type RecordSink interface {
	Record(rec domain.ExecutionRecord)
}

// FirePublisher публикует fire events (для retry-попыток).
type FirePublisher interface {
	PublishFire(ctx context.Context, event domain.FireEvent) error
}

// Worker потребляет fire events из dispatch-очереди и выполняет
// HTTP-вызовы триггеров.
//
// Параллелизм ограничен пулом consumer'а (Concurrency), скорость приёма
// новых событий — rate limiter'ом. Каждая попытка порождает ровно одну
// ExecutionRecord независимо от исхода.
//
// Retry: при транспортной ошибке и Attempt < MaxAttempt worker публикует
// событие следующей попытки после backoff-задержки (RetryBase,
// удваивается с каждой попыткой). Отложенные публикации живут в памяти
// процесса; при остановке они публикуются немедленно, чтобы не потерять
// попытку.
type Worker struct {
	conn      *mq.Connection
	publisher FirePublisher
	recorder  RecordSink
	executor  Executor
	logger    *slog.Logger

	limiter     *rate.Limiter
	concurrency int
	retryBase   time.Duration

	consumer   *mq.Consumer
	shutdownCh chan struct{}
	retryWG    sync.WaitGroup

	now func() time.Time
}

// Config — конфигурация Worker.
type Config struct {
	Conn      *mq.Connection
	Publisher FirePublisher
	Recorder  RecordSink
	Logger    *slog.Logger

	// Executor — исполнитель вызовов (default: HTTPExecutor).
	Executor Executor

	// Concurrency — количество одновременных выполнений (default: 10).
	Concurrency int

	// RatePerSec — допустимая скорость приёма событий (default: 100).
	RatePerSec int

	// RetryBase — базовая задержка retry (default: 2s).
	RetryBase time.Duration
}

// New создаёт Worker.
func New(cfg Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	ratePerSec := cfg.RatePerSec
	if ratePerSec <= 0 {
		ratePerSec = defaultRatePerSec
	}

	retryBase := cfg.RetryBase
	if retryBase <= 0 {
		retryBase = defaultRetryBase
	}

	executor := cfg.Executor
	if executor == nil {
		executor = NewHTTPExecutor()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Worker{
		conn:        cfg.Conn,
		publisher:   cfg.Publisher,
		recorder:    cfg.Recorder,
		executor:    executor,
		logger:      logger,
		limiter:     rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		concurrency: concurrency,
		retryBase:   retryBase,
		shutdownCh:  make(chan struct{}),
		now:         time.Now,
	}

	w.consumer = mq.NewConsumer(cfg.Conn, logger, mq.ConsumerConfig{
		Queue:       string(mq.QueueFireDispatch),
		Handler:     w.handleFire,
		Prefetch:    concurrency,
		Concurrency: concurrency,
	})

	return w
}

// Start запускает потребление в фоне.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker started",
		"concurrency", w.concurrency,
		"queue", string(mq.QueueFireDispatch),
	)

	go func() {
		if err := w.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("consumer stopped", "error", err)
		}
	}()

	return nil
}

// Stop останавливает worker: дожидается in-flight выполнений и
// немедленно публикует отложенные retry-события.
func (w *Worker) Stop() {
	w.consumer.Stop()
	close(w.shutdownCh)
	w.retryWG.Wait()
	w.logger.Info("worker stopped")
}

// handleFire обрабатывает одно fire event.
//
// Возвращает nil почти всегда: и успех, и транспортная ошибка — это
// завершённая попытка, её надо ack'нуть. Requeue (error) — только когда
// попытка не состоялась вовсе (отмена во время ожидания rate limiter'а).
func (w *Worker) handleFire(ctx context.Context, d *mq.Delivery) error {
	telemetry.FireEventsConsumed.Inc()

	event, err := mq.ParsePayload[domain.FireEvent](&d.Message)
	if err != nil {
		return fmt.Errorf("%w: parse fire event: %v", mq.ErrReject, err)
	}

	// Admission control: событие принято в обработку не раньше,
	// чем позволит лимит.
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrWorkerStopped, err)
	}

	startedAt := w.now().UTC()

	// Начатый вызов доигрывает до ответа или собственного таймаута:
	// остановка процесса не должна убивать in-flight выполнение и
	// фабриковать failed-запись с повторной доставкой. ctx остаётся
	// стоповым только для фазы приёма (limiter.Wait выше).
	outcome := w.executor.Execute(context.WithoutCancel(ctx), event.Trigger)

	rec := domain.ExecutionRecord{
		Timestamp:   startedAt,
		WorkspaceID: event.WorkspaceID,
		JobID:       event.JobID(),
		JobName:     event.JobName,
		URL:         event.Trigger.URL,
		Method:      domain.NormalizeMethod(event.Trigger.Method),
		Status:      domain.ExecutionStatusSuccess,
		DurationMs:  outcome.Duration.Milliseconds(),
		StatusCode:  outcome.StatusCode,
		RetryCount:  event.Attempt,
	}

	if outcome.Failed() {
		rec.Status = domain.ExecutionStatusFailed
		errText := outcome.Err.Error()
		rec.Error = &errText
	}

	w.recorder.Record(rec)
	telemetry.Executions.WithLabelValues(string(rec.Status)).Inc()
	telemetry.ExecutionDuration.Observe(outcome.Duration.Seconds())

	logger := w.logger.With(
		"workspace_id", event.WorkspaceID,
		"job_id", event.JobID(),
		"attempt", event.Attempt,
	)

	if !outcome.Failed() {
		logger.Info("trigger executed",
			"status_code", *outcome.StatusCode,
			"duration_ms", rec.DurationMs,
		)
		return nil
	}

	if event.CanRetry() {
		w.scheduleRetry(event, logger)
		return nil
	}

	logger.Error("trigger permanently failed",
		"error", outcome.Err,
		"attempts", event.Attempt+1,
	)
	return nil
}

// scheduleRetry планирует публикацию следующей попытки после backoff.
// При остановке worker'а отложенные события публикуются сразу.
func (w *Worker) scheduleRetry(event domain.FireEvent, logger *slog.Logger) {
	next := event.NextAttempt()
	delay := w.retryBase << event.Attempt

	telemetry.Retries.Inc()
	logger.Warn("trigger call failed, retry scheduled",
		"next_attempt", next.Attempt,
		"delay", delay.String(),
	)

	w.retryWG.Add(1)
	go func() {
		defer w.retryWG.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-w.shutdownCh:
		}

		// Публикация вне request-контекста: retry переживает delivery.
		if err := w.publisher.PublishFire(context.Background(), next); err != nil {
			logger.Error("failed to publish retry event",
				"next_attempt", next.Attempt,
				"error", err,
			)
		}
	}()
}
