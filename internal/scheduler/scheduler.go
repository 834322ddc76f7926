package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Impulse/internal/domain"
	"github.com/shaiso/Impulse/internal/schedule"
	"github.com/shaiso/Impulse/internal/telemetry"
)

// FirePublisher публикует fire events в dispatch-очередь.
// Реализация — mq.Publisher; интерфейс нужен тестам.
type FirePublisher interface {
	PublishFire(ctx context.Context, event domain.FireEvent) error
}

// Scheduler публикует fire events для due schedule entries.
//
// Каждый тик:
//  1. Находит entries с next_due_at <= now
//  2. Публикует fire event (attempt 0) с полным снимком триггера
//  3. Вычисляет следующее время от now и обновляет entry
//
// Следующее время считается от текущего момента: тики, пропущенные пока
// scheduler лежал, отбрасываются, а не доигрываются задним числом
// (иначе после рестарта очередь накрывает волной старых событий).
//
// Replace, идущий параллельно с тиком того же workspace, может оставить
// в очереди одно событие со старым определением триггера — ограниченная
// staleness, известное и допустимое поведение.
type Scheduler struct {
	store     schedule.Store
	publisher FirePublisher
	logger    *slog.Logger
	batchSize int
}

// Config — конфигурация Scheduler.
type Config struct {
	Store     schedule.Store
	Publisher FirePublisher
	Logger    *slog.Logger
	BatchSize int // количество entries за один тик (default: 100)
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		store:     cfg.Store,
		publisher: cfg.Publisher,
		logger:    logger,
		batchSize: batchSize,
	}
}

// Tick выполняет один тик планировщика.
// Ошибки одной entry не блокируют обработку остальных.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := time.Now()

	entries, err := s.store.ListDue(ctx, now, s.batchSize)
	if err != nil {
		return fmt.Errorf("list due entries: %w", err)
	}

	if len(entries) == 0 {
		return nil
	}

	s.logger.Debug("found due entries", "count", len(entries))

	var fired int
	for i := range entries {
		entry := &entries[i]

		if err := s.fire(ctx, entry, now); err != nil {
			s.logger.Error("failed to fire entry",
				"job_id", entry.JobID(),
				"error", err,
			)
			continue
		}
		fired++
	}

	s.logger.Info("scheduler tick completed", "due", len(entries), "fired", fired)
	return nil
}

// fire публикует событие для одной entry и переносит next_due_at.
func (s *Scheduler) fire(ctx context.Context, entry *domain.ScheduleEntry, now time.Time) error {
	event := domain.FireEvent{
		WorkspaceID: entry.WorkspaceID,
		Index:       entry.Index,
		JobName:     entry.JobName,
		Trigger:     entry.Trigger,
		Attempt:     0,
		ScheduledAt: entry.NextDueAt,
	}

	if err := s.publisher.PublishFire(ctx, event); err != nil {
		// Entry не переносится: следующий тик попробует снова (at-least-once).
		return fmt.Errorf("publish fire event: %w", err)
	}
	telemetry.FireEventsPublished.Inc()

	nextDue, err := NextAfter(entry.CronExpr, now)
	if err != nil {
		// Невалидный cron не должен пройти валидацию координатора.
		return fmt.Errorf("compute next due: %w", err)
	}

	if err := s.store.Reschedule(ctx, entry.WorkspaceID, entry.Index, now, nextDue); err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			// Entry удалена между ListDue и Reschedule — событие уже в полёте,
			// допустимое одиночное срабатывание по старому определению.
			s.logger.Debug("entry removed mid-tick", "job_id", entry.JobID())
			return nil
		}
		return fmt.Errorf("reschedule entry: %w", err)
	}

	return nil
}
