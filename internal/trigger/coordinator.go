package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Impulse/internal/domain"
	"github.com/shaiso/Impulse/internal/schedule"
	"github.com/shaiso/Impulse/internal/scheduler"
)

// JobInfo — описание одной вставленной entry в ответе replace/get.
type JobInfo struct {
	JobID   string `json:"jobId"`
	JobName string `json:"jobName"`
	Cron    string `json:"cron"`
	URL     string `json:"url"`
	Method  string `json:"method"`
}

// ReplaceResult — результат ReplaceTriggers.
type ReplaceResult struct {
	Removed int
	Added   int
	Jobs    []JobInfo
}

// Coordinator — единоличный владелец schedule entries.
//
// Единственная операция мутации — полная замена набора триггеров
// workspace. Частичных правок нет: индексы плотные и переназначаются
// при каждом replace.
type Coordinator struct {
	store  schedule.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewCoordinator создаёт Coordinator.
func NewCoordinator(store schedule.Store, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// ReplaceTriggers атомарно по валидации (но не по хранилищу) заменяет
// все триггеры workspace.
//
// Алгоритм:
//  1. Отклонить пустой workspaceID и nil triggers (ErrInvalidRequest).
//  2. Провалидировать все триггеры до любой мутации: первый невалидный
//     прерывает операцию, хранилище не тронуто.
//  3. Перечислить и удалить существующие entries workspace по одной.
//  4. Вставить новые entries с ключами (workspaceID, 0..n-1).
//
// Шаги 3-4 не транзакционны: падение процесса между удалением и
// вставкой оставляет workspace без активных триггеров до следующего
// replace. Это известный и задокументированный риск, а не гарантия.
// Конкурентные replace одного workspace не сериализуются: на уровне
// отдельных upsert'ов побеждает последняя запись.
func (c *Coordinator) ReplaceTriggers(ctx context.Context, workspaceID string, triggers []domain.Trigger) (*ReplaceResult, error) {
	if workspaceID == "" {
		return nil, fmt.Errorf("%w: workspace_id is required", ErrInvalidRequest)
	}
	if triggers == nil {
		return nil, fmt.Errorf("%w: triggers is required", ErrInvalidRequest)
	}

	// Валидация целиком до первой мутации.
	for i := range triggers {
		if err := Validate(triggers[i]); err != nil {
			var invalid *InvalidTriggerError
			if errors.As(err, &invalid) {
				return nil, &InvalidTriggerError{Index: i, Field: invalid.Field, Reason: invalid.Reason}
			}
			return nil, err
		}
	}

	removed, err := c.RemoveTriggers(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	now := c.now()
	result := &ReplaceResult{Removed: removed, Jobs: make([]JobInfo, 0, len(triggers))}

	for i := range triggers {
		t := triggers[i]
		t.Method = domain.NormalizeMethod(t.Method)

		nextDue, err := scheduler.NextAfter(t.Cron, now)
		if err != nil {
			// Выражение прошло валидацию, сюда попасть нельзя.
			return nil, fmt.Errorf("compute next due for %q: %w", t.Cron, err)
		}

		entry := domain.ScheduleEntry{
			WorkspaceID: workspaceID,
			Index:       i,
			JobName:     domain.JobName(workspaceID, i),
			CronExpr:    t.Cron,
			Trigger:     t,
			NextDueAt:   nextDue,
		}

		if err := c.store.Upsert(ctx, &entry); err != nil {
			return nil, fmt.Errorf("insert entry %s: %w", entry.JobID(), err)
		}

		result.Added++
		result.Jobs = append(result.Jobs, JobInfo{
			JobID:   entry.JobID(),
			JobName: entry.JobName,
			Cron:    t.Cron,
			URL:     t.URL,
			Method:  t.Method,
		})
	}

	c.logger.Info("triggers replaced",
		"workspace_id", workspaceID,
		"removed", result.Removed,
		"added", result.Added,
	)

	return result, nil
}

// GetTriggers возвращает entries workspace. Без побочных эффектов.
func (c *Coordinator) GetTriggers(ctx context.Context, workspaceID string) ([]domain.ScheduleEntry, error) {
	if workspaceID == "" {
		return nil, fmt.Errorf("%w: workspace_id is required", ErrInvalidRequest)
	}
	return c.store.ListByWorkspace(ctx, workspaceID)
}

// RemoveTriggers удаляет все entries workspace по одной.
// Возвращает количество удалённых.
func (c *Coordinator) RemoveTriggers(ctx context.Context, workspaceID string) (int, error) {
	if workspaceID == "" {
		return 0, fmt.Errorf("%w: workspace_id is required", ErrInvalidRequest)
	}

	entries, err := c.store.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return 0, fmt.Errorf("list entries: %w", err)
	}

	removed := 0
	for i := range entries {
		if err := c.store.Remove(ctx, entries[i].WorkspaceID, entries[i].Index); err != nil {
			return removed, fmt.Errorf("remove entry %s: %w", entries[i].JobID(), err)
		}
		removed++
	}

	return removed, nil
}
