package schedule

import (
	"context"
	"time"

	"github.com/shaiso/Impulse/internal/domain"
)

// Store — порт durable-хранилища schedule entries.
//
// Контракт, который требуется ядру Impulse от внешнего сервиса
// повторяющихся расписаний:
//   - ключ entry — структурированная пара (workspace_id, idx),
//     поиск только по точному совпадению workspace (без подстрок);
//   - Upsert с существующим ключом заменяет entry, не дублирует;
//   - выборка due-записей для публикации fire events at-least-once.
//
// Store не обязан сериализовать конкурентные replace одного workspace:
// на уровне отдельных upsert'ов побеждает последняя запись. Replace
// разных workspace не должны блокировать друг друга (глобальный лок
// запрещён).
type Store interface {
	// ListByWorkspace возвращает entries workspace в порядке index.
	ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.ScheduleEntry, error)

	// Upsert вставляет или заменяет entry по ключу (workspace_id, idx).
	Upsert(ctx context.Context, entry *domain.ScheduleEntry) error

	// Remove удаляет одну entry. Отсутствующий ключ — не ошибка.
	Remove(ctx context.Context, workspaceID string, index int) error

	// ListDue возвращает entries с next_due_at <= now, не более limit.
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.ScheduleEntry, error)

	// Reschedule фиксирует срабатывание и назначает следующее время.
	Reschedule(ctx context.Context, workspaceID string, index int, firedAt, nextDue time.Time) error

	// NextDue возвращает ближайшее next_due_at среди entries workspace.
	// nil, если у workspace нет активных entries.
	NextDue(ctx context.Context, workspaceID string) (*time.Time, error)
}
