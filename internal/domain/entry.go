package domain

import (
	"time"
)

// ScheduleEntry — durable-регистрация одного триггера в Schedule Store.
//
// Ключ entry — структурированная пара (WorkspaceID, Index), а не подстрока:
// workspace "ws1" никогда не совпадёт с записями "ws10". Индексы плотные
// (0..n-1) и переназначаются при каждом replace.
//
// Жизненным циклом entry владеет исключительно Trigger Coordinator:
// создаётся при приёме триггера, уничтожается при replace/remove workspace.
type ScheduleEntry struct {
	// WorkspaceID — идентификатор тенанта (непрозрачная строка).
	WorkspaceID string `json:"workspace_id"`

	// Index — позиция триггера в наборе workspace (0..n-1).
	Index int `json:"index"`

	// JobName — имя вида "{workspace}-trigger-{index}".
	JobName string `json:"job_name"`

	// CronExpr — cron-выражение триггера.
	CronExpr string `json:"cron_expr"`

	// Trigger — полный снимок определения триггера.
	// Переносится в каждый fire event, поэтому worker не ходит в store.
	Trigger Trigger `json:"trigger"`

	// NextDueAt — время следующего срабатывания.
	// Scheduler публикует fire event, когда now >= NextDueAt.
	NextDueAt time.Time `json:"next_due_at"`

	// LastFiredAt — время последнего срабатывания.
	LastFiredAt *time.Time `json:"last_fired_at,omitempty"`

	// CreatedAt — время создания entry.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// JobID возвращает идентификатор entry: "{workspace}:{index}".
func (e *ScheduleEntry) JobID() string {
	return JobID(e.WorkspaceID, e.Index)
}

// IsDue проверяет, пора ли публиковать fire event.
func (e *ScheduleEntry) IsDue(now time.Time) bool {
	return !e.NextDueAt.IsZero() && !now.Before(e.NextDueAt)
}
