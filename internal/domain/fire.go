package domain

import "time"

// MaxAttempt — последняя попытка выполнения fire event.
// Попытки нумеруются 0..MaxAttempt; после MaxAttempt событие
// фиксируется как permanently failed и не переставляется в очередь.
const MaxAttempt = 3

// FireEvent — одно срабатывание schedule entry, отправленное на выполнение.
//
// Создаётся scheduler'ом на каждый due-тик, потребляется ровно один раз
// на попытку одним из worker'ов. При transient-ошибке worker публикует
// новое событие с Attempt+1 после backoff-задержки.
//
// Событие несёт полный снимок триггера: replace, пришедший во время
// полёта события, не меняет уже опубликованное определение (bounded
// staleness, максимум одно устаревшее срабатывание).
type FireEvent struct {
	// WorkspaceID — тенант, которому принадлежит триггер.
	WorkspaceID string `json:"workspace_id"`

	// Index — позиция триггера в наборе workspace.
	Index int `json:"index"`

	// JobName — имя entry на момент публикации.
	JobName string `json:"job_name"`

	// Trigger — определение вызова на момент публикации.
	Trigger Trigger `json:"trigger"`

	// Attempt — номер попытки, начиная с 0.
	Attempt int `json:"attempt"`

	// ScheduledAt — время тика, породившего событие.
	ScheduledAt time.Time `json:"scheduled_at"`
}

// JobID возвращает идентификатор исходного entry.
func (f *FireEvent) JobID() string {
	return JobID(f.WorkspaceID, f.Index)
}

// CanRetry возвращает true, если после неудачи допустима ещё одна попытка.
func (f *FireEvent) CanRetry() bool {
	return f.Attempt < MaxAttempt
}

// NextAttempt возвращает копию события для следующей попытки.
func (f *FireEvent) NextAttempt() FireEvent {
	next := *f
	next.Attempt++
	return next
}
