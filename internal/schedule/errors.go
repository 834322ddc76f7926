package schedule

import "errors"

// Ошибки Schedule Store.
var (
	// ErrNotFound — entry не найдена.
	ErrNotFound = errors.New("schedule entry not found")

	// ErrStoreUnavailable — хранилище недоступно.
	// API-слой отдаёт её как 500 и не ретраит: retry — ответственность вызывающего.
	ErrStoreUnavailable = errors.New("schedule store unavailable")
)
