package worker

import "errors"

// Ошибки воркера.
var (
	// ErrCallFailed — транспортная ошибка исходящего вызова
	// (соединение, DNS, TLS, таймаут).
	ErrCallFailed = errors.New("outbound call failed")

	// ErrWorkerStopped — воркер остановлен.
	ErrWorkerStopped = errors.New("worker stopped")
)
