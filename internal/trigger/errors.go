package trigger

import (
	"errors"
	"fmt"
)

// Ошибки координатора и валидатора.
var (
	// ErrInvalidRequest — некорректный запрос (пустой workspace, nil triggers).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidTrigger — хотя бы один триггер не прошёл валидацию.
	// Конкретика — в InvalidTriggerError.
	ErrInvalidTrigger = errors.New("invalid trigger")
)

// InvalidTriggerError — ошибка валидации одного триггера.
// Index — позиция триггера в запросе (-1 для одиночной валидации).
type InvalidTriggerError struct {
	Index  int
	Field  string // cron | url | method
	Reason string
}

func (e *InvalidTriggerError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid trigger: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid trigger at index %d: %s: %s", e.Index, e.Field, e.Reason)
}

// Is позволяет errors.Is(err, ErrInvalidTrigger).
func (e *InvalidTriggerError) Is(target error) bool {
	return target == ErrInvalidTrigger
}
