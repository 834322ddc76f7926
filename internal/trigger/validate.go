package trigger

import (
	"net/url"

	"github.com/shaiso/Impulse/internal/domain"
	"github.com/shaiso/Impulse/internal/scheduler"
)

// Validate проверяет один триггер. Чистая функция, без побочных эффектов.
//
// Проверки по порядку, с остановкой на первой неудаче:
//  1. cron присутствует и синтаксически корректен (5 или 6 полей)
//  2. url присутствует и является абсолютным http(s) адресом
//  3. method присутствует и входит в пять поддерживаемых глаголов
//     (без учёта регистра)
//
// При ошибке возвращает *InvalidTriggerError с Index = -1.
func Validate(t domain.Trigger) error {
	if t.Cron == "" {
		return &InvalidTriggerError{Index: -1, Field: "cron", Reason: "cron expression is required"}
	}
	if err := scheduler.ValidateExpr(t.Cron); err != nil {
		return &InvalidTriggerError{Index: -1, Field: "cron", Reason: err.Error()}
	}

	if t.URL == "" {
		return &InvalidTriggerError{Index: -1, Field: "url", Reason: "url is required"}
	}
	u, err := url.Parse(t.URL)
	if err != nil {
		return &InvalidTriggerError{Index: -1, Field: "url", Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &InvalidTriggerError{Index: -1, Field: "url", Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return &InvalidTriggerError{Index: -1, Field: "url", Reason: "host is required"}
	}

	if t.Method == "" {
		return &InvalidTriggerError{Index: -1, Field: "method", Reason: "method is required"}
	}
	if !domain.SupportedMethods[domain.NormalizeMethod(t.Method)] {
		return &InvalidTriggerError{Index: -1, Field: "method", Reason: "method must be one of GET, POST, PUT, PATCH, DELETE"}
	}

	return nil
}
