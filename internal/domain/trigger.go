package domain

import (
	"fmt"
	"strings"
)

// Trigger — декларативное описание одного HTTP-вызова по расписанию.
//
// Trigger неизменяем после регистрации: обновление набора триггеров
// workspace происходит только целиком через replace, не по одному.
type Trigger struct {
	// Cron — cron-выражение (5 или 6 полей).
	// Примеры:
	//   "*/5 * * * *"    — каждые 5 минут
	//   "0 9 * * 1-5"    — по будням в 9:00
	//   "30 * * * * *"   — каждую минуту на 30-й секунде (6 полей)
	Cron string `json:"cron"`

	// URL — абсолютный http(s) адрес, который вызывается при срабатывании.
	URL string `json:"url"`

	// Method — HTTP-метод. Один из GET, POST, PUT, PATCH, DELETE.
	// Хранится в верхнем регистре.
	Method string `json:"method"`

	// Payload — тело запроса. Используется только для методов с телом.
	Payload map[string]any `json:"payload,omitempty"`

	// Headers — дополнительные заголовки запроса.
	Headers map[string]string `json:"headers,omitempty"`
}

// Методы, которые поддерживает Trigger.Method.
var SupportedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

// NormalizeMethod приводит метод к каноническому виду (верхний регистр).
func NormalizeMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}

// HasBody возвращает true, если метод триггера допускает тело запроса.
func (t *Trigger) HasBody() bool {
	switch NormalizeMethod(t.Method) {
	case "POST", "PUT", "PATCH":
		return true
	}
	return false
}

// JobID формирует идентификатор schedule entry: "{workspace}:{index}".
func JobID(workspaceID string, index int) string {
	return fmt.Sprintf("%s:%d", workspaceID, index)
}

// JobName формирует человекочитаемое имя entry: "{workspace}-trigger-{index}".
func JobName(workspaceID string, index int) string {
	return fmt.Sprintf("%s-trigger-%d", workspaceID, index)
}
