package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shaiso/Impulse/internal/schedule"
	"github.com/shaiso/Impulse/internal/trigger"
)

// ErrorResponse — структура ответа с ошибкой.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// JSON отправляет JSON ответ.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error отправляет ответ с ошибкой.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Success: false, Error: message})
}

// BadRequest отправляет ошибку 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// InternalError отправляет ошибку 500 с generic-сообщением.
// Внутреннее состояние клиенту не утекает.
func InternalError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal server error")
}

// HandleError преобразует доменную ошибку в HTTP ответ.
// Возвращает true, если ответ уже отправлен.
func HandleError(w http.ResponseWriter, logger *slog.Logger, err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, trigger.ErrInvalidRequest),
		errors.Is(err, trigger.ErrInvalidTrigger):
		BadRequest(w, err.Error())
	case errors.Is(err, schedule.ErrStoreUnavailable):
		// Хранилище недоступно: ошибка отдаётся как есть, без retry —
		// повтор на стороне клиента.
		logger.Error("store unavailable", "error", err)
		Error(w, http.StatusInternalServerError, err.Error())
	default:
		InternalError(w, logger, err)
	}

	return true
}
