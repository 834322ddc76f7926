// Package worker — исполнение fire events.
//
// Worker потребляет события из dispatch-очереди, выполняет HTTP-вызовы
// триггеров ограниченным пулом и записывает результат каждой попытки.
// Исход классифицируется по транспорту: полученный ответ (любой код) —
// success, ошибки соединения/DNS/TLS/таймауты — failed с retry до
// domain.MaxAttempt с экспоненциальным backoff.
package worker
