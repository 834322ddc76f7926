// Package domain содержит основные типы Impulse.
//
// Модель данных:
//   - Trigger         — декларативное описание HTTP-вызова по cron
//   - ScheduleEntry   — durable-регистрация триггера в Schedule Store
//   - FireEvent       — одно срабатывание entry, единица работы worker'а
//   - ExecutionRecord — неизменяемый факт об одной попытке выполнения
//
// Типы domain не зависят от инфраструктуры (БД, очереди, HTTP).
package domain
