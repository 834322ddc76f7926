// Package schedule определяет порт Schedule Store и его Postgres-адаптер.
//
// Store — единственное durable-хранилище повторяющихся расписаний,
// общее для всех workspace. Ключ entry — пара (workspace_id, idx);
// поиск по workspace — только точное совпадение, не подстрока.
//
// Жизненным циклом entries владеет Trigger Coordinator (internal/trigger),
// срабатываниями — Scheduler (internal/scheduler).
package schedule
