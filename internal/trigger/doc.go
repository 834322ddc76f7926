// Package trigger реализует валидацию триггеров и Trigger Coordinator.
//
// Coordinator — единственный компонент, который мутирует Schedule Store:
// replace-all-triggers, get, remove, всё с точным (workspace_id, idx)
// ключом. Валидатор — чистая функция, пригодная для standalone-тестов.
package trigger
