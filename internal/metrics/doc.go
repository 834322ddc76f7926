// Package metrics — запись и чтение execution records.
//
// Recorder живёт в worker-процессе: буферизует записи в памяти и
// сбрасывает их батчами в object store (по размеру или по таймеру).
// Reader живёт в api-процессе: сканирует партиции за ограниченное окно,
// дедуплицирует и считает агрегаты.
//
// Формат хранения: JSON-массив ExecutionRecord по ключу
// metrics/workspace={id}/year=/month=/day=/hour=/metrics-{epochMillis}.json.
// Legacy-раскладка без workspace= в пути читается бессрочно.
package metrics
