// Package objstore — узкий порт durable object store (put/list/get по
// префиксу) и его адаптеры: Redis для production, in-memory для тестов.
//
// Metrics Recorder пишет сюда батчи execution records, Metrics Reader
// сканирует партиции по префиксам. Других потребителей нет.
package objstore
