package domain

import (
	"math"
	"sort"
	"time"
)

// MaxHourlyBuckets — ширина почасовой гистограммы (7 суток).
const MaxHourlyBuckets = 168

// ExecutionStatus — исход одной попытки выполнения.
type ExecutionStatus string

const (
	// ExecutionStatusSuccess — транспорт отработал: ответ получен,
	// любой HTTP-код (включая 4xx/5xx) считается успешным выполнением.
	ExecutionStatusSuccess ExecutionStatus = "success"

	// ExecutionStatusFailed — транспортная ошибка: соединение, DNS,
	// TLS или таймаут.
	ExecutionStatusFailed ExecutionStatus = "failed"
)

// ExecutionRecord — неизменяемый факт об одной завершённой попытке.
//
// Пишется ровно одним worker'ом, после этого только читается.
// Каждая retry-попытка порождает собственную запись со своим RetryCount.
type ExecutionRecord struct {
	// Timestamp — момент начала вызова.
	Timestamp time.Time `json:"timestamp"`

	// WorkspaceID — тенант.
	WorkspaceID string `json:"workspace_id"`

	// JobID — идентификатор entry, "{workspace}:{index}".
	JobID string `json:"job_id"`

	// JobName — имя entry на момент выполнения.
	JobName string `json:"job_name"`

	// URL и Method — целевой вызов.
	URL    string `json:"url"`
	Method string `json:"method"`

	// Status — success | failed (транспортный уровень).
	Status ExecutionStatus `json:"status"`

	// DurationMs — длительность вызова в миллисекундах.
	DurationMs int64 `json:"duration_ms"`

	// StatusCode — HTTP-код ответа. nil при транспортной ошибке.
	StatusCode *int `json:"status_code"`

	// Error — текст ошибки. nil при успехе.
	Error *string `json:"error"`

	// RetryCount — номер попытки на момент выполнения (0..MaxAttempt).
	RetryCount int `json:"retry_count"`
}

// DedupKey — ключ дедупликации записей при чтении.
// Recorder гарантирует только at-least-once доставку в object store,
// поэтому одна запись может оказаться в нескольких объектах.
func (r *ExecutionRecord) DedupKey() string {
	return r.Timestamp.UTC().Format(time.RFC3339Nano) + "|" + r.JobID
}

// HourlyBucket — один час гистограммы успехов/ошибок.
type HourlyBucket struct {
	Hour    string `json:"hour"` // "2026-08-27T14" (UTC)
	Success int    `json:"success"`
	Failed  int    `json:"failed"`
}

// WorkspaceStats — агрегаты по выполнениям workspace за окно сканирования.
type WorkspaceStats struct {
	Total       int            `json:"total"`
	Success     int            `json:"success"`
	Failed      int            `json:"failed"`
	SuccessRate float64        `json:"success_rate"` // проценты, 2 знака
	AvgDuration int64          `json:"avg_duration"` // миллисекунды
	Hourly      []HourlyBucket `json:"hourly"`
}

// ComputeStats считает агрегаты по набору записей.
// Для пустого набора возвращает нулевую статистику, не ошибку.
func ComputeStats(records []ExecutionRecord) WorkspaceStats {
	stats := WorkspaceStats{Hourly: []HourlyBucket{}}
	if len(records) == 0 {
		return stats
	}

	var totalDuration int64
	buckets := make(map[string]*HourlyBucket)

	for i := range records {
		rec := &records[i]
		stats.Total++
		totalDuration += rec.DurationMs

		hour := rec.Timestamp.UTC().Format("2006-01-02T15")
		b, ok := buckets[hour]
		if !ok {
			b = &HourlyBucket{Hour: hour}
			buckets[hour] = b
		}

		if rec.Status == ExecutionStatusSuccess {
			stats.Success++
			b.Success++
		} else {
			stats.Failed++
			b.Failed++
		}
	}

	stats.SuccessRate = math.Round(float64(stats.Success)/float64(stats.Total)*100*100) / 100
	stats.AvgDuration = int64(math.Round(float64(totalDuration) / float64(stats.Total)))

	hours := make([]string, 0, len(buckets))
	for hour := range buckets {
		hours = append(hours, hour)
	}
	sort.Strings(hours)

	// Гистограмма ограничена последними MaxHourlyBuckets часами.
	if len(hours) > MaxHourlyBuckets {
		hours = hours[len(hours)-MaxHourlyBuckets:]
	}

	for _, hour := range hours {
		stats.Hourly = append(stats.Hourly, *buckets[hour])
	}

	return stats
}
