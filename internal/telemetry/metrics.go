package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики процессов Impulse.
// Экспортируются на /metrics каждого бинарника через promhttp.
var (
	// FireEventsPublished — fire events, опубликованные scheduler'ом.
	FireEventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "impulse_fire_events_published_total",
		Help: "Fire events published to the dispatch queue",
	})

	// FireEventsConsumed — fire events, принятые worker'ом.
	FireEventsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "impulse_fire_events_consumed_total",
		Help: "Fire events consumed from the dispatch queue",
	})

	// Executions — завершённые попытки по статусу (success|failed).
	Executions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "impulse_executions_total",
		Help: "Completed execution attempts by transport status",
	}, []string{"status"})

	// Retries — запланированные повторные попытки.
	Retries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "impulse_retries_scheduled_total",
		Help: "Fire events re-enqueued for retry",
	})

	// ExecutionDuration — длительность исходящих HTTP-вызовов.
	ExecutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "impulse_execution_duration_seconds",
		Help:    "Outbound HTTP call duration",
		Buckets: prometheus.DefBuckets,
	})

	// MetricsFlushes — сбросы буфера recorder'а в object store.
	MetricsFlushes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "impulse_metrics_flushes_total",
		Help: "Metrics recorder flushes to the object store",
	})

	// MetricsFlushFailures — неудачные сбросы (записи возвращены в буфер).
	MetricsFlushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "impulse_metrics_flush_failures_total",
		Help: "Metrics recorder flushes that failed and were requeued",
	})
)
