// Impulse Worker — выполняет fire events.
//
// Worker:
//   - Получает fire events из RabbitMQ
//   - Выполняет HTTP-вызовы триггеров ограниченным пулом
//   - Реализует retry с exponential backoff
//   - Пишет execution records через Recorder в object store
//
// Workers масштабируются горизонтально.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Impulse/internal/metrics"
	"github.com/shaiso/Impulse/internal/mq"
	"github.com/shaiso/Impulse/internal/objstore"
	"github.com/shaiso/Impulse/internal/telemetry"
	"github.com/shaiso/Impulse/internal/worker"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting impulse-worker")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Object store для execution records
	redisClient, err := objstore.NewRedisClient(ctx)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("connected to redis")

	recorder := metrics.NewRecorder(metrics.RecorderConfig{
		Store:  objstore.NewRedisStore(redisClient),
		Logger: logger,
	})
	recorder.Start(ctx)

	// RabbitMQ
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err := mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}

	// Создаём worker
	w := worker.New(worker.Config{
		Conn:        mqConn,
		Publisher:   mq.NewPublisher(mqConn, logger),
		Recorder:    recorder,
		Logger:      logger,
		Concurrency: envInt("WORKER_CONCURRENCY"),
		RatePerSec:  envInt("WORKER_RATE_PER_SEC"),
	})

	// Запускаем worker
	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":8082"
	if v := os.Getenv("WORKER_PORT"); v != "" {
		addr = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()
	logger.Info("shutting down")

	// Останавливаем worker: in-flight вызовы дорабатывают, отложенные
	// retry публикуются немедленно, буфер метрик сбрасывается.
	w.Stop()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer closeCancel()
	if err := recorder.Close(closeCtx); err != nil {
		logger.Error("failed to flush metrics on shutdown", "error", err)
	}

	logger.Info("impulse-worker stopped")
}

// envInt читает целочисленную переменную окружения; 0 — значение по умолчанию.
func envInt(name string) int {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
