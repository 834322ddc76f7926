// Package scheduler реализует тик планировщика.
//
// Scheduler периодически проверяет schedule entries с истекшим next_due_at
// и публикует fire events в dispatch-очередь.
//
// Структура:
//   - scheduler.go — основная логика (Tick, fire)
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{
//	    Store:     store,
//	    Publisher: publisher,
//	    Logger:    logger,
//	})
//
//	// Вызывается каждый тик (обычно раз в секунду)
//	if err := sched.Tick(ctx); err != nil {
//	    logger.Error("scheduler tick failed", "error", err)
//	}
//
// Leader Election:
//
// Scheduler не реализует leader election самостоятельно.
// Это делается в main.go через pg_try_advisory_lock.
// Метод Tick() вызывается только лидером.
package scheduler
