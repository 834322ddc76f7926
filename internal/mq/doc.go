// Package mq — транспорт fire events через RabbitMQ.
//
// Топология:
//
//	impulse.fire (direct)
//	└── fire.dispatch [routing: dispatch]
//	        Consumer: Execution Worker
//	        DLQ: dlq.fire (poison-сообщения)
//
//	impulse.dlq (direct)
//	└── dlq.fire [routing: fire]
//	        Ручной разбор
//
// Доставка at-least-once: ack вручную, nack с requeue при ошибке
// обработчика. Retry выполнения (attempt > 0) публикуется worker'ом
// как новое сообщение, а не через requeue.
package mq
