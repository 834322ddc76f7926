package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeFire Exchange = "impulse.fire"
	ExchangeDLQ  Exchange = "impulse.dlq"
)

// Queues — имена очередей.
const (
	// QueueFireDispatch — fire events, общая для всех worker-процессов.
	QueueFireDispatch Queue = "fire.dispatch"

	// QueueDLQFire — нечитаемые (poison) сообщения.
	QueueDLQFire Queue = "dlq.fire"
)

// Routing keys.
const (
	RoutingKeyDispatch RoutingKey = "dispatch"
	RoutingKeyDLQFire  RoutingKey = "fire"
)

// SetupTopology создаёт обменники, очереди и привязки.
// Идемпотентна: повторный вызов на существующей топологии безопасен.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		exchanges := []struct {
			name Exchange
			kind string
		}{
			{ExchangeFire, "direct"},
			{ExchangeDLQ, "direct"},
		}

		for _, ex := range exchanges {
			err := ch.ExchangeDeclare(
				string(ex.name), // name
				ex.kind,         // type
				true,            // durable
				false,           // auto-deleted
				false,           // internal
				false,           // no-wait
				nil,             // arguments
			)
			if err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex.name, err)
			}
		}

		// fire.dispatch: poison-сообщения уходят в DLQ,
		// retry реализован worker'ом через повторную публикацию.
		dlqArgs := amqp.Table{
			"x-dead-letter-exchange":    string(ExchangeDLQ),
			"x-dead-letter-routing-key": string(RoutingKeyDLQFire),
		}

		queues := []struct {
			name Queue
			args amqp.Table
		}{
			{QueueFireDispatch, dlqArgs},
			{QueueDLQFire, nil},
		}

		for _, q := range queues {
			_, err := ch.QueueDeclare(
				string(q.name), // name
				true,           // durable
				false,          // delete when unused
				false,          // exclusive
				false,          // no-wait
				q.args,         // arguments
			)
			if err != nil {
				return fmt.Errorf("declare queue %s: %w", q.name, err)
			}
		}

		bindings := []struct {
			queue      Queue
			routingKey RoutingKey
			exchange   Exchange
		}{
			{QueueFireDispatch, RoutingKeyDispatch, ExchangeFire},
			{QueueDLQFire, RoutingKeyDLQFire, ExchangeDLQ},
		}

		for _, b := range bindings {
			err := ch.QueueBind(
				string(b.queue),      // queue name
				string(b.routingKey), // routing key
				string(b.exchange),   // exchange
				false,                // no-wait
				nil,                  // arguments
			)
			if err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
			}
		}

		return nil
	})
}
