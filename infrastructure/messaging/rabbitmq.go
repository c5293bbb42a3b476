package messaging

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RoomRoutingPrefix prefixes every routing key; a room's key is RoomRoutingPrefix + roomID.
const RoomRoutingPrefix = "room."

type RabbitMQ struct {
	conn     *amqp.Connection
	Channel  *amqp.Channel
	exchange string
}

func NewRabbitMQ(uri, exchange string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	rmq := &RabbitMQ{
		conn:     conn,
		Channel:  ch,
		exchange: exchange,
	}

	if err := rmq.setupExchange(); err != nil {
		rmq.Close()
		return nil, err
	}

	return rmq, nil
}

func (r *RabbitMQ) Close() {
	if r.Channel != nil {
		r.Channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}

func (r *RabbitMQ) setupExchange() error {
	err := r.Channel.ExchangeDeclare(
		r.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", r.exchange, err)
	}
	return nil
}

// PublishRoomEvent sends body to every node listening on the room's routing key.
func (r *RabbitMQ) PublishRoomEvent(ctx context.Context, roomID string, body []byte) error {
	return r.Channel.PublishWithContext(ctx,
		r.exchange,
		RoomRoutingPrefix+roomID,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			Body:         body,
		},
	)
}

// ConsumeRoomEvents binds a private, node-local queue to all room routing keys.
// The queue disappears with the connection.
func (r *RabbitMQ) ConsumeRoomEvents(ctx context.Context) (<-chan amqp.Delivery, error) {
	q, err := r.Channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := r.Channel.QueueBind(
		q.Name,
		RoomRoutingPrefix+"*",
		r.exchange,
		false,
		nil,
	); err != nil {
		return nil, fmt.Errorf("failed to bind queue to %s: %w", r.exchange, err)
	}

	deliveries, err := r.Channel.ConsumeWithContext(ctx,
		q.Name,
		"",    // consumer
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume from %s: %w", q.Name, err)
	}
	return deliveries, nil
}
