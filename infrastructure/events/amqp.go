package events

import (
	"context"
	"encoding/json"

	"github.com/hilthontt/ephemera/infrastructure/cache"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"github.com/hilthontt/ephemera/infrastructure/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var _ Broadcaster = (*AMQPBroadcaster)(nil)

// AMQPBroadcaster routes events through a RabbitMQ topic exchange. History
// still lives next to the room in the ephemeral store so it expires with it.
type AMQPBroadcaster struct {
	rabbitmq *messaging.RabbitMQ
	history  historyLog
	logger   *logger.Logger
}

func NewAMQPBroadcaster(rabbitmq *messaging.RabbitMQ, store *cache.Store, historyLength int, logger *logger.Logger) *AMQPBroadcaster {
	return &AMQPBroadcaster{
		rabbitmq: rabbitmq,
		history:  historyLog{store: store, length: historyLength},
		logger:   logger,
	}
}

func (b *AMQPBroadcaster) Publish(ctx context.Context, roomID string, event EventType, payload any) error {
	env, err := NewEnvelope(roomID, event, payload)
	if err != nil {
		return err
	}

	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := b.rabbitmq.PublishRoomEvent(ctx, roomID, body); err != nil {
		return err
	}

	return b.history.record(ctx, "", env)
}

func (b *AMQPBroadcaster) Subscribe(ctx context.Context) (<-chan Envelope, error) {
	deliveries, err := b.rabbitmq.ConsumeRoomEvents(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan Envelope, 64)
	go b.forward(ctx, deliveries, out)

	return out, nil
}

// forward decodes deliveries into out until ctx is done or deliveries closes.
// Malformed bodies are logged and skipped.
func (b *AMQPBroadcaster) forward(ctx context.Context, deliveries <-chan amqp.Delivery, out chan<- Envelope) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			var env Envelope
			if err := json.Unmarshal(d.Body, &env); err != nil {
				b.logger.Warn("dropping malformed amqp delivery",
					zap.String("routingKey", d.RoutingKey),
					zap.Error(err),
				)
				continue
			}
			select {
			case out <- env:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (b *AMQPBroadcaster) History(ctx context.Context, roomID string) ([]Envelope, error) {
	return b.history.list(ctx, roomID)
}
