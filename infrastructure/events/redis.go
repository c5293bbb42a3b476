package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hilthontt/ephemera/infrastructure/cache"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"go.uber.org/zap"
)

var _ Broadcaster = (*RedisBroadcaster)(nil)

// RedisBroadcaster fans events out over the store's pub/sub channels,
// one channel per room: prefix + roomID.
type RedisBroadcaster struct {
	store   *cache.Store
	prefix  string
	history historyLog
	logger  *logger.Logger
}

func NewRedisBroadcaster(store *cache.Store, prefix string, historyLength int, logger *logger.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{
		store:   store,
		prefix:  prefix,
		history: historyLog{store: store, length: historyLength},
		logger:  logger,
	}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, roomID string, event EventType, payload any) error {
	env, err := NewEnvelope(roomID, event, payload)
	if err != nil {
		return err
	}
	return b.history.record(ctx, b.prefix+roomID, env)
}

func (b *RedisBroadcaster) Subscribe(ctx context.Context) (<-chan Envelope, error) {
	pubsub := b.store.Client().PSubscribe(ctx, b.prefix+"*")

	// Wait for confirmation so nothing published after Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s*: %w", b.prefix, err)
	}

	out := make(chan Envelope, 64)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					b.logger.Warn("dropping malformed realtime payload",
						zap.String("channel", msg.Channel),
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
	}()

	return out, nil
}

func (b *RedisBroadcaster) History(ctx context.Context, roomID string) ([]Envelope, error) {
	return b.history.list(ctx, roomID)
}
