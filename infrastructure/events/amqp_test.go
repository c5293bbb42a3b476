package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hilthontt/ephemera/infrastructure/cache"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

func newTestAMQPBroadcaster(t *testing.T) (*AMQPBroadcaster, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewAMQPBroadcaster(nil, cache.NewStore(client), 3, logger.NewNop()), mr
}

func delivery(t *testing.T, env Envelope) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return amqp.Delivery{RoutingKey: "room." + env.RoomID, Body: body}
}

func TestAMQPBroadcaster_ForwardSkipsMalformed(t *testing.T) {
	b, _ := newTestAMQPBroadcaster(t)

	first, _ := NewEnvelope("r1", EventMessage, map[string]string{"text": "one"})
	second, _ := NewEnvelope("r2", EventDestroy, DestroyPayload{IsDestroyed: true})

	deliveries := make(chan amqp.Delivery, 3)
	deliveries <- delivery(t, first)
	deliveries <- amqp.Delivery{RoutingKey: "room.r1", Body: []byte("{not json")}
	deliveries <- delivery(t, second)
	close(deliveries)

	out := make(chan Envelope, 3)
	go b.forward(context.Background(), deliveries, out)

	var got []Envelope
	for env := range out {
		got = append(got, env)
	}

	if len(got) != 2 {
		t.Fatalf("forwarded %d envelopes, want 2: %+v", len(got), got)
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Errorf("forwarded ids %s, %s; want %s, %s", got[0].ID, got[1].ID, first.ID, second.ID)
	}
	if got[1].Event != EventDestroy || got[1].RoomID != "r2" {
		t.Errorf("second envelope = %+v", got[1])
	}
}

func TestAMQPBroadcaster_ForwardStopsOnCancel(t *testing.T) {
	b, _ := newTestAMQPBroadcaster(t)

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Envelope)
	go b.forward(ctx, make(chan amqp.Delivery), out)

	cancel()

	select {
	case _, ok := <-out:
		if ok {
			t.Error("received an envelope after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("forward did not stop after cancel")
	}
}

func TestAMQPBroadcaster_HistoryFollowsRoom(t *testing.T) {
	b, mr := newTestAMQPBroadcaster(t)
	seedRoom(t, mr, "r1", time.Minute)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		env, _ := NewEnvelope("r1", EventMessage, map[string]int{"n": i})
		if err := b.history.record(ctx, "", env); err != nil {
			t.Fatalf("record(%d) failed: %v", i, err)
		}
	}

	history, err := b.History(ctx, "r1")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("history length = %d, want 3", len(history))
	}
	if ttl := mr.TTL(cache.HistoryKey("r1")); ttl <= 0 || ttl > time.Minute {
		t.Errorf("history TTL = %v, want within (0, 1m]", ttl)
	}
}
