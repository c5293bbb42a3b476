package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hilthontt/ephemera/infrastructure/cache"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"github.com/redis/go-redis/v9"
)

func newTestBroadcaster(t *testing.T) (*RedisBroadcaster, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisBroadcaster(cache.NewStore(client), "realtime:", 3, logger.NewNop()), mr
}

func seedRoom(t *testing.T, mr *miniredis.Miniredis, roomID string, ttl time.Duration) {
	t.Helper()
	mr.HSet(cache.MetaKey(roomID), "connected", "[]")
	mr.SetTTL(cache.MetaKey(roomID), ttl)
}

func TestRedisBroadcaster_PublishSubscribe(t *testing.T) {
	b, mr := newTestBroadcaster(t)
	seedRoom(t, mr, "r1", time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := b.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := b.Publish(ctx, "r1", EventDestroy, DestroyPayload{IsDestroyed: true}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case env := <-stream:
		if env.Event != EventDestroy || env.RoomID != "r1" {
			t.Errorf("envelope = %+v, want chat.destroy for r1", env)
		}
		var payload DestroyPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil || !payload.IsDestroyed {
			t.Errorf("payload = %s, want isDestroyed true", env.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for envelope")
	}
}

func TestRedisBroadcaster_HistoryCappedAndExpiring(t *testing.T) {
	b, mr := newTestBroadcaster(t)
	ctx := context.Background()
	seedRoom(t, mr, "r1", 5*time.Minute)

	for i := 0; i < 5; i++ {
		if err := b.Publish(ctx, "r1", EventMessage, map[string]int{"n": i}); err != nil {
			t.Fatalf("Publish(%d) failed: %v", i, err)
		}
	}

	history, err := b.History(ctx, "r1")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("History = %d envelopes, want 3", len(history))
	}
	if string(history[0].Data) != `{"n":2}` {
		t.Errorf("oldest retained = %s, want {\"n\":2}", history[0].Data)
	}
	if got := mr.TTL(cache.HistoryKey("r1")); got != 5*time.Minute {
		t.Errorf("history TTL = %v, want 5m", got)
	}
}

func TestRedisBroadcaster_NoHistoryForMissingRoom(t *testing.T) {
	b, mr := newTestBroadcaster(t)

	if err := b.Publish(context.Background(), "gone", EventMessage, "x"); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if mr.Exists(cache.HistoryKey("gone")) {
		t.Error("history written for a room without metadata")
	}
}
