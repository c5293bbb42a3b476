package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hilthontt/ephemera/domain/model"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client), mr
}

func TestStore_HashGetAll_Absent(t *testing.T) {
	store, _ := newTestStore(t)

	values, err := store.HashGetAll(context.Background(), MetaKey("missing"))
	if err != nil {
		t.Fatalf("HashGetAll failed: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("values = %v, want empty", values)
	}
}

func TestStore_TTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	mr.HSet(MetaKey("r1"), "createdAt", "1")
	if ttl, err := store.TTL(ctx, MetaKey("r1")); err != nil || ttl != 0 {
		t.Errorf("TTL without expiry = %v, %v; want 0, nil", ttl, err)
	}

	mr.SetTTL(MetaKey("r1"), time.Minute)
	if ttl, err := store.TTL(ctx, MetaKey("r1")); err != nil || ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, %v; want within (0, 1m]", ttl, err)
	}

	if _, err := store.TTL(ctx, MetaKey("missing")); !errors.Is(err, ErrKeyMissing) {
		t.Errorf("missing key err = %v, want ErrKeyMissing", err)
	}
}

func TestStore_ListRangeAndDelete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	for _, v := range []string{"a", "b", "c"} {
		_, _ = mr.Push(MessagesKey("r1"), v)
	}

	n, err := store.ListLen(ctx, MessagesKey("r1"))
	if err != nil || n != 3 {
		t.Fatalf("ListLen = %d, %v; want 3", n, err)
	}

	values, err := store.ListRange(ctx, MessagesKey("r1"), 1, 2)
	if err != nil {
		t.Fatalf("ListRange failed: %v", err)
	}
	if len(values) != 2 || values[0] != "b" || values[1] != "c" {
		t.Errorf("ListRange = %v, want [b c]", values)
	}

	if err := store.Delete(ctx, RoomKeys("r1")...); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, RoomKeys("r1")...); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}
	if mr.Exists(MessagesKey("r1")) {
		t.Error("list survived Delete")
	}
}

func TestStore_WrapsIOFailure(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, err := store.ListLen(context.Background(), MessagesKey("r1"))
	if !errors.Is(err, model.ErrStoreUnavailable) {
		t.Errorf("err = %v, want ErrStoreUnavailable", err)
	}
}
