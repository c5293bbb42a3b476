package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hilthontt/ephemera/domain/model"
	"github.com/hilthontt/ephemera/infrastructure/cache"
)

func TestMessageRepository_Append(t *testing.T) {
	store, mr := newTestStore(t)
	rooms := NewRoomRepository(store, 2, testTracer)
	messages := NewMessageRepository(store, testTracer)
	ctx := context.Background()
	createRoom(t, rooms, "r1", 10*time.Minute)

	mr.FastForward(4 * time.Minute)
	msg := &model.Message{ID: "m1", Sender: "alice", Text: "hi", Timestamp: 1, RoomID: "r1", Token: "tok"}
	if err := messages.Append(ctx, msg); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if got, want := mr.TTL(cache.MessagesKey("r1")), mr.TTL(cache.MetaKey("r1")); got != want {
		t.Errorf("messages TTL = %v, want %v", got, want)
	}

	n, err := messages.Count(ctx, "r1")
	if err != nil || n != 1 {
		t.Fatalf("Count = %d, %v; want 1", n, err)
	}

	stored, err := messages.Range(ctx, "r1", 0, 0)
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if len(stored) != 1 || stored[0].Token != "tok" || stored[0].Text != "hi" {
		t.Errorf("stored = %+v, want the appended message with its token", stored)
	}
}

func TestMessageRepository_Append_RoomMissing(t *testing.T) {
	store, mr := newTestStore(t)
	messages := NewMessageRepository(store, testTracer)

	err := messages.Append(context.Background(), &model.Message{ID: "m1", RoomID: "gone", Text: "x"})
	if !errors.Is(err, model.ErrRoomNotFound) {
		t.Fatalf("err = %v, want ErrRoomNotFound", err)
	}
	if mr.Exists(cache.MessagesKey("gone")) {
		t.Error("append recreated the message list of a missing room")
	}
}

func TestMessageRepository_Range_Order(t *testing.T) {
	store, _ := newTestStore(t)
	rooms := NewRoomRepository(store, 2, testTracer)
	messages := NewMessageRepository(store, testTracer)
	ctx := context.Background()
	createRoom(t, rooms, "r1", time.Minute)

	for i := 0; i < 5; i++ {
		msg := &model.Message{ID: fmt.Sprintf("m%d", i), RoomID: "r1", Text: "x", Timestamp: int64(i)}
		if err := messages.Append(ctx, msg); err != nil {
			t.Fatalf("Append(%d) failed: %v", i, err)
		}
	}

	got, err := messages.Range(ctx, "r1", 1, 3)
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Range(1, 3) = %d messages, want 3", len(got))
	}
	for i, msg := range got {
		if want := fmt.Sprintf("m%d", i+1); msg.ID != want {
			t.Errorf("got[%d].ID = %s, want %s", i, msg.ID, want)
		}
	}
}

func TestMessageRepository_Count_Empty(t *testing.T) {
	store, _ := newTestStore(t)
	messages := NewMessageRepository(store, testTracer)

	n, err := messages.Count(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}
