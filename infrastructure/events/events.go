package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType names a realtime event delivered to room subscribers.
type EventType string

const (
	EventMessage EventType = "chat.message"
	EventDestroy EventType = "chat.destroy"
)

// Envelope is the wire form of one realtime event.
type Envelope struct {
	ID     string          `json:"id"`
	Event  EventType       `json:"event"`
	RoomID string          `json:"roomId"`
	Data   json.RawMessage `json:"data"`
	At     time.Time       `json:"at"`
}

type DestroyPayload struct {
	IsDestroyed bool `json:"isDestroyed"`
}

// Broadcaster delivers room events to whatever realtime subscribers exist.
// Delivery is best effort: no acknowledgement, no replay beyond History.
type Broadcaster interface {
	Publish(ctx context.Context, roomID string, event EventType, payload any) error
	// Subscribe streams events for every room until ctx is done.
	Subscribe(ctx context.Context) (<-chan Envelope, error)
	// History returns the recent envelopes of a live room, oldest first.
	History(ctx context.Context, roomID string) ([]Envelope, error)
}

func NewEnvelope(roomID string, event EventType, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}

	return Envelope{
		ID:     uuid.NewString(),
		Event:  event,
		RoomID: roomID,
		Data:   data,
		At:     time.Now().UTC(),
	}, nil
}
