package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hilthontt/ephemera/domain/model"
	"github.com/hilthontt/ephemera/domain/repository"
	"github.com/hilthontt/ephemera/infrastructure/cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type messageRepository struct {
	store  *cache.Store
	tracer trace.Tracer
}

func NewMessageRepository(store *cache.Store, tracer trace.Tracer) repository.MessageRepository {
	return &messageRepository{
		store:  store,
		tracer: tracer,
	}
}

// Append stores the message with its author token. The list inherits the
// room metadata's remaining lifetime in the same step.
func (r *messageRepository) Append(ctx context.Context, message *model.Message) error {
	ctx, span := r.tracer.Start(ctx, "messageRepository.Append")
	defer span.End()

	span.SetAttributes(
		attribute.String("room.id", message.RoomID),
		attribute.String("message.id", message.ID),
	)

	data, err := json.Marshal(message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode message")
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := r.store.Run(ctx, appendMessageScript,
		[]string{cache.MetaKey(message.RoomID), cache.MessagesKey(message.RoomID)},
		string(data),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to append message")
		return err
	}

	length, _ := result.(int64)
	if length < 0 {
		span.SetAttributes(attribute.Bool("room.found", false))
		span.SetStatus(codes.Error, "room not found")
		return model.ErrRoomNotFound
	}

	span.SetAttributes(attribute.Int64("messages.count", length))
	span.SetStatus(codes.Ok, "message appended")
	return nil
}

func (r *messageRepository) Count(ctx context.Context, roomID string) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "messageRepository.Count")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	n, err := r.store.ListLen(ctx, cache.MessagesKey(roomID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to count messages")
		return 0, err
	}

	span.SetAttributes(attribute.Int64("messages.count", n))
	span.SetStatus(codes.Ok, "messages counted")
	return n, nil
}

func (r *messageRepository) Range(ctx context.Context, roomID string, start, end int64) ([]model.Message, error) {
	ctx, span := r.tracer.Start(ctx, "messageRepository.Range")
	defer span.End()

	span.SetAttributes(
		attribute.String("room.id", roomID),
		attribute.Int64("range.start", start),
		attribute.Int64("range.end", end),
	)

	results, err := r.store.ListRange(ctx, cache.MessagesKey(roomID), start, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read messages")
		return nil, err
	}

	messages := make([]model.Message, 0, len(results))
	skipped := 0
	for _, data := range results {
		var msg model.Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			skipped++
			continue
		}
		messages = append(messages, msg)
	}

	span.SetAttributes(
		attribute.Int("messages.retrieved_count", len(messages)),
		attribute.Int("messages.skipped_count", skipped),
	)
	span.SetStatus(codes.Ok, "messages retrieved")
	return messages, nil
}
