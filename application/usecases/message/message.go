package message

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hilthontt/ephemera/application/usecases/analytics"
	"github.com/hilthontt/ephemera/domain/model"
	"github.com/hilthontt/ephemera/domain/repository"
	"github.com/hilthontt/ephemera/infrastructure/config"
	"github.com/hilthontt/ephemera/infrastructure/events"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"github.com/hilthontt/ephemera/infrastructure/metrics"
	"go.uber.org/zap"
)

type MessageUseCase interface {
	// Send stores a message authored by the holder of token and returns it
	// with the token intact.
	Send(ctx context.Context, roomID, sender, text, token string) (*model.Message, error)
	// List pages backwards from the newest message. offset counts messages
	// already seen from the newest end.
	List(ctx context.Context, roomID string, limit, offset int, callerToken string) (*model.MessagePage, error)
}

type messageUseCase struct {
	messages    repository.MessageRepository
	rooms       repository.RoomRepository
	broadcaster events.Broadcaster
	analytics   analytics.AnalyticsUseCase
	metrics     metrics.Manager
	config      config.RoomConfig
	logger      *logger.Logger
}

func NewMessageUseCase(
	messages repository.MessageRepository,
	rooms repository.RoomRepository,
	broadcaster events.Broadcaster,
	analytics analytics.AnalyticsUseCase,
	metrics metrics.Manager,
	config config.RoomConfig,
	logger *logger.Logger,
) MessageUseCase {
	return &messageUseCase{
		messages:    messages,
		rooms:       rooms,
		broadcaster: broadcaster,
		analytics:   analytics,
		metrics:     metrics,
		config:      config,
		logger:      logger,
	}
}

func validateMessage(sender, text string) error {
	if n := utf8.RuneCountInString(text); n < model.MinMessageLength || n > model.MaxMessageLength {
		return fmt.Errorf("text must be between %d and %d characters: %w",
			model.MinMessageLength, model.MaxMessageLength, model.ErrInvalid)
	}
	if utf8.RuneCountInString(sender) > model.MaxSenderLength {
		return fmt.Errorf("sender cannot exceed %d characters: %w", model.MaxSenderLength, model.ErrInvalid)
	}
	return nil
}

func (uc *messageUseCase) Send(ctx context.Context, roomID, sender, text, token string) (*model.Message, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room id is required: %w", model.ErrInvalid)
	}
	if err := validateMessage(sender, text); err != nil {
		return nil, err
	}

	message := &model.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
		RoomID:    roomID,
		Token:     token,
	}

	if err := uc.messages.Append(ctx, message); err != nil {
		uc.logger.Error("failed to append message", zap.Error(err), zap.String("roomID", roomID))
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	// The room may expire between append and realignment; the message is
	// already stored and expires with it.
	if _, err := uc.rooms.SyncTTL(ctx, roomID); err != nil {
		uc.logger.Warn("failed to realign room ttl", zap.Error(err), zap.String("roomID", roomID))
	}

	if err := uc.broadcaster.Publish(ctx, roomID, events.EventMessage, message.RedactFor("")); err != nil {
		uc.logger.Warn("failed to publish message", zap.Error(err), zap.String("roomID", roomID))
	}

	uc.metrics.IncrementCounter(ctx, metrics.MessagesSent)
	uc.analytics.MirrorMessage(*message)

	return message, nil
}

func (uc *messageUseCase) List(ctx context.Context, roomID string, limit, offset int, callerToken string) (*model.MessagePage, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room id is required: %w", model.ErrInvalid)
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset cannot be negative: %w", model.ErrInvalid)
	}
	limit = uc.clampLimit(limit)

	total, err := uc.messages.Count(ctx, roomID)
	if err != nil {
		uc.logger.Error("failed to count messages", zap.Error(err), zap.String("roomID", roomID))
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	page := &model.MessagePage{Messages: []model.Message{}, TotalCount: total}
	if int64(offset) >= total {
		return page, nil
	}

	start, end := window(total, int64(limit), int64(offset))
	stored, err := uc.messages.Range(ctx, roomID, start, end)
	if err != nil {
		uc.logger.Error("failed to read messages", zap.Error(err), zap.String("roomID", roomID))
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	for _, m := range stored {
		page.Messages = append(page.Messages, m.RedactFor(callerToken))
	}
	page.HasMore = start > 0

	return page, nil
}

func (uc *messageUseCase) clampLimit(limit int) int {
	if limit <= 0 {
		return uc.config.DefaultPageSize
	}
	if limit > uc.config.MaxPageSize {
		return uc.config.MaxPageSize
	}
	return limit
}

// window maps a newest-first (limit, offset) page onto inclusive list indexes.
func window(total, limit, offset int64) (start, end int64) {
	return max(0, total-offset-limit), max(0, total-offset-1)
}
