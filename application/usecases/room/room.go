package room

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/hilthontt/ephemera/application/usecases/analytics"
	"github.com/hilthontt/ephemera/domain/model"
	"github.com/hilthontt/ephemera/domain/repository"
	"github.com/hilthontt/ephemera/infrastructure/config"
	"github.com/hilthontt/ephemera/infrastructure/events"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"github.com/hilthontt/ephemera/infrastructure/metrics"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

type RoomUseCase interface {
	// Create opens a room. requestedTTL is the raw client value in seconds;
	// anything outside the allow-list falls back to the default.
	Create(ctx context.Context, requestedTTL string) (*model.RoomMeta, error)
	Get(ctx context.Context, roomID string) (*model.RoomMeta, error)
	// Admit returns ErrRoomNotFound or ErrRoomFull alongside the admission
	// outcome when the caller cannot enter.
	Admit(ctx context.Context, roomID, presentedToken string) (model.Admission, error)
	IsMember(ctx context.Context, roomID, token string) (bool, error)
	// RemainingTTL is zero for rooms that do not exist.
	RemainingTTL(ctx context.Context, roomID string) (time.Duration, error)
	TouchTTL(ctx context.Context, roomID string) (time.Duration, error)
	Destroy(ctx context.Context, roomID string) error
}

type roomUseCase struct {
	repository  repository.RoomRepository
	broadcaster events.Broadcaster
	analytics   analytics.AnalyticsUseCase
	metrics     metrics.Manager
	config      config.RoomConfig
	logger      *logger.Logger
}

func NewRoomUseCase(
	repository repository.RoomRepository,
	broadcaster events.Broadcaster,
	analytics analytics.AnalyticsUseCase,
	metrics metrics.Manager,
	config config.RoomConfig,
	logger *logger.Logger,
) RoomUseCase {
	return &roomUseCase{
		repository:  repository,
		broadcaster: broadcaster,
		analytics:   analytics,
		metrics:     metrics,
		config:      config,
		logger:      logger,
	}
}

func (uc *roomUseCase) Create(ctx context.Context, requestedTTL string) (*model.RoomMeta, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate room id: %w", err)
	}

	room := &model.RoomMeta{
		ID:        id,
		CreatedAt: time.Now(),
		TTL:       uc.resolveTTL(requestedTTL),
	}

	if err := uc.repository.Create(ctx, room); err != nil {
		uc.logger.Error("failed to create room", zap.Error(err), zap.String("roomID", id))
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	uc.metrics.IncrementCounter(ctx, metrics.RoomsCreated)
	uc.analytics.MirrorRoom(*room)

	uc.logger.Info("room created",
		zap.String("roomID", id),
		zap.Duration("ttl", room.TTL),
	)
	return room, nil
}

func (uc *roomUseCase) resolveTTL(raw string) time.Duration {
	seconds, err := strconv.Atoi(raw)
	if err != nil || !slices.Contains(uc.config.AllowedTTLSeconds, seconds) {
		seconds = uc.config.DefaultTTLSeconds
	}
	return time.Duration(seconds) * time.Second
}

func (uc *roomUseCase) Get(ctx context.Context, roomID string) (*model.RoomMeta, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room id is required: %w", model.ErrInvalid)
	}
	return uc.repository.GetMeta(ctx, roomID)
}

func (uc *roomUseCase) Admit(ctx context.Context, roomID, presentedToken string) (model.Admission, error) {
	if roomID == "" {
		return model.Admission{}, fmt.Errorf("room id is required: %w", model.ErrInvalid)
	}

	admission, err := uc.repository.TryAdmit(ctx, roomID, presentedToken, generateSecureCode())
	if err != nil {
		uc.logger.Error("admission failed", zap.Error(err), zap.String("roomID", roomID))
		return model.Admission{}, err
	}

	uc.metrics.IncrementCounter(ctx, metrics.RoomAdmissions, "status", admission.Status.String())

	switch admission.Status {
	case model.NotFound:
		return admission, model.ErrRoomNotFound
	case model.Full:
		uc.logger.Info("room full, admission refused",
			zap.String("roomID", roomID),
			zap.Int("members", admission.Members),
		)
		return admission, model.ErrRoomFull
	case model.Admitted:
		uc.logger.Info("member admitted",
			zap.String("roomID", roomID),
			zap.Int("members", admission.Members),
		)
	}
	return admission, nil
}

func (uc *roomUseCase) IsMember(ctx context.Context, roomID, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return uc.repository.IsMember(ctx, roomID, token)
}

func (uc *roomUseCase) RemainingTTL(ctx context.Context, roomID string) (time.Duration, error) {
	if roomID == "" {
		return 0, fmt.Errorf("room id is required: %w", model.ErrInvalid)
	}

	ttl, err := uc.repository.RemainingTTL(ctx, roomID)
	if errors.Is(err, model.ErrRoomNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return ttl, nil
}

func (uc *roomUseCase) TouchTTL(ctx context.Context, roomID string) (time.Duration, error) {
	return uc.repository.SyncTTL(ctx, roomID)
}

// Destroy notifies subscribers before removing the room's keys; deleting an
// absent room succeeds.
func (uc *roomUseCase) Destroy(ctx context.Context, roomID string) error {
	if roomID == "" {
		return fmt.Errorf("room id is required: %w", model.ErrInvalid)
	}

	if err := uc.broadcaster.Publish(ctx, roomID, events.EventDestroy, events.DestroyPayload{IsDestroyed: true}); err != nil {
		uc.logger.Warn("failed to publish room destruction", zap.Error(err), zap.String("roomID", roomID))
	}

	if err := uc.repository.Delete(ctx, roomID); err != nil {
		uc.logger.Error("failed to delete room", zap.Error(err), zap.String("roomID", roomID))
		return fmt.Errorf("failed to delete room: %w", err)
	}

	uc.metrics.IncrementCounter(ctx, metrics.RoomsDestroyed)
	uc.logger.Info("room destroyed", zap.String("roomID", roomID))
	return nil
}
