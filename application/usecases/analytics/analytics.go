package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/hilthontt/ephemera/domain/model"
	"github.com/hilthontt/ephemera/domain/repository"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"github.com/hilthontt/ephemera/infrastructure/metrics"
	"go.uber.org/zap"
)

// AnalyticsUseCase mirrors room and message metadata into durable storage.
// Mirroring never blocks or fails the caller.
type AnalyticsUseCase interface {
	MirrorRoom(room model.RoomMeta)
	MirrorMessage(message model.Message)
	Summary(ctx context.Context) (model.AnalyticsSummary, error)
	// Wait blocks until in-flight mirror writes finish.
	Wait()
}

type analyticsUseCase struct {
	repository repository.AnalyticsRepository
	timeout    time.Duration
	metrics    metrics.Manager
	logger     *logger.Logger
	wg         sync.WaitGroup
}

func NewAnalyticsUseCase(
	repository repository.AnalyticsRepository,
	timeout time.Duration,
	metrics metrics.Manager,
	logger *logger.Logger,
) AnalyticsUseCase {
	return &analyticsUseCase{
		repository: repository,
		timeout:    timeout,
		metrics:    metrics,
		logger:     logger,
	}
}

func (uc *analyticsUseCase) MirrorRoom(room model.RoomMeta) {
	record := model.RoomRecord{
		RoomID:     room.ID,
		CreatedAt:  room.CreatedAt,
		TTLSeconds: int64(room.TTL / time.Second),
	}

	uc.mirror("room", room.ID, func(ctx context.Context) error {
		return uc.repository.RecordRoom(ctx, record)
	})
}

func (uc *analyticsUseCase) MirrorMessage(message model.Message) {
	record := model.MessageRecord{
		MessageID: message.ID,
		Sender:    message.Sender,
		Timestamp: message.Timestamp,
		RoomID:    message.RoomID,
	}

	uc.mirror("message", message.RoomID, func(ctx context.Context) error {
		return uc.repository.RecordMessage(ctx, record)
	})
}

func (uc *analyticsUseCase) mirror(kind, roomID string, write func(ctx context.Context) error) {
	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), uc.timeout)
		defer cancel()

		if err := write(ctx); err != nil {
			uc.metrics.IncrementCounter(ctx, metrics.AnalyticsMirrorFailures, "kind", kind)
			uc.logger.Warn("analytics mirror write failed",
				zap.String("kind", kind),
				zap.String("roomID", roomID),
				zap.Error(err),
			)
		}
	}()
}

func (uc *analyticsUseCase) Summary(ctx context.Context) (model.AnalyticsSummary, error) {
	summary, err := uc.repository.Summary(ctx)
	if err != nil {
		uc.logger.Error("failed to read analytics summary", zap.Error(err))
		return model.AnalyticsSummary{}, err
	}
	return summary, nil
}

func (uc *analyticsUseCase) Wait() {
	uc.wg.Wait()
}

type disabledAnalytics struct{}

// NewDisabledAnalyticsUseCase is used when no durable database is configured.
func NewDisabledAnalyticsUseCase() AnalyticsUseCase {
	return disabledAnalytics{}
}

func (disabledAnalytics) MirrorRoom(model.RoomMeta)   {}
func (disabledAnalytics) MirrorMessage(model.Message) {}
func (disabledAnalytics) Wait()                       {}
func (disabledAnalytics) Summary(context.Context) (model.AnalyticsSummary, error) {
	return model.AnalyticsSummary{}, nil
}
