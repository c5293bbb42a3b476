package repository

import (
	"context"

	"github.com/hilthontt/ephemera/domain/model"
	"github.com/hilthontt/ephemera/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PostgresAnalyticsRepository struct {
	rooms    *BaseRepository[model.RoomRecord]
	messages *BaseRepository[model.MessageRecord]
}

func NewAnalyticsRepository(db *gorm.DB, zapLogger *zap.Logger) repository.AnalyticsRepository {
	return &PostgresAnalyticsRepository{
		rooms:    NewBaseRepository[model.RoomRecord](db, zapLogger),
		messages: NewBaseRepository[model.MessageRecord](db, zapLogger),
	}
}

// RecordRoom is idempotent per room id.
func (r *PostgresAnalyticsRepository) RecordRoom(ctx context.Context, record model.RoomRecord) error {
	_, err := r.rooms.Create(ctx, record, "room_id")
	return err
}

func (r *PostgresAnalyticsRepository) RecordMessage(ctx context.Context, record model.MessageRecord) error {
	_, err := r.messages.Create(ctx, record)
	return err
}

func (r *PostgresAnalyticsRepository) Summary(ctx context.Context) (model.AnalyticsSummary, error) {
	rooms, err := r.rooms.Count(ctx)
	if err != nil {
		return model.AnalyticsSummary{}, err
	}
	messages, err := r.messages.Count(ctx)
	if err != nil {
		return model.AnalyticsSummary{}, err
	}
	return model.AnalyticsSummary{TotalRooms: rooms, TotalMessages: messages}, nil
}
