package repository

import (
	"context"

	"github.com/hilthontt/ephemera/domain/model"
)

type AnalyticsRepository interface {
	RecordRoom(ctx context.Context, record model.RoomRecord) error
	RecordMessage(ctx context.Context, record model.MessageRecord) error
	Summary(ctx context.Context) (model.AnalyticsSummary, error)
}
