package repository

import (
	"context"

	"github.com/hilthontt/ephemera/domain/model"
)

type MessageRepository interface {
	Append(ctx context.Context, message *model.Message) error
	Count(ctx context.Context, roomID string) (int64, error)
	// Range returns stored messages between start and end inclusive, oldest first.
	Range(ctx context.Context, roomID string, start, end int64) ([]model.Message, error)
}
