package repository

import (
	"context"
	"time"

	"github.com/hilthontt/ephemera/domain/model"
)

type RoomRepository interface {
	Create(ctx context.Context, room *model.RoomMeta) error
	GetMeta(ctx context.Context, roomID string) (*model.RoomMeta, error)
	TryAdmit(ctx context.Context, roomID, existingToken, candidateToken string) (model.Admission, error)
	IsMember(ctx context.Context, roomID, token string) (bool, error)
	RemainingTTL(ctx context.Context, roomID string) (time.Duration, error)
	SyncTTL(ctx context.Context, roomID string) (time.Duration, error)
	Delete(ctx context.Context, roomID string) error
}
