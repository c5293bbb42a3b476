package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hilthontt/ephemera/domain/model"
	"github.com/hilthontt/ephemera/domain/repository"
	"github.com/hilthontt/ephemera/infrastructure/cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type roomRepository struct {
	store    *cache.Store
	capacity int
	tracer   trace.Tracer
}

func NewRoomRepository(store *cache.Store, capacity int, tracer trace.Tracer) repository.RoomRepository {
	if capacity <= 0 {
		capacity = model.DefaultRoomCapacity
	}
	return &roomRepository{
		store:    store,
		capacity: capacity,
		tracer:   tracer,
	}
}

func (r *roomRepository) Create(ctx context.Context, room *model.RoomMeta) error {
	ctx, span := r.tracer.Start(ctx, "roomRepository.Create")
	defer span.End()

	ttlSeconds := int64(room.TTL / time.Second)
	span.SetAttributes(
		attribute.String("room.id", room.ID),
		attribute.Int64("room.ttl_seconds", ttlSeconds),
	)

	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	room.Connected = []string{}

	result, err := r.store.Run(ctx, createRoomScript,
		[]string{cache.MetaKey(room.ID)},
		room.CreatedAt.UnixMilli(), ttlSeconds,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create room metadata")
		return err
	}
	if created, _ := result.(int64); created != 1 {
		err := fmt.Errorf("room id %q already in use", room.ID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "room id collision")
		return err
	}

	span.SetStatus(codes.Ok, "room created successfully")
	return nil
}

func (r *roomRepository) GetMeta(ctx context.Context, roomID string) (*model.RoomMeta, error) {
	ctx, span := r.tracer.Start(ctx, "roomRepository.GetMeta")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	fields, err := r.store.HashGetAll(ctx, cache.MetaKey(roomID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read room metadata")
		return nil, err
	}
	if len(fields) == 0 {
		span.SetAttributes(attribute.Bool("room.found", false))
		span.SetStatus(codes.Error, "room not found")
		return nil, model.ErrRoomNotFound
	}

	meta, err := parseMeta(roomID, fields)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "corrupt room metadata")
		return nil, err
	}

	span.SetAttributes(
		attribute.Bool("room.found", true),
		attribute.Int("room.members_count", len(meta.Connected)),
	)
	span.SetStatus(codes.Ok, "room metadata retrieved")
	return meta, nil
}

func (r *roomRepository) TryAdmit(ctx context.Context, roomID, existingToken, candidateToken string) (model.Admission, error) {
	ctx, span := r.tracer.Start(ctx, "roomRepository.TryAdmit")
	defer span.End()

	span.SetAttributes(
		attribute.String("room.id", roomID),
		attribute.Bool("token.presented", existingToken != ""),
		attribute.Int("room.capacity", r.capacity),
	)

	result, err := r.store.Run(ctx, admitScript,
		[]string{cache.MetaKey(roomID)},
		existingToken, candidateToken, r.capacity,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "admission script failed")
		return model.Admission{}, err
	}

	admission, err := parseAdmission(result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected admission reply")
		return model.Admission{}, err
	}

	span.SetAttributes(
		attribute.String("admission.status", admission.Status.String()),
		attribute.Int("room.members_count", admission.Members),
	)
	span.SetStatus(codes.Ok, "admission evaluated")
	return admission, nil
}

func (r *roomRepository) IsMember(ctx context.Context, roomID, token string) (bool, error) {
	meta, err := r.GetMeta(ctx, roomID)
	if err != nil {
		return false, err
	}
	return meta.IsMember(token), nil
}

func (r *roomRepository) RemainingTTL(ctx context.Context, roomID string) (time.Duration, error) {
	ctx, span := r.tracer.Start(ctx, "roomRepository.RemainingTTL")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	ttl, err := r.store.TTL(ctx, cache.MetaKey(roomID))
	if errors.Is(err, cache.ErrKeyMissing) {
		span.SetAttributes(attribute.Bool("room.found", false))
		span.SetStatus(codes.Ok, "room absent")
		return 0, model.ErrRoomNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read room ttl")
		return 0, err
	}

	span.SetAttributes(attribute.Int64("room.ttl_ms", ttl.Milliseconds()))
	span.SetStatus(codes.Ok, "room ttl retrieved")
	return ttl, nil
}

func (r *roomRepository) SyncTTL(ctx context.Context, roomID string) (time.Duration, error) {
	ctx, span := r.tracer.Start(ctx, "roomRepository.SyncTTL")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	keys := append([]string{cache.MetaKey(roomID)}, cache.SiblingKeys(roomID)...)
	result, err := r.store.Run(ctx, syncTTLScript, keys)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to align room ttl")
		return 0, err
	}

	ttl, _ := result.(int64)
	switch {
	case ttl == -2:
		span.SetStatus(codes.Ok, "room absent")
		return 0, model.ErrRoomNotFound
	case ttl < 0:
		span.SetStatus(codes.Ok, "room has no expiry")
		return 0, nil
	}

	span.SetAttributes(attribute.Int64("room.ttl_ms", ttl))
	span.SetStatus(codes.Ok, "room ttl aligned")
	return time.Duration(ttl) * time.Millisecond, nil
}

func (r *roomRepository) Delete(ctx context.Context, roomID string) error {
	ctx, span := r.tracer.Start(ctx, "roomRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	if err := r.store.Delete(ctx, cache.RoomKeys(roomID)...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete room keys")
		return err
	}

	span.SetStatus(codes.Ok, "room deleted successfully")
	return nil
}

func parseMeta(roomID string, fields map[string]string) (*model.RoomMeta, error) {
	meta := &model.RoomMeta{ID: roomID, Connected: []string{}}

	if raw := fields["connected"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta.Connected); err != nil {
			return nil, fmt.Errorf("decode connected for room %s: %w", roomID, err)
		}
	}

	if raw := fields["createdAt"]; raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode createdAt for room %s: %w", roomID, err)
		}
		meta.CreatedAt = time.UnixMilli(ms)
	}

	if raw := fields["ttlSeconds"]; raw != "" {
		seconds, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode ttlSeconds for room %s: %w", roomID, err)
		}
		meta.TTL = time.Duration(seconds) * time.Second
	}

	return meta, nil
}

func parseAdmission(result any) (model.Admission, error) {
	reply, ok := result.([]any)
	if !ok || len(reply) != 3 {
		return model.Admission{}, fmt.Errorf("admission reply has shape %T", result)
	}

	status, ok := reply[0].(int64)
	if !ok {
		return model.Admission{}, fmt.Errorf("admission status has type %T", reply[0])
	}
	token, _ := reply[1].(string)
	members, _ := reply[2].(int64)

	return model.Admission{
		Status:  model.AdmissionStatus(status),
		Token:   token,
		Members: int(members),
	}, nil
}
