package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hilthontt/ephemera/domain/model"
	"github.com/redis/go-redis/v9"
)

// ErrKeyMissing is returned by TTL when the key does not exist (never written or expired).
var ErrKeyMissing = errors.New("key does not exist")

// Store is a typed wrapper over the ephemeral key-value store. Every I/O
// failure is reported as model.ErrStoreUnavailable; a missing key is never an
// I/O failure.
type Store struct {
	client redis.UniversalClient
}

func NewStore(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) Client() redis.UniversalClient {
	return s.client
}

// HashGetAll returns an empty map when the key does not exist.
func (s *Store) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	values, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, wrap("hgetall", err)
	}
	return values, nil
}

// TTL reports the remaining lifetime of key with millisecond resolution.
// A key without expiry reports 0.
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, wrap("pttl", err)
	}

	switch ttl {
	case -2:
		return 0, ErrKeyMissing
	case -1:
		return 0, nil
	}
	return ttl, nil
}

// Delete removes keys. Absent keys are ignored.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return wrap("del", s.client.Del(ctx, keys...).Err())
}

func (s *Store) ListLen(ctx context.Context, key string) (int64, error) {
	n, err := s.client.LLen(ctx, key).Result()
	if err != nil {
		return 0, wrap("llen", err)
	}
	return n, nil
}

// ListRange returns elements between start and stop inclusive.
func (s *Store) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	values, err := s.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, wrap("lrange", err)
	}
	return values, nil
}

// Run executes a server-side script as one indivisible step.
func (s *Store) Run(ctx context.Context, script *redis.Script, keys []string, args ...any) (any, error) {
	result, err := script.Run(ctx, s.client, keys, args...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, wrap("script", err)
	}
	return result, nil
}

func wrap(op string, err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, model.ErrStoreUnavailable, err)
}
