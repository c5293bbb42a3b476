package events

import (
	"context"
	"encoding/json"

	"github.com/hilthontt/ephemera/infrastructure/cache"
	"github.com/redis/go-redis/v9"
)

// publishScript broadcasts on the room channel and, while the room is alive,
// records the envelope in its capped history with the room's remaining TTL.
// An empty channel records without broadcasting.
var publishScript = redis.NewScript(`
if ARGV[1] ~= '' then
  redis.call('PUBLISH', ARGV[1], ARGV[2])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl > 0 then
  redis.call('RPUSH', KEYS[2], ARGV[2])
  redis.call('LTRIM', KEYS[2], -tonumber(ARGV[3]), -1)
  redis.call('PEXPIRE', KEYS[2], ttl)
end
return ttl
`)

type historyLog struct {
	store  *cache.Store
	length int
}

func (h historyLog) record(ctx context.Context, channel string, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	_, err = h.store.Run(ctx, publishScript,
		[]string{cache.MetaKey(env.RoomID), cache.HistoryKey(env.RoomID)},
		channel, string(data), h.length,
	)
	return err
}

func (h historyLog) list(ctx context.Context, roomID string) ([]Envelope, error) {
	raw, err := h.store.ListRange(ctx, cache.HistoryKey(roomID), 0, -1)
	if err != nil {
		return nil, err
	}

	envelopes := make([]Envelope, 0, len(raw))
	for _, item := range raw {
		var env Envelope
		if err := json.Unmarshal([]byte(item), &env); err != nil {
			continue
		}
		envelopes = append(envelopes, env)
	}
	return envelopes, nil
}
