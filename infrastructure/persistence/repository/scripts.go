package repository

import "github.com/redis/go-redis/v9"

// createRoomScript writes the metadata hash and its expiry in one step.
// Returns 0 when the id is already taken.
var createRoomScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], 'connected', '[]', 'createdAt', ARGV[1], 'ttlSeconds', ARGV[2])
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[2]))
return 1
`)

// admitScript is the membership state transition. The size check and the
// token insertion happen together; the key's TTL is left untouched.
//
// KEYS[1] meta hash; ARGV[1] presented token (may be empty);
// ARGV[2] candidate token; ARGV[3] capacity.
// Returns {status, token, members} where status follows model.AdmissionStatus.
var admitScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {3, '', 0}
end

local connected = {}
local raw = redis.call('HGET', KEYS[1], 'connected')
if raw and raw ~= '' then
  connected = cjson.decode(raw)
end

local presented = ARGV[1]
if presented ~= '' then
  for _, token in ipairs(connected) do
    if token == presented then
      return {1, presented, #connected}
    end
  end
end

if #connected >= tonumber(ARGV[3]) then
  return {2, '', #connected}
end

table.insert(connected, ARGV[2])
redis.call('HSET', KEYS[1], 'connected', cjson.encode(connected))
return {0, ARGV[2], #connected}
`)

// syncTTLScript copies the metadata's remaining lifetime onto every sibling
// key that exists. Returns the PTTL that was applied (or -2/-1 from PTTL).
var syncTTLScript = redis.NewScript(`
local ttl = redis.call('PTTL', KEYS[1])
if ttl <= 0 then
  return ttl
end
for i = 2, #KEYS do
  if redis.call('EXISTS', KEYS[i]) == 1 then
    redis.call('PEXPIRE', KEYS[i], ttl)
  end
end
return ttl
`)

// appendMessageScript refuses to write when the room metadata is gone, so an
// append racing with expiry never recreates a room's history on its own.
// Returns the new list length, or -1 when the room does not exist.
var appendMessageScript = redis.NewScript(`
local ttl = redis.call('PTTL', KEYS[1])
if ttl == -2 then
  return -1
end
local n = redis.call('RPUSH', KEYS[2], ARGV[1])
if ttl > 0 then
  redis.call('PEXPIRE', KEYS[2], ttl)
end
return n
`)
