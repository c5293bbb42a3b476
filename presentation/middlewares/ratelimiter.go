package middlewares

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RateLimiterConfig struct {
	// Scope separates counters of differently limited route groups.
	Scope             string
	RequestsPerWindow int
	Window            time.Duration
	BlockDuration     time.Duration
}

// rateLimitScript keeps a sliding window of request timestamps per key.
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local expiry = tonumber(ARGV[4])
local member = ARGV[1] .. '-' .. ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local currentCount = redis.call('ZCARD', key)

redis.call('ZADD', key, now, member)
redis.call('EXPIRE', key, expiry)

local remaining = math.max(limit - currentCount - 1, 0)
local allowed = currentCount < limit

return {allowed and 1 or 0, remaining}
`)

// checkBlockScript returns {1, ttlSeconds} for a blocked key, {0, 0} otherwise.
var checkBlockScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {0, 0}
end
return {1, redis.call('TTL', KEYS[1])}
`)

// RateLimiterMiddleware limits requests per client IP. Store failures let the
// request through; the limiter never becomes a second point of failure.
func RateLimiterMiddleware(client redis.UniversalClient, logger *logger.Logger, config RateLimiterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		clientIP := c.ClientIP()
		limit := strconv.Itoa(config.RequestsPerWindow)

		blocked, ttl, err := isBlocked(ctx, client, config.Scope, clientIP)
		if err != nil {
			logger.Error("failed to check if client is blocked", zap.Error(err), zap.String("ip", clientIP))
			c.Next()
			return
		}

		if blocked {
			c.Header("X-RateLimit-Limit", limit)
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))
			c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limit_exceeded",
				"message":     "Too many requests. You have been temporarily blocked.",
				"retry_after": int(ttl.Seconds()),
			})
			return
		}

		allowed, remaining, err := checkRateLimit(ctx, client, clientIP, config)
		if err != nil {
			logger.Error("failed to check rate limit", zap.Error(err), zap.String("ip", clientIP))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(config.Window).Unix(), 10))

		if !allowed {
			if err := client.Set(ctx, blockKey(config.Scope, clientIP), "1", config.BlockDuration).Err(); err != nil {
				logger.Error("failed to block client", zap.Error(err), zap.String("ip", clientIP))
			}

			logger.Warn("rate limit exceeded",
				zap.String("ip", clientIP),
				zap.String("scope", config.Scope),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", strconv.Itoa(int(config.BlockDuration.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limit_exceeded",
				"message":     fmt.Sprintf("Rate limit exceeded. Maximum %d requests per %v.", config.RequestsPerWindow, config.Window),
				"retry_after": int(config.BlockDuration.Seconds()),
			})
			return
		}

		c.Next()
	}
}

func blockKey(scope, clientIP string) string {
	return fmt.Sprintf("ratelimit:block:%s:%s", scope, clientIP)
}

func isBlocked(ctx context.Context, client redis.UniversalClient, scope, clientIP string) (bool, time.Duration, error) {
	result, err := checkBlockScript.Run(ctx, client, []string{blockKey(scope, clientIP)}).Int64Slice()
	if err != nil {
		return false, 0, err
	}
	return result[0] == 1, time.Duration(result[1]) * time.Second, nil
}

func checkRateLimit(ctx context.Context, client redis.UniversalClient, clientIP string, config RateLimiterConfig) (bool, int, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", config.Scope, clientIP)
	now := time.Now()

	result, err := rateLimitScript.Run(ctx, client,
		[]string{key},
		now.UnixMicro(),
		config.Window.Microseconds(),
		config.RequestsPerWindow,
		int(config.Window.Seconds())+60,
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script failed: %w", err)
	}

	return result[0] == 1, int(result[1]), nil
}
