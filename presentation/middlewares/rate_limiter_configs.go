package middlewares

import "time"

// RoomCreationRateLimiterConfig guards room creation, the only unauthenticated write.
func RoomCreationRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Scope:             "create",
		RequestsPerWindow: 10,
		Window:            time.Minute,
		BlockDuration:     time.Minute * 15,
	}
}

// MessageSendingRateLimiterConfig for message sending
func MessageSendingRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Scope:             "send",
		RequestsPerWindow: 30,
		Window:            time.Minute,
		BlockDuration:     time.Minute * 10,
	}
}

// LenientRateLimiterConfig for read-heavy endpoints such as ttl polling
func LenientRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Scope:             "read",
		RequestsPerWindow: 200,
		Window:            time.Minute,
		BlockDuration:     time.Minute * 2,
	}
}
