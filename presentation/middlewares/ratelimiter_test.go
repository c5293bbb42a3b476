package middlewares

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hilthontt/ephemera/infrastructure/logger"
)

func TestRateLimiterMiddleware_BlocksAfterLimit(t *testing.T) {
	_, client, _ := newRoomUseCase(t)

	cfg := RateLimiterConfig{Scope: "test", RequestsPerWindow: 3, Window: time.Minute, BlockDuration: time.Minute}
	router := gin.New()
	router.GET("/limited", RateLimiterMiddleware(client, logger.NewNop(), cfg), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		if w := doRequest(router, http.MethodGet, "/limited", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
	}

	w := doRequest(router, http.MethodGet, "/limited", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("4th request status = %d, want 429", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/limited", "")
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") == "" {
		t.Errorf("blocked request = %d with Retry-After %q, want 429 with header", w.Code, w.Header().Get("Retry-After"))
	}
}

func TestRateLimiterMiddleware_FailsOpen(t *testing.T) {
	_, client, mr := newRoomUseCase(t)
	mr.Close()

	router := gin.New()
	router.GET("/limited", RateLimiterMiddleware(client, logger.NewNop(), LenientRateLimiterConfig()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	if w := doRequest(router, http.MethodGet, "/limited", ""); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when store is down", w.Code)
	}
}
