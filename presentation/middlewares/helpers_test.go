package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/hilthontt/ephemera/application/usecases/analytics"
	roomUseCase "github.com/hilthontt/ephemera/application/usecases/room"
	"github.com/hilthontt/ephemera/infrastructure/cache"
	"github.com/hilthontt/ephemera/infrastructure/config"
	"github.com/hilthontt/ephemera/infrastructure/events"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"github.com/hilthontt/ephemera/infrastructure/metrics"
	"github.com/hilthontt/ephemera/infrastructure/persistence/repository"
	"github.com/hilthontt/ephemera/infrastructure/security"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRoomUseCase(t *testing.T) (roomUseCase.RoomUseCase, *redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := cache.NewStore(client)
	rooms := repository.NewRoomRepository(store, 2, tracenoop.NewTracerProvider().Tracer("test"))
	broadcaster := events.NewRedisBroadcaster(store, "realtime:", 10, logger.NewNop())
	mgr := metrics.NewMetricsManager(noop.NewMeterProvider().Meter("test"), logger.NewNop())
	cfg := config.RoomConfig{Capacity: 2, DefaultTTLSeconds: 600, AllowedTTLSeconds: []int{600}}

	uc := roomUseCase.NewRoomUseCase(rooms, broadcaster, analytics.NewDisabledAnalyticsUseCase(), mgr, cfg, logger.NewNop())
	return uc, client, mr
}

func doRequest(router http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: security.AuthTokenCookie, Value: token})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func tokenFrom(w *httptest.ResponseRecorder) string {
	for _, c := range w.Result().Cookies() {
		if c.Name == security.AuthTokenCookie {
			return c.Value
		}
	}
	return ""
}
