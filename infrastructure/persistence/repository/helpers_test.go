package repository

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hilthontt/ephemera/infrastructure/cache"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace/noop"
)

var testTracer = noop.NewTracerProvider().Tracer("repository_test")

func newTestStore(t *testing.T) (*cache.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewStore(client), mr
}
