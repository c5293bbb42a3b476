package metrics

import (
	"context"
	"testing"

	"github.com/hilthontt/ephemera/infrastructure/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestManager_RecordRegisteredAndUnknown(t *testing.T) {
	m := NewMetricsManager(noop.NewMeterProvider().Meter("test"), logger.NewNop())
	RegisterDefaults(m)

	ctx := context.Background()
	// none of these may panic, registered or not
	m.IncrementCounter(ctx, RoomsCreated)
	m.IncrementCounter(ctx, RoomAdmissions, "status", "admitted")
	m.RecordHistogram(ctx, HTTPRequestDuration, 0.02, "path", "/health")
	m.DeltaUpDownCounter(ctx, ActiveWebsockets, 1)
	m.SetGauge("app_go_routines", 10)
	m.IncrementCounter(ctx, "does_not_exist")
}

func TestToAttributes(t *testing.T) {
	got := toAttributes([]string{"a", "1", "b", "2", "dangling"})
	want := []attribute.KeyValue{attribute.String("a", "1"), attribute.String("b", "2")}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("attr[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
