package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/ephemera/infrastructure/events"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"github.com/hilthontt/ephemera/infrastructure/metrics"
	"go.opentelemetry.io/otel/metric/noop"
)

type fakeBroadcaster struct {
	stream       chan events.Envelope
	history      []events.Envelope
	historyDelay time.Duration
}

func (f *fakeBroadcaster) Publish(ctx context.Context, roomID string, event events.EventType, payload any) error {
	env, err := events.NewEnvelope(roomID, event, payload)
	if err != nil {
		return err
	}
	f.stream <- env
	return nil
}

func (f *fakeBroadcaster) Subscribe(ctx context.Context) (<-chan events.Envelope, error) {
	return f.stream, nil
}

func (f *fakeBroadcaster) History(ctx context.Context, roomID string) ([]events.Envelope, error) {
	select {
	case <-time.After(f.historyDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var out []events.Envelope
	for _, env := range f.history {
		if env.RoomID == roomID {
			out = append(out, env)
		}
	}
	return out, nil
}

func startCore(t *testing.T) (*Core, *fakeBroadcaster, *httptest.Server) {
	t.Helper()
	return startCoreWith(t, &fakeBroadcaster{stream: make(chan events.Envelope, 8)})
}

func startCoreWith(t *testing.T, fb *fakeBroadcaster) (*Core, *fakeBroadcaster, *httptest.Server) {
	t.Helper()

	mgr := metrics.NewMetricsManager(noop.NewMeterProvider().Meter("test"), logger.NewNop())
	core := NewCore(NewRoomManager(), fb, mgr, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go core.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := core.RoomManager().Upgrade(w, r)
		if err != nil {
			return
		}
		cl := NewClient(conn, r.URL.Query().Get("id"), r.URL.Query().Get("roomId"), ClientOptions{}, logger.NewNop())
		if !core.Join(cl) {
			cl.Close()
			return
		}
		go cl.WriteMessage()
		cl.ReadMessage(core)
	}))
	t.Cleanup(srv.Close)

	return core, fb, srv
}

func dial(t *testing.T, srv *httptest.Server, id, roomID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?id=" + id + "&roomId=" + roomID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, core *Core, roomID string, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if core.RoomManager().ClientCount(roomID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("ClientCount(%s) never reached %d", roomID, want)
}

func TestCore_DeliversOnlyToRoom(t *testing.T) {
	core, fb, srv := startCore(t)

	a := dial(t, srv, "a", "r1")
	b := dial(t, srv, "b", "r2")
	waitForClients(t, core, "r1", 1)
	waitForClients(t, core, "r2", 1)

	if err := fb.Publish(context.Background(), "r1", events.EventMessage, map[string]string{"text": "hi"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	_ = a.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env events.Envelope
	if err := a.ReadJSON(&env); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if env.Event != events.EventMessage || env.RoomID != "r1" {
		t.Errorf("envelope = %+v, want chat.message for r1", env)
	}

	_ = b.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if err := b.ReadJSON(&env); err == nil {
		t.Errorf("client in r2 received %+v", env)
	}
}

func TestCore_DestroyClosesAfterDelivery(t *testing.T) {
	core, fb, srv := startCore(t)

	conn := dial(t, srv, "a", "r1")
	waitForClients(t, core, "r1", 1)

	if err := fb.Publish(context.Background(), "r1", events.EventDestroy, events.DestroyPayload{IsDestroyed: true}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env events.Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if env.Event != events.EventDestroy {
		t.Errorf("event = %s, want chat.destroy", env.Event)
	}

	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("err = %v, want normal closure", err)
	}
	waitForClients(t, core, "r1", 0)
}

func mustEnvelope(t *testing.T, roomID string, event events.EventType, payload any) events.Envelope {
	t.Helper()
	env, err := events.NewEnvelope(roomID, event, payload)
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}
	return env
}

func readEnvelopes(t *testing.T, conn *websocket.Conn, wait time.Duration) []events.Envelope {
	t.Helper()

	var got []events.Envelope
	for {
		_ = conn.SetReadDeadline(time.Now().Add(wait))
		var env events.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return got
		}
		got = append(got, env)
	}
}

func TestCore_ReplaysHistoryBeforeLiveWithoutDuplicates(t *testing.T) {
	old := mustEnvelope(t, "r1", events.EventMessage, map[string]string{"text": "old"})
	live := mustEnvelope(t, "r1", events.EventMessage, map[string]string{"text": "live"})

	fb := &fakeBroadcaster{
		stream:       make(chan events.Envelope, 8),
		history:      []events.Envelope{old, live},
		historyDelay: 200 * time.Millisecond,
	}
	core, _, srv := startCoreWith(t, fb)

	conn := dial(t, srv, "a", "r1")
	waitForClients(t, core, "r1", 1)

	// Arrives while the history read is still in flight.
	fb.stream <- live
	later := mustEnvelope(t, "r1", events.EventMessage, map[string]string{"text": "later"})
	fb.stream <- later

	got := readEnvelopes(t, conn, 500*time.Millisecond)

	want := []string{old.ID, live.ID, later.ID}
	if len(got) != len(want) {
		t.Fatalf("received %d envelopes, want %d: %+v", len(got), len(want), got)
	}
	for i, env := range got {
		if env.ID != want[i] {
			t.Errorf("envelope %d = %s, want %s", i, env.ID, want[i])
		}
	}
}

func TestCore_DestroyDuringReplayStillDelivered(t *testing.T) {
	old := mustEnvelope(t, "r1", events.EventMessage, map[string]string{"text": "old"})

	fb := &fakeBroadcaster{
		stream:       make(chan events.Envelope, 8),
		history:      []events.Envelope{old},
		historyDelay: 200 * time.Millisecond,
	}
	core, _, srv := startCoreWith(t, fb)

	conn := dial(t, srv, "a", "r1")
	waitForClients(t, core, "r1", 1)

	if err := fb.Publish(context.Background(), "r1", events.EventDestroy, events.DestroyPayload{IsDestroyed: true}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first, second events.Envelope
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if first.ID != old.ID || second.Event != events.EventDestroy {
		t.Errorf("got %s then %s, want history then chat.destroy", first.Event, second.Event)
	}

	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("err = %v, want normal closure", err)
	}
}
