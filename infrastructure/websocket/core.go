package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hilthontt/ephemera/infrastructure/events"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"github.com/hilthontt/ephemera/infrastructure/metrics"
	"go.uber.org/zap"
)

const resubscribeDelay = time.Second

// Core relays broadcaster events to the clients connected to this node.
type Core struct {
	roomMgr     *RoomManager
	register    chan *Client
	unregister  chan *Client
	broadcaster events.Broadcaster
	metrics     metrics.Manager
	logger      *logger.Logger

	shutdown chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

func NewCore(roomMgr *RoomManager, broadcaster events.Broadcaster, metrics metrics.Manager, logger *logger.Logger) *Core {
	return &Core{
		roomMgr:     roomMgr,
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcaster: broadcaster,
		metrics:     metrics,
		logger:      logger,
		shutdown:    make(chan struct{}),
	}
}

func (c *Core) Run(ctx context.Context) {
	defer c.wg.Wait()

	stream := c.subscribe(ctx)
	var retry <-chan time.Time
	if stream == nil {
		retry = time.After(resubscribeDelay)
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("realtime core shutting down")
			c.Shutdown()
			return

		case <-c.shutdown:
			return

		case cl := <-c.register:
			// Registered before replay so nothing published meanwhile is lost;
			// the client holds live envelopes until replay is done.
			c.roomMgr.AddClient(cl)
			c.metrics.DeltaUpDownCounter(ctx, metrics.ActiveWebsockets, 1)

			c.wg.Add(1)
			go func(client *Client) {
				defer c.wg.Done()
				c.replayHistory(ctx, client)
			}(cl)

		case cl := <-c.unregister:
			c.roomMgr.RemoveClient(cl)
			c.metrics.DeltaUpDownCounter(ctx, metrics.ActiveWebsockets, -1)

		case <-retry:
			retry = nil
			if stream = c.subscribe(ctx); stream == nil {
				retry = time.After(resubscribeDelay)
			}

		case env, ok := <-stream:
			if !ok {
				c.logger.Warn("realtime stream closed, resubscribing")
				stream = nil
				retry = time.After(resubscribeDelay)
				continue
			}
			c.deliver(ctx, env)
		}
	}
}

func (c *Core) deliver(ctx context.Context, env events.Envelope) {
	dropped, err := c.roomMgr.BroadcastToRoom(env)
	if errors.Is(err, ErrRoomNotFound) {
		return
	}
	if dropped > 0 {
		c.logger.Warn("client buffers full, envelopes dropped",
			zap.String("roomID", env.RoomID),
			zap.Int("dropped", dropped),
		)
		for i := 0; i < dropped; i++ {
			c.metrics.IncrementCounter(ctx, metrics.RealtimeDropped)
		}
	}

	if env.Event == events.EventDestroy {
		c.roomMgr.CloseRoom(env.RoomID)
	}
}

func (c *Core) subscribe(ctx context.Context) <-chan events.Envelope {
	stream, err := c.broadcaster.Subscribe(ctx)
	if err != nil {
		c.logger.Error("failed to subscribe to realtime events", zap.Error(err))
		return nil
	}
	return stream
}

func (c *Core) replayHistory(ctx context.Context, cl *Client) {
	var replay []events.Envelope
	defer func() { cl.finishReplay(replay) }()

	if cl.IsClosed() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	history, err := c.broadcaster.History(ctx, cl.RoomID)
	if err != nil {
		c.logger.Warn("failed to load realtime history",
			zap.String("roomID", cl.RoomID),
			zap.Error(err),
		)
		return
	}

	for _, env := range history {
		if env.Event == events.EventMessage {
			replay = append(replay, env)
		}
	}
}

// Join registers cl for delivery. It reports false once the core has stopped.
func (c *Core) Join(cl *Client) bool {
	select {
	case c.register <- cl:
		return true
	case <-c.shutdown:
		return false
	}
}

func (c *Core) Leave(cl *Client) {
	select {
	case c.unregister <- cl:
	case <-c.shutdown:
	}
}

func (c *Core) RoomManager() *RoomManager {
	return c.roomMgr
}

func (c *Core) Shutdown() {
	c.once.Do(func() {
		close(c.shutdown)
		c.roomMgr.DisconnectAll()
	})
}
