package websocket

import (
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorilla/websocket"
	"github.com/hilthontt/ephemera/infrastructure/events"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	maxInboundFrame = 512
	pingInterval    = 30 * time.Second
)

type ClientOptions struct {
	BufferSize   int
	WriteTimeout time.Duration
	PongTimeout  time.Duration
}

// Client is one realtime connection. It only receives; participants send
// messages over HTTP.
type Client struct {
	conn    *websocket.Conn
	Message chan events.Envelope
	ID      string `json:"id"`
	RoomID  string `json:"roomId"`

	opts   ClientOptions
	logger *logger.Logger

	closeOnce sync.Once
	closed    chan struct{}
	drainOnce sync.Once
	drain     chan struct{}
	mu        sync.Mutex

	// Until the history replay is done, live envelopes wait in pending so the
	// client sees history first and nothing twice.
	replayMu     sync.Mutex
	replaying    bool
	pending      []events.Envelope
	drainPending bool
}

func NewClient(conn *websocket.Conn, id, roomID string, opts ClientOptions, logger *logger.Logger) *Client {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 64
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.PongTimeout <= 0 {
		opts.PongTimeout = 60 * time.Second
	}

	return &Client{
		conn:      conn,
		Message:   make(chan events.Envelope, opts.BufferSize),
		ID:        id,
		RoomID:    roomID,
		opts:      opts,
		logger:    logger.With(zap.String("clientID", id), zap.String("roomID", roomID)),
		closed:    make(chan struct{}),
		drain:     make(chan struct{}),
		replaying: true,
	}
}

// Send queues env without blocking. It reports false when the client is
// closed or its buffer is full.
func (c *Client) Send(env events.Envelope) bool {
	select {
	case <-c.closed:
		return false
	default:
	}

	c.replayMu.Lock()
	defer c.replayMu.Unlock()

	if c.replaying {
		if len(c.pending) >= cap(c.Message) {
			return false
		}
		c.pending = append(c.pending, env)
		return true
	}
	return c.enqueue(env)
}

func (c *Client) enqueue(env events.Envelope) bool {
	select {
	case c.Message <- env:
		return true
	default:
		return false
	}
}

// finishReplay queues history, then the live envelopes held back while it
// was loading, skipping any already present in history.
func (c *Client) finishReplay(history []events.Envelope) {
	c.replayMu.Lock()
	defer c.replayMu.Unlock()

	if !c.replaying {
		return
	}

	if size := cap(c.Message); len(history) > size {
		history = history[len(history)-size:]
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	for _, env := range history {
		seen.Add(env.ID)
		c.enqueue(env)
	}
	for _, env := range c.pending {
		if seen.Contains(env.ID) {
			continue
		}
		c.enqueue(env)
	}

	c.pending = nil
	c.replaying = false

	if c.drainPending {
		c.drainOnce.Do(func() { close(c.drain) })
	}
}

// CloseAfterDrain lets the writer flush what is already queued, then closes.
func (c *Client) CloseAfterDrain() {
	c.replayMu.Lock()
	defer c.replayMu.Unlock()

	if c.replaying {
		c.drainPending = true
		return
	}
	c.drainOnce.Do(func() { close(c.drain) })
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.mu.Lock()
		_ = c.conn.Close()
		c.mu.Unlock()
	})
}

func (c *Client) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// ReadMessage consumes control frames until the peer goes away. Inbound data
// frames are discarded.
func (c *Client) ReadMessage(core *Core) {
	defer func() {
		core.Leave(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxInboundFrame)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("ws read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) WriteMessage() {
	defer c.Close()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case env := <-c.Message:
			if err := c.write(env); err != nil {
				c.logger.Warn("ws write error", zap.Error(err))
				return
			}

		case <-c.drain:
			c.flush()
			c.writeClose(websocket.CloseNormalClosure, "room destroyed")
			return

		case <-ticker.C:
			c.mu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.mu.Unlock()

			if err != nil {
				c.logger.Debug("ping error", zap.Error(err))
				return
			}

		case <-c.closed:
			return
		}
	}
}

func (c *Client) write(env events.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	return c.conn.WriteJSON(env)
}

func (c *Client) flush() {
	for {
		select {
		case env := <-c.Message:
			if err := c.write(env); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) writeClose(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}
