package dependency

import (
	"context"

	"github.com/hilthontt/ephemera/infrastructure/websocket"
)

func (c *Container) initWebSocket() {
	c.WSRoomManager = websocket.NewRoomManager()
	c.WSCore = websocket.NewCore(c.WSRoomManager, c.Broadcaster, c.MetricsManager, c.Logger)

	c.ctx, c.cancel = context.WithCancel(context.Background())

	go c.WSCore.Run(c.ctx)

	c.Logger.Info("WebSocket components initialized successfully")
}

func (c *Container) clientOptions() websocket.ClientOptions {
	return websocket.ClientOptions{
		BufferSize:   c.Config.Realtime.ClientBufferSz,
		WriteTimeout: c.Config.Realtime.WriteTimeout,
		PongTimeout:  c.Config.Realtime.PongTimeout,
	}
}
