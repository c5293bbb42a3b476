package realtime

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hilthontt/ephemera/infrastructure/events"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"github.com/hilthontt/ephemera/infrastructure/websocket"
	"github.com/hilthontt/ephemera/presentation/httperr"
	"github.com/hilthontt/ephemera/presentation/middlewares"
	"go.uber.org/zap"
)

type RealtimeController interface {
	Connect(ctx *gin.Context)
	History(ctx *gin.Context)
}

type realtimeController struct {
	core        *websocket.Core
	broadcaster events.Broadcaster
	opts        websocket.ClientOptions
	logger      *logger.Logger
}

func NewRealtimeController(
	core *websocket.Core,
	broadcaster events.Broadcaster,
	opts websocket.ClientOptions,
	logger *logger.Logger,
) RealtimeController {
	return &realtimeController{
		core:        core,
		broadcaster: broadcaster,
		opts:        opts,
		logger:      logger,
	}
}

func (c *realtimeController) Connect(ctx *gin.Context) {
	roomID := middlewares.GetRoomIDFromContext(ctx)

	conn, err := c.core.RoomManager().Upgrade(ctx.Writer, ctx.Request)
	if err != nil {
		// Upgrade has already written the HTTP error.
		c.logger.Warn("websocket upgrade failed", zap.Error(err), zap.String("roomID", roomID))
		return
	}

	client := websocket.NewClient(conn, uuid.NewString(), roomID, c.opts, c.logger)
	if !c.core.Join(client) {
		client.Close()
		return
	}

	go client.WriteMessage()
	client.ReadMessage(c.core)
}

type HistoryResponse struct {
	Events []events.Envelope `json:"events"`
}

func (c *realtimeController) History(ctx *gin.Context) {
	history, err := c.broadcaster.History(ctx.Request.Context(), middlewares.GetRoomIDFromContext(ctx))
	if err != nil {
		httperr.Abort(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, HistoryResponse{Events: history})
}
