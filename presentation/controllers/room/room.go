package room

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hilthontt/ephemera/application/usecases/room"
	"github.com/hilthontt/ephemera/infrastructure/security"
	"github.com/hilthontt/ephemera/presentation/httperr"
	"github.com/hilthontt/ephemera/presentation/middlewares"
)

type RoomController interface {
	CreateRoom(ctx *gin.Context)
	GetTTL(ctx *gin.Context)
	DestroyRoom(ctx *gin.Context)
	EnterRoom(ctx *gin.Context)
}

type roomController struct {
	usecase      room.RoomUseCase
	secureCookie bool
}

func NewRoomController(usecase room.RoomUseCase, secureCookie bool) RoomController {
	return &roomController{
		usecase:      usecase,
		secureCookie: secureCookie,
	}
}

func (c *roomController) CreateRoom(ctx *gin.Context) {
	created, err := c.usecase.Create(ctx.Request.Context(), ctx.Query("ttl"))
	if err != nil {
		httperr.Abort(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, CreateRoomResponse{RoomID: created.ID})
}

// GetTTL needs no membership: it only reveals whether an id is alive.
func (c *roomController) GetTTL(ctx *gin.Context) {
	roomID := ctx.Query("roomId")
	if roomID == "" {
		httperr.AbortInvalid(ctx, "roomId is required")
		return
	}

	ttl, err := c.usecase.RemainingTTL(ctx.Request.Context(), roomID)
	if err != nil {
		httperr.Abort(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, TTLResponse{TTL: toSeconds(ttl)})
}

func (c *roomController) DestroyRoom(ctx *gin.Context) {
	roomID := middlewares.GetRoomIDFromContext(ctx)

	if err := c.usecase.Destroy(ctx.Request.Context(), roomID); err != nil {
		httperr.Abort(ctx, err)
		return
	}

	security.ClearAuthToken(ctx.Writer, c.secureCookie)
	ctx.JSON(http.StatusOK, MessageResponse{Message: "room destroyed"})
}

// EnterRoom runs behind the admission gateway.
func (c *roomController) EnterRoom(ctx *gin.Context) {
	roomID := middlewares.GetRoomIDFromContext(ctx)
	admission, _ := middlewares.GetAdmissionFromContext(ctx)

	ttl, err := c.usecase.RemainingTTL(ctx.Request.Context(), roomID)
	if err != nil {
		httperr.Abort(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, EnterRoomResponse{
		RoomID:  roomID,
		TTL:     toSeconds(ttl),
		Members: admission.Members,
	})
}

// toSeconds rounds up so a live room never reports zero.
func toSeconds(ttl time.Duration) int64 {
	return int64(math.Ceil(ttl.Seconds()))
}
