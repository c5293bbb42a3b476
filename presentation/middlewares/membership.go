package middlewares

import (
	"github.com/gin-gonic/gin"
	roomUseCase "github.com/hilthontt/ephemera/application/usecases/room"
	"github.com/hilthontt/ephemera/domain/model"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"github.com/hilthontt/ephemera/infrastructure/security"
	"github.com/hilthontt/ephemera/presentation/httperr"
	"go.uber.org/zap"
)

// MembershipMiddleware protects room-scoped API routes addressed by the
// roomId query parameter. An absent room is 404; a missing or foreign token is 401.
func MembershipMiddleware(roomUC roomUseCase.RoomUseCase, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Query("roomId")
		if roomID == "" {
			httperr.AbortInvalid(c, "roomId is required")
			return
		}

		room, err := roomUC.Get(c.Request.Context(), roomID)
		if err != nil {
			httperr.Abort(c, err)
			return
		}

		token := security.GetAuthToken(c.Request)
		if !room.IsMember(token) {
			logger.Debug("membership rejected",
				zap.String("roomID", roomID),
				zap.Bool("tokenPresented", token != ""),
			)
			httperr.Abort(c, model.ErrUnauthorized)
			return
		}

		c.Set(RoomIDContextKey, roomID)
		c.Set(TokenContextKey, token)
		c.Next()
	}
}

func GetRoomIDFromContext(c *gin.Context) string {
	return c.GetString(RoomIDContextKey)
}

func GetTokenFromContext(c *gin.Context) string {
	return c.GetString(TokenContextKey)
}
