package middlewares

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"

	"github.com/gin-gonic/gin"
	roomUseCase "github.com/hilthontt/ephemera/application/usecases/room"
	"github.com/hilthontt/ephemera/domain/model"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"github.com/hilthontt/ephemera/infrastructure/security"
	"github.com/hilthontt/ephemera/presentation/httperr"
	"go.uber.org/zap"
)

const (
	AdmissionContextKey = "admission"
	RoomIDContextKey    = "roomID"
	TokenContextKey     = "authToken"
)

var roomPathPattern = regexp.MustCompile(`^/room/([^/]+)$`)

type GatewayConfig struct {
	LobbyPath    string
	SecureCookie bool
}

// AdmissionGateway guards room pages. It admits the caller (or recognises an
// existing member), sets the membership cookie, and redirects to the lobby
// when the room is missing or full.
func AdmissionGateway(roomUC roomUseCase.RoomUseCase, cfg GatewayConfig, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		match := roomPathPattern.FindStringSubmatch(c.Request.URL.Path)
		if match == nil {
			redirectToLobby(c, cfg.LobbyPath, "")
			return
		}
		roomID := match[1]

		admission, err := roomUC.Admit(c.Request.Context(), roomID, security.GetAuthToken(c.Request))
		switch {
		case errors.Is(err, model.ErrRoomNotFound):
			redirectToLobby(c, cfg.LobbyPath, httperr.CodeRoomNotFound)
			return
		case errors.Is(err, model.ErrRoomFull):
			redirectToLobby(c, cfg.LobbyPath, httperr.CodeRoomFull)
			return
		case err != nil:
			logger.Error("admission gateway failed", zap.Error(err), zap.String("roomID", roomID))
			httperr.Abort(c, err)
			return
		}

		if admission.Status == model.Admitted {
			security.SetAuthToken(c.Writer, admission.Token, cfg.SecureCookie)
		}

		c.Set(RoomIDContextKey, roomID)
		c.Set(TokenContextKey, admission.Token)
		c.Set(AdmissionContextKey, admission)
		c.Next()
	}
}

func redirectToLobby(c *gin.Context, lobbyPath, code string) {
	target := lobbyPath
	if code != "" {
		target += "?" + url.Values{"error": {code}}.Encode()
	}
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

func GetAdmissionFromContext(c *gin.Context) (model.Admission, bool) {
	value, exists := c.Get(AdmissionContextKey)
	if !exists {
		return model.Admission{}, false
	}
	admission, ok := value.(model.Admission)
	return admission, ok
}
