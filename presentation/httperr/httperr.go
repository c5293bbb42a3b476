package httperr

import (
	"errors"
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/hilthontt/ephemera/domain/model"
)

const (
	CodeRoomNotFound     = "room-not-found"
	CodeRoomFull         = "room-full"
	CodeInvalidRequest   = "invalid_request"
	CodeStoreUnavailable = "store_unavailable"
	CodeUnauthorized     = "unauthorized"
	CodeInternal         = "internal_server_error"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Classify maps a domain error to its HTTP status and error code.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalid):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, model.ErrRoomNotFound):
		return http.StatusNotFound, CodeRoomNotFound
	case errors.Is(err, model.ErrRoomFull):
		return http.StatusConflict, CodeRoomFull
	case errors.Is(err, model.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, CodeStoreUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

var publicMessages = map[string]string{
	CodeRoomNotFound:     "Room does not exist or has expired",
	CodeRoomFull:         "Room is full",
	CodeStoreUnavailable: "Service temporarily unavailable, please retry",
	CodeUnauthorized:     "Missing or invalid room membership",
	CodeInternal:         "An unexpected error occurred",
}

// Abort writes the JSON error for err and stops the handler chain. Server
// faults are attached to the request and reported to Sentry when a hub is set.
func Abort(c *gin.Context, err error) {
	status, code := Classify(err)

	message, ok := publicMessages[code]
	if !ok {
		message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: message})
}

// AbortInvalid rejects malformed input with a caller-facing message.
func AbortInvalid(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: CodeInvalidRequest, Message: message})
}
