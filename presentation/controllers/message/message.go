package message

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hilthontt/ephemera/application/usecases/message"
	"github.com/hilthontt/ephemera/presentation/httperr"
	"github.com/hilthontt/ephemera/presentation/middlewares"
)

type MessageController interface {
	SendMessage(ctx *gin.Context)
	ListMessages(ctx *gin.Context)
}

type messageController struct {
	usecase message.MessageUseCase
}

func NewMessageController(usecase message.MessageUseCase) MessageController {
	return &messageController{
		usecase: usecase,
	}
}

func (c *messageController) SendMessage(ctx *gin.Context) {
	var req SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		httperr.AbortInvalid(ctx, middlewares.TranslateValidationError(err))
		return
	}

	sent, err := c.usecase.Send(ctx.Request.Context(),
		middlewares.GetRoomIDFromContext(ctx),
		req.Sender,
		req.Text,
		middlewares.GetTokenFromContext(ctx),
	)
	if err != nil {
		httperr.Abort(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, sent)
}

func (c *messageController) ListMessages(ctx *gin.Context) {
	var query ListMessagesQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		httperr.AbortInvalid(ctx, middlewares.TranslateValidationError(err))
		return
	}

	page, err := c.usecase.List(ctx.Request.Context(),
		middlewares.GetRoomIDFromContext(ctx),
		query.Limit,
		query.Offset,
		middlewares.GetTokenFromContext(ctx),
	)
	if err != nil {
		httperr.Abort(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, page)
}
