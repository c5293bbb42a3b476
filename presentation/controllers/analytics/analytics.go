package analytics

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hilthontt/ephemera/application/usecases/analytics"
	"github.com/hilthontt/ephemera/presentation/httperr"
)

type AnalyticsController interface {
	Summary(ctx *gin.Context)
}

type analyticsController struct {
	usecase analytics.AnalyticsUseCase
}

func NewAnalyticsController(usecase analytics.AnalyticsUseCase) AnalyticsController {
	return &analyticsController{usecase: usecase}
}

func (c *analyticsController) Summary(ctx *gin.Context) {
	summary, err := c.usecase.Summary(ctx.Request.Context())
	if err != nil {
		httperr.Abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}
