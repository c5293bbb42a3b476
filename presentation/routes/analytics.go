package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/hilthontt/ephemera/presentation/controllers/analytics"
)

func AnalyticsRoutes(router *gin.RouterGroup, controller analytics.AnalyticsController) {
	router.GET("/analytics", controller.Summary)
}
