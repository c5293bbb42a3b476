package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/hilthontt/ephemera/presentation/controllers/realtime"
)

func RealtimeRoutes(router *gin.RouterGroup, controller realtime.RealtimeController, membership gin.HandlerFunc) {
	rt := router.Group("/realtime")
	rt.Use(membership)
	{
		rt.GET("", controller.Connect)
		rt.GET("/history", controller.History)
	}
}
