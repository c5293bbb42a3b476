package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/hilthontt/ephemera/presentation/controllers/message"
)

func MessageRoutes(router *gin.RouterGroup, controller message.MessageController, membership, sendLimiter gin.HandlerFunc) {
	messages := router.Group("/messages")
	messages.Use(membership)
	{
		messages.POST("", sendLimiter, controller.SendMessage)
		messages.GET("", controller.ListMessages)
	}
}
