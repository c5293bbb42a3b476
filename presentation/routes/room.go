package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/hilthontt/ephemera/presentation/controllers/room"
)

// RoomPageRoutes mounts the gated room page. The gateway runs before the
// controller and redirects to the lobby on refusal.
func RoomPageRoutes(router gin.IRouter, controller room.RoomController, gateway gin.HandlerFunc) {
	router.GET("/room/*path", gateway, controller.EnterRoom)
}

func RoomRoutes(router *gin.RouterGroup, controller room.RoomController, membership, createLimiter gin.HandlerFunc) {
	rooms := router.Group("/room")
	{
		rooms.POST("/create", createLimiter, controller.CreateRoom)
		rooms.GET("/ttl", controller.GetTTL)
		rooms.DELETE("", membership, controller.DestroyRoom)
	}
}
