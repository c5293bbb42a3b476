package dependency

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/hilthontt/ephemera/infrastructure/cache"
	"github.com/hilthontt/ephemera/infrastructure/metrics"
	"github.com/hilthontt/ephemera/infrastructure/persistence/database"
	"github.com/hilthontt/ephemera/presentation/controllers/analytics"
	"github.com/hilthontt/ephemera/presentation/controllers/message"
	"github.com/hilthontt/ephemera/presentation/controllers/realtime"
	"github.com/hilthontt/ephemera/presentation/controllers/room"
	"github.com/hilthontt/ephemera/presentation/middlewares"
	"github.com/hilthontt/ephemera/presentation/routes"
	"go.uber.org/zap"
)

func (c *Container) initControllers() {
	secure := c.Config.IsProduction()

	c.RoomController = room.NewRoomController(c.RoomUC, secure)
	c.MessageController = message.NewMessageController(c.MessageUC)
	c.RealtimeController = realtime.NewRealtimeController(c.WSCore, c.Broadcaster, c.clientOptions(), c.Logger)
	c.AnalyticsController = analytics.NewAnalyticsController(c.AnalyticsUC)

	c.Logger.Info("Controllers initialized successfully")
}

func (c *Container) SetupRouter() *gin.Engine {
	switch c.Config.Server.RunMode {
	case "release", "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	binding.Validator = new(middlewares.DefaultValidator)

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         5 * time.Second,
	}))

	if c.Config.IsProduction() {
		router.Use(middlewares.ForceHttps(c.Config))
	}

	router.Use(middlewares.GinLogger(c.Logger))
	router.Use(middlewares.CorsMiddleware(c.Config))
	router.Use(metrics.RequestMetrics(c.MetricsManager))

	router.GET("/health", c.healthCheckHandler)

	c.registerObservabilityRoutes(router)

	c.registerRoomPage(router)

	c.registerAPIRoutes(router)

	c.Logger.Info("Router configured successfully")

	return router
}

func (c *Container) registerRoomPage(router *gin.Engine) {
	gateway := middlewares.AdmissionGateway(c.RoomUC, middlewares.GatewayConfig{
		LobbyPath:    c.Config.Server.LobbyPath,
		SecureCookie: c.Config.IsProduction(),
	}, c.Logger)

	routes.RoomPageRoutes(router, c.RoomController, gateway)
}

func (c *Container) registerAPIRoutes(router *gin.Engine) {
	redisClient := cache.GetRedis()
	membership := middlewares.MembershipMiddleware(c.RoomUC, c.Logger)

	api := router.Group("/api")
	{
		api.Use(middlewares.RateLimiterMiddleware(redisClient, c.Logger, middlewares.LenientRateLimiterConfig()))

		api.Use(func(ctx *gin.Context) {
			if hub := sentrygin.GetHubFromContext(ctx); hub != nil {
				hub.Scope().SetUser(sentry.User{IPAddress: ctx.ClientIP()})
				if roomID := ctx.Query("roomId"); roomID != "" {
					hub.Scope().SetTag("room_id", roomID)
				}
				hub.Scope().SetTag("user_type", "anonymous")
			}
			ctx.Next()
		})

		routes.RoomRoutes(api, c.RoomController, membership,
			middlewares.RateLimiterMiddleware(redisClient, c.Logger, middlewares.RoomCreationRateLimiterConfig()))
		routes.MessageRoutes(api, c.MessageController, membership,
			middlewares.RateLimiterMiddleware(redisClient, c.Logger, middlewares.MessageSendingRateLimiterConfig()))
		routes.RealtimeRoutes(api, c.RealtimeController, membership)
		routes.AnalyticsRoutes(api, c.AnalyticsController)
	}
}

func (c *Container) healthCheckHandler(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (c *Container) registerObservabilityRoutes(router *gin.Engine) {
	metricsGroup := router.Group("/observability")
	{
		metrics.GetHandler(metricsGroup, c.MetricsManager)
	}
}

// Shutdown releases everything NewContainer acquired. The HTTP server must be
// stopped first so no handler races the closing stores.
func (c *Container) Shutdown() error {
	c.Logger.Info("Shutting down dependencies...")

	c.WSCore.Shutdown()
	if c.cancel != nil {
		c.cancel()
	}

	// Pending analytics writes are bounded by their own timeout.
	c.AnalyticsUC.Wait()

	if c.shutdownTracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.shutdownTracer(ctx); err != nil {
			c.Logger.Error("failed to shutdown tracer provider", zap.Error(err))
		}
	}

	if c.RabbitMQ != nil {
		c.RabbitMQ.Close()
	}
	cache.CloseRedis()
	database.CloseDb()

	c.flushSentry()

	c.Logger.Info("Dependencies shut down successfully")

	if err := c.Logger.Log.Sync(); err != nil {
		c.Logger.Error("failed to sync logger", zap.Error(err))
	}

	return nil
}
