package dependency

import (
	"context"
	"fmt"

	analyticsUseCase "github.com/hilthontt/ephemera/application/usecases/analytics"
	messageUseCase "github.com/hilthontt/ephemera/application/usecases/message"
	roomUseCase "github.com/hilthontt/ephemera/application/usecases/room"
	"github.com/hilthontt/ephemera/domain/repository"
	"github.com/hilthontt/ephemera/infrastructure/cache"
	"github.com/hilthontt/ephemera/infrastructure/config"
	"github.com/hilthontt/ephemera/infrastructure/events"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"github.com/hilthontt/ephemera/infrastructure/messaging"
	"github.com/hilthontt/ephemera/infrastructure/metrics"
	"github.com/hilthontt/ephemera/infrastructure/websocket"
	"github.com/hilthontt/ephemera/presentation/controllers/analytics"
	"github.com/hilthontt/ephemera/presentation/controllers/message"
	"github.com/hilthontt/ephemera/presentation/controllers/realtime"
	"github.com/hilthontt/ephemera/presentation/controllers/room"
	"go.opentelemetry.io/otel/trace"
)

type Container struct {
	Config *config.Config
	Logger *logger.Logger

	Tracer         trace.Tracer
	shutdownTracer func(context.Context) error
	MetricsManager metrics.Manager

	Store       *cache.Store
	RabbitMQ    *messaging.RabbitMQ
	Broadcaster events.Broadcaster

	RoomRepo      repository.RoomRepository
	MessageRepo   repository.MessageRepository
	AnalyticsRepo repository.AnalyticsRepository

	WSRoomManager *websocket.RoomManager
	WSCore        *websocket.Core

	AnalyticsUC analyticsUseCase.AnalyticsUseCase
	RoomUC      roomUseCase.RoomUseCase
	MessageUC   messageUseCase.MessageUseCase

	RoomController      room.RoomController
	MessageController   message.MessageController
	RealtimeController  realtime.RealtimeController
	AnalyticsController analytics.AnalyticsController

	ctx    context.Context
	cancel context.CancelFunc
}

func NewContainer() (*Container, error) {
	c := &Container{}

	c.Config = config.GetConfig()

	loggerInstance, err := c.newLogger()
	if err != nil {
		return nil, fmt.Errorf("error initializing logger: %w", err)
	}
	c.Logger = loggerInstance

	c.Logger.Info("Initializing Ephemera dependencies")
	if err := cache.InitRedis(c.Config); err != nil {
		return nil, fmt.Errorf("error initializing cache: %w", err)
	}
	c.Store = cache.NewStore(cache.GetRedis())

	if err := c.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("error initializing infrastructure: %w", err)
	}

	if err := c.initBroadcaster(); err != nil {
		return nil, fmt.Errorf("error initializing broadcaster: %w", err)
	}

	if err := c.initRepositories(); err != nil {
		return nil, fmt.Errorf("error initializing repositories: %w", err)
	}

	c.initUseCases()

	c.initWebSocket()

	c.initControllers()

	c.Logger.Info("All dependencies initialized successfully")

	return c, nil
}

func (c *Container) newLogger() (*logger.Logger, error) {
	if c.Config.Logger.FilePath != "" || c.Config.IsProduction() {
		return logger.NewLogger(c.Config.Logger)
	}
	return logger.NewDevelopmentLogger()
}
