package dependency

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hilthontt/ephemera/infrastructure/events"
	"github.com/hilthontt/ephemera/infrastructure/messaging"
	"github.com/hilthontt/ephemera/infrastructure/metrics"
	"github.com/hilthontt/ephemera/infrastructure/metrics/exporters"
	"go.uber.org/zap"
)

func (c *Container) initInfrastructure() error {
	tracer, shutdown, err := exporters.InitTracer(c.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	c.Tracer = tracer
	c.shutdownTracer = shutdown
	if c.Config.Jaeger.Enabled {
		c.Logger.Info("Jaeger exporter initialized successfully",
			zap.String("endpoint", c.Config.Jaeger.Endpoint),
			zap.String("service", c.Config.Jaeger.ServiceName),
		)
	}

	meter, err := exporters.Prometheus(c.Config.Jaeger.ServiceName, c.Config.Jaeger.ServiceVersion)
	if err != nil {
		return fmt.Errorf("failed to initialize Prometheus exporter: %w", err)
	}

	c.MetricsManager = metrics.NewMetricsManager(meter, c.Logger)
	metrics.RegisterDefaults(c.MetricsManager)

	c.Logger.Info("Metrics initialized successfully")

	if c.Config.Sentry.Dsn != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              c.Config.Sentry.Dsn,
			Debug:            c.Config.Sentry.Debug,
			SendDefaultPII:   c.Config.Sentry.SendDefaultPII,
			Environment:      c.Config.Server.RunMode,
			Release:          c.Config.Jaeger.ServiceVersion,
			AttachStacktrace: true,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize sentry: %w", err)
		}
		c.Logger.Info("Sentry initialized successfully")
	}

	return nil
}

func (c *Container) initBroadcaster() error {
	historyLength := c.Config.Room.EventHistoryLength

	switch c.Config.Realtime.Driver {
	case "amqp":
		rabbitmq, err := messaging.NewRabbitMQ(c.Config.RabbitMQ.URI, c.Config.RabbitMQ.Exchange)
		if err != nil {
			return err
		}
		c.RabbitMQ = rabbitmq
		c.Broadcaster = events.NewAMQPBroadcaster(rabbitmq, c.Store, historyLength, c.Logger)
	default:
		c.Broadcaster = events.NewRedisBroadcaster(c.Store, c.Config.Realtime.ChannelPrefix, historyLength, c.Logger)
	}

	c.Logger.Info("Broadcaster initialized successfully", zap.String("driver", c.Config.Realtime.Driver))
	return nil
}

func (c *Container) flushSentry() {
	if c.Config.Sentry.Dsn != "" {
		sentry.Flush(2 * time.Second)
	}
}
