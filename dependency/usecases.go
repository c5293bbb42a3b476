package dependency

import (
	analyticsUseCase "github.com/hilthontt/ephemera/application/usecases/analytics"
	messageUseCase "github.com/hilthontt/ephemera/application/usecases/message"
	roomUseCase "github.com/hilthontt/ephemera/application/usecases/room"
)

func (c *Container) initUseCases() {
	if c.AnalyticsRepo != nil {
		c.AnalyticsUC = analyticsUseCase.NewAnalyticsUseCase(c.AnalyticsRepo, c.Config.Room.AnalyticsTimeout, c.MetricsManager, c.Logger)
	} else {
		c.AnalyticsUC = analyticsUseCase.NewDisabledAnalyticsUseCase()
	}

	c.RoomUC = roomUseCase.NewRoomUseCase(c.RoomRepo, c.Broadcaster, c.AnalyticsUC, c.MetricsManager, c.Config.Room, c.Logger)
	c.MessageUC = messageUseCase.NewMessageUseCase(c.MessageRepo, c.RoomRepo, c.Broadcaster, c.AnalyticsUC, c.MetricsManager, c.Config.Room, c.Logger)

	c.Logger.Info("Use cases initialized successfully")
}
