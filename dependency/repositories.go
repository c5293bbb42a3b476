package dependency

import (
	"github.com/hilthontt/ephemera/infrastructure/persistence/database"
	"github.com/hilthontt/ephemera/infrastructure/persistence/migration"
	"github.com/hilthontt/ephemera/infrastructure/persistence/repository"
)

func (c *Container) initRepositories() error {
	c.RoomRepo = repository.NewRoomRepository(c.Store, c.Config.Room.Capacity, c.Tracer)
	c.MessageRepo = repository.NewMessageRepository(c.Store, c.Tracer)

	if c.Config.Postgres.Enabled {
		if err := database.InitDb(c.Config, c.Logger.Log); err != nil {
			return err
		}
		if err := migration.Up1(database.GetDb()); err != nil {
			return err
		}
		c.AnalyticsRepo = repository.NewAnalyticsRepository(database.GetDb(), c.Logger.Log)
	}

	c.Logger.Info("Repositories initialized successfully")
	return nil
}
