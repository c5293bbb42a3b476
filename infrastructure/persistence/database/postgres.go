package database

import (
	"fmt"
	"time"

	"github.com/hilthontt/ephemera/infrastructure/config"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var dbClient *gorm.DB

func InitDb(cfg *config.Config, zapLogger *zap.Logger) error {
	db, err := gorm.Open(postgres.Open(cfg.GetPostgresConnectionString()), &gorm.Config{
		Logger: logger.NewGormLogger(zapLogger),
	})
	if err != nil {
		return fmt.Errorf("failed to open postgres: %w", err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		return err
	}

	sqlDb.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	sqlDb.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	sqlDb.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime * time.Minute)

	if err := sqlDb.Ping(); err != nil {
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	dbClient = db
	zapLogger.Info("postgres connection established", zap.String("host", cfg.Postgres.Host))
	return nil
}

func GetDb() *gorm.DB {
	return dbClient
}

func CloseDb() {
	if dbClient == nil {
		return
	}
	if sqlDb, err := dbClient.DB(); err == nil {
		_ = sqlDb.Close()
	}
}
