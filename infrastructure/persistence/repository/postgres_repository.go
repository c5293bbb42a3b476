package repository

import (
	"context"

	"github.com/hilthontt/ephemera/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BaseRepository holds the insert/count plumbing shared by append-only tables.
type BaseRepository[TEntity any] struct {
	database *gorm.DB
	logger   *logger.GormZapLogger
}

func NewBaseRepository[TEntity any](db *gorm.DB, zapLogger *zap.Logger) *BaseRepository[TEntity] {
	return &BaseRepository[TEntity]{
		database: db,
		logger:   logger.NewGormLogger(zapLogger),
	}
}

func (r BaseRepository[TEntity]) Create(ctx context.Context, entity TEntity, conflictColumns ...string) (TEntity, error) {
	tx := r.database.WithContext(ctx).Begin()
	if tx.Error != nil {
		r.logger.Error(ctx, tx.Error.Error())
		return entity, tx.Error
	}

	if len(conflictColumns) > 0 {
		columns := make([]clause.Column, 0, len(conflictColumns))
		for _, name := range conflictColumns {
			columns = append(columns, clause.Column{Name: name})
		}
		tx = tx.Clauses(clause.OnConflict{Columns: columns, DoNothing: true})
	}

	if err := tx.Create(&entity).Error; err != nil {
		tx.Rollback()
		r.logger.Error(ctx, err.Error())
		return entity, err
	}

	if err := tx.Commit().Error; err != nil {
		r.logger.Error(ctx, err.Error())
		return entity, err
	}
	return entity, nil
}

func (r BaseRepository[TEntity]) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.database.WithContext(ctx).
		Model(new(TEntity)).
		Count(&total).
		Error
	if err != nil {
		r.logger.Error(ctx, err.Error())
		return 0, err
	}
	return total, nil
}
