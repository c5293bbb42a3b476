package migration

import (
	"fmt"

	"github.com/hilthontt/ephemera/domain/model"
	"gorm.io/gorm"
)

// Up1 creates the analytics mirror tables when they are missing.
func Up1(database *gorm.DB) error {
	return createTables(database)
}

func createTables(database *gorm.DB) error {
	tables := []any{}

	tables = addNewTable(database, &model.RoomRecord{}, tables)
	tables = addNewTable(database, &model.MessageRecord{}, tables)

	if len(tables) == 0 {
		return nil
	}
	if err := database.Migrator().CreateTable(tables...); err != nil {
		return fmt.Errorf("error migrating: %w", err)
	}
	return nil
}

func addNewTable(database *gorm.DB, model any, tables []any) []any {
	if !database.Migrator().HasTable(model) {
		tables = append(tables, model)
	}
	return tables
}
