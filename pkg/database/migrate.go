package database

import (
	"fmt"

	"github.com/stitts-dev/fpl-scout/internal/models"
)

// Migrate creates or updates every persisted table.
func Migrate(db *DB) error {
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}
	return nil
}

// DropAll removes every persisted table.
func DropAll(db *DB) error {
	for _, m := range models.AllModels() {
		if err := db.Migrator().DropTable(m); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return nil
}
