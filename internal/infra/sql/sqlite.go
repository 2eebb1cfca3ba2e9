package sql

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"shopfloor-console/internal/infra/utils"
)

// NewSQLiteORM opens the console's local database. The kiosk runs
// unattended, so everything it must remember across restarts lives here.
func NewSQLiteORM(path string) (ORM, error) {
	if path == "" {
		path = "shopfloor-console.db"
	}

	gormDB, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	return &DB{DB: gormDB, autoMigrationEnabled: true}, nil
}

// NewMemoryORM backs tests with a throwaway in-memory database. Each
// call opens its own database, so callers never see each other's rows.
func NewMemoryORM() (ORM, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", utils.GenerateUUID())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite in-memory db: %w", err)
	}

	return &DB{DB: gormDB, autoMigrationEnabled: true}, nil
}
