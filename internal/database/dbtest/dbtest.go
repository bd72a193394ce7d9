package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"turfbook/internal/database"
)

// Open opens a private in-memory SQLite database for one test and migrates models.
func Open(t testing.TB, models ...any) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := database.ConnectWithLogger(dsn, logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	// keep the shared in-memory database alive for the whole test
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db, models...); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return db
}
