package database

import (
	"embed"
	"testing"
	"time"

	"github.com/facilidrive/facilidrive/pkg/models"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// MigrateDB applies the embedded goose migrations.
func MigrateDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(sqlDB, "migrations")
}

// NewTestDatabase opens an in-memory sqlite database carrying the same
// relations, for service suites that exercise the tree logic without a
// Postgres instance.
func NewTestDatabase(tb testing.TB) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to init db %v", err)
	}
	if err := db.AutoMigrate(&models.Folder{}, &models.File{}, &models.StorageCleanup{}); err != nil {
		tb.Fatalf("failed to migrate db %v", err)
	}
	return db
}
