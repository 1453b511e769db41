package repositories

import (
	"testing"

	"github.com/arashpm/uploadmaster/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB: %v", err)
	}
	// One connection keeps the in-memory database alive across queries.
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enabling foreign keys: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return db
}

func mustCreateCategory(t *testing.T, db *gorm.DB, id, name string) {
	t.Helper()
	if err := NewCategoryRepository(db).Create(id, name, 1); err != nil {
		t.Fatalf("creating category %s: %v", id, err)
	}
}

func fileCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.File{}).Count(&count).Error; err != nil {
		t.Fatalf("counting files: %v", err)
	}
	return count
}
