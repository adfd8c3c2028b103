// Package dbtest provides in-memory databases for repository and engine tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"warehouse/models"
)

var dbSeq atomic.Uint64

// New opens a fresh in-memory sqlite database with the full schema migrated.
// Each call gets its own database so tests stay isolated; the shared cache
// keeps it alive across the pooled connections of one gorm handle.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:warehouse-test-%d?mode=memory&cache=shared&_busy_timeout=5000", dbSeq.Add(1))
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if err := database.AutoMigrate(
		&models.RawMaterial{},
		&models.Product{},
		&models.BOMEntry{},
		&models.WarehouseBatch{},
		&models.Order{},
		&models.OrderItem{},
		&models.AllocationRecord{},
	); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return database
}
