// Package dbtest opens throwaway sqlite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/delivery_shop/internal/db"
)

// Open returns a migrated sqlite database living in t.TempDir.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shop.db")
	gdb, err := db.Open(context.Background(), db.DriverSQLite, path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}
