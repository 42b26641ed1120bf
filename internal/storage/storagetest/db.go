// Package storagetest はテスト用のインメモリ SQLite データベースを提供します。
package storagetest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yourusername/gym-portal/internal/storage"
)

// NewDB はマイグレーション済みのインメモリ DB を返します。
// コネクションを1本に固定し、全クエリが同じ DB を参照するようにしています。
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := storage.OpenDialector(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := storage.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
