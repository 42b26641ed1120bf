// Package storage はユーザーと問い合わせを MySQL (GORM) に永続化します。
package storage

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/gym-portal/internal/model"
)

var (
	// ErrNotFound はレコードが存在しない場合に返されます。
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate は一意制約に違反した場合に返されます。
	ErrDuplicate = errors.New("duplicate entry")
)

// Open は MySQL に接続した GORM DB を返します。
func Open(dsn string) (*gorm.DB, error) {
	db, err := OpenDialector(gormmysql.Open(dsn))
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// OpenDialector は任意の Dialector で GORM DB を開きます。
func OpenDialector(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log.New(os.Stderr, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
}

// Migrate はテーブルを作成・更新します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Contact{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Close は下層のコネクションプールを閉じます。
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isDuplicateError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	// SQLite（テスト用）のメッセージ
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func wrapError(err error, op string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isDuplicateError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
