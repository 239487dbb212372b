package repo

import (
	"MyPass/internal/model"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// DefaultSQLiteDSN — файл БД по умолчанию, если DATABASE_URI не задан.
const DefaultSQLiteDSN = "file:mypass.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// IsPostgresDSN определяет драйвер по строке подключения.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// InitDB открывает БД (PostgreSQL или SQLite через modernc.org/sqlite) и применяет миграции.
func InitDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	sqlite := !IsPostgresDSN(dsn)
	if sqlite {
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	} else {
		dial = postgres.Open(dsn)
	}

	db, err := gorm.Open(dial, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if sqlite {
		// SQLite: одна запись за раз, транзакции сериализуются
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Migrate создаёт/обновляет таблицы всех моделей.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.SecurityQuestion{},
		&model.VaultItem{},
		&model.VaultField{},
		&model.RecoveryGrant{},
	)
}
