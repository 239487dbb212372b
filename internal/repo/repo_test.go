package repo

import (
	"MyPass/internal/crypto"
	"MyPass/internal/hasher"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// newTestDB инициализирует in-memory SQLite (modernc.org/sqlite) для тестов репозитория.
// Каждый тест получает собственную БД.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	db, err := gorm.Open(dial, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// Миграции для всех моделей, используемых в репозиториях
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	return db
}

func newTestBox(t *testing.T) *crypto.Box {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	box, err := crypto.New(key)
	if err != nil {
		t.Fatal(err)
	}
	return box
}

// newTestStore собирает CredentialStore поверх отдельной in-memory БД.
func newTestStore(t *testing.T) (*CredentialStore, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	s := NewCredentialStore(db, newTestBox(t), hasher.New(bcrypt.MinCost), zap.NewNop().Sugar(), 3)
	return s, db
}

func threeQuestions() []QuestionAnswer {
	return []QuestionAnswer{
		{Prompt: "pet", Answer: "Rex"},
		{Prompt: "city", Answer: "Reno"},
		{Prompt: "color", Answer: "Blue"},
	}
}

func newUserInput(email, password string) NewUser {
	return NewUser{Email: email, Password: password, Confirm: password, Questions: threeQuestions()}
}
