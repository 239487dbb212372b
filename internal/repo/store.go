package repo

import (
	"MyPass/internal/common"
	"MyPass/internal/model"
	"MyPass/internal/model/view"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultRequiredQuestions — количество секретных вопросов при регистрации.
const DefaultRequiredQuestions = 3

// FieldCipher шифрует значения полей перед записью и расшифровывает при чтении.
type FieldCipher interface {
	EncryptString(plain string) (string, error)
	DecryptString(ciphertext string) (string, error)
}

// PasswordHasher — односторонние верификаторы паролей и ответов.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, verifier string) bool
	VerifyDummy(secret string) bool
	HashAnswer(answer string) (string, error)
	VerifyAnswer(answer, verifier string) bool
}

// UserRepository — контракт доступа к пользователям и их учётным данным.
type UserRepository interface {
	CreateUser(ctx context.Context, in NewUser) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	CheckPassword(ctx context.Context, userID int64, password string) error
	ResetMasterPassword(ctx context.Context, userID int64, newPassword, confirm string) error
	ResetMasterPasswordWithGrant(ctx context.Context, g Grant, newPassword, confirm string) error
	RecoveryChallenges(ctx context.Context, email string) (int64, []model.SecurityQuestion, error)
	QuestionPrompts(ctx context.Context, email string) ([]string, error)
}

// ItemRepository — контракт доступа к элементам хранилища. Все методы проверяют владельца.
type ItemRepository interface {
	AddItem(ctx context.Context, userID int64, in ItemInput) (*view.DecryptedItem, error)
	ModifyItem(ctx context.Context, userID, itemID int64, upd ItemUpdate) error
	DeleteItem(ctx context.Context, userID, itemID int64) error
	GetItem(ctx context.Context, userID, itemID int64) (*view.DecryptedItem, error)
	ListItems(ctx context.Context, userID int64) ([]view.DecryptedItem, error)
}

// CredentialStore — единственный компонент, работающий с БД напрямую.
type CredentialStore struct {
	db                *gorm.DB
	cipher            FieldCipher
	hasher            PasswordHasher
	logger            *zap.SugaredLogger
	requiredQuestions int
	now               func() time.Time
}

var (
	_ UserRepository = (*CredentialStore)(nil)
	_ ItemRepository = (*CredentialStore)(nil)
)

// NewCredentialStore создаёт хранилище. requiredQuestions <= 0 означает значение по умолчанию.
func NewCredentialStore(db *gorm.DB, cipher FieldCipher, hasher PasswordHasher, logger *zap.SugaredLogger, requiredQuestions int) *CredentialStore {
	if requiredQuestions <= 0 {
		requiredQuestions = DefaultRequiredQuestions
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &CredentialStore{
		db:                db,
		cipher:            cipher,
		hasher:            hasher,
		logger:            logger,
		requiredQuestions: requiredQuestions,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// RequiredQuestions возвращает число вопросов, обязательных при регистрации.
func (s *CredentialStore) RequiredQuestions() int { return s.requiredQuestions }

// translate приводит ошибки gorm к общим ошибкам сервиса.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return common.ErrNotFound
	case isAppError(err):
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrInternal, err)
}

func isAppError(err error) bool {
	for _, target := range []error{
		common.ErrValidation, common.ErrAuthentication, common.ErrAuthorization,
		common.ErrNotFound, common.ErrDuplicateEmail, common.ErrEncryption, common.ErrDecryption,
		common.ErrInternal,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, fmt.Sprintf(format, args...))
}
