package repo

import (
	"MyPass/internal/common"
	"MyPass/internal/hasher"
	"MyPass/internal/model"
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuestionAnswer — секретный вопрос и ответ в открытом виде (только на время регистрации).
type QuestionAnswer struct {
	Prompt string
	Answer string
}

// NewUser — входные данные регистрации.
type NewUser struct {
	Email     string
	Password  string
	Confirm   string
	Questions []QuestionAnswer
}

// Grant — подтверждённое право на однократный сброс пароля после восстановления.
type Grant struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *CredentialStore) validateNewUser(in NewUser) (string, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return "", validationf("invalid email")
	}
	if in.Password == "" {
		return "", validationf("password is required")
	}
	if in.Password != in.Confirm {
		return "", validationf("passwords do not match")
	}
	if len(in.Questions) < s.requiredQuestions {
		return "", validationf("%d security questions are required", s.requiredQuestions)
	}
	seen := make(map[string]struct{}, len(in.Questions))
	for i, qa := range in.Questions {
		p := strings.TrimSpace(qa.Prompt)
		if p == "" {
			return "", validationf("question %d: prompt is required", i+1)
		}
		if hasher.NormalizeAnswer(qa.Answer) == "" {
			return "", validationf("question %d: answer is required", i+1)
		}
		if _, dup := seen[strings.ToLower(p)]; dup {
			return "", validationf("question %d: duplicate prompt", i+1)
		}
		seen[strings.ToLower(p)] = struct{}{}
	}
	return email, nil
}

// CreateUser регистрирует пользователя вместе с секретными вопросами в одной транзакции.
func (s *CredentialStore) CreateUser(ctx context.Context, in NewUser) (*model.User, error) {
	email, err := s.validateNewUser(in)
	if err != nil {
		return nil, err
	}

	// bcrypt медленный — считаем верификаторы до открытия транзакции
	pwHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{Email: email, PasswordHash: pwHash}
	for i, qa := range in.Questions {
		ah, err := s.hasher.HashAnswer(qa.Answer)
		if err != nil {
			return nil, err
		}
		user.SecurityQuestions = append(user.SecurityQuestions, model.SecurityQuestion{
			Position:   i,
			Prompt:     strings.TrimSpace(qa.Prompt),
			AnswerHash: ah,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return common.ErrDuplicateEmail
		}
		return tx.Create(user).Error
	})
	if err != nil {
		if !isAppError(err) && s.emailTaken(ctx, email) {
			// гонка двух регистраций: сработал уникальный индекс
			return nil, common.ErrDuplicateEmail
		}
		return nil, translate(err)
	}

	s.logger.Infow("user registered", "user_id", user.ID)
	return user, nil
}

func (s *CredentialStore) emailTaken(ctx context.Context, email string) bool {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return err == nil && count > 0
}

// Authenticate проверяет email и пароль. Неизвестный email и неверный пароль неразличимы.
func (s *CredentialStore) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.hasher.VerifyDummy(password)
		return nil, common.ErrAuthentication
	}
	if err != nil {
		return nil, translate(err)
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, common.ErrAuthentication
	}
	return &u, nil
}

// CheckPassword проверяет текущий мастер-пароль пользователя.
func (s *CredentialStore) CheckPassword(ctx context.Context, userID int64, password string) error {
	var u model.User
	err := s.db.WithContext(ctx).First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.hasher.VerifyDummy(password)
		return common.ErrAuthentication
	}
	if err != nil {
		return translate(err)
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return common.ErrAuthentication
	}
	return nil
}

func (s *CredentialStore) hashNewPassword(newPassword, confirm string) (string, error) {
	if newPassword == "" {
		return "", validationf("password is required")
	}
	if newPassword != confirm {
		return "", validationf("passwords do not match")
	}
	return s.hasher.Hash(newPassword)
}

func updatePasswordHash(tx *gorm.DB, userID int64, hash string) error {
	res := tx.Model(&model.User{}).Where("id = ?", userID).Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// ResetMasterPassword заменяет верификатор мастер-пароля.
// Вызывающий отвечает за то, что пользователь аутентифицирован.
func (s *CredentialStore) ResetMasterPassword(ctx context.Context, userID int64, newPassword, confirm string) error {
	hash, err := s.hashNewPassword(newPassword, confirm)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updatePasswordHash(tx, userID, hash)
	})
	if err != nil {
		return translate(err)
	}
	s.logger.Infow("master password changed", "user_id", userID)
	return nil
}

// ResetMasterPasswordWithGrant гасит допуск восстановления и меняет пароль атомарно.
// Повторное использование допуска или истёкший допуск дают common.ErrAuthorization.
func (s *CredentialStore) ResetMasterPasswordWithGrant(ctx context.Context, g Grant, newPassword, confirm string) error {
	if g.ID == "" || g.UserID == 0 {
		return common.ErrAuthorization
	}
	if !s.now().Before(g.ExpiresAt) {
		return common.ErrAuthorization
	}
	hash, err := s.hashNewPassword(newPassword, confirm)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := &model.RecoveryGrant{ID: g.ID, UserID: g.UserID, ExpiresAt: g.ExpiresAt.UTC()}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(rec)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrAuthorization
		}
		return updatePasswordHash(tx, g.UserID, hash)
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrAuthorization
		}
		return translate(err)
	}
	s.logger.Infow("master password reset after recovery", "user_id", g.UserID)
	return nil
}

// RecoveryChallenges возвращает вопросы пользователя в порядке регистрации.
func (s *CredentialStore) RecoveryChallenges(ctx context.Context, email string) (int64, []model.SecurityQuestion, error) {
	var u model.User
	err := s.db.WithContext(ctx).
		Preload("SecurityQuestions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("email = ?", NormalizeEmail(email)).
		First(&u).Error
	if err != nil {
		return 0, nil, translate(err)
	}
	return u.ID, u.SecurityQuestions, nil
}

// QuestionPrompts возвращает только тексты вопросов — для формы восстановления.
func (s *CredentialStore) QuestionPrompts(ctx context.Context, email string) ([]string, error) {
	_, qs, err := s.RecoveryChallenges(ctx, email)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.Prompt
	}
	return out, nil
}
