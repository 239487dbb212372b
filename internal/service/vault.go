package service

import (
	"MyPass/internal/common"
	"MyPass/internal/model"
	"MyPass/internal/model/view"
	"MyPass/internal/recovery"
	"MyPass/internal/repo"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// VaultService — фасад сценариев использования для HTTP-слоя.
// Собственных инвариантов не добавляет: проверки выполняют CredentialStore и RecoveryChain.
type VaultService struct {
	users   repo.UserRepository
	items   repo.ItemRepository
	answers recovery.AnswerVerifier
	grants  *GrantIssuer
	logger  *zap.SugaredLogger
}

// NewVaultService создаёт сервис. Зависимости передаются явно, глобального состояния нет.
func NewVaultService(users repo.UserRepository, items repo.ItemRepository, answers recovery.AnswerVerifier, grants *GrantIssuer, logger *zap.SugaredLogger) *VaultService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &VaultService{users: users, items: items, answers: answers, grants: grants, logger: logger}
}

// RecoveryResult — итог восстановления. Token заполнен только при Succeeded.
type RecoveryResult struct {
	Outcome   recovery.Outcome
	Token     string
	ExpiresAt time.Time
}

// Register регистрирует пользователя.
func (s *VaultService) Register(ctx context.Context, in repo.NewUser) (*model.User, error) {
	return s.users.CreateUser(ctx, in)
}

// Login аутентифицирует пользователя по email и мастер-паролю.
func (s *VaultService) Login(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrAuthentication) {
			s.logger.Infow("login failed")
		}
		return nil, err
	}
	return u, nil
}

func (s *VaultService) AddItem(ctx context.Context, userID int64, in repo.ItemInput) (*view.DecryptedItem, error) {
	return s.items.AddItem(ctx, userID, in)
}

func (s *VaultService) ModifyItem(ctx context.Context, userID, itemID int64, upd repo.ItemUpdate) (*view.DecryptedItem, error) {
	if err := s.items.ModifyItem(ctx, userID, itemID, upd); err != nil {
		return nil, err
	}
	return s.items.GetItem(ctx, userID, itemID)
}

func (s *VaultService) DeleteItem(ctx context.Context, userID, itemID int64) error {
	return s.items.DeleteItem(ctx, userID, itemID)
}

func (s *VaultService) GetItem(ctx context.Context, userID, itemID int64) (*view.DecryptedItem, error) {
	return s.items.GetItem(ctx, userID, itemID)
}

func (s *VaultService) ListItems(ctx context.Context, userID int64) ([]view.DecryptedItem, error) {
	return s.items.ListItems(ctx, userID)
}

// SecurityQuestions возвращает тексты вопросов для формы восстановления.
func (s *VaultService) SecurityQuestions(ctx context.Context, email string) ([]string, error) {
	return s.users.QuestionPrompts(ctx, email)
}

// Recover прогоняет ответы через цепочку вопросов пользователя.
// Неизвестный email даёт Failed так же, как неверный ответ. Ошибка возвращается только при сбое хранилища.
func (s *VaultService) Recover(ctx context.Context, email string, answers []string) (RecoveryResult, error) {
	userID, questions, err := s.users.RecoveryChallenges(ctx, email)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return RecoveryResult{Outcome: recovery.Failed}, err
	}

	chain := recovery.New(s.answers, questions, answers)
	outcome := chain.Evaluate()
	if outcome != recovery.Succeeded {
		s.logger.Infow("recovery failed", "user_id", userID, "steps", chain.Steps())
		return RecoveryResult{Outcome: recovery.Failed}, nil
	}

	token, grant, err := s.grants.Issue(userID)
	if err != nil {
		return RecoveryResult{Outcome: recovery.Failed}, errors.Join(common.ErrInternal, err)
	}
	s.logger.Infow("recovery succeeded", "user_id", userID)
	return RecoveryResult{Outcome: recovery.Succeeded, Token: token, ExpiresAt: grant.ExpiresAt}, nil
}

// CompleteReset меняет мастер-пароль по допуску, выданному Recover. Допуск одноразовый.
func (s *VaultService) CompleteReset(ctx context.Context, grantToken, newPassword, confirm string) error {
	grant, err := s.grants.Parse(grantToken)
	if err != nil {
		s.logger.Warnw("reset with invalid recovery grant")
		return common.ErrAuthorization
	}
	return s.users.ResetMasterPasswordWithGrant(ctx, grant, newPassword, confirm)
}

// ChangeMasterPassword меняет пароль из аутентифицированной сессии. Требует текущий пароль.
func (s *VaultService) ChangeMasterPassword(ctx context.Context, userID int64, current, newPassword, confirm string) error {
	if err := s.users.CheckPassword(ctx, userID, current); err != nil {
		return err
	}
	return s.users.ResetMasterPassword(ctx, userID, newPassword, confirm)
}
