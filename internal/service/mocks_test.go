package service

import (
	"MyPass/internal/model"
	"MyPass/internal/model/view"
	"MyPass/internal/repo"
	"context"

	"github.com/stretchr/testify/mock"
)

// мок для repo.UserRepository
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, in repo.NewUser) (*model.User, error) {
	args := m.Called(ctx, in)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) CheckPassword(ctx context.Context, userID int64, password string) error {
	return m.Called(ctx, userID, password).Error(0)
}

func (m *mockUserRepo) ResetMasterPassword(ctx context.Context, userID int64, newPassword, confirm string) error {
	return m.Called(ctx, userID, newPassword, confirm).Error(0)
}

func (m *mockUserRepo) ResetMasterPasswordWithGrant(ctx context.Context, g repo.Grant, newPassword, confirm string) error {
	return m.Called(ctx, g, newPassword, confirm).Error(0)
}

func (m *mockUserRepo) RecoveryChallenges(ctx context.Context, email string) (int64, []model.SecurityQuestion, error) {
	args := m.Called(ctx, email)
	qs, _ := args.Get(1).([]model.SecurityQuestion)
	return args.Get(0).(int64), qs, args.Error(2)
}

func (m *mockUserRepo) QuestionPrompts(ctx context.Context, email string) ([]string, error) {
	args := m.Called(ctx, email)
	if v, ok := args.Get(0).([]string); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

// мок для repo.ItemRepository
type mockItemRepo struct{ mock.Mock }

func (m *mockItemRepo) AddItem(ctx context.Context, userID int64, in repo.ItemInput) (*view.DecryptedItem, error) {
	args := m.Called(ctx, userID, in)
	if v, ok := args.Get(0).(*view.DecryptedItem); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockItemRepo) ModifyItem(ctx context.Context, userID, itemID int64, upd repo.ItemUpdate) error {
	return m.Called(ctx, userID, itemID, upd).Error(0)
}

func (m *mockItemRepo) DeleteItem(ctx context.Context, userID, itemID int64) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

func (m *mockItemRepo) GetItem(ctx context.Context, userID, itemID int64) (*view.DecryptedItem, error) {
	args := m.Called(ctx, userID, itemID)
	if v, ok := args.Get(0).(*view.DecryptedItem); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockItemRepo) ListItems(ctx context.Context, userID int64) ([]view.DecryptedItem, error) {
	args := m.Called(ctx, userID)
	if v, ok := args.Get(0).([]view.DecryptedItem); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.ItemRepository = (*mockItemRepo)(nil)

// plainVerifier сравнивает ответ с «верификатором» напрямую.
type plainVerifier struct{}

func (plainVerifier) VerifyAnswer(answer, verifier string) bool { return answer == verifier }
