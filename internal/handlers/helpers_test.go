package handlers_test

import (
	"MyPass/internal/config"
	"MyPass/internal/events"
	"MyPass/internal/handlers"
	"MyPass/internal/middleware"
	"MyPass/internal/model"
	"MyPass/internal/model/view"
	"MyPass/internal/repo"
	"MyPass/internal/service"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// Local light mocks
type hMockUserRepo struct{ mock.Mock }

func (m *hMockUserRepo) CreateUser(ctx context.Context, in repo.NewUser) (*model.User, error) {
	args := m.Called(ctx, in)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *hMockUserRepo) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *hMockUserRepo) CheckPassword(ctx context.Context, userID int64, password string) error {
	return m.Called(ctx, userID, password).Error(0)
}
func (m *hMockUserRepo) ResetMasterPassword(ctx context.Context, userID int64, newPassword, confirm string) error {
	return m.Called(ctx, userID, newPassword, confirm).Error(0)
}
func (m *hMockUserRepo) ResetMasterPasswordWithGrant(ctx context.Context, g repo.Grant, newPassword, confirm string) error {
	return m.Called(ctx, g, newPassword, confirm).Error(0)
}
func (m *hMockUserRepo) RecoveryChallenges(ctx context.Context, email string) (int64, []model.SecurityQuestion, error) {
	args := m.Called(ctx, email)
	qs, _ := args.Get(1).([]model.SecurityQuestion)
	return args.Get(0).(int64), qs, args.Error(2)
}
func (m *hMockUserRepo) QuestionPrompts(ctx context.Context, email string) ([]string, error) {
	args := m.Called(ctx, email)
	if v, ok := args.Get(0).([]string); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.UserRepository = (*hMockUserRepo)(nil)

type hMockItemRepo struct{ mock.Mock }

func (m *hMockItemRepo) AddItem(ctx context.Context, userID int64, in repo.ItemInput) (*view.DecryptedItem, error) {
	args := m.Called(ctx, userID, in)
	if v, ok := args.Get(0).(*view.DecryptedItem); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *hMockItemRepo) ModifyItem(ctx context.Context, userID, itemID int64, upd repo.ItemUpdate) error {
	return m.Called(ctx, userID, itemID, upd).Error(0)
}
func (m *hMockItemRepo) DeleteItem(ctx context.Context, userID, itemID int64) error {
	return m.Called(ctx, userID, itemID).Error(0)
}
func (m *hMockItemRepo) GetItem(ctx context.Context, userID, itemID int64) (*view.DecryptedItem, error) {
	args := m.Called(ctx, userID, itemID)
	if v, ok := args.Get(0).(*view.DecryptedItem); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *hMockItemRepo) ListItems(ctx context.Context, userID int64) ([]view.DecryptedItem, error) {
	args := m.Called(ctx, userID)
	if v, ok := args.Get(0).([]view.DecryptedItem); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.ItemRepository = (*hMockItemRepo)(nil)

// plainVerifier: верификатор ответа совпадает с самим ответом
type plainVerifier struct{}

func (plainVerifier) VerifyAnswer(answer, verifier string) bool { return answer == verifier }

// recordingBus запоминает опубликованные события
type recordingBus struct {
	*events.MemoryBus
	mu  sync.Mutex
	got []events.Event
}

func newRecordingBus() *recordingBus {
	b := &recordingBus{MemoryBus: events.NewMemoryBus()}
	b.Subscribe(func(e events.Event) {
		b.mu.Lock()
		b.got = append(b.got, e)
		b.mu.Unlock()
	})
	return b
}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.got))
	for _, e := range b.got {
		out = append(out, e.Name)
	}
	return out
}

type testEnv struct {
	router http.Handler
	cfg    *config.Config
	users  *hMockUserRepo
	items  *hMockItemRepo
	bus    *recordingBus
	grants *service.GrantIssuer
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := &config.Config{AuthSecret: "test-secret", SessionTTL: time.Hour, RecoveryTTL: time.Minute}
	for _, m := range mutate {
		m(cfg)
	}
	logger := zap.NewNop().Sugar()
	env := &testEnv{
		cfg:    cfg,
		users:  &hMockUserRepo{},
		items:  &hMockItemRepo{},
		bus:    newRecordingBus(),
		grants: service.NewGrantIssuer(cfg.AuthSecret, cfg.RecoveryTTL),
	}
	vault := service.NewVaultService(env.users, env.items, plainVerifier{}, env.grants, logger)
	env.router = handlers.NewHandler(vault, env.bus, logger, cfg).Router
	return env
}

func addAuthCookie(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	_ = middleware.SetLoginCookie(rr, userID, secret)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

func hasCookie(rr *httptest.ResponseRecorder, name string) (*http.Cookie, bool) {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}
