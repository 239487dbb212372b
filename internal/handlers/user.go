package handlers

import (
	"MyPass/internal/config"
	"MyPass/internal/middleware"
	"MyPass/internal/repo"
	"MyPass/internal/service"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// UserHandler — регистрация, вход, выход и смена мастер-пароля.
type UserHandler struct {
	Vault  *service.VaultService
	Logger *zap.SugaredLogger
	Config *config.Config
}

func NewUserHandler(vault *service.VaultService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{Vault: vault, Logger: logger, Config: cfg}
}

type questionDTO struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type registerRequest struct {
	Email     string        `json:"email"`
	Password  string        `json:"password"`
	Confirm   string        `json:"confirm_password"`
	Questions []questionDTO `json:"security_questions"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	Confirm         string `json:"confirm_password"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

func (h *UserHandler) cookieOptions() middleware.CookieOptions {
	return middleware.CookieOptions{TTL: h.Config.SessionTTL, Secure: h.Config.EnableHTTPS}
}

// Register регистрация пользователя, при успехе сразу выставляет сессию
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.Logger.Warnw("Register: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	in := repo.NewUser{Email: req.Email, Password: req.Password, Confirm: req.Confirm}
	for _, q := range req.Questions {
		in.Questions = append(in.Questions, repo.QuestionAnswer{Prompt: q.Question, Answer: q.Answer})
	}

	user, err := h.Vault.Register(r.Context(), in)
	if err != nil {
		writeError(w, h.Logger, "Register", err)
		return
	}
	if err := middleware.SetLoginCookieWithOptions(w, user.ID, h.Config.AuthSecret, h.cookieOptions()); err != nil {
		h.Logger.Errorw("Register: set cookie", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email})
}

// Login вход по email и мастер-паролю
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.Logger.Warnw("Login: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.Vault.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.Logger, "Login", err)
		return
	}
	if err := middleware.SetLoginCookieWithOptions(w, user.ID, h.Config.AuthSecret, h.cookieOptions()); err != nil {
		h.Logger.Errorw("Login: set cookie", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email})
}

// Logout удаляет сессионную cookie
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearLoginCookie(w, h.Config.EnableHTTPS)
	writeJSON(w, http.StatusOK, map[string]string{"result": "ok"})
}

// Status проверка аутентификации
func (h *UserHandler) Status(w http.ResponseWriter, r *http.Request) {
	result := "anonymous"
	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		result = fmt.Sprintf("User ID = %d", userID)
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}

// ChangePassword смена мастер-пароля из активной сессии
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.Logger.Warnw("ChangePassword: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	err := h.Vault.ChangeMasterPassword(r.Context(), userID, req.CurrentPassword, req.NewPassword, req.Confirm)
	if err != nil {
		writeError(w, h.Logger, "ChangePassword", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "ok"})
}
