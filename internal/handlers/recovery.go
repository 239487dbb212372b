package handlers

import (
	"MyPass/internal/common"
	"MyPass/internal/config"
	"MyPass/internal/recovery"
	"MyPass/internal/service"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RecoveryHandler — восстановление доступа по секретным вопросам.
type RecoveryHandler struct {
	Vault  *service.VaultService
	Logger *zap.SugaredLogger
	Config *config.Config
}

func NewRecoveryHandler(vault *service.VaultService, logger *zap.SugaredLogger, cfg *config.Config) *RecoveryHandler {
	return &RecoveryHandler{Vault: vault, Logger: logger, Config: cfg}
}

type recoverRequest struct {
	Email   string   `json:"email"`
	Answers []string `json:"answers"`
}

type recoverResponse struct {
	Outcome   string `json:"outcome"`
	Token     string `json:"reset_token,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

type resetRequest struct {
	Token       string `json:"reset_token"`
	NewPassword string `json:"new_password"`
	Confirm     string `json:"confirm_password"`
}

// Questions тексты секретных вопросов для формы восстановления
func (h *RecoveryHandler) Questions(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}
	prompts, err := h.Vault.SecurityQuestions(r.Context(), email)
	if err != nil {
		writeError(w, h.Logger, "RecoveryQuestions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"questions": prompts})
}

// Recover проверяет ответы; провал — обычный ответ 200 с outcome FAILED
func (h *RecoveryHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.Logger.Warnw("Recover: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	res, err := h.Vault.Recover(r.Context(), req.Email, req.Answers)
	if err != nil {
		writeError(w, h.Logger, "Recover", err)
		return
	}
	resp := recoverResponse{Outcome: res.Outcome.String()}
	if res.Outcome == recovery.Succeeded {
		resp.Token = res.Token
		resp.ExpiresAt = res.ExpiresAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reset новый мастер-пароль по одноразовому допуску
func (h *RecoveryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.Logger.Warnw("Reset: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	err := h.Vault.CompleteReset(r.Context(), req.Token, req.NewPassword, req.Confirm)
	if errors.Is(err, common.ErrAuthorization) {
		http.Error(w, "recovery token is invalid or already used", http.StatusForbidden)
		return
	}
	if err != nil {
		writeError(w, h.Logger, "Reset", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "ok"})
}
