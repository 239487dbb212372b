package handlers

import (
	"MyPass/internal/passgen"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// ToolsHandler — вспомогательные эндпоинты без состояния.
type ToolsHandler struct {
	Logger *zap.SugaredLogger
}

func NewToolsHandler(logger *zap.SugaredLogger) *ToolsHandler {
	return &ToolsHandler{Logger: logger}
}

type generateRequest struct {
	Length     int    `json:"length"`
	Complexity string `json:"complexity"`
}

// Generate генерация пароля. Пустое тело — параметры по умолчанию.
func (h *ToolsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.Logger.Warnw("Generate: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	pw, err := passgen.Generate(passgen.Options{Length: req.Length, Complexity: passgen.Complexity(req.Complexity)})
	if err != nil {
		writeError(w, h.Logger, "Generate", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"password": pw})
}

// CSRFToken отдаёт токен в заголовке X-CSRF-Token. При выключенной защите токен пустой.
func (h *ToolsHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token := csrf.Token(r)
	if token != "" {
		w.Header().Set("X-CSRF-Token", token)
	}
	writeJSON(w, http.StatusOK, map[string]any{"enabled": token != "", "token": token})
}
