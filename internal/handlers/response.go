package handlers

import (
	"MyPass/internal/common"
	"MyPass/internal/model/view"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// maxBodyBytes — лимит тела JSON-запроса.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError переводит доменную ошибку в HTTP-ответ.
// Чужая и несуществующая запись неразличимы снаружи: обе дают 404.
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, common.ErrAuthentication):
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, common.ErrAuthorization), errors.Is(err, common.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, common.ErrDuplicateEmail):
		http.Error(w, "email already registered", http.StatusConflict)
	default:
		logger.Errorw(op+": service error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type fieldDTO struct {
	Key        string `json:"key"`
	Value      string `json:"value"`
	Unreadable bool   `json:"unreadable,omitempty"`
}

type itemDTO struct {
	ID        int64      `json:"id"`
	Type      string     `json:"type"`
	TypeTitle string     `json:"type_title"`
	Name      string     `json:"name"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
	Fields    []fieldDTO `json:"fields"`
}

func toItemDTO(it view.DecryptedItem, reveal bool) itemDTO {
	if !reveal {
		it = it.Masked()
	}
	fields := make([]fieldDTO, 0, len(it.Fields))
	for _, f := range it.Fields {
		fields = append(fields, fieldDTO{Key: f.Key, Value: f.Value, Unreadable: f.Unreadable})
	}
	return itemDTO{
		ID:        it.ID,
		Type:      string(it.Type),
		TypeTitle: it.Type.Title(),
		Name:      it.Name,
		CreatedAt: it.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: it.UpdatedAt.UTC().Format(time.RFC3339),
		Fields:    fields,
	}
}
