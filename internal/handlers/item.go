package handlers

import (
	"MyPass/internal/config"
	"MyPass/internal/events"
	"MyPass/internal/middleware"
	"MyPass/internal/model/view"
	"MyPass/internal/repo"
	"MyPass/internal/service"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ItemHandler — CRUD элементов хранилища текущего пользователя.
type ItemHandler struct {
	Vault  *service.VaultService
	Bus    events.Bus
	Logger *zap.SugaredLogger
	Config *config.Config
}

// NewItemHandler создаёт хендлер items
func NewItemHandler(vault *service.VaultService, bus events.Bus, logger *zap.SugaredLogger, cfg *config.Config) *ItemHandler {
	return &ItemHandler{Vault: vault, Bus: bus, Logger: logger, Config: cfg}
}

type createItemRequest struct {
	Type   string     `json:"type"`
	Name   string     `json:"name"`
	Fields []fieldDTO `json:"fields"`
}

// updateItemRequest — замена по ключу: переданные ключи перезаписываются или добавляются,
// remove_keys удаляются, остальные поля не трогаются.
type updateItemRequest struct {
	Name       *string    `json:"name,omitempty"`
	Fields     []fieldDTO `json:"fields,omitempty"`
	RemoveKeys []string   `json:"remove_keys,omitempty"`
}

func toFieldInputs(in []fieldDTO) []repo.FieldInput {
	out := make([]repo.FieldInput, 0, len(in))
	for _, f := range in {
		out = append(out, repo.FieldInput{Key: f.Key, Value: f.Value})
	}
	return out
}

func itemIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func wantReveal(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("reveal"))
	return v
}

// List список записей; значения скрыты, если не передан reveal=true
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	items, err := h.Vault.ListItems(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, "ListItems", err)
		return
	}
	reveal := wantReveal(r)
	if reveal && len(items) > 0 {
		h.Bus.Publish(events.Event{Name: events.PasswordRevealed, UserID: userID})
	}

	out := make([]itemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, toItemDTO(it, reveal))
	}
	writeJSON(w, http.StatusOK, out)
}

// Create добавление записи
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req createItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.Logger.Warnw("CreateItem: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	it, err := h.Vault.AddItem(r.Context(), userID, repo.ItemInput{
		Type:   req.Type,
		Name:   req.Name,
		Fields: toFieldInputs(req.Fields),
	})
	if err != nil {
		writeError(w, h.Logger, "CreateItem", err)
		return
	}
	h.Bus.Publish(events.Event{Name: events.ItemCreated, UserID: userID, ItemID: it.ID})
	writeJSON(w, http.StatusCreated, toItemDTO(*it, false))
}

// Get одна запись
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	itemID, ok := itemIDParam(r)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	it, err := h.Vault.GetItem(r.Context(), userID, itemID)
	if err != nil {
		writeError(w, h.Logger, "GetItem", err)
		return
	}
	h.respondItem(w, r, userID, it)
}

// Update изменение записи
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	itemID, ok := itemIDParam(r)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var req updateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.Logger.Warnw("UpdateItem: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	upd := repo.ItemUpdate{Name: req.Name, RemoveKeys: req.RemoveKeys}
	if len(req.Fields) > 0 {
		upd.Fields = toFieldInputs(req.Fields)
	}
	it, err := h.Vault.ModifyItem(r.Context(), userID, itemID, upd)
	if err != nil {
		writeError(w, h.Logger, "UpdateItem", err)
		return
	}
	h.respondItem(w, r, userID, it)
}

// Delete удаление записи
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	itemID, ok := itemIDParam(r)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	if err := h.Vault.DeleteItem(r.Context(), userID, itemID); err != nil {
		writeError(w, h.Logger, "DeleteItem", err)
		return
	}
	h.Bus.Publish(events.Event{Name: events.ItemDeleted, UserID: userID, ItemID: itemID})
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) respondItem(w http.ResponseWriter, r *http.Request, userID int64, it *view.DecryptedItem) {
	reveal := wantReveal(r)
	if reveal {
		h.Bus.Publish(events.Event{Name: events.PasswordRevealed, UserID: userID, ItemID: it.ID})
	}
	writeJSON(w, http.StatusOK, toItemDTO(*it, reveal))
}
