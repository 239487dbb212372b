package repo

import (
	"MyPass/internal/common"
	"MyPass/internal/model"
	"MyPass/internal/model/view"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FieldInput — поле элемента в открытом виде.
type FieldInput struct {
	Key   string
	Value string
}

// ItemInput — данные нового элемента.
type ItemInput struct {
	Type   string
	Name   string
	Fields []FieldInput
}

// ItemUpdate — изменение элемента.
// Поле из Fields с существующим ключом заменяет значение, с новым ключом — добавляется в конец.
// Ключи, не упомянутые в Fields и RemoveKeys, остаются без изменений.
type ItemUpdate struct {
	Name       *string
	Fields     []FieldInput
	RemoveKeys []string
}

func (u ItemUpdate) empty() bool {
	return u.Name == nil && len(u.Fields) == 0 && len(u.RemoveKeys) == 0
}

// validateFields проверяет ключи: непустые и уникальные в пределах элемента.
func validateFields(fields []FieldInput) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		k := strings.TrimSpace(f.Key)
		if k == "" {
			return validationf("field key is required")
		}
		if _, dup := seen[k]; dup {
			return validationf("duplicate field key %q", k)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// encryptFields шифрует значения. Открытый текст дальше этой функции не уходит.
func (s *CredentialStore) encryptFields(fields []FieldInput) ([]model.VaultField, error) {
	out := make([]model.VaultField, 0, len(fields))
	for i, f := range fields {
		ct, err := s.cipher.EncryptString(f.Value)
		if err != nil {
			if !errors.Is(err, common.ErrEncryption) {
				err = errors.Join(common.ErrEncryption, err)
			}
			return nil, err
		}
		out = append(out, model.VaultField{Position: i, Key: strings.TrimSpace(f.Key), Value: ct})
	}
	return out, nil
}

// AddItem создаёт элемент и все его поля в одной транзакции.
func (s *CredentialStore) AddItem(ctx context.Context, userID int64, in ItemInput) (*view.DecryptedItem, error) {
	if strings.TrimSpace(in.Type) == "" {
		return nil, validationf("item type is required")
	}
	typ, err := model.ParseItemType(in.Type)
	if err != nil {
		return nil, validationf("%v", err)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationf("item name is required")
	}
	if err := validateFields(in.Fields); err != nil {
		return nil, err
	}
	fields, err := s.encryptFields(in.Fields)
	if err != nil {
		return nil, err
	}

	item := &model.VaultItem{UserID: userID, Type: typ, Name: name}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(item).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		for i := range fields {
			fields[i].VaultItemID = item.ID
		}
		return tx.Create(&fields).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	item.Fields = fields

	s.logger.Infow("vault item created", "user_id", userID, "item_id", item.ID, "fields", len(fields))
	d := s.decryptItem(item)
	return &d, nil
}

// lockOwnedItem загружает элемент под блокировкой и проверяет владельца.
// Вызывается внутри той же транзакции, что и изменение.
func lockOwnedItem(tx *gorm.DB, userID, itemID int64) (*model.VaultItem, error) {
	var item model.VaultItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&item, itemID).Error
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, common.ErrAuthorization
	}
	return &item, nil
}

// ModifyItem изменяет элемент: имя, значения полей по ключу, удаление полей.
func (s *CredentialStore) ModifyItem(ctx context.Context, userID, itemID int64, upd ItemUpdate) error {
	if upd.empty() {
		return validationf("nothing to update")
	}
	var newName string
	if upd.Name != nil {
		newName = strings.TrimSpace(*upd.Name)
		if newName == "" {
			return validationf("item name is required")
		}
	}
	if err := validateFields(upd.Fields); err != nil {
		return err
	}
	remove := make(map[string]struct{}, len(upd.RemoveKeys))
	for _, k := range upd.RemoveKeys {
		remove[strings.TrimSpace(k)] = struct{}{}
	}
	for _, f := range upd.Fields {
		if _, ok := remove[strings.TrimSpace(f.Key)]; ok {
			return validationf("field %q is both updated and removed", f.Key)
		}
	}
	encrypted, err := s.encryptFields(upd.Fields)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := lockOwnedItem(tx, userID, itemID)
		if err != nil {
			return err
		}

		existing := make(map[string]model.VaultField, len(item.Fields))
		nextPos := 0
		for _, f := range item.Fields {
			existing[f.Key] = f
			if f.Position >= nextPos {
				nextPos = f.Position + 1
			}
		}

		for k := range remove {
			f, ok := existing[k]
			if !ok {
				return validationf("no field %q", k)
			}
			if err := tx.Delete(&model.VaultField{}, f.ID).Error; err != nil {
				return err
			}
		}

		for _, nf := range encrypted {
			if cur, ok := existing[nf.Key]; ok {
				if err := tx.Model(&model.VaultField{}).Where("id = ?", cur.ID).Update("value", nf.Value).Error; err != nil {
					return err
				}
				continue
			}
			nf.VaultItemID = item.ID
			nf.Position = nextPos
			nextPos++
			if err := tx.Create(&nf).Error; err != nil {
				return err
			}
		}

		updates := map[string]any{"updated_at": s.now()}
		if upd.Name != nil {
			updates["name"] = newName
		}
		return tx.Model(&model.VaultItem{}).Where("id = ?", item.ID).Updates(updates).Error
	})
	if err != nil {
		return translate(err)
	}

	s.logger.Infow("vault item modified", "user_id", userID, "item_id", itemID)
	return nil
}

// DeleteItem удаляет элемент и все его поля как одно целое.
func (s *CredentialStore) DeleteItem(ctx context.Context, userID, itemID int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := lockOwnedItem(tx, userID, itemID)
		if err != nil {
			return err
		}
		if err := tx.Where("vault_item_id = ?", item.ID).Delete(&model.VaultField{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.VaultItem{}, item.ID).Error
	})
	if err != nil {
		return translate(err)
	}
	s.logger.Infow("vault item deleted", "user_id", userID, "item_id", itemID)
	return nil
}

// GetItem возвращает один расшифрованный элемент пользователя.
func (s *CredentialStore) GetItem(ctx context.Context, userID, itemID int64) (*view.DecryptedItem, error) {
	var item model.VaultItem
	err := s.db.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&item, itemID).Error
	if err != nil {
		return nil, translate(err)
	}
	if item.UserID != userID {
		return nil, common.ErrAuthorization
	}
	d := s.decryptItem(&item)
	return &d, nil
}

// ListItems возвращает элементы пользователя с расшифрованными полями.
// Элементы и поля читаются в одной транзакции, чтобы набор полей был согласован.
func (s *CredentialStore) ListItems(ctx context.Context, userID int64) ([]view.DecryptedItem, error) {
	var items []model.VaultItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("user_id = ?", userID).
			Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
			Order("id ASC").
			Find(&items).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	out := make([]view.DecryptedItem, 0, len(items))
	for i := range items {
		out = append(out, s.decryptItem(&items[i]))
	}
	return out, nil
}

// decryptItem расшифровывает поля. Ошибка одного поля не прерывает остальные:
// поле помечается как Unreadable, причина пишется только в журнал.
func (s *CredentialStore) decryptItem(it *model.VaultItem) view.DecryptedItem {
	d := view.DecryptedItem{
		ID:        it.ID,
		Type:      it.Type,
		Name:      it.Name,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
		Fields:    make([]view.DecryptedField, 0, len(it.Fields)),
	}
	for _, f := range it.Fields {
		plain, err := s.cipher.DecryptString(f.Value)
		if err != nil {
			s.logger.Warnw("field decryption failed", "item_id", it.ID, "field", f.Key, "error", err)
			d.Fields = append(d.Fields, view.DecryptedField{Key: f.Key, Unreadable: true})
			continue
		}
		d.Fields = append(d.Fields, view.DecryptedField{Key: f.Key, Value: plain})
	}
	return d
}
