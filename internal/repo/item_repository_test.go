package repo

import (
	"MyPass/internal/common"
	"MyPass/internal/model"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// хелпер: пользователь + один элемент Login
func seedItem(t *testing.T, s *CredentialStore, email string) (int64, int64) {
	t.Helper()
	u, err := s.CreateUser(context.Background(), newUserInput(email, "Passw0rd!"))
	require.NoError(t, err)
	it, err := s.AddItem(context.Background(), u.ID, ItemInput{
		Type:   "Login",
		Name:   "Email",
		Fields: []FieldInput{{Key: "user", Value: "a"}, {Key: "pass", Value: "secret1"}},
	})
	require.NoError(t, err)
	return u.ID, it.ID
}

func TestCredentialStore_AddItem_StoresCiphertextOnly(t *testing.T) {
	s, db := newTestStore(t)
	uid, itemID := seedItem(t, s, "a@x.com")

	var fields []model.VaultField
	require.NoError(t, db.Where("vault_item_id = ?", itemID).Order("position").Find(&fields).Error)
	if assert.Len(t, fields, 2) {
		assert.Equal(t, "user", fields[0].Key)
		assert.Equal(t, "pass", fields[1].Key)
		assert.NotEqual(t, "a", fields[0].Value)
		assert.NotContains(t, fields[1].Value, "secret1")
	}

	items, err := s.ListItems(context.Background(), uid)
	require.NoError(t, err)
	if assert.Len(t, items, 1) {
		it := items[0]
		assert.Equal(t, model.ItemTypeLogin, it.Type)
		assert.Equal(t, "Email", it.Name)
		f, ok := it.Field("user")
		assert.True(t, ok)
		assert.Equal(t, "a", f.Value)
		f, _ = it.Field("pass")
		assert.Equal(t, "secret1", f.Value)
		assert.False(t, it.CreatedAt.IsZero())
	}
}

func TestCredentialStore_AddItem_Validation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	cases := map[string]ItemInput{
		"empty type":    {Type: "", Name: "n"},
		"unknown type":  {Type: "bank", Name: "n"},
		"empty name":    {Type: "login", Name: "  "},
		"empty key":     {Type: "login", Name: "n", Fields: []FieldInput{{Key: "", Value: "v"}}},
		"duplicate key": {Type: "login", Name: "n", Fields: []FieldInput{{Key: "k", Value: "1"}, {Key: "k", Value: "2"}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.AddItem(ctx, 1, in)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

// Сбой после вставки элемента, но до вставки полей, не оставляет элемента без полей.
func TestCredentialStore_AddItem_AtomicOnFieldFailure(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, newUserInput("a@x.com", "Passw0rd!"))
	require.NoError(t, err)

	err = db.Callback().Create().Before("gorm:create").Register("test:fail_fields", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "vault_fields" {
			_ = tx.AddError(errors.New("simulated crash"))
		}
	})
	require.NoError(t, err)

	_, err = s.AddItem(ctx, u.ID, ItemInput{Type: "login", Name: "Email", Fields: []FieldInput{{Key: "user", Value: "a"}}})
	assert.ErrorIs(t, err, common.ErrInternal)

	var items, fields int64
	db.Model(&model.VaultItem{}).Count(&items)
	db.Model(&model.VaultField{}).Count(&fields)
	assert.Zero(t, items)
	assert.Zero(t, fields)
}

func TestCredentialStore_DeleteItem_AtomicOnItemFailure(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()
	uid, itemID := seedItem(t, s, "a@x.com")

	// поля уже удалены, удаление самого элемента падает
	err := db.Callback().Delete().Before("gorm:delete").Register("test:fail_item_delete", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "vault_items" {
			_ = tx.AddError(errors.New("simulated crash"))
		}
	})
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteItem(ctx, uid, itemID), common.ErrInternal)

	require.NoError(t, db.Callback().Delete().Remove("test:fail_item_delete"))
	it, err := s.GetItem(ctx, uid, itemID)
	require.NoError(t, err)
	require.Len(t, it.Fields, 2)
	assert.Equal(t, "secret1", it.Fields[1].Value)
}

func TestCredentialStore_ModifyItem_AtomicOnItemFailure(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()
	uid, itemID := seedItem(t, s, "a@x.com")
	before, err := s.GetItem(ctx, uid, itemID)
	require.NoError(t, err)

	// замена, добавление и удаление полей проходят, обновление элемента падает
	err = db.Callback().Update().Before("gorm:update").Register("test:fail_item_update", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "vault_items" {
			_ = tx.AddError(errors.New("simulated crash"))
		}
	})
	require.NoError(t, err)

	name := "Renamed"
	err = s.ModifyItem(ctx, uid, itemID, ItemUpdate{
		Name:       &name,
		Fields:     []FieldInput{{Key: "pass", Value: "changed"}, {Key: "otp", Value: "123456"}},
		RemoveKeys: []string{"user"},
	})
	assert.ErrorIs(t, err, common.ErrInternal)

	require.NoError(t, db.Callback().Update().Remove("test:fail_item_update"))
	after, err := s.GetItem(ctx, uid, itemID)
	require.NoError(t, err)
	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, before.UpdatedAt.Unix(), after.UpdatedAt.Unix())
	assert.Equal(t, before.Fields, after.Fields)

	var fields int64
	db.Model(&model.VaultField{}).Where("vault_item_id = ?", itemID).Count(&fields)
	assert.Equal(t, int64(2), fields)
}

func TestCredentialStore_Authorization(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	ownerID, itemID := seedItem(t, s, "y@x.com")
	other, err := s.CreateUser(ctx, newUserInput("x@x.com", "Passw0rd!"))
	require.NoError(t, err)

	name := "stolen"
	assert.ErrorIs(t, s.ModifyItem(ctx, other.ID, itemID, ItemUpdate{Name: &name}), common.ErrAuthorization)
	assert.ErrorIs(t, s.DeleteItem(ctx, other.ID, itemID), common.ErrAuthorization)
	got, err := s.GetItem(ctx, other.ID, itemID)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, common.ErrAuthorization)

	list, err := s.ListItems(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	// данные владельца не изменились
	it, err := s.GetItem(ctx, ownerID, itemID)
	require.NoError(t, err)
	assert.Equal(t, "Email", it.Name)

	// несуществующий элемент
	assert.ErrorIs(t, s.DeleteItem(ctx, ownerID, 12345), common.ErrNotFound)
	assert.ErrorIs(t, s.ModifyItem(ctx, ownerID, 12345, ItemUpdate{Name: &name}), common.ErrNotFound)
	_, err = s.GetItem(ctx, ownerID, 12345)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCredentialStore_ModifyItem_ReplaceByKey(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	uid, itemID := seedItem(t, s, "a@x.com")

	before, err := s.GetItem(ctx, uid, itemID)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	name := "Work email"
	err = s.ModifyItem(ctx, uid, itemID, ItemUpdate{
		Name:   &name,
		Fields: []FieldInput{{Key: "pass", Value: "secret2"}, {Key: "url", Value: "https://mail"}},
	})
	require.NoError(t, err)

	after, err := s.GetItem(ctx, uid, itemID)
	require.NoError(t, err)
	assert.Equal(t, "Work email", after.Name)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	if assert.Len(t, after.Fields, 3) {
		// существующие ключи сохраняют позицию, новые добавляются в конец
		assert.Equal(t, "user", after.Fields[0].Key)
		assert.Equal(t, "a", after.Fields[0].Value)
		assert.Equal(t, "pass", after.Fields[1].Key)
		assert.Equal(t, "secret2", after.Fields[1].Value)
		assert.Equal(t, "url", after.Fields[2].Key)
	}

	// удаление поля по ключу
	require.NoError(t, s.ModifyItem(ctx, uid, itemID, ItemUpdate{RemoveKeys: []string{"url"}}))
	after, _ = s.GetItem(ctx, uid, itemID)
	assert.Len(t, after.Fields, 2)
	_, ok := after.Field("url")
	assert.False(t, ok)
}

func TestCredentialStore_ModifyItem_Validation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	uid, itemID := seedItem(t, s, "a@x.com")

	empty := " "
	assert.ErrorIs(t, s.ModifyItem(ctx, uid, itemID, ItemUpdate{}), common.ErrValidation)
	assert.ErrorIs(t, s.ModifyItem(ctx, uid, itemID, ItemUpdate{Name: &empty}), common.ErrValidation)
	assert.ErrorIs(t, s.ModifyItem(ctx, uid, itemID, ItemUpdate{
		Fields: []FieldInput{{Key: "k", Value: "1"}, {Key: "k", Value: "2"}},
	}), common.ErrValidation)
	assert.ErrorIs(t, s.ModifyItem(ctx, uid, itemID, ItemUpdate{
		Fields: []FieldInput{{Key: "user", Value: "b"}}, RemoveKeys: []string{"user"},
	}), common.ErrValidation)

	// удаление несуществующего ключа откатывает всю операцию
	name := "renamed"
	assert.ErrorIs(t, s.ModifyItem(ctx, uid, itemID, ItemUpdate{Name: &name, RemoveKeys: []string{"nope"}}), common.ErrValidation)
	it, _ := s.GetItem(ctx, uid, itemID)
	assert.Equal(t, "Email", it.Name)
}

func TestCredentialStore_DeleteItem_RemovesFields(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()
	uid, itemID := seedItem(t, s, "a@x.com")

	require.NoError(t, s.DeleteItem(ctx, uid, itemID))

	var items, fields int64
	db.Model(&model.VaultItem{}).Count(&items)
	db.Model(&model.VaultField{}).Where("vault_item_id = ?", itemID).Count(&fields)
	assert.Zero(t, items)
	assert.Zero(t, fields)

	assert.ErrorIs(t, s.DeleteItem(ctx, uid, itemID), common.ErrNotFound)
}

func TestCredentialStore_ListItems_UnreadableFieldDoesNotAbort(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()
	uid, itemID := seedItem(t, s, "a@x.com")

	// портим шифртекст одного поля
	require.NoError(t, db.Model(&model.VaultField{}).
		Where("vault_item_id = ? AND key = ?", itemID, "pass").
		Update("value", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA").Error)

	items, err := s.ListItems(ctx, uid)
	require.NoError(t, err)
	require.Len(t, items, 1)

	user, _ := items[0].Field("user")
	assert.Equal(t, "a", user.Value)
	assert.False(t, user.Unreadable)

	pass, _ := items[0].Field("pass")
	assert.True(t, pass.Unreadable)
	assert.Empty(t, pass.Value)
}

func TestCredentialStore_ListItems_Idempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	uid, _ := seedItem(t, s, "a@x.com")
	_, err := s.AddItem(ctx, uid, ItemInput{Type: "Secure Note", Name: "Note", Fields: []FieldInput{{Key: "note", Value: "hello"}}})
	require.NoError(t, err)

	first, err := s.ListItems(ctx, uid)
	require.NoError(t, err)
	second, err := s.ListItems(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}
