package model

import (
	"fmt"
	"strings"
)

// ItemType — тип элемента хранилища. Новые типы добавляются константами.
type ItemType string

const (
	ItemTypeLogin      ItemType = "login"
	ItemTypeCreditCard ItemType = "credit_card"
	ItemTypeIdentity   ItemType = "identity"
	ItemTypeSecureNote ItemType = "secure_note"
)

// ItemTypes — все поддерживаемые типы.
var ItemTypes = []ItemType{ItemTypeLogin, ItemTypeCreditCard, ItemTypeIdentity, ItemTypeSecureNote}

// ParseItemType принимает как машинное имя ("credit_card"), так и отображаемое ("Credit Card").
func ParseItemType(s string) (ItemType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, t := range ItemTypes {
		if string(t) == norm {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown item type %q", s)
}

// Title возвращает отображаемое имя типа.
func (t ItemType) Title() string {
	switch t {
	case ItemTypeLogin:
		return "Login"
	case ItemTypeCreditCard:
		return "Credit Card"
	case ItemTypeIdentity:
		return "Identity"
	case ItemTypeSecureNote:
		return "Secure Note"
	}
	return string(t)
}
