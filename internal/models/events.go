package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderClicked   = "order_clicked"
	EventTypeOrderSubmitted = "order_submitted"
)

// OrderEvent is an analytics record appended on checkout
type OrderEvent struct {
	ID         string          `db:"id" json:"id,omitempty"`
	Type       string          `db:"type" json:"type"`
	BranchID   string          `db:"branch_id" json:"branch_id"`
	BranchName string          `db:"branch_name" json:"branch_name"`
	Language   string          `db:"language" json:"language"`
	ItemCount  int             `db:"item_count" json:"item_count,omitempty"`
	Items      EventItems      `db:"items" json:"items,omitempty"`
	Total      decimal.Decimal `db:"total" json:"total"`
	Notes      string          `db:"notes" json:"notes,omitempty"`
	Timestamp  Timestamp       `db:"timestamp" json:"timestamp"`
	Offline    bool            `db:"offline" json:"offline,omitempty"`
}

// EventItem is the snapshot of one ordered line
type EventItem struct {
	ItemID   string          `json:"item_id"`
	ItemName string          `json:"item_name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// EventItems is stored as a JSONB column
type EventItems []EventItem

// Value implements driver.Valuer
func (e EventItems) Value() (driver.Value, error) {
	if e == nil {
		return "[]", nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (e *EventItems) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*e = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported items column type %T", src)
	}
	return json.Unmarshal(data, e)
}

// OrderEventPayload is the caller-supplied part of an event
type OrderEventPayload struct {
	BranchID   string
	BranchName string
	Language   string
	ItemCount  int
	Items      []EventItem
	Total      decimal.Decimal
	Notes      string
}

// CatalogChange notifies caches that a collection was modified
type CatalogChange struct {
	Collection string `json:"collection"`
	Action     string `json:"action"`
	ID         string `json:"id"`
}

// Catalog collections
const (
	CollectionMenuItems = "menuItems"
	CollectionBranches  = "branches"
)
