package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category groups menu items on the storefront
type Category string

// Menu categories, in display order
const (
	CategorySandwich Category = "sandwich"
	CategoryMeal     Category = "meal"
	CategorySide     Category = "side"
	CategoryDrink    Category = "drink"
)

// Categories lists every category in the order the menu renders them
var Categories = []Category{CategorySandwich, CategoryMeal, CategorySide, CategoryDrink}

// ParseCategory maps free text to a known category, defaulting to sandwich
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategorySandwich
}

// DefaultImageURL is shown for menu items without an image of their own
const DefaultImageURL = "images/fresh-falafel.jpg"

// MenuItem represents a dish or drink on the menu
type MenuItem struct {
	ID        string          `db:"id" json:"id"`
	NameAr    string          `db:"name_ar" json:"name_ar"`
	NameEn    string          `db:"name_en" json:"name_en"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Category  Category        `db:"category" json:"category"`
	Available bool            `db:"available" json:"available"`
	ImageURL  string          `db:"image_url" json:"image_url,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Image returns the item image or the shared placeholder
func (m MenuItem) Image() string {
	if m.ImageURL == "" {
		return DefaultImageURL
	}
	return m.ImageURL
}

// Branch represents a restaurant location taking orders
type Branch struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	Phone     string    `db:"phone" json:"phone"`
	Hours     string    `db:"hours" json:"hours"`
	MapLink   string    `db:"map_link" json:"map_link"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CartLine is one entry of a visitor cart
type CartLine struct {
	ItemID   string `json:"id"`
	Quantity int    `json:"quantity"`
}

// Admin is an operator allowed into the admin console
type Admin struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
