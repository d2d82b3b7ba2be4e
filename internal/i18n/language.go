package i18n

import (
	"strings"

	"storefront/internal/models"
)

// Language is a supported display language
type Language string

// Supported languages
const (
	Arabic  Language = "ar"
	English Language = "en"
)

// DefaultLanguage is used when a visitor has no stored preference
const DefaultLanguage = Arabic

// Direction is the text direction of a language
type Direction string

// Text directions
const (
	RTL Direction = "rtl"
	LTR Direction = "ltr"
)

// ParseLanguage accepts "ar" or "en" in any case
func ParseLanguage(s string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case Arabic:
		return Arabic, true
	case English:
		return English, true
	}
	return "", false
}

// Direction returns rtl for Arabic and ltr otherwise
func (l Language) Direction() Direction {
	if l == Arabic {
		return RTL
	}
	return LTR
}

// Toggle switches between the two languages
func (l Language) Toggle() Language {
	if l == Arabic {
		return English
	}
	return Arabic
}

// Text holds both localized variants of a string
type Text struct {
	Ar string `json:"ar"`
	En string `json:"en"`
}

// In picks the variant for lang, falling back to the other one when empty
func (t Text) In(lang Language) string {
	if lang == English {
		if t.En != "" {
			return t.En
		}
		return t.Ar
	}
	if t.Ar != "" {
		return t.Ar
	}
	return t.En
}

// ItemName returns the bilingual name of a menu item
func ItemName(item models.MenuItem) Text {
	return Text{Ar: item.NameAr, En: item.NameEn}
}

// Label keys used by the storefront views
const (
	LabelSelectBranch  = "Select Branch"
	LabelLoading       = "Loading..."
	LabelViewOnMap     = "View on Map"
	LabelMenu          = "Menu"
	LabelOrderCart     = "Order Cart"
	LabelTotal         = "Total:"
	LabelCurrency      = "SAR"
	LabelNotes         = "Notes (optional)"
	LabelOrderWhatsApp = "Order via WhatsApp"
	LabelInStock       = "In Stock"
	LabelOutOfStock    = "Out of Stock"
	LabelAddToCart     = "Add to Cart"
	LabelUpdate        = "Update"
	LabelRemove        = "Remove"
	LabelNoMenuItems   = "No menu items available"
	LabelNoOrders      = "No orders yet"
)

var labels = map[string]Text{
	LabelSelectBranch:  {Ar: "اختر الفرع", En: LabelSelectBranch},
	LabelLoading:       {Ar: "جاري التحميل...", En: LabelLoading},
	LabelViewOnMap:     {Ar: "عرض على الخريطة", En: LabelViewOnMap},
	LabelMenu:          {Ar: "قائمة الطعام", En: LabelMenu},
	LabelOrderCart:     {Ar: "سلة الطلبات", En: LabelOrderCart},
	LabelTotal:         {Ar: "المجموع:", En: LabelTotal},
	LabelCurrency:      {Ar: "ريال", En: LabelCurrency},
	LabelNotes:         {Ar: "ملاحظات (اختياري)", En: LabelNotes},
	LabelOrderWhatsApp: {Ar: "اطلب عبر واتساب", En: LabelOrderWhatsApp},
	LabelInStock:       {Ar: "متوفر", En: LabelInStock},
	LabelOutOfStock:    {Ar: "غير متوفر", En: LabelOutOfStock},
	LabelAddToCart:     {Ar: "أضف للسلة", En: LabelAddToCart},
	LabelUpdate:        {Ar: "تحديث", En: LabelUpdate},
	LabelRemove:        {Ar: "إزالة", En: LabelRemove},
	LabelNoMenuItems:   {Ar: "لا توجد أصناف متاحة", En: LabelNoMenuItems},
	LabelNoOrders:      {Ar: "لا توجد طلبات بعد", En: LabelNoOrders},
}

var categoryTitles = map[models.Category]Text{
	models.CategorySandwich: {Ar: "سندوتشات", En: "Sandwiches"},
	models.CategoryMeal:     {Ar: "وجبات", En: "Meals"},
	models.CategorySide:     {Ar: "جانبية", En: "Sides"},
	models.CategoryDrink:    {Ar: "مشروبات", En: "Drinks"},
}

// Label returns a UI label in lang; unknown keys are returned unchanged
func Label(key string, lang Language) string {
	if t, ok := labels[key]; ok {
		return t.In(lang)
	}
	return key
}

// Labels returns the whole label dictionary in lang, keyed by label key
func Labels(lang Language) map[string]string {
	out := make(map[string]string, len(labels))
	for key, t := range labels {
		out[key] = t.In(lang)
	}
	return out
}

// CategoryTitle returns the bilingual heading of a menu category
func CategoryTitle(c models.Category) Text {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return categoryTitles[models.CategorySandwich]
}

// Translate converts a known label written in either language into lang
func Translate(s string, lang Language) string {
	for _, t := range labels {
		if t.Ar == s || t.En == s {
			return t.In(lang)
		}
	}
	for _, t := range categoryTitles {
		if t.Ar == s || t.En == s {
			return t.In(lang)
		}
	}
	return s
}
