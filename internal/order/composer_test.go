package order

import (
	"net/url"
	"strings"
	"testing"

	"storefront/internal/i18n"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog map[string]models.MenuItem

func (f fakeCatalog) Item(id string) (models.MenuItem, bool) {
	item, ok := f[id]
	return item, ok
}

var menu = fakeCatalog{
	"falafel": {ID: "falafel", NameAr: "ساندوتش فلافل", NameEn: "Falafel Sandwich", Price: decimal.RequireFromString("4.5"), Available: true},
	"juice":   {ID: "juice", NameAr: "عصير", NameEn: "Juice", Price: decimal.NewFromInt(6), Available: true},
}

var branch = &models.Branch{ID: "b1", Name: "Olaya", Phone: "+966 5 1234 5678", Active: true}

func TestComposeEnglish(t *testing.T) {
	composer := NewComposer("")
	lines := []models.CartLine{{ItemID: "falafel", Quantity: 2}, {ItemID: "juice", Quantity: 1}}

	c, err := composer.Compose(branch, lines, menu, i18n.English, "no onions")
	require.NoError(t, err)

	want := "Hello,\nBranch: Olaya\nOrder:\nFalafel Sandwich × 2\nJuice × 1\n\nNotes: no onions\n\nTotal: 15.00 SAR"
	assert.Equal(t, want, c.Message)
	assert.True(t, decimal.NewFromInt(15).Equal(c.Total))
	assert.Len(t, c.Items, 2)
}

func TestComposeArabicWithoutNotes(t *testing.T) {
	composer := NewComposer("")
	lines := []models.CartLine{{ItemID: "juice", Quantity: 3}}

	c, err := composer.Compose(branch, lines, menu, i18n.Arabic, "   ")
	require.NoError(t, err)

	assert.Equal(t, "السلام عليكم،\nالفرع: Olaya\nالطلب:\nعصير × 3\n\nالمجموع: 18.00 ريال", c.Message)
	assert.NotContains(t, c.Message, "ملاحظات")
}

func TestComposeLinkUsesPhoneDigits(t *testing.T) {
	composer := NewComposer("https://wa.me/")
	lines := []models.CartLine{{ItemID: "falafel", Quantity: 1}}

	c, err := composer.Compose(branch, lines, menu, i18n.English, "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(c.URL, "https://wa.me/966512345678?text="), c.URL)

	parsed, err := url.Parse(c.URL)
	require.NoError(t, err)
	assert.Equal(t, c.Message, parsed.Query().Get("text"))
	assert.NotContains(t, c.URL, " ")
}

func TestComposeGuards(t *testing.T) {
	composer := NewComposer("")

	_, err := composer.Compose(nil, []models.CartLine{{ItemID: "juice", Quantity: 1}}, menu, i18n.English, "")
	assert.ErrorIs(t, err, ErrNoBranch)

	_, err = composer.Compose(branch, nil, menu, i18n.English, "")
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = composer.Compose(branch, []models.CartLine{{ItemID: "deleted", Quantity: 2}}, menu, i18n.English, "")
	assert.ErrorIs(t, err, ErrEmptyCart)
}
