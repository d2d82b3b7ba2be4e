package order

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/i18n"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the WhatsApp click-to-chat endpoint
const DefaultBaseURL = "https://wa.me"

var (
	ErrNoBranch  = errors.New("no branch selected")
	ErrEmptyCart = errors.New("cart is empty")
)

// Composition is a ready-to-send order
type Composition struct {
	Message string             `json:"message"`
	URL     string             `json:"url"`
	Total   decimal.Decimal    `json:"total"`
	Items   []models.EventItem `json:"items"`
}

// Composer turns a cart into a prefilled message deep link
type Composer struct {
	baseURL string
}

// NewComposer creates a composer for the given messaging base URL
func NewComposer(baseURL string) *Composer {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Composer{baseURL: strings.TrimRight(baseURL, "/")}
}

type messageTemplate struct {
	greeting, branch, order, notes, total string
}

var templates = map[i18n.Language]messageTemplate{
	i18n.Arabic:  {greeting: "السلام عليكم،", branch: "الفرع", order: "الطلب", notes: "ملاحظات", total: "المجموع"},
	i18n.English: {greeting: "Hello,", branch: "Branch", order: "Order", notes: "Notes", total: "Total"},
}

// Snapshot resolves cart lines against the catalog. Lines pointing at
// deleted items are skipped.
func Snapshot(lines []models.CartLine, items cart.Catalog, lang i18n.Language) ([]models.EventItem, decimal.Decimal) {
	snapshot := make([]models.EventItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		item, ok := items.Item(line.ItemID)
		if !ok || line.Quantity <= 0 {
			continue
		}
		snapshot = append(snapshot, models.EventItem{
			ItemID:   line.ItemID,
			ItemName: i18n.ItemName(item).In(lang),
			Quantity: line.Quantity,
			Price:    item.Price,
		})
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return snapshot, total
}

// Compose builds the order message and the deep link to the branch phone
func (c *Composer) Compose(branch *models.Branch, lines []models.CartLine, items cart.Catalog, lang i18n.Language, notes string) (*Composition, error) {
	if branch == nil {
		return nil, ErrNoBranch
	}

	snapshot, total := Snapshot(lines, items, lang)
	if len(snapshot) == 0 {
		return nil, ErrEmptyCart
	}

	tmpl, ok := templates[lang]
	if !ok {
		tmpl = templates[i18n.DefaultLanguage]
	}

	orderLines := make([]string, len(snapshot))
	for i, item := range snapshot {
		orderLines[i] = fmt.Sprintf("%s × %d", item.ItemName, item.Quantity)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s: %s\n%s:\n%s\n", tmpl.greeting, tmpl.branch, branch.Name, tmpl.order, strings.Join(orderLines, "\n"))
	if notes = strings.TrimSpace(notes); notes != "" {
		fmt.Fprintf(&b, "\n%s: %s\n", tmpl.notes, notes)
	}
	fmt.Fprintf(&b, "\n%s: %s %s", tmpl.total, total.StringFixed(2), i18n.Label(i18n.LabelCurrency, lang))

	message := b.String()
	return &Composition{
		Message: message,
		URL:     c.link(branch.Phone, message),
		Total:   total,
		Items:   snapshot,
	}, nil
}

func (c *Composer) link(phone, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return c.baseURL + "/" + catalog.PhoneDigits(phone) + "?text=" + text
}
