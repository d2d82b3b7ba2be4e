package storefront

import (
	"storefront/internal/catalog"
	"storefront/internal/i18n"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// BranchView is a branch as offered to customers
type BranchView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Hours       string `json:"hours"`
	MapLink     string `json:"map_link"`
	MapEmbedURL string `json:"map_embed_url"`
	Slug        string `json:"slug"`
	Selected    bool   `json:"selected"`
}

// MenuItemView is a localized menu entry
type MenuItemView struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	ImageURL     string          `json:"image_url"`
	Available    bool            `json:"available"`
	Availability string          `json:"availability"`
	InCart       int             `json:"in_cart"`
}

// MenuSection groups items of one category under a localized title
type MenuSection struct {
	Category models.Category `json:"category"`
	Title    string          `json:"title"`
	Items    []MenuItemView  `json:"items"`
}

// MenuView is the localized menu of the selected branch
type MenuView struct {
	Language    i18n.Language  `json:"language"`
	Direction   i18n.Direction `json:"direction"`
	Title       string         `json:"title"`
	Branch      *BranchView    `json:"branch"`
	Sections    []MenuSection  `json:"sections"`
	Placeholder string         `json:"placeholder,omitempty"`
}

// CartLineView is a localized cart line
type CartLineView struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartView is the localized cart with its live total
type CartView struct {
	Title      string          `json:"title"`
	Lines      []CartLineView  `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	TotalLabel string          `json:"total_label"`
	Currency   string          `json:"currency"`
	Empty      bool            `json:"empty"`
}

// SessionView summarizes the visitor state
type SessionView struct {
	ID        string         `json:"id"`
	Language  i18n.Language  `json:"language"`
	Direction i18n.Direction `json:"direction"`
	Branch    *BranchView    `json:"branch"`
	Cart      CartView       `json:"cart"`
}

func newBranchView(b models.Branch, selected bool) BranchView {
	return BranchView{
		ID:          b.ID,
		Name:        b.Name,
		Address:     b.Address,
		Phone:       b.Phone,
		Hours:       b.Hours,
		MapLink:     b.MapLink,
		MapEmbedURL: catalog.MapEmbedURL(b.MapLink),
		Slug:        catalog.Slug(b.Name),
		Selected:    selected,
	}
}

// Branches lists the active branches, marking the selected one
func (s *Session) Branches() []BranchView {
	selected := s.Branch()
	branches := s.catalog.Branches()
	views := make([]BranchView, len(branches))
	for i, b := range branches {
		views[i] = newBranchView(b, selected != nil && selected.ID == b.ID)
	}
	return views
}

func (s *Session) branchView() *BranchView {
	b := s.Branch()
	if b == nil {
		return nil
	}
	view := newBranchView(*b, true)
	return &view
}

// Menu renders the menu grouped in category order
func (s *Session) Menu() MenuView {
	lang := s.locale.Language()
	view := MenuView{
		Language:  lang,
		Direction: lang.Direction(),
		Title:     i18n.Label(i18n.LabelMenu, lang),
		Branch:    s.branchView(),
		Sections:  []MenuSection{},
	}

	for _, category := range models.Categories {
		items := s.catalog.ItemsIn(category)
		if len(items) == 0 {
			continue
		}
		section := MenuSection{
			Category: category,
			Title:    i18n.CategoryTitle(category).In(lang),
			Items:    make([]MenuItemView, len(items)),
		}
		for i, item := range items {
			availability := i18n.LabelInStock
			if !item.Available {
				availability = i18n.LabelOutOfStock
			}
			section.Items[i] = MenuItemView{
				ID:           item.ID,
				Name:         i18n.ItemName(item).In(lang),
				Price:        item.Price,
				Currency:     i18n.Label(i18n.LabelCurrency, lang),
				ImageURL:     item.Image(),
				Available:    item.Available,
				Availability: i18n.Label(availability, lang),
				InCart:       s.ledger.Quantity(item.ID),
			}
		}
		view.Sections = append(view.Sections, section)
	}

	if len(view.Sections) == 0 {
		view.Placeholder = i18n.Label(i18n.LabelNoMenuItems, lang)
	}
	return view
}

// Cart renders the cart lines that still resolve to menu items
func (s *Session) Cart() CartView {
	lang := s.locale.Language()
	view := CartView{
		Title:      i18n.Label(i18n.LabelOrderCart, lang),
		Lines:      []CartLineView{},
		Total:      s.ledger.Total(),
		TotalLabel: i18n.Label(i18n.LabelTotal, lang),
		Currency:   i18n.Label(i18n.LabelCurrency, lang),
	}

	for _, line := range s.ledger.Lines() {
		item, ok := s.catalog.Item(line.ItemID)
		if !ok {
			continue
		}
		view.Lines = append(view.Lines, CartLineView{
			ID:       line.ItemID,
			Name:     i18n.ItemName(item).In(lang),
			Quantity: line.Quantity,
			Price:    item.Price,
			Subtotal: item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}
	view.Empty = len(view.Lines) == 0
	return view
}

// View summarizes the session
func (s *Session) View() SessionView {
	lang := s.locale.Language()
	return SessionView{
		ID:        s.id,
		Language:  lang,
		Direction: lang.Direction(),
		Branch:    s.branchView(),
		Cart:      s.Cart(),
	}
}
