package cart

import (
	"context"
	"sync"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Catalog resolves menu items referenced by cart lines
type Catalog interface {
	Item(id string) (models.MenuItem, bool)
}

// Store persists the cart of one visitor
type Store interface {
	LoadCart(ctx context.Context) ([]models.CartLine, error)
	SaveCart(ctx context.Context, lines []models.CartLine) error
}

// Ledger maps menu item ids to quantities. Lines keep insertion order and
// never hold a quantity below one.
type Ledger struct {
	mu        sync.Mutex
	catalog   Catalog
	store     Store
	lines     []models.CartLine
	listeners []func([]models.CartLine)
	logger    *zap.Logger
}

// NewLedger creates an empty ledger
func NewLedger(catalog Catalog, store Store) *Ledger {
	return &Ledger{
		catalog: catalog,
		store:   store,
		logger:  util.GetLogger(),
	}
}

// Load restores the persisted cart, dropping malformed lines
func (l *Ledger) Load(ctx context.Context) {
	stored, err := l.store.LoadCart(ctx)
	if err != nil {
		l.logger.Warn("Failed to load cart", zap.Error(err))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines = l.lines[:0]
	seen := make(map[string]bool, len(stored))
	for _, line := range stored {
		if line.ItemID == "" || line.Quantity <= 0 || seen[line.ItemID] {
			continue
		}
		seen[line.ItemID] = true
		l.lines = append(l.lines, line)
	}
}

// Add puts one more unit of an available item into the cart.
// Missing or unavailable items are ignored.
func (l *Ledger) Add(ctx context.Context, itemID string) {
	item, ok := l.catalog.Item(itemID)
	if !ok || !item.Available {
		return
	}

	l.mu.Lock()
	if i := l.indexOf(itemID); i >= 0 {
		l.lines[i].Quantity++
	} else {
		l.lines = append(l.lines, models.CartLine{ItemID: itemID, Quantity: 1})
	}
	l.mu.Unlock()

	l.commit(ctx, "add")
}

// ChangeQuantity adds delta to an existing line and removes it once the
// quantity drops to zero or below. Unknown lines are ignored.
func (l *Ledger) ChangeQuantity(ctx context.Context, itemID string, delta int) {
	l.mu.Lock()
	i := l.indexOf(itemID)
	if i < 0 {
		l.mu.Unlock()
		return
	}
	l.lines[i].Quantity += delta
	if l.lines[i].Quantity <= 0 {
		l.lines = append(l.lines[:i], l.lines[i+1:]...)
	}
	l.mu.Unlock()

	l.commit(ctx, "change_quantity")
}

// Remove drops a line if present
func (l *Ledger) Remove(ctx context.Context, itemID string) {
	l.mu.Lock()
	if i := l.indexOf(itemID); i >= 0 {
		l.lines = append(l.lines[:i], l.lines[i+1:]...)
	}
	l.mu.Unlock()

	l.commit(ctx, "remove")
}

// Lines returns a copy of the cart lines in insertion order
func (l *Ledger) Lines() []models.CartLine {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.CartLine(nil), l.lines...)
}

// Quantity returns the quantity held for an item, zero when absent
func (l *Ledger) Quantity(itemID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(itemID); i >= 0 {
		return l.lines[i].Quantity
	}
	return 0
}

// Empty reports whether the cart has no lines
func (l *Ledger) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines) == 0
}

// Total sums price times quantity using the current catalog prices.
// Lines whose item no longer exists are skipped.
func (l *Ledger) Total() decimal.Decimal {
	return Total(l.Lines(), l.catalog)
}

// Total sums lines against catalog prices
func Total(lines []models.CartLine, catalog Catalog) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		item, ok := catalog.Item(line.ItemID)
		if !ok {
			continue
		}
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// OnChange registers a listener called after every mutation
func (l *Ledger) OnChange(fn func([]models.CartLine)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

func (l *Ledger) indexOf(itemID string) int {
	for i, line := range l.lines {
		if line.ItemID == itemID {
			return i
		}
	}
	return -1
}

// commit persists the ledger and then notifies listeners
func (l *Ledger) commit(ctx context.Context, op string) {
	lines := l.Lines()

	if err := l.store.SaveCart(ctx, lines); err != nil {
		l.logger.Error("Failed to persist cart", zap.String("op", op), zap.Error(err))
	}
	util.CartMutationsTotal.WithLabelValues(op).Inc()

	l.mu.Lock()
	listeners := append([]func([]models.CartLine){}, l.listeners...)
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(lines)
	}
}
