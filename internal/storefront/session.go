package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/internal/cart"
	"storefront/internal/i18n"
	"storefront/internal/models"
	"storefront/internal/order"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// ErrUnknownBranch is returned when selecting a branch that is not active
var ErrUnknownBranch = errors.New("branch not available")

// SessionStore persists the state of one visitor between requests
type SessionStore interface {
	i18n.PreferenceStore
	cart.Store
	LoadBranch(ctx context.Context) (string, error)
	SaveBranch(ctx context.Context, branchID string) error
	Touch(ctx context.Context) error
}

// Locker serializes requests of the same visitor
type Locker interface {
	WaitLock(ctx context.Context, key string, ttl time.Duration) (string, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

// Catalog is the read side of the catalog cache
type Catalog interface {
	cart.Catalog
	ItemsIn(category models.Category) []models.MenuItem
	Branches() []models.Branch
	Branch(id string) (models.Branch, bool)
}

// Recorder appends analytics events
type Recorder interface {
	Record(ctx context.Context, eventType string, payload models.OrderEventPayload) *models.OrderEvent
}

// ChangeKind names what part of a session changed
type ChangeKind string

const (
	ChangeLanguage ChangeKind = "language"
	ChangeBranch   ChangeKind = "branch"
	ChangeCart     ChangeKind = "cart"
)

// Manager opens visitor sessions
type Manager struct {
	slots    func(id string) SessionStore
	locker   Locker
	catalog  Catalog
	composer *order.Composer
	recorder Recorder
	lockTTL  time.Duration
	logger   *zap.Logger
}

// NewManager creates a session manager. locker may be nil when requests of
// one visitor never run concurrently.
func NewManager(slots func(id string) SessionStore, locker Locker, catalog Catalog, composer *order.Composer, recorder Recorder) *Manager {
	return &Manager{
		slots:    slots,
		locker:   locker,
		catalog:  catalog,
		composer: composer,
		recorder: recorder,
		lockTTL:  10 * time.Second,
		logger:   util.GetLogger(),
	}
}

// Session is the storefront state of one visitor: language, selected
// branch and cart. Mutations notify subscribers.
type Session struct {
	id       string
	store    SessionStore
	catalog  Catalog
	composer *order.Composer
	recorder Recorder
	locale   *i18n.Locale
	ledger   *cart.Ledger
	logger   *zap.Logger

	release func(context.Context)

	mu          sync.Mutex
	branchID    string
	subscribers []func(ChangeKind)
}

// Open locks the visitor session and restores its state. Close must be
// called to release the lock.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	ctx, span := util.StartSpan(ctx, "SessionManager.Open")
	defer span.End()

	s := &Session{
		id:       id,
		store:    m.slots(id),
		catalog:  m.catalog,
		composer: m.composer,
		recorder: m.recorder,
		logger:   m.logger.With(zap.String("session_id", id)),
		release:  func(context.Context) {},
	}

	if m.locker != nil {
		key := "session:" + id
		token, err := m.locker.WaitLock(ctx, key, m.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to lock session: %w", err)
		}
		s.release = func(ctx context.Context) {
			if err := m.locker.ReleaseLock(ctx, key, token); err != nil {
				s.logger.Warn("Failed to release session lock", zap.Error(err))
			}
		}
	}

	s.locale = i18n.NewLocale(s.store)
	s.locale.Load(ctx)
	s.ledger = cart.NewLedger(m.catalog, s.store)
	s.ledger.Load(ctx)
	s.restoreBranch(ctx)

	s.locale.OnChange(func(i18n.Language) { s.notify(ChangeLanguage) })
	s.ledger.OnChange(func([]models.CartLine) { s.notify(ChangeCart) })

	if err := s.store.Touch(ctx); err != nil {
		s.logger.Warn("Failed to extend session", zap.Error(err))
	}
	return s, nil
}

// Close releases the session lock
func (s *Session) Close(ctx context.Context) {
	s.release(ctx)
}

// ID returns the visitor session id
func (s *Session) ID() string {
	return s.id
}

// Subscribe registers fn to run after every change of the session
func (s *Session) Subscribe(fn func(ChangeKind)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Session) notify(kind ChangeKind) {
	s.mu.Lock()
	subscribers := append([]func(ChangeKind){}, s.subscribers...)
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(kind)
	}
}

// restoreBranch selects the saved branch when it is still active, else
// the first active branch
func (s *Session) restoreBranch(ctx context.Context) {
	saved, err := s.store.LoadBranch(ctx)
	if err != nil {
		s.logger.Warn("Failed to load saved branch", zap.Error(err))
	}

	if _, ok := s.catalog.Branch(saved); ok && saved != "" {
		s.branchID = saved
		return
	}
	if branches := s.catalog.Branches(); len(branches) > 0 {
		s.branchID = branches[0].ID
	}
}

// Locale returns the session locale
func (s *Session) Locale() *i18n.Locale {
	return s.locale
}

// Ledger returns the session cart
func (s *Session) Ledger() *cart.Ledger {
	return s.ledger
}

// SetLanguage switches and persists the display language
func (s *Session) SetLanguage(ctx context.Context, lang i18n.Language) {
	s.locale.Set(ctx, lang)
}

// ToggleLanguage flips between Arabic and English
func (s *Session) ToggleLanguage(ctx context.Context) i18n.Language {
	return s.locale.Toggle(ctx)
}

// Branch returns the selected branch, or nil when no branch is active
func (s *Session) Branch() *models.Branch {
	s.mu.Lock()
	id := s.branchID
	s.mu.Unlock()

	branch, ok := s.catalog.Branch(id)
	if !ok {
		return nil
	}
	return &branch
}

// SelectBranch selects and persists an active branch
func (s *Session) SelectBranch(ctx context.Context, branchID string) error {
	ctx, span := util.StartSpan(ctx, "Session.SelectBranch")
	defer span.End()

	if _, ok := s.catalog.Branch(branchID); !ok {
		return ErrUnknownBranch
	}

	s.mu.Lock()
	s.branchID = branchID
	s.mu.Unlock()

	if err := s.store.SaveBranch(ctx, branchID); err != nil {
		s.logger.Error("Failed to persist selected branch", zap.String("branch_id", branchID), zap.Error(err))
	}
	s.notify(ChangeBranch)
	return nil
}

// AddItem adds one unit of an available item to the cart
func (s *Session) AddItem(ctx context.Context, itemID string) {
	s.ledger.Add(ctx, itemID)
}

// ChangeQuantity adjusts the quantity of a cart line
func (s *Session) ChangeQuantity(ctx context.Context, itemID string, delta int) {
	s.ledger.ChangeQuantity(ctx, itemID, delta)
}

// RemoveItem drops a line from the cart
func (s *Session) RemoveItem(ctx context.Context, itemID string) {
	s.ledger.Remove(ctx, itemID)
}

// Checkout records the order click, composes the message link for the
// selected branch and records the submitted order
func (s *Session) Checkout(ctx context.Context, notes string) (*order.Composition, error) {
	ctx, span := util.StartSpan(ctx, "Session.Checkout")
	defer span.End()

	branch := s.Branch()
	if branch == nil {
		util.CheckoutRejectedTotal.WithLabelValues("no_branch").Inc()
		return nil, order.ErrNoBranch
	}
	if s.ledger.Empty() {
		util.CheckoutRejectedTotal.WithLabelValues("empty_cart").Inc()
		return nil, order.ErrEmptyCart
	}

	lang := s.locale.Language()
	lines := s.ledger.Lines()
	notes = strings.TrimSpace(notes)

	s.recorder.Record(ctx, models.EventTypeOrderClicked, models.OrderEventPayload{
		BranchID:   branch.ID,
		BranchName: branch.Name,
		Language:   string(lang),
		ItemCount:  len(lines),
	})

	composition, err := s.composer.Compose(branch, lines, s.catalog, lang, notes)
	if err != nil {
		util.CheckoutRejectedTotal.WithLabelValues("compose").Inc()
		return nil, err
	}

	s.recorder.Record(ctx, models.EventTypeOrderSubmitted, models.OrderEventPayload{
		BranchID:   branch.ID,
		BranchName: branch.Name,
		Language:   string(lang),
		Items:      composition.Items,
		Total:      composition.Total,
		Notes:      notes,
	})

	util.OrdersComposedTotal.WithLabelValues(string(lang)).Inc()
	s.logger.Info("Order composed",
		zap.String("branch_id", branch.ID),
		zap.Int("lines", len(composition.Items)),
		zap.String("total", composition.Total.StringFixed(2)))
	return composition, nil
}
