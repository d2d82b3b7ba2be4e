package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// Source loads the catalog from the database
type Source interface {
	ListActiveBranches(ctx context.Context) ([]models.Branch, error)
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
}

// Snapshot is a full copy of the catalog tagged with the sequence number
// of the refresh that produced it
type Snapshot struct {
	Seq      uint64
	Branches []models.Branch
	Items    []models.MenuItem
}

// Cache keeps the active branches and the menu in memory.
// A snapshot always replaces the whole catalog; snapshots older than the
// one already applied are discarded.
type Cache struct {
	source Source
	logger *zap.Logger

	requested atomic.Uint64

	mu        sync.RWMutex
	applied   uint64
	loaded    bool
	branches  []models.Branch
	items     []models.MenuItem
	itemIndex map[string]int
	listeners []func(Snapshot)
}

// NewCache creates an empty catalog cache
func NewCache(source Source) *Cache {
	return &Cache{
		source:    source,
		logger:    util.GetLogger(),
		itemIndex: map[string]int{},
	}
}

// Refresh reloads branches and menu items and applies them as one snapshot
func (c *Cache) Refresh(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "CatalogCache.Refresh")
	defer span.End()

	seq := c.requested.Add(1)

	branches, err := c.source.ListActiveBranches(ctx)
	if err != nil {
		util.CatalogRefreshesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load branches: %w", err)
	}

	items, err := c.source.ListMenuItems(ctx)
	if err != nil {
		util.CatalogRefreshesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load menu items: %w", err)
	}

	if !c.Apply(Snapshot{Seq: seq, Branches: branches, Items: items}) {
		util.CatalogRefreshesTotal.WithLabelValues("stale").Inc()
		c.logger.Debug("Discarded stale catalog snapshot", zap.Uint64("seq", seq))
		return nil
	}

	util.CatalogRefreshesTotal.WithLabelValues("applied").Inc()
	c.logger.Info("Catalog refreshed",
		zap.Uint64("seq", seq),
		zap.Int("branches", len(branches)),
		zap.Int("items", len(items)))
	return nil
}

// Apply installs s unless a newer snapshot was already applied
func (c *Cache) Apply(s Snapshot) bool {
	c.mu.Lock()
	if c.loaded && s.Seq <= c.applied {
		c.mu.Unlock()
		return false
	}

	branches := make([]models.Branch, 0, len(s.Branches))
	for _, b := range s.Branches {
		if b.Active {
			branches = append(branches, b)
		}
	}

	items := append([]models.MenuItem(nil), s.Items...)
	index := make(map[string]int, len(items))
	for i := range items {
		items[i].Category = models.ParseCategory(string(items[i].Category))
		index[items[i].ID] = i
	}

	c.applied = s.Seq
	c.loaded = true
	c.branches = branches
	c.items = items
	c.itemIndex = index
	listeners := append([]func(Snapshot){}, c.listeners...)
	c.mu.Unlock()

	applied := Snapshot{Seq: s.Seq, Branches: branches, Items: items}
	for _, fn := range listeners {
		fn(applied)
	}
	return true
}

// OnUpdate registers a listener called after every applied snapshot
func (c *Cache) OnUpdate(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Seq returns the sequence number of the applied snapshot
func (c *Cache) Seq() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.applied
}

// Item looks up a menu item by id
func (c *Cache) Item(id string) (models.MenuItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.itemIndex[id]
	if !ok {
		return models.MenuItem{}, false
	}
	return c.items[i], true
}

// Items returns the menu in catalog order
func (c *Cache) Items() []models.MenuItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.MenuItem(nil), c.items...)
}

// ItemsIn returns the items of one category in catalog order
func (c *Cache) ItemsIn(category models.Category) []models.MenuItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.MenuItem
	for _, item := range c.items {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}

// Branches returns the active branches
func (c *Cache) Branches() []models.Branch {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Branch(nil), c.branches...)
}

// Branch looks up an active branch by id
func (c *Cache) Branch(id string) (models.Branch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.branches {
		if b.ID == id {
			return b, true
		}
	}
	return models.Branch{}, false
}
