package admin

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// MenuStore persists menu items
type MenuStore interface {
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
	DeleteMenuItem(ctx context.Context, id string) error
}

// MenuItemRequest is the admin form for a menu item
type MenuItemRequest struct {
	NameAr    string     `json:"name_ar" binding:"required"`
	NameEn    string     `json:"name_en" binding:"required"`
	Price     PriceInput `json:"price" binding:"required"`
	Category  string     `json:"category"`
	Available *bool      `json:"available"`
	ImageURL  string     `json:"image_url"`
}

// MenuService manages menu items
type MenuService struct {
	store MenuStore
	notifier
}

// NewMenuService creates a menu admin service. publisher and refresher may be nil.
func NewMenuService(store MenuStore, publisher ChangePublisher, refresher Refresher) *MenuService {
	return &MenuService{
		store: store,
		notifier: notifier{
			publisher: publisher,
			refresher: refresher,
			logger:    util.GetLogger(),
		},
	}
}

// List returns every menu item ordered by Arabic name
func (s *MenuService) List(ctx context.Context) ([]models.MenuItem, error) {
	ctx, span := util.StartSpan(ctx, "MenuService.List")
	defer span.End()

	items, err := s.store.ListMenuItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return items, nil
}

// Create validates and stores a new menu item
func (s *MenuService) Create(ctx context.Context, req *MenuItemRequest) (*models.MenuItem, error) {
	ctx, span := util.StartSpan(ctx, "MenuService.Create")
	defer span.End()

	item := &models.MenuItem{Available: true}
	if err := applyMenuItem(item, req); err != nil {
		return nil, err
	}

	if err := s.store.CreateMenuItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}

	s.logger.Info("Menu item created", zap.String("id", item.ID), zap.String("name_en", item.NameEn))
	s.notify(ctx, models.CollectionMenuItems, ActionCreate, item.ID)
	return item, nil
}

// Update replaces the fields of an existing menu item
func (s *MenuService) Update(ctx context.Context, id string, req *MenuItemRequest) (*models.MenuItem, error) {
	ctx, span := util.StartSpan(ctx, "MenuService.Update")
	defer span.End()

	item, err := s.store.GetMenuItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu item: %w", err)
	}
	if err := applyMenuItem(item, req); err != nil {
		return nil, err
	}

	if err := s.store.UpdateMenuItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}

	s.logger.Info("Menu item updated", zap.String("id", id))
	s.notify(ctx, models.CollectionMenuItems, ActionUpdate, id)
	return item, nil
}

// Delete removes a menu item once the operator confirmed it
func (s *MenuService) Delete(ctx context.Context, id string, confirmed bool) error {
	ctx, span := util.StartSpan(ctx, "MenuService.Delete")
	defer span.End()

	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.store.DeleteMenuItem(ctx, id); err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}

	s.logger.Info("Menu item deleted", zap.String("id", id))
	s.notify(ctx, models.CollectionMenuItems, ActionDelete, id)
	return nil
}

func applyMenuItem(item *models.MenuItem, req *MenuItemRequest) error {
	price, err := ParsePrice(req.Price)
	if err != nil {
		return err
	}

	nameAr, nameEn := strings.TrimSpace(req.NameAr), strings.TrimSpace(req.NameEn)
	if nameAr == "" || nameEn == "" {
		return ErrNameRequired
	}

	item.NameAr = nameAr
	item.NameEn = nameEn
	item.Price = price
	item.Category = models.ParseCategory(req.Category)
	item.ImageURL = strings.TrimSpace(req.ImageURL)
	if req.Available != nil {
		item.Available = *req.Available
	}
	return nil
}
