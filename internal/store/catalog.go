package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// ListMenuItems retrieves the whole menu ordered by Arabic name
func (s *Store) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	err := s.db.SelectContext(ctx, &items, "SELECT * FROM menu_items ORDER BY name_ar, id")
	return items, err
}

// GetMenuItem retrieves a menu item by ID
func (s *Store) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM menu_items WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("menu item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateMenuItem inserts a menu item and assigns its ID
func (s *Store) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	item.ID = uuid.New().String()
	query := `
		INSERT INTO menu_items (id, name_ar, name_en, price, category, available, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	return s.db.QueryRowxContext(ctx, query,
		item.ID, item.NameAr, item.NameEn, item.Price, item.Category, item.Available, item.ImageURL,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
}

// UpdateMenuItem overwrites the editable fields of a menu item
func (s *Store) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE menu_items
		SET name_ar = $1, name_en = $2, price = $3, category = $4, available = $5, image_url = $6, updated_at = NOW()
		WHERE id = $7`,
		item.NameAr, item.NameEn, item.Price, item.Category, item.Available, item.ImageURL, item.ID)
	if err != nil {
		return err
	}
	return expectOne(res, "menu item", item.ID)
}

// DeleteMenuItem removes a menu item
func (s *Store) DeleteMenuItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM menu_items WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectOne(res, "menu item", id)
}

// ListBranches retrieves all branches ordered by name
func (s *Store) ListBranches(ctx context.Context) ([]models.Branch, error) {
	branches := []models.Branch{}
	err := s.db.SelectContext(ctx, &branches, "SELECT * FROM branches ORDER BY name, id")
	return branches, err
}

// ListActiveBranches retrieves the branches currently taking orders
func (s *Store) ListActiveBranches(ctx context.Context) ([]models.Branch, error) {
	branches := []models.Branch{}
	err := s.db.SelectContext(ctx, &branches, "SELECT * FROM branches WHERE active = TRUE ORDER BY name, id")
	return branches, err
}

// GetBranch retrieves a branch by ID
func (s *Store) GetBranch(ctx context.Context, id string) (*models.Branch, error) {
	var branch models.Branch
	err := s.db.GetContext(ctx, &branch, "SELECT * FROM branches WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("branch %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

// CreateBranch inserts a branch and assigns its ID
func (s *Store) CreateBranch(ctx context.Context, branch *models.Branch) error {
	branch.ID = uuid.New().String()
	query := `
		INSERT INTO branches (id, name, address, phone, hours, map_link, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	return s.db.QueryRowxContext(ctx, query,
		branch.ID, branch.Name, branch.Address, branch.Phone, branch.Hours, branch.MapLink, branch.Active,
	).Scan(&branch.CreatedAt, &branch.UpdatedAt)
}

// UpdateBranch overwrites the editable fields of a branch
func (s *Store) UpdateBranch(ctx context.Context, branch *models.Branch) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE branches
		SET name = $1, address = $2, phone = $3, hours = $4, map_link = $5, active = $6, updated_at = NOW()
		WHERE id = $7`,
		branch.Name, branch.Address, branch.Phone, branch.Hours, branch.MapLink, branch.Active, branch.ID)
	if err != nil {
		return err
	}
	return expectOne(res, "branch", branch.ID)
}

// DeleteBranch removes a branch
func (s *Store) DeleteBranch(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM branches WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectOne(res, "branch", id)
}
