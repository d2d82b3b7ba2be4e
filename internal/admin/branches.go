package admin

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// BranchStore persists branches
type BranchStore interface {
	ListBranches(ctx context.Context) ([]models.Branch, error)
	GetBranch(ctx context.Context, id string) (*models.Branch, error)
	CreateBranch(ctx context.Context, branch *models.Branch) error
	UpdateBranch(ctx context.Context, branch *models.Branch) error
	DeleteBranch(ctx context.Context, id string) error
}

// BranchRequest is the admin form for a branch
type BranchRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Hours   string `json:"hours"`
	MapLink string `json:"map_link"`
	Active  *bool  `json:"active"`
}

// BranchService manages branches
type BranchService struct {
	store BranchStore
	notifier
}

// NewBranchService creates a branch admin service. publisher and refresher may be nil.
func NewBranchService(store BranchStore, publisher ChangePublisher, refresher Refresher) *BranchService {
	return &BranchService{
		store: store,
		notifier: notifier{
			publisher: publisher,
			refresher: refresher,
			logger:    util.GetLogger(),
		},
	}
}

// List returns every branch ordered by name, inactive ones included
func (s *BranchService) List(ctx context.Context) ([]models.Branch, error) {
	ctx, span := util.StartSpan(ctx, "BranchService.List")
	defer span.End()

	branches, err := s.store.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return branches, nil
}

// Create stores a new branch
func (s *BranchService) Create(ctx context.Context, req *BranchRequest) (*models.Branch, error) {
	ctx, span := util.StartSpan(ctx, "BranchService.Create")
	defer span.End()

	branch := &models.Branch{Active: true}
	if err := applyBranch(branch, req); err != nil {
		return nil, err
	}

	if err := s.store.CreateBranch(ctx, branch); err != nil {
		return nil, fmt.Errorf("failed to create branch: %w", err)
	}

	s.logger.Info("Branch created", zap.String("id", branch.ID), zap.String("name", branch.Name))
	s.notify(ctx, models.CollectionBranches, ActionCreate, branch.ID)
	return branch, nil
}

// Update replaces the fields of an existing branch
func (s *BranchService) Update(ctx context.Context, id string, req *BranchRequest) (*models.Branch, error) {
	ctx, span := util.StartSpan(ctx, "BranchService.Update")
	defer span.End()

	branch, err := s.store.GetBranch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load branch: %w", err)
	}
	if err := applyBranch(branch, req); err != nil {
		return nil, err
	}

	if err := s.store.UpdateBranch(ctx, branch); err != nil {
		return nil, fmt.Errorf("failed to update branch: %w", err)
	}

	s.logger.Info("Branch updated", zap.String("id", id))
	s.notify(ctx, models.CollectionBranches, ActionUpdate, id)
	return branch, nil
}

// Delete removes a branch once the operator confirmed it
func (s *BranchService) Delete(ctx context.Context, id string, confirmed bool) error {
	ctx, span := util.StartSpan(ctx, "BranchService.Delete")
	defer span.End()

	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.store.DeleteBranch(ctx, id); err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}

	s.logger.Info("Branch deleted", zap.String("id", id))
	s.notify(ctx, models.CollectionBranches, ActionDelete, id)
	return nil
}

func applyBranch(branch *models.Branch, req *BranchRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return ErrNameRequired
	}

	branch.Name = name
	branch.Address = strings.TrimSpace(req.Address)
	branch.Phone = strings.TrimSpace(req.Phone)
	branch.Hours = strings.TrimSpace(req.Hours)
	branch.MapLink = strings.TrimSpace(req.MapLink)
	if req.Active != nil {
		branch.Active = *req.Active
	}
	return nil
}
