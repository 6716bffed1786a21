package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/laundrydesk/laundrydesk/internal/shared"
)

// Invalidator drops derived report data after a write.
type Invalidator interface {
	Bump(ctx context.Context) error
}

type Service struct {
	repo  Repository
	cache Invalidator
}

func NewService(repo Repository, cache Invalidator) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) Create(ctx context.Context, req CreateServiceRequest) (*LaundryService, error) {
	if err := shared.CheckScale("unit_price", req.UnitPrice); err != nil {
		return nil, err
	}
	unit := req.Unit
	if unit == "" {
		unit = UnitKg
	}
	created, err := s.repo.Create(ctx, LaundryService{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		Unit:        unit,
		Category:    req.Category,
		IsActive:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateServiceRequest) (*LaundryService, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.UnitPrice != nil {
		if err := shared.CheckScale("unit_price", *req.UnitPrice); err != nil {
			return nil, err
		}
		updates["unit_price"] = *req.UnitPrice
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return existing, nil
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*LaundryService, error) {
	return s.repo.Get(ctx, id)
}

// List returns active entries ordered by category then name.
func (s *Service) List(ctx context.Context, category string) ([]LaundryService, error) {
	return s.repo.List(ctx, strings.TrimSpace(category), false)
}

// ListAll includes deactivated entries.
func (s *Service) ListAll(ctx context.Context) ([]LaundryService, error) {
	return s.repo.List(ctx, "", true)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}
