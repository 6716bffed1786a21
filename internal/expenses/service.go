package expenses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laundrydesk/laundrydesk/internal/shared"
)

// Invalidator drops derived report data after a write.
type Invalidator interface {
	Bump(ctx context.Context) error
}

type Service struct {
	repo  Repository
	cache Invalidator
	now   func() time.Time
}

func NewService(repo Repository, cache Invalidator) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

func (s *Service) Create(ctx context.Context, req CreateExpenseRequest) (*Expense, error) {
	if err := shared.CheckScale("amount", req.Amount); err != nil {
		return nil, err
	}
	date := s.now()
	if req.ExpenseDate != "" {
		parsed, err := time.Parse(time.DateOnly, req.ExpenseDate)
		if err != nil {
			return nil, fmt.Errorf("create expense: %w", err)
		}
		date = parsed
	}
	created, err := s.repo.Create(ctx, Expense{
		Category:      req.Category,
		Description:   strings.TrimSpace(req.Description),
		Amount:        req.Amount,
		ExpenseDate:   date,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateExpenseRequest) (*Expense, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	updates := make(map[string]any)
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Amount != nil {
		if err := shared.CheckScale("amount", *req.Amount); err != nil {
			return nil, err
		}
		updates["amount"] = *req.Amount
	}
	if req.ExpenseDate != nil {
		parsed, err := time.Parse(time.DateOnly, *req.ExpenseDate)
		if err != nil {
			return nil, fmt.Errorf("update expense: %w", err)
		}
		updates["expense_date"] = parsed
	}
	if req.PaymentMethod != nil {
		updates["payment_method"] = *req.PaymentMethod
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		return existing, nil
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Expense, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Expense, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Total(ctx context.Context, filter Filter) (decimal.Decimal, error) {
	return s.repo.Total(ctx, filter)
}

func (s *Service) ByCategory(ctx context.Context, filter Filter) ([]CategoryTotal, error) {
	return s.repo.ByCategory(ctx, filter)
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}
