package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laundrydesk/laundrydesk/internal/shared"
)

// createAttempts bounds whole-transaction retries after an order_number collision.
const createAttempts = 3

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort guards payment recording against replays.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Invalidator drops derived report data after a write.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	StrictTransitions bool
}

// Service owns the order lifecycle: creation, status changes and payment reconciliation.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	idempotency IdempotencyPort
	cache       Invalidator
	numbers     *NumberGenerator
	policy      TransitionPolicy
	now         func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, idem IdempotencyPort, cache Invalidator, cfg ServiceConfig) *Service {
	return &Service{
		repo:        repo,
		audit:       audit,
		idempotency: idem,
		cache:       cache,
		numbers:     NewNumberGenerator(),
		policy:      PolicyFor(cfg.StrictTransitions),
		now:         time.Now,
	}
}

// Create persists an order and its items in one transaction. The total is
// computed once here and never recalculated.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*Details, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	orderDate, err := s.dateOrToday(req.OrderDate)
	if err != nil {
		return nil, fmt.Errorf("order_date: %w", ErrInvalidDate)
	}
	pickup, err := optionalDate(req.PickupDate)
	if err != nil {
		return nil, fmt.Errorf("pickup_date: %w", ErrInvalidDate)
	}

	items, total, err := priceItems(req.Items)
	if err != nil {
		return nil, err
	}
	order := Order{
		CustomerID:  req.CustomerID,
		OrderDate:   orderDate,
		PickupDate:  pickup,
		Status:      StatusPending,
		Notes:       req.Notes,
		TotalAmount: total,
		PaidAmount:  decimal.Zero,
	}

	var created *Order
	for attempt := 0; attempt < createAttempts && created == nil; attempt++ {
		number, err := s.numbers.Next(ctx, s.repo.OrderNumberExists)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOrderCreationFailed, err)
		}
		order.OrderNumber = number
		err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			inserted, err := tx.InsertOrder(ctx, order)
			if err != nil {
				return err
			}
			if err := tx.InsertItems(ctx, inserted.ID, items); err != nil {
				return err
			}
			created = inserted
			return nil
		})
		if errors.Is(err, ErrOrderNumberTaken) {
			created = nil
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOrderCreationFailed, err)
		}
	}
	if created == nil {
		return nil, fmt.Errorf("%w: %w", ErrOrderCreationFailed, ErrOrderNumberExhausted)
	}

	s.record(ctx, "order:create", "order", created.ID, map[string]any{
		"order_number": created.OrderNumber,
		"total_amount": created.TotalAmount.String(),
		"items":        len(items),
	})
	s.invalidate(ctx)
	return s.repo.Get(ctx, created.ID)
}

// priceItems snapshots each line's subtotal and sums the order total exactly.
// Every value must fit the stored scale so the persisted rows keep
// subtotal = quantity * unit_price.
func priceItems(reqs []CreateItemRequest) ([]Item, decimal.Decimal, error) {
	items := make([]Item, 0, len(reqs))
	total := decimal.Zero
	for i, r := range reqs {
		if err := shared.CheckScale(fmt.Sprintf("items[%d].quantity", i), r.Quantity); err != nil {
			return nil, decimal.Zero, err
		}
		if err := shared.CheckScale(fmt.Sprintf("items[%d].unit_price", i), r.UnitPrice); err != nil {
			return nil, decimal.Zero, err
		}
		subtotal := r.Quantity.Mul(r.UnitPrice)
		if err := shared.CheckScale(fmt.Sprintf("items[%d].subtotal", i), subtotal); err != nil {
			return nil, decimal.Zero, err
		}
		total = total.Add(subtotal)
		items = append(items, Item{
			ServiceID: r.ServiceID,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
			Subtotal:  subtotal,
		})
	}
	return items, total, nil
}

// UpdateStatus moves an order to target under the configured policy. A
// delivery date is only written when the target is completed.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*Details, error) {
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%q: %w", req.Status, ErrInvalidStatus)
	}
	var delivery *time.Time
	if req.Status == StatusCompleted && req.DeliveryDate != "" {
		d, err := time.Parse(time.DateOnly, req.DeliveryDate)
		if err != nil {
			return nil, fmt.Errorf("delivery_date: %w", ErrInvalidDate)
		}
		delivery = &d
	}

	var from Status
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		from = current.Status
		if err := s.policy(current.Status, req.Status); err != nil {
			return err
		}
		return tx.UpdateStatus(ctx, id, req.Status, delivery)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidTransition) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStatusUpdateFailed, err)
	}

	s.record(ctx, "order:status", "order", id, map[string]any{
		"from": string(from),
		"to":   string(req.Status),
	})
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Details, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Details, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%q: %w", filter.Status, ErrInvalidStatus)
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.repo.Recent(ctx, limit)
}

// CountActive counts orders that are pending, processing or ready.
func (s *Service) CountActive(ctx context.Context) (int, error) {
	return s.repo.CountByStatus(ctx, ActiveStatuses...)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	s.record(ctx, "order:delete", "order", id, nil)
	s.invalidate(ctx)
	return nil
}

func (s *Service) record(ctx context.Context, action, entity string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   entity,
		EntityID: id.String(),
		Meta:     meta,
		At:       s.now(),
	})
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}

func (s *Service) dateOrToday(raw string) (time.Time, error) {
	if raw == "" {
		return shared.CalendarDate(s.now()), nil
	}
	return time.Parse(time.DateOnly, raw)
}

func optionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
