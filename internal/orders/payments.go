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

const idempotencyModule = "payments"

// RecordPayment adds a completed payment and raises paid_amount in the same
// transaction. The order row is locked first so concurrent payments serialise.
func (s *Service) RecordPayment(ctx context.Context, orderID uuid.UUID, req RecordPaymentRequest, idempotencyKey string) (*Payment, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if err := shared.CheckScale("amount", req.Amount); err != nil {
		return nil, err
	}
	paidAt := shared.CalendarDate(s.now())
	if req.PaymentDate != "" {
		d, err := time.Parse(time.DateOnly, req.PaymentDate)
		if err != nil {
			return nil, fmt.Errorf("payment_date: %w", ErrInvalidDate)
		}
		paidAt = d
	}

	key := ""
	if idempotencyKey != "" && s.idempotency != nil {
		key = fmt.Sprintf("payment:%s:%s", orderID, idempotencyKey)
		if err := s.idempotency.CheckAndInsert(ctx, key, idempotencyModule); err != nil {
			return nil, err
		}
	}

	var created *Payment
	var paid decimal.Decimal
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if req.Amount.GreaterThan(order.Remaining()) {
			return fmt.Errorf("amount %s, remaining %s: %w", req.Amount, order.Remaining(), ErrOverpaymentRejected)
		}
		created, err = tx.InsertPayment(ctx, Payment{
			OrderID:       orderID,
			Amount:        req.Amount,
			PaymentDate:   paidAt,
			PaymentMethod: req.PaymentMethod,
			Status:        PaymentCompleted,
			Notes:         req.Notes,
		})
		if err != nil {
			return err
		}
		paid, err = tx.AddPaid(ctx, orderID, req.Amount)
		return err
	})
	if err != nil {
		if key != "" {
			_ = s.idempotency.Delete(ctx, key)
		}
		return nil, reconcileError(err)
	}

	s.record(ctx, "payment:create", "payment", created.ID, map[string]any{
		"order_id":    orderID.String(),
		"amount":      req.Amount.String(),
		"method":      string(req.PaymentMethod),
		"paid_amount": paid.String(),
	})
	s.invalidate(ctx)
	return created, nil
}

// DeletePayment removes a payment and lowers paid_amount by its amount,
// clamped at zero. A missing payment mutates nothing.
func (s *Service) DeletePayment(ctx context.Context, paymentID uuid.UUID) error {
	var removed *Payment
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		found, err := tx.FindPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if _, err := tx.LockOrder(ctx, found.OrderID); err != nil {
			return err
		}
		// Re-read under lock; a concurrent delete may have won.
		locked, err := tx.LockPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := tx.DeletePayment(ctx, paymentID); err != nil {
			return err
		}
		if _, err := tx.AddPaid(ctx, locked.OrderID, locked.Amount.Neg()); err != nil {
			return err
		}
		removed = locked
		return nil
	})
	if err != nil {
		return reconcileError(err)
	}

	s.record(ctx, "payment:delete", "payment", paymentID, map[string]any{
		"order_id": removed.OrderID.String(),
		"amount":   removed.Amount.String(),
	})
	s.invalidate(ctx)
	return nil
}

// ListPayments returns payments newest first, optionally narrowed.
func (s *Service) ListPayments(ctx context.Context, filter PaymentFilter) ([]PaymentRecord, error) {
	return s.repo.ListPayments(ctx, filter)
}

// PaymentsForOrder returns the payments of one order after checking it exists.
func (s *Service) PaymentsForOrder(ctx context.Context, orderID uuid.UUID) ([]PaymentRecord, error) {
	if _, err := s.repo.Get(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, PaymentFilter{OrderID: &orderID})
}

func reconcileError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPaymentNotFound), errors.Is(err, ErrOverpaymentRejected):
		return err
	}
	return fmt.Errorf("%w: %w", ErrPaymentFailed, err)
}
