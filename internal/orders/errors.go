package orders

import (
	"errors"
	"fmt"

	"github.com/laundrydesk/laundrydesk/internal/platform/httpx"
)

var (
	// ErrNotFound indicates the order does not exist.
	ErrNotFound = fmt.Errorf("order: %w", httpx.ErrNotFound)
	// ErrPaymentNotFound indicates the payment does not exist.
	ErrPaymentNotFound = fmt.Errorf("payment: %w", httpx.ErrNotFound)
	// ErrEmptyItems rejects an order without line items.
	ErrEmptyItems = fmt.Errorf("order requires at least one item: %w", httpx.ErrValidation)
	// ErrInvalidStatus rejects an unknown target status.
	ErrInvalidStatus = fmt.Errorf("invalid order status: %w", httpx.ErrValidation)
	// ErrInvalidTransition is returned when the active policy forbids a move.
	ErrInvalidTransition = fmt.Errorf("status transition not allowed: %w", httpx.ErrConflict)
	// ErrInvalidAmount rejects non-positive payment amounts.
	ErrInvalidAmount = fmt.Errorf("payment amount must be positive: %w", httpx.ErrValidation)
	// ErrOverpaymentRejected is returned when a payment exceeds the outstanding balance.
	ErrOverpaymentRejected = fmt.Errorf("payment exceeds outstanding balance: %w", httpx.ErrConflict)
	// ErrInvalidDate rejects dates not formatted as YYYY-MM-DD.
	ErrInvalidDate = fmt.Errorf("invalid date, expected YYYY-MM-DD: %w", httpx.ErrValidation)
	// ErrUnknownReference is returned when the customer or a service does not exist.
	ErrUnknownReference = fmt.Errorf("unknown customer or service: %w", httpx.ErrValidation)

	// ErrOrderCreationFailed wraps any failure while persisting a new order.
	ErrOrderCreationFailed = errors.New("order creation failed")
	// ErrStatusUpdateFailed wraps persistence failures during a status change.
	ErrStatusUpdateFailed = errors.New("order status update failed")
	// ErrPaymentFailed wraps persistence failures during reconciliation.
	ErrPaymentFailed = errors.New("payment reconciliation failed")
	// ErrOrderNumberTaken signals a unique violation on order_number.
	ErrOrderNumberTaken = errors.New("order number already taken")
	// ErrOrderNumberExhausted is returned when no free number was found.
	ErrOrderNumberExhausted = errors.New("order number space exhausted")
)
