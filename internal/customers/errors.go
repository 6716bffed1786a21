package customers

import (
	"fmt"

	"github.com/laundrydesk/laundrydesk/internal/platform/httpx"
)

var (
	// ErrNotFound indicates the customer does not exist.
	ErrNotFound = fmt.Errorf("customer: %w", httpx.ErrNotFound)
	// ErrPhoneTaken is returned when another customer already uses the phone number.
	ErrPhoneTaken = fmt.Errorf("customer phone already registered: %w", httpx.ErrDuplicate)
	// ErrHasOrders blocks deleting a customer that is still referenced by orders.
	ErrHasOrders = fmt.Errorf("customer still has orders: %w", httpx.ErrConflict)
)
