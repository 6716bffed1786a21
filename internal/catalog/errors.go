package catalog

import (
	"fmt"

	"github.com/laundrydesk/laundrydesk/internal/platform/httpx"
)

var (
	// ErrNotFound indicates the catalog entry does not exist.
	ErrNotFound = fmt.Errorf("service: %w", httpx.ErrNotFound)
	// ErrInUse blocks deleting an entry referenced by order items.
	ErrInUse = fmt.Errorf("service is referenced by orders: %w", httpx.ErrConflict)
)
