package expenses

import (
	"fmt"

	"github.com/laundrydesk/laundrydesk/internal/platform/httpx"
)

// ErrNotFound indicates the expense does not exist.
var ErrNotFound = fmt.Errorf("expense: %w", httpx.ErrNotFound)
