package shared

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/laundrydesk/laundrydesk/internal/platform/httpx"
)

// MoneyScale is the number of decimal places stored for amounts and quantities.
const MoneyScale = 2

// ErrTooPrecise rejects values the NUMERIC(_,2) columns would round.
var ErrTooPrecise = fmt.Errorf("at most %d decimal places allowed: %w", MoneyScale, httpx.ErrValidation)

// CheckScale returns ErrTooPrecise, prefixed with field, when d has more than
// MoneyScale significant decimal places. Trailing zeros are ignored.
func CheckScale(field string, d decimal.Decimal) error {
	if d.Equal(d.Truncate(MoneyScale)) {
		return nil
	}
	return fmt.Errorf("%s %s: %w", field, d.String(), ErrTooPrecise)
}
