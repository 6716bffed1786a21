package expenses

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category classifies an expense.
type Category string

const (
	CategorySupplies    Category = "supplies"
	CategoryUtilities   Category = "utilities"
	CategoryStaff       Category = "staff"
	CategoryMaintenance Category = "maintenance"
	CategoryMarketing   Category = "marketing"
	CategoryOther       Category = "other"
)

var categoryLabels = map[Category]string{
	CategorySupplies:    "Perlengkapan",
	CategoryUtilities:   "Utilitas",
	CategoryStaff:       "Gaji Karyawan",
	CategoryMaintenance: "Perawatan",
	CategoryMarketing:   "Pemasaran",
	CategoryOther:       "Lainnya",
}

// Label returns the Indonesian display label.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Expense is an operating cost unrelated to orders.
type Expense struct {
	ID            uuid.UUID       `json:"id"`
	Category      Category        `json:"category"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	ExpenseDate   time.Time       `json:"expense_date"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Filter narrows expense listings. Dates are inclusive on both ends.
type Filter struct {
	Category Category
	From     *time.Time
	To       *time.Time
}

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category Category        `json:"category"`
	Label    string          `json:"label"`
	Total    decimal.Decimal `json:"total"`
}
