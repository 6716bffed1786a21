package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Unit is the pricing unit of a laundry service.
type Unit string

const (
	UnitKg    Unit = "kg"
	UnitItem  Unit = "item"
	UnitPiece Unit = "piece"
)

// Well-known categories. Category remains free text.
const (
	CategoryWashing     = "washing"
	CategoryDryCleaning = "dry_cleaning"
	CategoryIroning     = "ironing"
)

// LaundryService is a priced catalog entry. Deactivated entries stay
// referenced by historical order items.
type LaundryService struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        Unit            `json:"unit"`
	Category    *string         `json:"category,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CategoryLabel returns the Indonesian display label for known categories.
func CategoryLabel(category string) string {
	switch category {
	case CategoryWashing:
		return "Cuci"
	case CategoryDryCleaning:
		return "Dry Cleaning"
	case CategoryIroning:
		return "Setrika"
	default:
		return category
	}
}
