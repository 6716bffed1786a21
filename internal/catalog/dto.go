package catalog

import "github.com/shopspring/decimal"

type CreateServiceRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=1000"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Unit        Unit            `json:"unit" validate:"omitempty,oneof=kg item piece"`
	Category    *string         `json:"category,omitempty" validate:"omitempty,max=50"`
}

type UpdateServiceRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	Unit        *Unit            `json:"unit,omitempty" validate:"omitempty,oneof=kg item piece"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,max=50"`
	IsActive    *bool            `json:"is_active,omitempty"`
}
