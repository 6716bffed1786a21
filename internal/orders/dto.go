package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	CustomerID uuid.UUID           `json:"customer_id" validate:"required"`
	OrderDate  string              `json:"order_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PickupDate string              `json:"pickup_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes      *string             `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Items      []CreateItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CreateItemRequest struct {
	ServiceID uuid.UUID       `json:"service_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0"`
}

type UpdateStatusRequest struct {
	Status       Status `json:"status" validate:"required,oneof=pending processing ready completed cancelled"`
	DeliveryDate string `json:"delivery_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notify       bool   `json:"notify,omitempty"`
}

type RecordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	PaymentMethod PaymentMethod   `json:"payment_method" validate:"required,oneof=cash transfer debit credit e-wallet"`
	PaymentDate   string          `json:"payment_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes         *string         `json:"notes,omitempty" validate:"omitempty,max=1000"`
}
