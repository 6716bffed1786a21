package expenses

import (
	"github.com/shopspring/decimal"
)

type CreateExpenseRequest struct {
	Category      Category        `json:"category" validate:"required,oneof=supplies utilities staff maintenance marketing other"`
	Description   string          `json:"description" validate:"required,max=500"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	ExpenseDate   string          `json:"expense_date" validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod *string         `json:"payment_method,omitempty" validate:"omitempty,oneof=cash transfer debit credit"`
	Notes         *string         `json:"notes,omitempty"`
}

type UpdateExpenseRequest struct {
	Category      *Category        `json:"category,omitempty" validate:"omitempty,oneof=supplies utilities staff maintenance marketing other"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	Amount        *decimal.Decimal `json:"amount,omitempty" validate:"omitempty,gt=0"`
	ExpenseDate   *string          `json:"expense_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod *string          `json:"payment_method,omitempty" validate:"omitempty,oneof=cash transfer debit credit"`
	Notes         *string          `json:"notes,omitempty"`
}
