package export

import (
	"context"
	"time"

	"github.com/laundrydesk/laundrydesk/internal/catalog"
	"github.com/laundrydesk/laundrydesk/internal/customers"
	"github.com/laundrydesk/laundrydesk/internal/expenses"
	"github.com/laundrydesk/laundrydesk/internal/orders"
)

// CustomerSource lists every customer.
type CustomerSource interface {
	ListAll(ctx context.Context) ([]customers.Customer, error)
}

// ServiceSource lists every catalog entry.
type ServiceSource interface {
	ListAll(ctx context.Context) ([]catalog.LaundryService, error)
}

// OrderSource lists orders and payments.
type OrderSource interface {
	List(ctx context.Context, filter orders.ListFilter) ([]orders.Details, error)
	ListPayments(ctx context.Context, filter orders.PaymentFilter) ([]orders.PaymentRecord, error)
}

// ExpenseSource lists expenses.
type ExpenseSource interface {
	List(ctx context.Context, filter expenses.Filter) ([]expenses.Expense, error)
}

// Service gathers data for exports and backups.
type Service struct {
	customers   CustomerSource
	services    ServiceSource
	orders      OrderSource
	expenses    ExpenseSource
	application string
	now         func() time.Time
}

// NewService constructs the export service. application is recorded in
// backup metadata.
func NewService(c CustomerSource, svc ServiceSource, o OrderSource, e ExpenseSource, application string) *Service {
	return &Service{
		customers:   c,
		services:    svc,
		orders:      o,
		expenses:    e,
		application: application,
		now:         time.Now,
	}
}

var (
	_ CustomerSource = (*customers.Service)(nil)
	_ ServiceSource  = (*catalog.Service)(nil)
	_ OrderSource    = (*orders.Service)(nil)
	_ ExpenseSource  = (*expenses.Service)(nil)
)
