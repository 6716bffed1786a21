// Package reports derives dashboard and financial figures from orders,
// payments and expenses.
package reports

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/laundrydesk/laundrydesk/internal/expenses"
	"github.com/laundrydesk/laundrydesk/internal/orders"
	"github.com/laundrydesk/laundrydesk/internal/platform/cache"
)

// OrderSource exposes the order reads reports depend on.
type OrderSource interface {
	List(ctx context.Context, filter orders.ListFilter) ([]orders.Details, error)
	ListPayments(ctx context.Context, filter orders.PaymentFilter) ([]orders.PaymentRecord, error)
	CountActive(ctx context.Context) (int, error)
}

// ExpenseSource exposes expense listings.
type ExpenseSource interface {
	List(ctx context.Context, filter expenses.Filter) ([]expenses.Expense, error)
}

// CustomerCounter counts active customers.
type CustomerCounter interface {
	CountActive(ctx context.Context) (int, error)
}

// Cache is the versioned JSON cache used for computed reports.
type Cache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
}

// Service loads rows through the entity services and aggregates them.
type Service struct {
	orders    OrderSource
	expenses  ExpenseSource
	customers CustomerCounter
	cache     Cache
	now       func() time.Time
}

// NewService wires the report sources. A nil reportCache computes every call.
func NewService(orderSrc OrderSource, expenseSrc ExpenseSource, customers CustomerCounter, reportCache Cache) *Service {
	if reportCache == nil {
		reportCache = cache.NewVersioned(nil, "reports", 0)
	}
	return &Service{orders: orderSrc, expenses: expenseSrc, customers: customers, cache: reportCache, now: time.Now}
}

// Dashboard holds the headline figures for the current month.
type Dashboard struct {
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	PreviousRevenue decimal.Decimal `json:"previous_revenue"`
	RevenueChange   float64         `json:"revenue_change"`
	ActiveOrders    int             `json:"active_orders"`
	TotalCustomers  int             `json:"total_customers"`
	Month           string          `json:"month"`
}

func (s *Service) cached(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error {
	key, err := s.cache.BuildKey(ctx, parts...)
	if err != nil {
		return err
	}
	return s.cache.FetchJSON(ctx, key, dest, loader)
}

// Dashboard compares this month's revenue with last month's and counts
// active orders and customers. The four loads run concurrently.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	current := Range{From: ptr(monthStart), To: ptr(monthStart.AddDate(0, 1, -1))}
	previous := Range{From: ptr(monthStart.AddDate(0, -1, 0)), To: ptr(monthStart.AddDate(0, 0, -1))}

	loader := func(ctx context.Context) (any, error) {
		var (
			out          Dashboard
			currentPays  []orders.PaymentRecord
			previousPays []orders.PaymentRecord
		)
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			currentPays, err = s.orders.ListPayments(ctx, orders.PaymentFilter{From: current.From, To: current.To})
			return err
		})
		g.Go(func() (err error) {
			previousPays, err = s.orders.ListPayments(ctx, orders.PaymentFilter{From: previous.From, To: previous.To})
			return err
		})
		g.Go(func() (err error) {
			out.ActiveOrders, err = s.orders.CountActive(ctx)
			return err
		})
		g.Go(func() (err error) {
			out.TotalCustomers, err = s.customers.CountActive(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return Dashboard{}, fmt.Errorf("load dashboard: %w", err)
		}
		out.TotalRevenue = Revenue(currentPays, current)
		out.PreviousRevenue = Revenue(previousPays, previous)
		out.RevenueChange = RevenueChange(out.TotalRevenue, out.PreviousRevenue)
		out.Month = monthStart.Format("2006-01")
		return out, nil
	}

	var out Dashboard
	err := s.cached(ctx, &out, loader, "dashboard", now.Format(time.DateOnly))
	return out, err
}

// RevenueByDay groups revenue over the last days, today included.
func (s *Service) RevenueByDay(ctx context.Context, days int) ([]DailyRevenue, error) {
	if days <= 0 {
		days = 30
	}
	now := s.now()
	r := Range{From: ptr(now.AddDate(0, 0, -days)), To: ptr(now)}
	loader := func(ctx context.Context) (any, error) {
		pays, err := s.orders.ListPayments(ctx, orders.PaymentFilter{From: r.From, To: r.To})
		if err != nil {
			return nil, fmt.Errorf("load revenue: %w", err)
		}
		return RevenueByDay(pays, r), nil
	}
	out := []DailyRevenue{}
	err := s.cached(ctx, &out, loader, "revenue", strconv.Itoa(days), now.Format(time.DateOnly))
	return out, err
}

// Summary returns revenue, expenses and profit for r.
func (s *Service) Summary(ctx context.Context, r Range) (FinancialSummary, error) {
	loader := func(ctx context.Context) (any, error) {
		var (
			pays  []orders.PaymentRecord
			spent []expenses.Expense
		)
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			pays, err = s.orders.ListPayments(ctx, orders.PaymentFilter{From: r.From, To: r.To})
			return err
		})
		g.Go(func() (err error) {
			spent, err = s.expenses.List(ctx, expenses.Filter{From: r.From, To: r.To})
			return err
		})
		if err := g.Wait(); err != nil {
			return FinancialSummary{}, fmt.Errorf("load summary: %w", err)
		}
		return Summarize(pays, spent, r), nil
	}
	var out FinancialSummary
	err := s.cached(ctx, &out, loader, "summary", r.key())
	return out, err
}

// ServiceDistribution shares item quantity across catalog services.
func (s *Service) ServiceDistribution(ctx context.Context, r Range) ([]ServiceShare, error) {
	loader := func(ctx context.Context) (any, error) {
		items, err := s.orders.List(ctx, orders.ListFilter{From: r.From, To: r.To})
		if err != nil {
			return nil, fmt.Errorf("load service distribution: %w", err)
		}
		return ServiceDistribution(items, r), nil
	}
	out := []ServiceShare{}
	err := s.cached(ctx, &out, loader, "services", r.key())
	return out, err
}

// MonthlyTrend covers the last months, the current month included.
func (s *Service) MonthlyTrend(ctx context.Context, months int) ([]MonthlyPoint, error) {
	if months <= 0 {
		months = 12
	}
	now := s.now()
	r := Range{From: ptr(now.AddDate(0, -months, 0)), To: ptr(now)}
	loader := func(ctx context.Context) (any, error) {
		items, err := s.orders.List(ctx, orders.ListFilter{From: r.From, To: r.To})
		if err != nil {
			return nil, fmt.Errorf("load monthly trend: %w", err)
		}
		return MonthlyTrend(items, r), nil
	}
	out := []MonthlyPoint{}
	err := s.cached(ctx, &out, loader, "monthly", strconv.Itoa(months), now.Format(time.DateOnly))
	return out, err
}

// TopCustomers ranks customers by order value inside r.
func (s *Service) TopCustomers(ctx context.Context, r Range, limit int) ([]CustomerTotal, error) {
	if limit <= 0 {
		limit = 10
	}
	loader := func(ctx context.Context) (any, error) {
		items, err := s.orders.List(ctx, orders.ListFilter{From: r.From, To: r.To})
		if err != nil {
			return nil, fmt.Errorf("load top customers: %w", err)
		}
		return TopCustomers(items, r, limit), nil
	}
	out := []CustomerTotal{}
	err := s.cached(ctx, &out, loader, "top-customers", strconv.Itoa(limit), r.key())
	return out, err
}

// PaymentMethods shares payment amounts across methods inside r.
func (s *Service) PaymentMethods(ctx context.Context, r Range) ([]MethodShare, error) {
	loader := func(ctx context.Context) (any, error) {
		pays, err := s.orders.ListPayments(ctx, orders.PaymentFilter{From: r.From, To: r.To})
		if err != nil {
			return nil, fmt.Errorf("load payment methods: %w", err)
		}
		return PaymentMethodDistribution(pays, r), nil
	}
	out := []MethodShare{}
	err := s.cached(ctx, &out, loader, "payment-methods", r.key())
	return out, err
}

// Expenses shares spending across categories inside r.
func (s *Service) Expenses(ctx context.Context, r Range) ([]CategoryShare, error) {
	loader := func(ctx context.Context) (any, error) {
		items, err := s.expenses.List(ctx, expenses.Filter{From: r.From, To: r.To})
		if err != nil {
			return nil, fmt.Errorf("load expenses: %w", err)
		}
		return ExpensesByCategory(items, r), nil
	}
	out := []CategoryShare{}
	err := s.cached(ctx, &out, loader, "expenses", r.key())
	return out, err
}

func ptr[T any](v T) *T {
	return &v
}
