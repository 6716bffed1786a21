package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laundrydesk/laundrydesk/internal/expenses"
	"github.com/laundrydesk/laundrydesk/internal/orders"
)

var hundred = decimal.NewFromInt(100)

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Range is an optional [From, To] window compared at day precision.
// Both ends are inclusive.
type Range struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls on a day inside the range. Days are read
// from each value's own wall clock.
func (r Range) Contains(t time.Time) bool {
	day := t.Format(time.DateOnly)
	if r.From != nil && day < r.From.Format(time.DateOnly) {
		return false
	}
	if r.To != nil && day > r.To.Format(time.DateOnly) {
		return false
	}
	return true
}

func (r Range) key() string {
	from, to := "-", "-"
	if r.From != nil {
		from = r.From.Format(time.DateOnly)
	}
	if r.To != nil {
		to = r.To.Format(time.DateOnly)
	}
	return from + ":" + to
}

// Percentage returns round(value / total * 100), or 0 when total is zero.
func Percentage(value, total decimal.Decimal) int {
	if total.IsZero() {
		return 0
	}
	return int(value.Div(total).Mul(hundred).Round(0).IntPart())
}

// Average divides total by count to two places, or 0 when count is zero.
func Average(total decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}

// RevenueChange is the percentage change from previous to current rounded
// to one decimal, or 0 when there is no previous revenue.
func RevenueChange(current, previous decimal.Decimal) float64 {
	if !previous.IsPositive() {
		return 0
	}
	change, _ := current.Sub(previous).Div(previous).Mul(hundred).Round(1).Float64()
	return change
}

// Revenue sums completed payments inside r.
func Revenue(payments []orders.PaymentRecord, r Range) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.Status != orders.PaymentCompleted || !r.Contains(p.PaymentDate) {
			continue
		}
		total = total.Add(p.Amount)
	}
	return total
}

// ExpenseTotal sums expenses dated inside r.
func ExpenseTotal(items []expenses.Expense, r Range) decimal.Decimal {
	total := decimal.Zero
	for _, e := range items {
		if r.Contains(e.ExpenseDate) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

type DailyRevenue struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

// RevenueByDay groups completed payments by calendar day, oldest first.
// Days without payments are omitted.
func RevenueByDay(payments []orders.PaymentRecord, r Range) []DailyRevenue {
	byDay := make(map[string]decimal.Decimal)
	for _, p := range payments {
		if p.Status != orders.PaymentCompleted || !r.Contains(p.PaymentDate) {
			continue
		}
		day := p.PaymentDate.Format(time.DateOnly)
		byDay[day] = byDay[day].Add(p.Amount)
	}
	out := make([]DailyRevenue, 0, len(byDay))
	for day, total := range byDay {
		out = append(out, DailyRevenue{Date: day, Revenue: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

type MonthlyPoint struct {
	Key     string          `json:"key"`
	Month   string          `json:"month"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// MonthlyTrend counts orders and sums their totals per month, oldest first.
// Months without orders are omitted.
func MonthlyTrend(items []orders.Details, r Range) []MonthlyPoint {
	byMonth := make(map[string]*MonthlyPoint)
	for _, o := range items {
		if !r.Contains(o.OrderDate) {
			continue
		}
		key := o.OrderDate.Format("2006-01")
		point, ok := byMonth[key]
		if !ok {
			point = &MonthlyPoint{Key: key, Month: monthNames[o.OrderDate.Month()-1], Revenue: decimal.Zero}
			byMonth[key] = point
		}
		point.Orders++
		point.Revenue = point.Revenue.Add(o.TotalAmount)
	}
	out := make([]MonthlyPoint, 0, len(byMonth))
	for _, p := range byMonth {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

type ServiceShare struct {
	Name       string          `json:"name"`
	Value      decimal.Decimal `json:"value"`
	Revenue    decimal.Decimal `json:"revenue"`
	Percentage int             `json:"percentage"`
}

// ServiceDistribution sums item quantity per service name for orders dated
// inside r. Shares are by quantity.
func ServiceDistribution(items []orders.Details, r Range) []ServiceShare {
	byName := make(map[string]*ServiceShare)
	total := decimal.Zero
	for _, o := range items {
		if !r.Contains(o.OrderDate) {
			continue
		}
		for _, item := range o.Items {
			name := "Unknown"
			if item.Service != nil && item.Service.Name != "" {
				name = item.Service.Name
			}
			share, ok := byName[name]
			if !ok {
				share = &ServiceShare{Name: name, Value: decimal.Zero, Revenue: decimal.Zero}
				byName[name] = share
			}
			share.Value = share.Value.Add(item.Quantity)
			share.Revenue = share.Revenue.Add(item.Subtotal)
			total = total.Add(item.Quantity)
		}
	}
	out := make([]ServiceShare, 0, len(byName))
	for _, s := range byName {
		s.Percentage = Percentage(s.Value, total)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Value.Equal(out[j].Value) {
			return out[i].Value.GreaterThan(out[j].Value)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

type CustomerTotal struct {
	CustomerID string          `json:"customer_id"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Total      decimal.Decimal `json:"total"`
	Orders     int             `json:"orders"`
	Average    decimal.Decimal `json:"average"`
}

// TopCustomers ranks customers by the summed total of their orders inside r.
func TopCustomers(items []orders.Details, r Range, limit int) []CustomerTotal {
	byCustomer := make(map[string]*CustomerTotal)
	for _, o := range items {
		if !r.Contains(o.OrderDate) {
			continue
		}
		id := o.CustomerID.String()
		c, ok := byCustomer[id]
		if !ok {
			name, phone := o.Customer.Name, o.Customer.Phone
			if name == "" {
				name = "Unknown"
			}
			if phone == "" {
				phone = "-"
			}
			c = &CustomerTotal{CustomerID: id, Name: name, Phone: phone, Total: decimal.Zero}
			byCustomer[id] = c
		}
		c.Total = c.Total.Add(o.TotalAmount)
		c.Orders++
	}
	out := make([]CustomerTotal, 0, len(byCustomer))
	for _, c := range byCustomer {
		c.Average = Average(c.Total, c.Orders)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

type MethodShare struct {
	Method     orders.PaymentMethod `json:"method"`
	Label      string               `json:"label"`
	Amount     decimal.Decimal      `json:"amount"`
	Percentage int                  `json:"percentage"`
}

// PaymentMethodDistribution sums payment amounts per method inside r.
func PaymentMethodDistribution(payments []orders.PaymentRecord, r Range) []MethodShare {
	byMethod := make(map[orders.PaymentMethod]decimal.Decimal)
	total := decimal.Zero
	for _, p := range payments {
		if !r.Contains(p.PaymentDate) {
			continue
		}
		method := p.PaymentMethod
		if method == "" {
			method = "unknown"
		}
		byMethod[method] = byMethod[method].Add(p.Amount)
		total = total.Add(p.Amount)
	}
	out := make([]MethodShare, 0, len(byMethod))
	for method, amount := range byMethod {
		out = append(out, MethodShare{Method: method, Label: method.Label(), Amount: amount, Percentage: Percentage(amount, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Method < out[j].Method
	})
	return out
}

type CategoryShare struct {
	Category   expenses.Category `json:"category"`
	Label      string            `json:"label"`
	Amount     decimal.Decimal   `json:"amount"`
	Percentage int               `json:"percentage"`
}

// ExpensesByCategory sums expenses per category inside r.
func ExpensesByCategory(items []expenses.Expense, r Range) []CategoryShare {
	byCategory := make(map[expenses.Category]decimal.Decimal)
	total := decimal.Zero
	for _, e := range items {
		if !r.Contains(e.ExpenseDate) {
			continue
		}
		byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
		total = total.Add(e.Amount)
	}
	out := make([]CategoryShare, 0, len(byCategory))
	for category, amount := range byCategory {
		out = append(out, CategoryShare{Category: category, Label: category.Label(), Amount: amount, Percentage: Percentage(amount, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

type FinancialSummary struct {
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
}

// Summarize computes revenue, expenses and profit for r.
func Summarize(payments []orders.PaymentRecord, items []expenses.Expense, r Range) FinancialSummary {
	revenue := Revenue(payments, r)
	spent := ExpenseTotal(items, r)
	return FinancialSummary{Revenue: revenue, Expenses: spent, Profit: revenue.Sub(spent)}
}
