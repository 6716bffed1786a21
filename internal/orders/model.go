package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a laundry order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var statusLabels = map[Status]string{
	StatusPending:    "Menunggu",
	StatusProcessing: "Diproses",
	StatusReady:      "Siap Diambil",
	StatusCompleted:  "Selesai",
	StatusCancelled:  "Dibatalkan",
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the Indonesian display label.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Terminal reports whether no further work happens on the order.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ActiveStatuses are the states still occupying the shop floor.
var ActiveStatuses = []Status{StatusPending, StatusProcessing, StatusReady}

// PaymentMethod enumerates accepted tenders.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
	MethodDebit    PaymentMethod = "debit"
	MethodCredit   PaymentMethod = "credit"
	MethodEWallet  PaymentMethod = "e-wallet"
)

var methodLabels = map[PaymentMethod]string{
	MethodCash:     "Tunai",
	MethodTransfer: "Transfer Bank",
	MethodDebit:    "Kartu Debit",
	MethodCredit:   "Kartu Kredit",
	MethodEWallet:  "E-Wallet",
}

// Label returns the Indonesian display label.
func (m PaymentMethod) Label() string {
	if l, ok := methodLabels[m]; ok {
		return l
	}
	return string(m)
}

// PaymentStatus is recorded per payment. New payments are always completed.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Order is the persisted order row. TotalAmount is fixed at creation;
// PaidAmount only moves through payment create/delete.
type Order struct {
	ID           uuid.UUID       `json:"id"`
	OrderNumber  string          `json:"order_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	OrderDate    time.Time       `json:"order_date"`
	PickupDate   *time.Time      `json:"pickup_date,omitempty"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
	Status       Status          `json:"status"`
	Notes        *string         `json:"notes,omitempty"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Remaining is the outstanding balance, never negative.
func (o Order) Remaining() decimal.Decimal {
	rem := o.TotalAmount.Sub(o.PaidAmount)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// PaidOff reports whether the order is fully settled.
func (o Order) PaidOff() bool {
	return o.PaidAmount.GreaterThanOrEqual(o.TotalAmount)
}

// Item is one priced service line. UnitPrice is captured at order time.
type Item struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	ServiceID uuid.UUID       `json:"service_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt time.Time       `json:"created_at"`
	Service   *ItemService    `json:"service,omitempty"`
}

// ItemService is the catalog entry an item refers to.
type ItemService struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Unit     string    `json:"unit"`
	Category *string   `json:"category,omitempty"`
}

// Payment settles part of an order balance.
type Payment struct {
	ID            uuid.UUID       `json:"id"`
	OrderID       uuid.UUID       `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Status        PaymentStatus   `json:"status"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PaymentRecord is a payment joined with its order number and customer.
type PaymentRecord struct {
	Payment
	OrderNumber  string `json:"order_number"`
	CustomerName string `json:"customer_name"`
}

// CustomerSummary is the customer projection embedded in order reads.
type CustomerSummary struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Phone   string    `json:"phone"`
	Email   *string   `json:"email,omitempty"`
	Address *string   `json:"address,omitempty"`
}

// Details is the full order aggregate returned by one read.
type Details struct {
	Order
	Customer CustomerSummary `json:"customer"`
	Items    []Item          `json:"items"`
	Payments []Payment       `json:"payments"`
}

// Summary is the compact projection used for recent-order lists.
type Summary struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	OrderDate     time.Time       `json:"order_date"`
	Status        Status          `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ListFilter narrows order listings. Dates apply to order_date, inclusive.
type ListFilter struct {
	Status     Status
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// PaymentFilter narrows payment listings. Dates apply to payment_date, inclusive by day.
type PaymentFilter struct {
	OrderID *uuid.UUID
	Method  PaymentMethod
	From    *time.Time
	To      *time.Time
}
